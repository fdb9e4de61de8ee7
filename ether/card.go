package ether

import (
	"errors"
	"fmt"
	"sync"
)

var ErrUnknownCard = errors.New("unknown card type")
var ErrNoCard = errors.New("no card accepted the interface")

type PnpFunc func(edev *Ether) error

type card struct {
	name string
	pnp  PnpFunc
}

// CardTable maps card type names to their plug-and-play functions.
type CardTable struct {
	mtx   sync.Mutex
	cards []card
}

func NewCardTable() *CardTable {
	return &CardTable{}
}

func (ct *CardTable) AddCard(name string, pnp PnpFunc) {
	ct.mtx.Lock()
	defer ct.mtx.Unlock()
	for i := range ct.cards {
		if ct.cards[i].name == name {
			ct.cards[i].pnp = pnp
			return
		}
	}
	ct.cards = append(ct.cards, card{name: name, pnp: pnp})
}

func (ct *CardTable) Cards() []string {
	ct.mtx.Lock()
	defer ct.mtx.Unlock()
	names := make([]string, 0, len(ct.cards))
	for _, c := range ct.cards {
		names = append(names, c.name)
	}
	return names
}

func (ct *CardTable) lookup(name string) (PnpFunc, bool) {
	ct.mtx.Lock()
	defer ct.mtx.Unlock()
	for _, c := range ct.cards {
		if c.name == name {
			return c.pnp, true
		}
	}
	return nil, false
}

// Probe binds edev using the card named by edev.Type, or tries every card in
// registration order when no type is given.
func (ct *CardTable) Probe(edev *Ether) error {
	if edev.Type != "" {
		pnp, found := ct.lookup(edev.Type)
		if !found {
			return fmt.Errorf("%s: %w", edev.Type, ErrUnknownCard)
		}
		return pnp(edev)
	}
	var lastErr error
	for _, name := range ct.Cards() {
		pnp, _ := ct.lookup(name)
		if lastErr = pnp(edev); lastErr == nil {
			edev.Type = name
			return nil
		}
	}
	if lastErr != nil {
		return fmt.Errorf("%s: %v: %w", edev.Name, lastErr, ErrNoCard)
	}
	return fmt.Errorf("%s: %w", edev.Name, ErrNoCard)
}
