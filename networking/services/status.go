package services

import (
	"fmt"
	"time"

	"github.com/ReneKroon/ttlcache"
	"github.com/fernandosanchezjr/goath9k/devices/base"
	"github.com/fernandosanchezjr/goath9k/storage"
)

const (
	StatusService  = "Status"
	StatusCacheTTL = time.Second

	controllersKey = "controllers"
)

// Binding is the wire form of a journal or live binding. Times travel as
// RFC 3339 strings.
type Binding struct {
	ID         string
	Interface  string
	Controller string
	Port       string
	BoundAt    string
	ReleasedAt string
	Live       bool
}

func bindingFromRecord(record *storage.BindingRecord) Binding {
	b := Binding{
		ID:         record.ID,
		Interface:  record.Interface,
		Controller: record.Controller,
		Port:       record.Port,
		BoundAt:    record.BoundAt.Format(time.RFC3339),
		Live:       record.Live(),
	}
	if !record.Live() {
		b.ReleasedAt = record.ReleasedAt.Format(time.RFC3339)
	}
	return b
}

func bindingFromLive(binding *base.Binding) Binding {
	return Binding{
		ID:         binding.ID,
		Interface:  binding.Ether.Name,
		Controller: binding.Ctlr.Descriptor().Address.String(),
		Port:       fmt.Sprintf("%#x", binding.Ctlr.Port()),
		BoundAt:    binding.Since.Format(time.RFC3339),
		Live:       binding.Live(),
	}
}

// Status exposes controller and binding state over RPC. Every exported method
// is an RPC function.
type Status struct {
	binder  *base.Binder
	journal *storage.Journal
	cache   *ttlcache.Cache
}

func NewStatus(binder *base.Binder, journal *storage.Journal) *Status {
	cache := ttlcache.NewCache()
	cache.SetTTL(StatusCacheTTL)
	return &Status{binder: binder, journal: journal, cache: cache}
}

func (s *Status) Controllers() ([]base.Status, error) {
	if s.binder == nil {
		return nil, base.ErrNoDevice
	}
	if cached, found := s.cache.Get(controllersKey); found {
		return cached.([]base.Status), nil
	}
	statuses := s.binder.Registry().Status()
	s.cache.Set(controllersKey, statuses)
	return statuses, nil
}

func (s *Status) Controller(index int) (base.Status, error) {
	if s.binder == nil {
		return base.Status{}, base.ErrNoDevice
	}
	ctlr, err := s.binder.Registry().Get(index)
	if err != nil {
		return base.Status{}, err
	}
	return ctlr.Status(), nil
}

// Bindings lists the journal when one is kept, the live bindings otherwise.
func (s *Status) Bindings() ([]Binding, error) {
	if s.journal != nil {
		records, err := s.journal.Bindings()
		if err != nil {
			return nil, err
		}
		bindings := make([]Binding, 0, len(records))
		for i := range records {
			bindings = append(bindings, bindingFromRecord(&records[i]))
		}
		return bindings, nil
	}
	if s.binder == nil {
		return nil, nil
	}
	live := s.binder.Bindings()
	bindings := make([]Binding, 0, len(live))
	for _, binding := range live {
		bindings = append(bindings, bindingFromLive(binding))
	}
	return bindings, nil
}
