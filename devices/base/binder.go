package base

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/fernandosanchezjr/goath9k/bus"
	"github.com/fernandosanchezjr/goath9k/ether"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Binding struct {
	ID     string
	Ether  *ether.Ether
	Ctlr   *Controller
	Since  time.Time
	port   uint64
	binder *Binder
}

// Live reports whether the controller is still owned by this binding.
func (b *Binding) Live() bool {
	return b.Ctlr.Owner() == b.ID
}

// Shutdown shuts the controller down and unbinds the interface, provided the
// binding still owns the controller. A stale binding does nothing.
func (b *Binding) Shutdown() error {
	err := b.Ctlr.ShutdownAs(b.ID)
	if errors.Is(err, ErrNotOwner) {
		return nil
	}
	b.Ether.Unbind(b.port)
	return err
}

// Release shuts the binding down and drops it from its binder.
func (b *Binding) Release() error {
	if b.binder == nil {
		return b.Shutdown()
	}
	return b.binder.Release(b)
}

// Binder hands controllers out to interface handles.
type Binder struct {
	registry *Registry
	catalog  ICatalog
	mapper   bus.IResourceMapper
	mtx      sync.Mutex
	bindings map[*ether.Ether]*Binding
}

func NewBinder(registry *Registry, catalog ICatalog, mapper bus.IResourceMapper) *Binder {
	return &Binder{
		registry: registry,
		catalog:  catalog,
		mapper:   mapper,
		bindings: map[*ether.Ether]*Binding{},
	}
}

func (b *Binder) Registry() *Registry {
	return b.registry
}

// Acquire claims a controller for edev, selecting by edev.Port when it is
// non-zero. A controller that fails to initialise is released and the next
// eligible one is tried; each controller is tried at most once per call.
func (b *Binder) Acquire(edev *ether.Ether) (*Binding, error) {
	b.registry.Populate(b.catalog)
	port := edev.Port
	id := uuid.New().String()
	tried := map[int]bool{}
	for {
		ctlr, err := b.registry.Claim(port, id, tried)
		if err != nil {
			return nil, ErrNoDevice
		}
		tried[ctlr.Index()] = true
		if err := ctlr.remap(b.mapper); err != nil {
			log.WithFields(log.Fields{
				"controller": ctlr.String(),
				"error":      err,
			}).Warnln("Can't remap registers")
			b.registry.Release(ctlr)
			continue
		}
		edev.Ctlr = ctlr
		edev.Port = ctlr.Port()
		edev.IRQ = ctlr.IRQ()
		edev.Tbdf = ctlr.Tbdf()
		binding := &Binding{ID: id, Ether: edev, Ctlr: ctlr, port: port, binder: b}
		edev.Dispatch = ctlr.Driver().NewDispatch(binding)
		edev.Mbps = ctlr.Driver().NominalRateMbps()
		if err := ctlr.Init(); err != nil {
			log.WithFields(log.Fields{
				"interface": edev.Name,
				"error":     err,
			}).Warnln("Init failed, trying next controller")
			edev.Unbind(port)
			b.registry.Release(ctlr)
			continue
		}
		binding.Since = time.Now()
		b.mtx.Lock()
		b.bindings[edev] = binding
		b.mtx.Unlock()
		log.WithFields(log.Fields{
			"interface":  edev.Name,
			"controller": ctlr.String(),
			"binding":    id,
		}).Infoln("Bound")
		return binding, nil
	}
}

// Pnp adapts Acquire to the card table.
func (b *Binder) Pnp(edev *ether.Ether) error {
	_, err := b.Acquire(edev)
	return err
}

func (b *Binder) Lookup(edev *ether.Ether) (*Binding, bool) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	binding, found := b.bindings[edev]
	if !found || !binding.Live() {
		return nil, false
	}
	return binding, true
}

// Bindings returns the live bindings, oldest first.
func (b *Binder) Bindings() []*Binding {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	var live []*Binding
	for _, binding := range b.bindings {
		if binding.Live() {
			live = append(live, binding)
		}
	}
	sort.Slice(live, func(i, j int) bool {
		return live[i].Since.Before(live[j].Since)
	})
	return live
}

func (b *Binder) Release(binding *Binding) error {
	err := binding.Shutdown()
	b.mtx.Lock()
	if b.bindings[binding.Ether] == binding {
		delete(b.bindings, binding.Ether)
	}
	b.mtx.Unlock()
	return err
}
