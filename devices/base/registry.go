package base

import (
	"fmt"
	"sync"
)

// Registry holds every controller found on the bus in discovery order. It is
// populated at most once while non-empty; entries are never removed.
type Registry struct {
	mtx         sync.Mutex
	controllers []*Controller
	scans       int
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Populate runs the catalog scan unless the registry already holds
// controllers. The scan happens under the registry lock so concurrent
// acquisitions see a single scan.
func (r *Registry) Populate(catalog ICatalog) int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if len(r.controllers) > 0 {
		return len(r.controllers)
	}
	r.scans++
	for _, c := range catalog.Scan() {
		c.registry = r
		c.index = len(r.controllers)
		r.controllers = append(r.controllers, c)
	}
	return len(r.controllers)
}

func (r *Registry) Scans() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.scans
}

func (r *Registry) Len() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.controllers)
}

func (r *Registry) Controllers() []*Controller {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return append([]*Controller{}, r.controllers...)
}

func (r *Registry) Get(index int) (*Controller, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if index < 0 || index >= len(r.controllers) {
		return nil, fmt.Errorf("index %d: %w", index, ErrNotFound)
	}
	return r.controllers[index], nil
}

func eligible(c *Controller, port uint64) bool {
	return !c.claimed && (port == 0 || c.port == port)
}

func (r *Registry) FindUnclaimed(port uint64) (*Controller, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	for _, c := range r.controllers {
		if eligible(c, port) {
			return c, nil
		}
	}
	return nil, ErrNotFound
}

// Claim marks the first eligible controller not in skip as owned by owner.
func (r *Registry) Claim(port uint64, owner string, skip map[int]bool) (*Controller, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	for _, c := range r.controllers {
		if skip[c.index] || !eligible(c, port) {
			continue
		}
		c.claimed = true
		c.owner = owner
		return c, nil
	}
	return nil, ErrNotFound
}

func (r *Registry) Release(c *Controller) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	c.claimed = false
	c.owner = ""
}

func (r *Registry) Status() []Status {
	var statuses []Status
	for _, c := range r.Controllers() {
		statuses = append(statuses, c.Status())
	}
	return statuses
}
