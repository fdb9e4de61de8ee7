package base

import (
	"fmt"
	"sync/atomic"

	"github.com/fernandosanchezjr/goath9k/utils"
)

type Status struct {
	Index         int    `json:"index"`
	Address       string `json:"address"`
	Vendor        string `json:"vendor"`
	Device        string `json:"device"`
	Driver        string `json:"driver"`
	Port          string `json:"port"`
	IRQ           int    `json:"irq"`
	Window        string `json:"window"`
	State         string `json:"state"`
	Claimed       bool   `json:"claimed"`
	Owner         string `json:"owner,omitempty"`
	Channel       int    `json:"channel"`
	InterruptMask uint32 `json:"interruptMask"`
	Attached      bool   `json:"attached"`
	Interrupts    uint64 `json:"interrupts"`
	Spurious      uint64 `json:"spurious"`
	LastEvent     uint32 `json:"lastEvent"`
}

func (c *Controller) Status() Status {
	s := Status{
		Index:      c.index,
		Address:    c.desc.Address.String(),
		Vendor:     c.desc.Vendor.String(),
		Device:     c.desc.Device.String(),
		Driver:     c.driver.String(),
		Port:       fmt.Sprintf("%#x", c.port),
		IRQ:        c.IRQ(),
		State:      c.State().String(),
		Claimed:    c.Claimed(),
		Owner:      c.Owner(),
		Interrupts: atomic.LoadUint64(&c.interrupts),
		Spurious:   atomic.LoadUint64(&c.spurious),
		LastEvent:  atomic.LoadUint32(&c.lastEvent),
	}
	if len(c.desc.Resources) > 0 {
		s.Window = utils.Size(c.desc.Resources[0].Size).String()
	}
	c.mtx.Lock()
	s.Channel = c.channel
	s.InterruptMask = c.ie
	s.Attached = c.attached
	c.mtx.Unlock()
	return s
}

func (s Status) String() string {
	return fmt.Sprintf("%d %s %s %s:%s port %s irq %d window %s %s claimed=%v channel=%d ie=%#08x interrupts=%d spurious=%d",
		s.Index, s.Address, s.Driver, s.Vendor, s.Device, s.Port, s.IRQ, s.Window, s.State, s.Claimed, s.Channel,
		s.InterruptMask, s.Interrupts, s.Spurious)
}
