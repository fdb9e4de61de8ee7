package base

import (
	"fmt"

	"github.com/fernandosanchezjr/goath9k/bus"
	"github.com/fernandosanchezjr/goath9k/ether"
)

// IDriver is implemented once per supported hardware family. The lifecycle
// hooks are called with the controller's lifecycle lock held. NewDispatch
// receives the binding the dispatch acts for; its shutdown hook must go
// through that binding.
type IDriver interface {
	String() string
	Matches(desc *bus.DeviceDescriptor) bool
	NominalRateMbps() int
	DisableInterrupts(regs bus.RegisterHandle)
	BringUp(c *Controller) error
	NewDispatch(b *Binding) ether.IDispatch
}

type Signature struct {
	Vendor bus.ID
	Device bus.ID
}

func (s Signature) String() string {
	return fmt.Sprintf("%s:%s", s.Vendor, s.Device)
}

func (s Signature) Matches(desc *bus.DeviceDescriptor) bool {
	return s.Vendor == desc.Vendor && s.Device == desc.Device
}

// Driver carries what every family shares: its signature, name and rate.
type Driver struct {
	Signature
	Name string
	Mbps int
}

func NewDriver(vendor, device bus.ID, name string, mbps int) *Driver {
	return &Driver{Signature: Signature{Vendor: vendor, Device: device}, Name: name, Mbps: mbps}
}

func (d *Driver) String() string {
	return d.Name
}

func (d *Driver) NominalRateMbps() int {
	return d.Mbps
}
