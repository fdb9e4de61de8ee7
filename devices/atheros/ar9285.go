package atheros

import (
	"github.com/fernandosanchezjr/goath9k/bus"
	"github.com/fernandosanchezjr/goath9k/devices/base"
	"github.com/fernandosanchezjr/goath9k/ether"
	log "github.com/sirupsen/logrus"
)

const (
	VendorAtheros bus.ID = 0x168c
	DeviceAR9285  bus.ID = 0x002b
)

type IHardware interface {
	BringUp(c *base.Controller) error
}

type HardwareFunc func(c *base.Controller) error

func (f HardwareFunc) BringUp(c *base.Controller) error {
	return f(c)
}

// The chip programming sequence lives outside this package; without one
// bring-up succeeds once interrupts are quiesced.
type nopHardware struct{}

func (nopHardware) BringUp(*base.Controller) error {
	return nil
}

type AR9285 struct {
	*base.Driver
	Hardware IHardware
}

func NewAR9285() *AR9285 {
	return &AR9285{
		Driver:   base.NewDriver(VendorAtheros, DeviceAR9285, "Atheros AR9285", RateMbps),
		Hardware: nopHardware{},
	}
}

func NewAR9285WithHardware(hw IHardware) *AR9285 {
	ar := NewAR9285()
	ar.Hardware = hw
	return ar
}

func (ar *AR9285) DisableInterrupts(regs bus.RegisterHandle) {
	regs.Write32(Imr, MaskAll)
	regs.Write32(Isr, AckAll)
	regs.Write32(FhIsr, AckAll)
}

func (ar *AR9285) BringUp(c *base.Controller) error {
	log.WithField("controller", c.String()).Debugln("Resetting device")
	return ar.Hardware.BringUp(c)
}

func (ar *AR9285) NewDispatch(b *base.Binding) ether.IDispatch {
	return &Dispatch{binding: b, ctlr: b.Ctlr}
}
