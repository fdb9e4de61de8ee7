package atheros

import (
	"fmt"
	"net"

	"github.com/fernandosanchezjr/goath9k/devices/base"
	"github.com/fernandosanchezjr/goath9k/ether"
	log "github.com/sirupsen/logrus"
)

// Dispatch is the capability set installed for an AR9285. Frame handling is
// not implemented; only the control plane is.
type Dispatch struct {
	binding *base.Binding
	ctlr    *base.Controller
}

func (d *Dispatch) Controller() *base.Controller {
	return d.ctlr
}

// Interrupt must not block or log.
func (d *Dispatch) Interrupt(ev ether.Event) {
	d.ctlr.Interrupt(ev)
}

func (d *Dispatch) Attach() error {
	return d.ctlr.Attach()
}

// IfStat renders the controller status, honouring off like a file read.
func (d *Dispatch) IfStat(buf []byte, off int64) (int, error) {
	s := d.ctlr.Status()
	text := fmt.Sprintf("state: %s\nchannel: %d\nie: %#08x\nattached: %v\ninterrupts: %d\nspurious: %d\n",
		s.State, s.Channel, s.InterruptMask, s.Attached, s.Interrupts, s.Spurious)
	if off < 0 || off >= int64(len(text)) {
		return 0, nil
	}
	return copy(buf, text[off:]), nil
}

func (d *Dispatch) Ctl(buf []byte) (int, error) {
	log.WithFields(log.Fields{
		"controller": d.ctlr.String(),
		"ctl":        string(buf),
	}).Debugln("Ctl")
	return 0, ether.ErrNotSupported
}

// Shutdown releases the binding this dispatch was installed for. Once the
// controller has moved on to another binding it does nothing.
func (d *Dispatch) Shutdown() {
	if err := d.binding.Release(); err != nil {
		log.WithFields(log.Fields{
			"controller": d.ctlr.String(),
			"error":      err,
		}).Warnln("Shutdown")
	}
}

func (d *Dispatch) Promiscuous(on bool) {
	log.WithFields(log.Fields{
		"controller": d.ctlr.String(),
		"on":         on,
	}).Debugln("Promiscuous")
}

func (d *Dispatch) Multicast(addr net.HardwareAddr, on bool) {
	log.WithFields(log.Fields{
		"controller": d.ctlr.String(),
		"addr":       addr.String(),
		"on":         on,
	}).Debugln("Multicast")
}
