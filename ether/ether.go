package ether

import (
	"errors"
	"fmt"
	"net"

	"github.com/fernandosanchezjr/goath9k/bus"
)

var ErrNotSupported = errors.New("operation not supported")

// Event carries the interrupt status bits latched when the line fired.
type Event uint32

// IDispatch is the capability set a card installs into an interface handle.
type IDispatch interface {
	Interrupt(ev Event)
	Attach() error
	IfStat(buf []byte, off int64) (int, error)
	Ctl(buf []byte) (int, error)
	Shutdown()
	Promiscuous(on bool)
	Multicast(addr net.HardwareAddr, on bool)
}

type ICtlr interface {
	String() string
}

// Ether is the generic network interface handle. Port selects a controller
// by register base when non-zero.
type Ether struct {
	Name     string
	Type     string
	Port     uint64
	IRQ      int
	Tbdf     bus.Tbdf
	Mbps     int
	Ctlr     ICtlr
	Dispatch IDispatch
}

func NewEther(name, cardType string, port uint64) *Ether {
	return &Ether{Name: name, Type: cardType, Port: port}
}

func (e *Ether) String() string {
	if e.Ctlr == nil {
		return fmt.Sprintf("%s (%s, unbound)", e.Name, e.Type)
	}
	return fmt.Sprintf("%s (%s port %#x irq %d)", e.Name, e.Ctlr, e.Port, e.IRQ)
}

func (e *Ether) Bound() bool {
	return e.Ctlr != nil && e.Dispatch != nil
}

// Unbind clears everything a card filled in, restoring the requested port.
func (e *Ether) Unbind(port uint64) {
	e.Port = port
	e.IRQ = 0
	e.Tbdf = 0
	e.Mbps = 0
	e.Ctlr = nil
	e.Dispatch = nil
}
