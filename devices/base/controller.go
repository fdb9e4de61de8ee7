package base

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fernandosanchezjr/goath9k/bus"
	"github.com/fernandosanchezjr/goath9k/ether"
	log "github.com/sirupsen/logrus"
)

// Controller is one discovered hardware instance. The claim fields belong to
// the registry lock, everything else to the lifecycle lock, except state and
// the interrupt counters which are atomic so the interrupt path never blocks.
type Controller struct {
	registry *Registry
	index    int
	desc     *bus.DeviceDescriptor
	driver   IDriver
	port     uint64

	claimed bool
	owner   string

	mtx      sync.Mutex
	regs     bus.RegisterHandle
	channel  int
	ie       uint32
	attached bool

	state      int32
	interrupts uint64
	spurious   uint64
	lastEvent  uint32
}

func NewController(driver IDriver, desc *bus.DeviceDescriptor, regs bus.RegisterHandle) *Controller {
	c := &Controller{driver: driver, desc: desc, regs: regs, index: -1}
	if len(desc.Resources) > 0 {
		c.port = desc.Resources[0].Base()
	}
	return c
}

func (c *Controller) String() string {
	return fmt.Sprintf("%s %s", c.driver, c.desc.Address)
}

func (c *Controller) Index() int {
	return c.index
}

func (c *Controller) Descriptor() *bus.DeviceDescriptor {
	return c.desc
}

func (c *Controller) Driver() IDriver {
	return c.driver
}

func (c *Controller) Port() uint64 {
	return c.port
}

func (c *Controller) IRQ() int {
	return c.desc.InterruptLine
}

func (c *Controller) Tbdf() bus.Tbdf {
	return c.desc.BusTag
}

func (c *Controller) State() State {
	return State(atomic.LoadInt32(&c.state))
}

func (c *Controller) Enabled() bool {
	return c.State() == Enabled
}

func (c *Controller) setState(s State) {
	atomic.StoreInt32(&c.state, int32(s))
}

func (c *Controller) Claimed() bool {
	if c.registry == nil {
		return c.claimed
	}
	c.registry.mtx.Lock()
	defer c.registry.mtx.Unlock()
	return c.claimed
}

func (c *Controller) Owner() string {
	if c.registry == nil {
		return c.owner
	}
	c.registry.mtx.Lock()
	defer c.registry.mtx.Unlock()
	return c.owner
}

// Registers is only meant for driver hooks, which run under the lifecycle lock.
func (c *Controller) Registers() bus.RegisterHandle {
	return c.regs
}

func (c *Controller) Channel() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.channel
}

func (c *Controller) SetChannel(channel int) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.State() != Enabled {
		return ErrNotEnabled
	}
	c.channel = channel
	return nil
}

func (c *Controller) InterruptMask() uint32 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.ie
}

// SetInterruptMask records the mask a driver hook just wrote to the hardware.
func (c *Controller) SetInterruptMask(ie uint32) {
	c.ie = ie
}

func (c *Controller) Mapped() bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.regs != nil
}

// remap restores the register window released by a previous shutdown.
func (c *Controller) remap(mapper bus.IResourceMapper) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.regs != nil {
		return nil
	}
	regs, err := mapper.Map(c.desc)
	if err != nil {
		return err
	}
	c.regs = regs
	return nil
}

func (c *Controller) stop() {
	c.channel = 0
	c.attached = false
	if c.regs != nil {
		c.driver.DisableInterrupts(c.regs)
	}
	c.ie = 0
	c.setState(Disabled)
}

// Stop masks every interrupt source and acknowledges anything latched. It is
// safe to call in any state and any number of times.
func (c *Controller) Stop() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.stop()
	log.WithField("controller", c.String()).Debugln("Stopped")
}

func (c *Controller) Init() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.regs == nil {
		return &InitError{Ctlr: c.String(), Err: ErrUnmapped}
	}
	c.stop()
	if err := c.driver.BringUp(c); err != nil {
		c.stop()
		return &InitError{Ctlr: c.String(), Err: err}
	}
	c.setState(Enabled)
	log.WithFields(log.Fields{
		"controller": c.String(),
		"port":       fmt.Sprintf("%#x", c.port),
		"irq":        c.IRQ(),
	}).Infoln("Enabled")
	return nil
}

func (c *Controller) Attach() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.State() != Enabled {
		return fmt.Errorf("%s: %w", c, ErrNotEnabled)
	}
	if !c.attached {
		c.attached = true
		log.WithField("controller", c.String()).Infoln("Attached")
	}
	return nil
}

func (c *Controller) Attached() bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.attached
}

// ShutdownAs stops the controller, releases its register window and gives the
// claim back, but only while owner holds the claim. The check and the release
// happen under the registry lock, so a stale owner can never release a
// controller somebody else has claimed since. The registry keeps the entry.
func (c *Controller) ShutdownAs(owner string) error {
	if c.registry != nil {
		c.registry.mtx.Lock()
		defer c.registry.mtx.Unlock()
	}
	if !c.claimed || c.owner != owner {
		return fmt.Errorf("%s: %w", c, ErrNotOwner)
	}
	c.mtx.Lock()
	err := c.shutdown()
	c.mtx.Unlock()
	c.claimed = false
	c.owner = ""
	return err
}

// shutdown runs with the lifecycle lock held.
func (c *Controller) shutdown() error {
	if c.State() == Unbound && c.regs == nil {
		return nil
	}
	c.stop()
	var err error
	if c.regs != nil {
		err = c.regs.Close()
		c.regs = nil
	}
	c.setState(Unbound)
	log.WithField("controller", c.String()).Infoln("Shut down")
	return err
}

// Interrupt reports whether the event was taken. Events arriving while the
// controller is not enabled are counted and dropped.
func (c *Controller) Interrupt(ev ether.Event) bool {
	if c.State() != Enabled {
		atomic.AddUint64(&c.spurious, 1)
		return false
	}
	atomic.AddUint64(&c.interrupts, 1)
	atomic.StoreUint32(&c.lastEvent, uint32(ev))
	return true
}

func (c *Controller) Interrupts() (taken, spurious uint64) {
	return atomic.LoadUint64(&c.interrupts), atomic.LoadUint64(&c.spurious)
}
