package power

import (
	"fmt"
	"sync"
	"time"

	"github.com/fernandosanchezjr/goath9k/config"
	log "github.com/sirupsen/logrus"
	"github.com/stianeikeland/go-rpio/v4"
)

const DefaultSettle = 500 * time.Millisecond

// Switch powers the card slot through a GPIO pin. A disabled switch does
// nothing, so hosts without GPIO run unchanged.
type Switch struct {
	cfg  config.PowerControl
	mtx  sync.Mutex
	pin  rpio.Pin
	open bool
	on   bool
}

func NewSwitch(cfg config.PowerControl) *Switch {
	if cfg.Settle == 0 {
		cfg.Settle = DefaultSettle
	}
	return &Switch{cfg: cfg, pin: rpio.Pin(cfg.Pin)}
}

func (s *Switch) String() string {
	return fmt.Sprintf("slot power pin %d", s.cfg.Pin)
}

func (s *Switch) Enabled() bool {
	return s.cfg.Enabled
}

func (s *Switch) On() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.on
}

func (s *Switch) write(on bool) {
	if on == s.cfg.High {
		s.pin.High()
	} else {
		s.pin.Low()
	}
}

// PowerOn raises the slot supply and waits for it to settle before the bus
// is scanned.
func (s *Switch) PowerOn() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if !s.cfg.Enabled || s.on {
		return nil
	}
	if !s.open {
		if err := rpio.Open(); err != nil {
			return fmt.Errorf("%s: %w", s, err)
		}
		s.open = true
		s.pin.Output()
	}
	s.write(true)
	s.on = true
	log.WithField("pin", s.cfg.Pin).Infoln("Slot powered on")
	time.Sleep(s.cfg.Settle)
	return nil
}

func (s *Switch) PowerOff() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if !s.open {
		return nil
	}
	s.write(false)
	s.on = false
	s.open = false
	log.WithField("pin", s.cfg.Pin).Infoln("Slot powered off")
	return rpio.Close()
}
