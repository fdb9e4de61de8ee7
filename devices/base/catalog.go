package base

import (
	"fmt"

	"github.com/fernandosanchezjr/goath9k/bus"
	"github.com/fernandosanchezjr/goath9k/utils"
	log "github.com/sirupsen/logrus"
)

type ICatalog interface {
	String() string
	Match(desc *bus.DeviceDescriptor) IDriver
	Scan() []*Controller
}

// Catalog matches bus devices against a set of drivers and maps the ones it
// recognises.
type Catalog struct {
	Name    string
	Drivers []IDriver
	bus     bus.IBus
	mapper  bus.IResourceMapper
}

func NewCatalog(name string, b bus.IBus, mapper bus.IResourceMapper, driver ...IDriver) *Catalog {
	return &Catalog{Name: name, Drivers: driver, bus: b, mapper: mapper}
}

func (dc *Catalog) String() string {
	return dc.Name
}

func (dc *Catalog) Match(desc *bus.DeviceDescriptor) IDriver {
	if desc.Class != bus.ClassNetwork {
		return nil
	}
	for _, d := range dc.Drivers {
		if d.Matches(desc) {
			return d
		}
	}
	return nil
}

// Scan returns controllers in enumeration order. Devices that fail to map are
// skipped.
func (dc *Catalog) Scan() []*Controller {
	devices, err := dc.bus.Enumerate()
	if err != nil {
		log.WithFields(log.Fields{
			"catalog": dc.Name,
			"bus":     dc.bus.String(),
			"error":   err,
		}).Errorln("Bus enumeration failed")
		return nil
	}
	var controllers []*Controller
	for _, desc := range devices {
		driver := dc.Match(desc)
		if driver == nil {
			continue
		}
		log.WithFields(log.Fields{
			"address": desc.Address.String(),
			"driver":  driver.String(),
		}).Debugln("Device found")
		regs, err := dc.mapper.Map(desc)
		if err != nil {
			log.WithFields(log.Fields{
				"address": desc.Address.String(),
				"driver":  driver.String(),
				"error":   err,
			}).Warnln("Can't map registers")
			continue
		}
		log.WithFields(log.Fields{
			"address": desc.Address.String(),
			"base":    fmt.Sprintf("%#x", regs.Base()),
			"size":    utils.Size(regs.Size()).String(),
		}).Debugln("Registers mapped")
		controllers = append(controllers, NewController(driver, desc, regs))
	}
	return controllers
}
