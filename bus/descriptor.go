package bus

import (
	"fmt"
	"strings"
)

const (
	ClassNetwork  uint8  = 0x02
	BarFlagsMask  uint64 = 0x0f
	barFlagIO     uint64 = 0x01
	barFlagMem64  uint64 = 0x04
	barFlagPrefch uint64 = 0x08
	busTypePCI    uint32 = 12
)

type ID uint16

func (id ID) String() string {
	return fmt.Sprintf("%04x", uint16(id))
}

// Tbdf packs bus type, bus, device and function the way interrupt routing expects it.
type Tbdf uint32

func (t Tbdf) String() string {
	return fmt.Sprintf("%d.%d.%d", (t>>16)&0xff, (t>>11)&0x1f, (t>>8)&0x07)
}

type Address struct {
	Domain   uint16
	Bus      uint8
	Slot     uint8
	Function uint8
}

func ParseAddress(s string) (Address, error) {
	var a Address
	var domain, bus, slot, function uint
	s = strings.TrimSpace(s)
	if n, err := fmt.Sscanf(s, "%04x:%02x:%02x.%x", &domain, &bus, &slot, &function); err != nil || n != 4 {
		if n, err = fmt.Sscanf(s, "%02x:%02x.%x", &bus, &slot, &function); err != nil || n != 3 {
			return a, fmt.Errorf("invalid bus address %q", s)
		}
	}
	if domain > 0xffff || bus > 0xff || slot > 0x1f || function > 0x07 {
		return a, fmt.Errorf("bus address %q out of range", s)
	}
	a.Domain = uint16(domain)
	a.Bus = uint8(bus)
	a.Slot = uint8(slot)
	a.Function = uint8(function)
	return a, nil
}

func (a Address) String() string {
	return fmt.Sprintf("%04x:%02x:%02x.%x", a.Domain, a.Bus, a.Slot, a.Function)
}

func (a Address) Tag() Tbdf {
	return Tbdf(busTypePCI<<24 | uint32(a.Bus)<<16 | uint32(a.Slot)<<11 | uint32(a.Function)<<8)
}

// Resource is one base address register of a device. Bar keeps the raw
// flag bits in its low nibble.
type Resource struct {
	Bar  uint64
	Size uint64
}

func (r Resource) Base() uint64 {
	return r.Bar &^ BarFlagsMask
}

func (r Resource) IsIO() bool {
	return r.Bar&barFlagIO != 0
}

func (r Resource) Prefetchable() bool {
	return !r.IsIO() && r.Bar&barFlagPrefch != 0
}

type DeviceDescriptor struct {
	Address       Address
	Vendor        ID
	Device        ID
	Class         uint8
	SubClass      uint8
	Resources     []Resource
	InterruptLine int
	BusTag        Tbdf
}

func (d *DeviceDescriptor) String() string {
	return fmt.Sprintf("%s %s:%s", d.Address, d.Vendor, d.Device)
}

func (d *DeviceDescriptor) Resource(index int) (Resource, error) {
	if index < 0 || index >= len(d.Resources) || d.Resources[index].Size == 0 {
		return Resource{}, fmt.Errorf("%s has no resource %d", d, index)
	}
	return d.Resources[index], nil
}
