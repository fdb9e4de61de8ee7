package bus

import (
	"fmt"
	"sync"
)

// SimDevice describes one function on a simulated bus.
type SimDevice struct {
	Address string `yaml:"address"`
	Vendor  uint16 `yaml:"vendor"`
	Device  uint16 `yaml:"device"`
	Class   uint8  `yaml:"class"`
	Bar     uint64 `yaml:"bar"`
	Size    uint64 `yaml:"size"`
	IRQ     int    `yaml:"irq"`
	FailMap bool   `yaml:"failMap,omitempty"`
}

// SimBus serves enumeration from a fixed device list and backs register
// windows with ordinary memory.
type SimBus struct {
	mtx          sync.Mutex
	devices      []SimDevice
	enumerations int
	busMaster    map[Address]bool
	power        map[Address]PowerState
	mapped       map[Address]int
}

func NewSimBus(devices ...SimDevice) *SimBus {
	return &SimBus{
		devices:   devices,
		busMaster: map[Address]bool{},
		power:     map[Address]PowerState{},
		mapped:    map[Address]int{},
	}
}

func (sb *SimBus) String() string {
	return fmt.Sprintf("sim (%d devices)", len(sb.devices))
}

func (sb *SimBus) Enumerate() ([]*DeviceDescriptor, error) {
	sb.mtx.Lock()
	defer sb.mtx.Unlock()
	sb.enumerations++
	devices := make([]*DeviceDescriptor, 0, len(sb.devices))
	for _, d := range sb.devices {
		address, err := ParseAddress(d.Address)
		if err != nil {
			return nil, err
		}
		devices = append(devices, &DeviceDescriptor{
			Address:       address,
			Vendor:        ID(d.Vendor),
			Device:        ID(d.Device),
			Class:         d.Class,
			Resources:     []Resource{{Bar: d.Bar, Size: d.Size}},
			InterruptLine: d.IRQ,
			BusTag:        address.Tag(),
		})
	}
	return devices, nil
}

func (sb *SimBus) find(desc *DeviceDescriptor) (SimDevice, error) {
	for _, d := range sb.devices {
		if address, err := ParseAddress(d.Address); err == nil && address == desc.Address {
			return d, nil
		}
	}
	return SimDevice{}, fmt.Errorf("no simulated device at %s", desc.Address)
}

func (sb *SimBus) EnableBusMaster(desc *DeviceDescriptor) error {
	sb.mtx.Lock()
	defer sb.mtx.Unlock()
	if _, err := sb.find(desc); err != nil {
		return err
	}
	sb.busMaster[desc.Address] = true
	return nil
}

func (sb *SimBus) SetPowerState(desc *DeviceDescriptor, state PowerState) error {
	sb.mtx.Lock()
	defer sb.mtx.Unlock()
	if _, err := sb.find(desc); err != nil {
		return err
	}
	sb.power[desc.Address] = state
	return nil
}

func (sb *SimBus) MapResource(desc *DeviceDescriptor, index int) (RegisterHandle, error) {
	sb.mtx.Lock()
	defer sb.mtx.Unlock()
	d, err := sb.find(desc)
	if err != nil {
		return nil, err
	}
	resource, err := desc.Resource(index)
	if err != nil || d.FailMap {
		return nil, fmt.Errorf("%s resource %d: %w", desc, index, ErrAddressUnavailable)
	}
	sb.mapped[desc.Address]++
	return newMemoryWindow(resource.Base(), resource.Size), nil
}

func (sb *SimBus) Enumerations() int {
	sb.mtx.Lock()
	defer sb.mtx.Unlock()
	return sb.enumerations
}

func (sb *SimBus) BusMaster(address Address) bool {
	sb.mtx.Lock()
	defer sb.mtx.Unlock()
	return sb.busMaster[address]
}

func (sb *SimBus) PowerState(address Address) (PowerState, bool) {
	sb.mtx.Lock()
	defer sb.mtx.Unlock()
	state, found := sb.power[address]
	return state, found
}

func (sb *SimBus) Mappings(address Address) int {
	sb.mtx.Lock()
	defer sb.mtx.Unlock()
	return sb.mapped[address]
}
