package bus

import "fmt"

// Mapper maps the register window a driver programs through. Bus mastering
// and full power are switched on before the window is mapped.
type Mapper struct {
	bus      IBus
	resource int
}

func NewMapper(bus IBus) *Mapper {
	return &Mapper{bus: bus}
}

func (m *Mapper) Map(desc *DeviceDescriptor) (RegisterHandle, error) {
	if err := m.bus.EnableBusMaster(desc); err != nil {
		return nil, fmt.Errorf("enabling bus master on %s: %v: %w", desc, err, ErrAddressUnavailable)
	}
	if err := m.bus.SetPowerState(desc, D0); err != nil {
		return nil, fmt.Errorf("powering %s: %v: %w", desc, err, ErrAddressUnavailable)
	}
	if _, err := desc.Resource(m.resource); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrAddressUnavailable)
	}
	regs, err := m.bus.MapResource(desc, m.resource)
	if err != nil {
		return nil, fmt.Errorf("mapping %s resource %d: %w", desc, m.resource, err)
	}
	return regs, nil
}
