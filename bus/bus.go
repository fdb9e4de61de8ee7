package bus

import "errors"

var ErrAddressUnavailable = errors.New("address unavailable")

type PowerState int

const (
	D0 PowerState = iota
	D1
	D2
	D3Hot
)

func (ps PowerState) String() string {
	switch ps {
	case D0:
		return "D0"
	case D1:
		return "D1"
	case D2:
		return "D2"
	case D3Hot:
		return "D3hot"
	}
	return "unknown"
}

type IBus interface {
	String() string
	Enumerate() ([]*DeviceDescriptor, error)
	EnableBusMaster(desc *DeviceDescriptor) error
	SetPowerState(desc *DeviceDescriptor, state PowerState) error
	MapResource(desc *DeviceDescriptor, index int) (RegisterHandle, error)
}

// RegisterHandle is a mapped register window. Accesses are 32 bits wide and
// offsets must be 4-byte aligned.
type RegisterHandle interface {
	Read32(offset uint32) uint32
	Write32(offset uint32, value uint32)
	Base() uint64
	Size() uint64
	Close() error
}

type IResourceMapper interface {
	Map(desc *DeviceDescriptor) (RegisterHandle, error)
}
