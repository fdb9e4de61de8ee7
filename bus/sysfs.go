package bus

import (
	"encoding/binary"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultSysfsRoot = "/sys/bus/pci/devices"

	configCommand       = 0x04
	commandMemorySpace  = 0x0002
	commandBusMaster    = 0x0004
	ioResourceIO        = 0x00000100
	ioResourcePrefetch  = 0x00002000
	ioResourceMem64     = 0x00100000
	maxResourceSections = 6
)

// SysfsBus enumerates PCI functions through the Linux sysfs tree.
type SysfsBus struct {
	Root string
}

func NewSysfsBus(root string) *SysfsBus {
	if root == "" {
		root = DefaultSysfsRoot
	}
	return &SysfsBus{Root: root}
}

func (sb *SysfsBus) String() string {
	return "sysfs " + sb.Root
}

func (sb *SysfsBus) devicePath(desc *DeviceDescriptor) string {
	return filepath.Join(sb.Root, desc.Address.String())
}

// Enumerate returns devices in directory order, which is address order.
func (sb *SysfsBus) Enumerate() ([]*DeviceDescriptor, error) {
	entries, err := ioutil.ReadDir(sb.Root)
	if err != nil {
		return nil, err
	}
	var devices []*DeviceDescriptor
	for _, entry := range entries {
		address, err := ParseAddress(entry.Name())
		if err != nil {
			continue
		}
		desc, err := parseSysfsDevice(filepath.Join(sb.Root, entry.Name()), address)
		if err != nil {
			continue
		}
		devices = append(devices, desc)
	}
	return devices, nil
}

func parseSysfsDevice(devPath string, address Address) (*DeviceDescriptor, error) {
	desc := &DeviceDescriptor{Address: address, BusTag: address.Tag()}
	vendor, err := readSysfsUint(filepath.Join(devPath, "vendor"), 16)
	if err != nil {
		return nil, err
	}
	desc.Vendor = ID(vendor)
	device, err := readSysfsUint(filepath.Join(devPath, "device"), 16)
	if err != nil {
		return nil, err
	}
	desc.Device = ID(device)
	class, err := readSysfsUint(filepath.Join(devPath, "class"), 24)
	if err != nil {
		return nil, err
	}
	desc.Class = uint8(class >> 16)
	desc.SubClass = uint8(class >> 8)
	if irq, err := readSysfsString(filepath.Join(devPath, "irq")); err == nil {
		if line, err := strconv.Atoi(irq); err == nil {
			desc.InterruptLine = line
		}
	}
	desc.Resources, err = readSysfsResources(filepath.Join(devPath, "resource"))
	if err != nil {
		return nil, err
	}
	return desc, nil
}

func readSysfsString(path string) (string, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func readSysfsUint(path string, bits int) (uint64, error) {
	value, err := readSysfsString(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(strings.TrimPrefix(value, "0x"), 16, bits)
}

// readSysfsResources parses the "start end flags" lines of the resource file.
// Only the six standard BARs are kept.
func readSysfsResources(path string) ([]Resource, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var resources []Resource
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if len(resources) == maxResourceSections {
			break
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed resource line %q", line)
		}
		var values [3]uint64
		for i, field := range fields {
			if values[i], err = strconv.ParseUint(strings.TrimPrefix(field, "0x"), 16, 64); err != nil {
				return nil, err
			}
		}
		start, end, flags := values[0], values[1], values[2]
		var r Resource
		if end > start {
			r.Size = end - start + 1
			r.Bar = start
			switch {
			case flags&ioResourceIO != 0:
				r.Bar |= barFlagIO
			default:
				if flags&ioResourceMem64 != 0 {
					r.Bar |= barFlagMem64
				}
				if flags&ioResourcePrefetch != 0 {
					r.Bar |= barFlagPrefch
				}
			}
		}
		resources = append(resources, r)
	}
	return resources, nil
}

func (sb *SysfsBus) EnableBusMaster(desc *DeviceDescriptor) error {
	devPath := sb.devicePath(desc)
	if err := ioutil.WriteFile(filepath.Join(devPath, "enable"), []byte("1"), 0600); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(devPath, "config"), os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	var command [2]byte
	if _, err = f.ReadAt(command[:], configCommand); err != nil {
		return err
	}
	value := binary.LittleEndian.Uint16(command[:])
	if value&(commandBusMaster|commandMemorySpace) == commandBusMaster|commandMemorySpace {
		return nil
	}
	binary.LittleEndian.PutUint16(command[:], value|commandBusMaster|commandMemorySpace)
	_, err = f.WriteAt(command[:], configCommand)
	return err
}

func (sb *SysfsBus) SetPowerState(desc *DeviceDescriptor, state PowerState) error {
	control := "auto"
	if state == D0 {
		control = "on"
	}
	return ioutil.WriteFile(filepath.Join(sb.devicePath(desc), "power", "control"), []byte(control), 0600)
}

func (sb *SysfsBus) MapResource(desc *DeviceDescriptor, index int) (RegisterHandle, error) {
	resource, err := desc.Resource(index)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrAddressUnavailable)
	}
	if resource.IsIO() {
		return nil, fmt.Errorf("%s resource %d is an I/O port range: %w", desc, index, ErrAddressUnavailable)
	}
	path := filepath.Join(sb.devicePath(desc), fmt.Sprintf("resource%d", index))
	mem, err := mapFile(path, resource.Size)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, ErrAddressUnavailable)
	}
	return newWindow(mem, resource.Base(), unmapFile), nil
}
