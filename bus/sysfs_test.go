package bus

import (
	"encoding/binary"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

type sysfsFixture struct {
	name     string
	vendor   string
	device   string
	class    string
	irq      string
	resource string
}

var ar9285Resource = "0x00000000f7e00000 0x00000000f7e0ffff 0x0000000000040200\n" +
	"0x0000000000000000 0x0000000000000000 0x0000000000000000\n" +
	"0x000000000000e000 0x000000000000e0ff 0x0000000000040101\n"

func writeFixture(t *testing.T, root string, f sysfsFixture) string {
	devPath := filepath.Join(root, f.name)
	if err := os.MkdirAll(filepath.Join(devPath, "power"), 0700); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"vendor":   f.vendor + "\n",
		"device":   f.device + "\n",
		"class":    f.class + "\n",
		"irq":      f.irq + "\n",
		"resource": f.resource,
		"config":   string(make([]byte, 64)),
	}
	for name, content := range files {
		if err := ioutil.WriteFile(filepath.Join(devPath, name), []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}
	return devPath
}

func TestSysfsBus_Enumerate(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, sysfsFixture{"0000:00:1f.0", "0x8086", "0x2918", "0x060100", "0", ar9285Resource})
	writeFixture(t, root, sysfsFixture{"0000:03:00.0", "0x168c", "0x002b", "0x028000", "17", ar9285Resource})
	if err := os.MkdirAll(filepath.Join(root, "not-a-device"), 0700); err != nil {
		t.Fatal(err)
	}
	devices, err := NewSysfsBus(root).Enumerate()
	if err != nil {
		t.Fatal(err)
	}
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}
	ath := devices[1]
	if ath.Vendor != 0x168c || ath.Device != 0x002b {
		t.Fatalf("unexpected ids %s", ath)
	}
	if ath.Class != ClassNetwork || ath.SubClass != 0x80 {
		t.Fatalf("unexpected class %#x/%#x", ath.Class, ath.SubClass)
	}
	if ath.InterruptLine != 17 {
		t.Fatalf("unexpected irq %d", ath.InterruptLine)
	}
	if ath.BusTag != ath.Address.Tag() {
		t.Fatalf("bus tag %s does not match address %s", ath.BusTag, ath.Address)
	}
	if len(ath.Resources) != 3 {
		t.Fatalf("expected 3 resources, got %d", len(ath.Resources))
	}
	if ath.Resources[0].Base() != 0xf7e00000 || ath.Resources[0].Size != 0x10000 || ath.Resources[0].IsIO() ||
		ath.Resources[0].Prefetchable() {
		t.Fatalf("unexpected memory resource %+v", ath.Resources[0])
	}
	if !ath.Resources[2].IsIO() || ath.Resources[2].Base() != 0xe000 {
		t.Fatalf("unexpected io resource %+v", ath.Resources[2])
	}
	if _, err := ath.Resource(1); err == nil {
		t.Fatal("empty resource should not be usable")
	}
}

func TestSysfsBus_EnableBusMaster(t *testing.T) {
	root := t.TempDir()
	devPath := writeFixture(t, root, sysfsFixture{"0000:03:00.0", "0x168c", "0x002b", "0x028000", "17", ar9285Resource})
	sb := NewSysfsBus(root)
	desc := &DeviceDescriptor{Address: Address{Bus: 3}}
	if err := sb.EnableBusMaster(desc); err != nil {
		t.Fatal(err)
	}
	config, err := ioutil.ReadFile(filepath.Join(devPath, "config"))
	if err != nil {
		t.Fatal(err)
	}
	if command := binary.LittleEndian.Uint16(config[configCommand:]); command != commandBusMaster|commandMemorySpace {
		t.Fatalf("unexpected command register %#x", command)
	}
	if err := sb.SetPowerState(desc, D0); err != nil {
		t.Fatal(err)
	}
	if control, err := readSysfsString(filepath.Join(devPath, "power", "control")); err != nil || control != "on" {
		t.Fatalf("unexpected power control %q: %v", control, err)
	}
}

func TestSysfsBus_MapResource(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("register mapping requires linux")
	}
	root := t.TempDir()
	devPath := writeFixture(t, root, sysfsFixture{"0000:03:00.0", "0x168c", "0x002b", "0x028000", "17",
		"0x00000000f7e00000 0x00000000f7e00fff 0x0000000000040200\n"})
	if err := ioutil.WriteFile(filepath.Join(devPath, "resource0"), make([]byte, 4096), 0600); err != nil {
		t.Fatal(err)
	}
	sb := NewSysfsBus(root)
	devices, err := sb.Enumerate()
	if err != nil {
		t.Fatal(err)
	}
	regs, err := sb.MapResource(devices[0], 0)
	if err != nil {
		t.Fatal(err)
	}
	if regs.Base() != 0xf7e00000 || regs.Size() != 4096 {
		t.Fatalf("unexpected window %#x/%d", regs.Base(), regs.Size())
	}
	regs.Write32(0x0c, 0xdeadbeef)
	if value := regs.Read32(0x0c); value != 0xdeadbeef {
		t.Fatalf("unexpected read back %#x", value)
	}
	if err := regs.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := ioutil.ReadFile(filepath.Join(devPath, "resource0"))
	if err != nil {
		t.Fatal(err)
	}
	if value := binary.LittleEndian.Uint32(data[0x0c:]); value != 0xdeadbeef {
		t.Fatalf("write did not reach the window: %#x", value)
	}
	if _, err := sb.MapResource(devices[0], 2); !errors.Is(err, ErrAddressUnavailable) {
		t.Fatalf("expected ErrAddressUnavailable, got %v", err)
	}
}
