package bus

import (
	"errors"
	"testing"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		input    string
		expected Address
		fail     bool
	}{
		{"0000:03:00.0", Address{Bus: 3}, false},
		{"0001:0a:1f.7", Address{Domain: 1, Bus: 0x0a, Slot: 0x1f, Function: 7}, false},
		{"03:00.0", Address{Bus: 3}, false},
		{"0000:03:20.0", Address{}, true},
		{"garbage", Address{}, true},
	}
	for _, tt := range tests {
		got, err := ParseAddress(tt.input)
		if tt.fail {
			if err == nil {
				t.Errorf("ParseAddress(%q) should fail", tt.input)
			}
			continue
		}
		if err != nil || got != tt.expected {
			t.Errorf("ParseAddress(%q) = %v, %v, want %v", tt.input, got, err, tt.expected)
		}
	}
	if s := (Address{Bus: 3}).String(); s != "0000:03:00.0" {
		t.Errorf("unexpected address string %q", s)
	}
}

func TestMapper_Map(t *testing.T) {
	sb := NewSimBus(SimDevice{Address: "0000:03:00.0", Vendor: 0x168c, Device: 0x002b, Class: ClassNetwork,
		Bar: 0xf7e00004, Size: 0x10000, IRQ: 17})
	devices, err := sb.Enumerate()
	if err != nil {
		t.Fatal(err)
	}
	regs, err := NewMapper(sb).Map(devices[0])
	if err != nil {
		t.Fatal(err)
	}
	defer regs.Close()
	if !sb.BusMaster(devices[0].Address) {
		t.Fatal("bus mastering not enabled before mapping")
	}
	if state, found := sb.PowerState(devices[0].Address); !found || state != D0 {
		t.Fatalf("unexpected power state %s", state)
	}
	if regs.Base() != 0xf7e00000 {
		t.Fatalf("flag bits leaked into base %#x", regs.Base())
	}
	regs.Write32(0x08, 0xffffffff)
	if regs.Read32(0x08) != 0xffffffff {
		t.Fatal("register write lost")
	}
}

func TestMapper_MapFailure(t *testing.T) {
	sb := NewSimBus(SimDevice{Address: "0000:03:00.0", Vendor: 0x168c, Device: 0x002b, Class: ClassNetwork,
		Bar: 0xf7e00000, Size: 0x10000, FailMap: true})
	devices, err := sb.Enumerate()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewMapper(sb).Map(devices[0]); !errors.Is(err, ErrAddressUnavailable) {
		t.Fatalf("expected ErrAddressUnavailable, got %v", err)
	}
	if sb.Mappings(devices[0].Address) != 0 {
		t.Fatal("failed mapping was counted")
	}
}

type powerlessBus struct {
	*SimBus
}

func (pb powerlessBus) SetPowerState(desc *DeviceDescriptor, state PowerState) error {
	return errors.New("device stuck in D3cold")
}

func TestMapper_SetupFailure(t *testing.T) {
	sb := NewSimBus(SimDevice{Address: "0000:03:00.0", Vendor: 0x168c, Device: 0x002b, Class: ClassNetwork,
		Bar: 0xf7e00000, Size: 0x10000})
	devices, err := sb.Enumerate()
	if err != nil {
		t.Fatal(err)
	}
	missing := &DeviceDescriptor{Address: Address{Bus: 9}, Resources: devices[0].Resources}
	if _, err := NewMapper(sb).Map(missing); !errors.Is(err, ErrAddressUnavailable) {
		t.Fatalf("bus master failure: expected ErrAddressUnavailable, got %v", err)
	}
	if _, err := NewMapper(powerlessBus{sb}).Map(devices[0]); !errors.Is(err, ErrAddressUnavailable) {
		t.Fatalf("power failure: expected ErrAddressUnavailable, got %v", err)
	}
	if sb.Mappings(devices[0].Address) != 0 {
		t.Fatal("window mapped after a setup failure")
	}
}

func TestWindow_Close(t *testing.T) {
	w := newMemoryWindow(0x1000, 0x20)
	w.Write32(0x10, 1)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if value := w.Read32(0x10); value != absentRead {
		t.Fatalf("closed window read %#x", value)
	}
	w.Write32(0x10, 2)
	if err := w.Close(); err != nil {
		t.Fatal("second close should be a no-op:", err)
	}
}
