package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"
)

const sampleConfig = `
bus:
  kind: sim
  devices:
    - address: "0000:03:00.0"
      vendor: 0x168c
      device: 0x002b
      class: 2
      bar: 0xf7e00000
      size: 65536
      irq: 17
interfaces:
  - name: ether0
  - port: 0xf7e00000
    type: ath9k
server: 127.0.0.1:12000
journal: true
powerControl:
  enabled: true
  pin: 17
  high: true
  settle: 250ms
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatal(err)
	}
	if c.Bus.Kind != BusSim || len(c.Bus.Devices) != 1 {
		t.Fatalf("unexpected bus %+v", c.Bus)
	}
	d := c.Bus.Devices[0]
	if d.Vendor != 0x168c || d.Device != 0x002b || d.Bar != 0xf7e00000 || d.IRQ != 17 {
		t.Fatalf("unexpected device %+v", d)
	}
	if len(c.Interfaces) != 2 || c.Interfaces[0].Type != DefaultCardType || c.Interfaces[1].Name != "ether1" {
		t.Fatalf("defaults not applied %+v", c.Interfaces)
	}
	if c.Interfaces[1].Port != 0xf7e00000 {
		t.Fatalf("unexpected port %#x", c.Interfaces[1].Port)
	}
	if c.LogLevel != DefaultLogLevel || c.HealthSchedule != DefaultHealthSchedule {
		t.Fatalf("defaults not applied %+v", c)
	}
	if !c.Journal || !c.PowerControl.Enabled || c.PowerControl.Pin != 17 ||
		c.PowerControl.Settle != 250*time.Millisecond {
		t.Fatalf("unexpected options %+v", c)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"bus kind":   "bus:\n  kind: usb\ninterfaces:\n  - name: ether0\n",
		"interfaces": "bus:\n  kind: sim\n",
		"duplicate":  "interfaces:\n  - name: ether0\n  - name: ether0\n",
		"yaml":       "interfaces: [",
	}
	for name, data := range tests {
		if _, err := Parse([]byte(data)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "config.yaml")
	if err := ioutil.WriteFile(filePath, []byte(sampleConfig), 0600); err != nil {
		t.Fatal(err)
	}
	c, err := LoadConfigFile(filePath)
	if err != nil {
		t.Fatal(err)
	}
	t.Log(c)
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
