package governor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fernandosanchezjr/goath9k/bus"
	"github.com/fernandosanchezjr/goath9k/config"
	"github.com/fernandosanchezjr/goath9k/devices/base"
	"github.com/fernandosanchezjr/goath9k/storage"
	"github.com/fernandosanchezjr/goath9k/utils"
	"github.com/sirupsen/logrus"
)

const testConfig = `
bus:
  kind: sim
  devices:
    - address: "0000:03:00.0"
      vendor: 0x168c
      device: 0x002b
      class: 2
      bar: 0xf7e00000
      size: 0x10000
      irq: 17
    - address: "0000:04:00.0"
      vendor: 0x168c
      device: 0x002b
      class: 2
      bar: 0xf7d00000
      size: 0x10000
      irq: 18
      failMap: true
    - address: "0000:05:00.0"
      vendor: 0x168c
      device: 0x002b
      class: 2
      bar: 0xf7c00000
      size: 0x10000
      irq: 19
interfaces:
  - name: ether0
  - name: ether1
  - name: ether2
journal: true
`

func newTestGovernor(t *testing.T) *Governor {
	utils.SetHomeFolder(t.TempDir())
	cfg, err := config.Parse([]byte(testConfig))
	if err != nil {
		t.Fatal(err)
	}
	g, err := NewGovernor(cfg, "")
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestGovernor_StartStop(t *testing.T) {
	g := newTestGovernor(t)
	if err := g.Start(); err != nil {
		t.Fatal(err)
	}
	if g.Registry.Len() != 2 {
		t.Fatalf("expected 2 mapped controllers, got %d", g.Registry.Len())
	}
	bindings := g.Bindings()
	if len(bindings) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(bindings))
	}
	bound := 0
	for _, edev := range g.Interfaces() {
		if edev.Bound() {
			bound++
		}
	}
	if bound != 2 {
		t.Fatalf("expected 2 bound interfaces, got %d", bound)
	}
	for _, binding := range bindings {
		if !binding.Ctlr.Enabled() || !binding.Ctlr.Attached() {
			t.Fatalf("%s not up", binding.Ctlr)
		}
	}
	g.HealthReport()
	g.Stop()
	for _, ctlr := range g.Registry.Controllers() {
		if ctlr.State() != base.Unbound || ctlr.Claimed() {
			t.Fatalf("%s left %s", ctlr, ctlr.State())
		}
	}
	journal, err := storage.OpenJournal(storage.GetDBPath())
	if err != nil {
		t.Fatal(err)
	}
	defer journal.Close()
	records, err := journal.Bindings()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 journaled bindings, got %d", len(records))
	}
	for _, record := range records {
		if record.Live() {
			t.Fatalf("binding %s not released", record.ID)
		}
	}
	controllers, err := journal.Controllers()
	if err != nil {
		t.Fatal(err)
	}
	if len(controllers) != 2 {
		t.Fatalf("expected 2 journaled controllers, got %d", len(controllers))
	}
}

func TestGovernor_BadSchedule(t *testing.T) {
	g := newTestGovernor(t)
	g.Config.Journal = false
	g.Config.HealthSchedule = "not a schedule"
	if err := g.Start(); err == nil {
		t.Fatal("expected schedule error")
	}
	g.Stop()
}

func TestGovernor_ReloadConfig(t *testing.T) {
	g := newTestGovernor(t)
	g.ConfigPath = filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(g.ConfigPath, []byte(testConfig+"logLevel: warn\n"), 0600); err != nil {
		t.Fatal(err)
	}
	level := logrus.GetLevel()
	defer logrus.SetLevel(level)
	g.reloadConfig()
	if logrus.GetLevel() != logrus.WarnLevel {
		t.Fatalf("expected warn level, got %s", logrus.GetLevel())
	}
}

func TestNewBus(t *testing.T) {
	if b, err := NewBus(&config.Config{Bus: config.Bus{Kind: config.BusSim}}); err != nil {
		t.Fatal(err)
	} else if _, ok := b.(*bus.SimBus); !ok {
		t.Fatalf("unexpected bus %T", b)
	}
	if _, err := NewBus(&config.Config{Bus: config.Bus{Kind: "isa"}}); err == nil {
		t.Fatal("expected error")
	}
}
