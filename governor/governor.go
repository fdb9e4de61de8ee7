package governor

import (
	"fmt"
	"sync"
	"time"

	"github.com/fernandosanchezjr/goath9k/bus"
	"github.com/fernandosanchezjr/goath9k/config"
	"github.com/fernandosanchezjr/goath9k/devices/atheros"
	"github.com/fernandosanchezjr/goath9k/devices/base"
	"github.com/fernandosanchezjr/goath9k/ether"
	"github.com/fernandosanchezjr/goath9k/logging"
	"github.com/fernandosanchezjr/goath9k/networking/server"
	"github.com/fernandosanchezjr/goath9k/networking/services"
	"github.com/fernandosanchezjr/goath9k/networking/web"
	"github.com/fernandosanchezjr/goath9k/power"
	"github.com/fernandosanchezjr/goath9k/storage"
	"github.com/fernandosanchezjr/goath9k/utils"
	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/gorpc"
)

type Governor struct {
	Config     *config.Config
	ConfigPath string
	Bus        bus.IBus
	Registry   *base.Registry
	Catalog    *atheros.Catalog
	Binder     *base.Binder
	Cards      *ether.CardTable
	Power      *power.Switch
	Journal    *storage.Journal
	Status     *services.Status

	mtx        sync.Mutex
	interfaces []*ether.Ether
	bindings   []*base.Binding
	rpc        *gorpc.Server
	web        *web.Service
	cron       *cron.Cron
	watcher    *fsnotify.Watcher
}

func NewBus(cfg *config.Config) (bus.IBus, error) {
	switch cfg.Bus.Kind {
	case config.BusSim:
		return bus.NewSimBus(cfg.Bus.Devices...), nil
	case config.BusSysfs:
		return bus.NewSysfsBus(cfg.Bus.SysfsRoot), nil
	}
	return nil, fmt.Errorf("unknown bus kind %q", cfg.Bus.Kind)
}

func NewGovernor(cfg *config.Config, configPath string) (*Governor, error) {
	b, err := NewBus(cfg)
	if err != nil {
		return nil, err
	}
	mapper := bus.NewMapper(b)
	registry := base.NewRegistry()
	catalog := atheros.NewCatalog(b, mapper)
	binder := base.NewBinder(registry, catalog, mapper)
	cards := ether.NewCardTable()
	atheros.Link(cards, binder)
	return &Governor{
		Config:     cfg,
		ConfigPath: configPath,
		Bus:        b,
		Registry:   registry,
		Catalog:    catalog,
		Binder:     binder,
		Cards:      cards,
		Power:      power.NewSwitch(cfg.PowerControl),
	}, nil
}

func (g *Governor) Start() error {
	if err := g.Power.PowerOn(); err != nil {
		return err
	}
	if g.Config.Journal {
		journal, err := storage.OpenJournal(storage.GetDBPath())
		if err != nil {
			return err
		}
		g.Journal = journal
	}
	found := g.Registry.Populate(g.Catalog)
	log.WithFields(log.Fields{
		"bus":         g.Bus.String(),
		"controllers": found,
	}).Infoln("Bus scanned")
	g.recordControllers()
	g.bringUp()
	g.Status = services.NewStatus(g.Binder, g.Journal)
	if err := g.startServers(); err != nil {
		return err
	}
	if err := g.startHealthReport(); err != nil {
		return err
	}
	if g.ConfigPath != "" {
		watcher, err := utils.NewFileWatcher(g.ConfigPath, g.reloadConfig)
		if err != nil {
			log.WithFields(log.Fields{
				"path":  g.ConfigPath,
				"error": err,
			}).Warnln("Config reload disabled")
		} else {
			g.watcher = watcher
		}
	}
	return nil
}

func (g *Governor) recordControllers() {
	if g.Journal == nil {
		return
	}
	now := time.Now()
	var records []storage.ControllerRecord
	for _, status := range g.Registry.Status() {
		records = append(records, storage.ControllerRecord{
			Address: status.Address,
			Vendor:  status.Vendor,
			Device:  status.Device,
			Driver:  status.Driver,
			Port:    status.Port,
			IRQ:     status.IRQ,
			SeenAt:  now,
		})
	}
	if err := g.Journal.RecordControllers(records); err != nil {
		log.WithError(err).Warnln("Could not journal controllers")
	}
}

// bringUp probes every configured interface concurrently. Interfaces that
// find no controller are logged and left down.
func (g *Governor) bringUp() {
	var wg sync.WaitGroup
	interfaces := make([]*ether.Ether, len(g.Config.Interfaces))
	for i, iface := range g.Config.Interfaces {
		interfaces[i] = ether.NewEther(iface.Name, iface.Type, iface.Port)
		wg.Add(1)
		go func(edev *ether.Ether) {
			defer wg.Done()
			if err := g.Cards.Probe(edev); err != nil {
				log.WithFields(log.Fields{
					"interface": edev.Name,
					"error":     err,
				}).Warnln("Interface not bound")
			}
		}(interfaces[i])
	}
	wg.Wait()
	g.mtx.Lock()
	defer g.mtx.Unlock()
	g.interfaces = interfaces
	for _, edev := range interfaces {
		binding, found := g.Binder.Lookup(edev)
		if !found {
			continue
		}
		g.bindings = append(g.bindings, binding)
		if err := binding.Ctlr.Attach(); err != nil {
			log.WithFields(log.Fields{
				"interface": edev.Name,
				"error":     err,
			}).Warnln("Attach failed")
		}
		log.WithFields(log.Fields{
			"interface": edev.String(),
			"rate":      utils.Rate(edev.Mbps).String(),
		}).Infoln("Interface up")
		g.recordBinding(binding)
	}
}

func (g *Governor) recordBinding(binding *base.Binding) {
	if g.Journal == nil {
		return
	}
	record := &storage.BindingRecord{
		ID:         binding.ID,
		Interface:  binding.Ether.Name,
		Controller: binding.Ctlr.Descriptor().Address.String(),
		Port:       fmt.Sprintf("%#x", binding.Ctlr.Port()),
		BoundAt:    binding.Since,
	}
	if err := g.Journal.RecordBinding(record); err != nil {
		log.WithFields(log.Fields{
			"binding": binding.ID,
			"error":   err,
		}).Warnln("Could not journal binding")
	}
}

func (g *Governor) startServers() error {
	if g.Config.ServerAddress != "" {
		registry := services.NewRegistry()
		registry.AddService(services.StatusService, g.Status)
		g.rpc = server.NewServer(g.Config.ServerAddress, registry)
		if err := g.rpc.Start(); err != nil {
			return fmt.Errorf("rpc server: %w", err)
		}
	}
	if g.Config.HTTPAddress != "" {
		g.web = web.NewService(g.Config.HTTPAddress, g.Status)
		g.web.Start()
	}
	return nil
}

func (g *Governor) startHealthReport() error {
	g.cron = cron.New()
	if _, err := g.cron.AddFunc(g.Config.HealthSchedule, g.HealthReport); err != nil {
		return fmt.Errorf("health schedule %q: %w", g.Config.HealthSchedule, err)
	}
	g.cron.Start()
	return nil
}

// HealthReport logs one line per controller.
func (g *Governor) HealthReport() {
	for _, status := range g.Registry.Status() {
		fields := log.Fields{
			"controller": status.Address,
			"state":      status.State,
			"interrupts": status.Interrupts,
			"spurious":   status.Spurious,
		}
		if status.Owner != "" {
			fields["binding"] = status.Owner
		}
		log.WithFields(fields).Infoln("Health")
	}
}

func (g *Governor) reloadConfig() {
	cfg, err := config.LoadConfigFile(g.ConfigPath)
	if err != nil {
		log.WithFields(log.Fields{
			"path":  g.ConfigPath,
			"error": err,
		}).Warnln("Config reload failed")
		return
	}
	logging.SetLevel(cfg.LogLevel)
}

func (g *Governor) Interfaces() []*ether.Ether {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	return append([]*ether.Ether{}, g.interfaces...)
}

func (g *Governor) Bindings() []*base.Binding {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	return append([]*base.Binding{}, g.bindings...)
}

// Stop tears down in reverse order of Start.
func (g *Governor) Stop() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	if g.cron != nil {
		<-g.cron.Stop().Done()
	}
	if g.web != nil {
		if err := g.web.Stop(); err != nil {
			log.WithError(err).Warnln("HTTP status server shutdown")
		}
	}
	if g.rpc != nil {
		g.rpc.Stop()
	}
	g.mtx.Lock()
	bindings := g.bindings
	g.bindings = nil
	g.mtx.Unlock()
	for i := len(bindings) - 1; i >= 0; i-- {
		binding := bindings[i]
		if err := g.Binder.Release(binding); err != nil {
			log.WithFields(log.Fields{
				"interface": binding.Ether.Name,
				"error":     err,
			}).Warnln("Error shutting down")
		}
		if g.Journal != nil {
			if err := g.Journal.RecordRelease(binding.ID, time.Now()); err != nil {
				log.WithFields(log.Fields{
					"binding": binding.ID,
					"error":   err,
				}).Warnln("Could not journal release")
			}
		}
	}
	if g.Journal != nil {
		if err := g.Journal.Close(); err != nil {
			log.WithError(err).Warnln("Error closing journal")
		}
		g.Journal = nil
	}
	if err := g.Power.PowerOff(); err != nil {
		log.WithError(err).Warnln("Error powering off slot")
	}
}
