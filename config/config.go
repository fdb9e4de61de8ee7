package config

import "github.com/fernandosanchezjr/goath9k/bus"

const (
	BusSysfs = "sysfs"
	BusSim   = "sim"

	DefaultCardType       = "ath9k"
	DefaultHealthSchedule = "@every 1m"
	DefaultLogLevel       = "info"
)

type Bus struct {
	Kind      string          `yaml:"kind,omitempty"`
	SysfsRoot string          `yaml:"sysfsRoot,omitempty"`
	Devices   []bus.SimDevice `yaml:"devices,omitempty"`
}

type Interface struct {
	Name string `yaml:"name"`
	Type string `yaml:"type,omitempty"`
	Port uint64 `yaml:"port,omitempty"`
}

type Config struct {
	Bus            Bus          `yaml:"bus"`
	Interfaces     []Interface  `yaml:"interfaces"`
	LogLevel       string       `yaml:"logLevel,omitempty"`
	ServerAddress  string       `yaml:"server,omitempty"`
	HTTPAddress    string       `yaml:"http,omitempty"`
	Journal        bool         `yaml:"journal,omitempty"`
	HealthSchedule string       `yaml:"healthSchedule,omitempty"`
	PowerControl   PowerControl `yaml:"powerControl,omitempty"`
}
