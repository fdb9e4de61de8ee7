package config

import "time"

// PowerControl drives the GPIO line that gates power to the card slot.
type PowerControl struct {
	Enabled bool          `yaml:"enabled,omitempty"`
	Pin     int           `yaml:"pin,omitempty"`
	High    bool          `yaml:"high,omitempty"`
	Settle  time.Duration `yaml:"settle,omitempty"`
}
