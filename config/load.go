package config

import (
	"flag"
	"fmt"
	"gopkg.in/yaml.v2"
	"io/ioutil"
	"log"
	"os"
	"path"
)

var configPath string

func init() {
	configFolder := getOrCreateConfigFolder()
	defaultConfigPath := path.Join(configFolder, "config.yaml")
	flag.StringVar(&configPath, "config", defaultConfigPath, "specify config file")
}

func getOrCreateConfigFolder() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Println("could not find home folder")
		return ""
	}
	configFolder := path.Join(home, ".goath9k")
	if err := os.MkdirAll(configFolder, 0700); err != nil {
		log.Println("Could not create", configFolder)
		return ""
	}
	return configFolder
}

func Path() string {
	return configPath
}

func LoadConfig() (*Config, error) {
	return LoadConfigFile(configPath)
}

func LoadConfigFile(filePath string) (*Config, error) {
	var data []byte
	var err error
	if data, err = ioutil.ReadFile(filePath); err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Bus.Kind == "" {
		c.Bus.Kind = BusSysfs
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.HealthSchedule == "" {
		c.HealthSchedule = DefaultHealthSchedule
	}
	for i := range c.Interfaces {
		if c.Interfaces[i].Type == "" {
			c.Interfaces[i].Type = DefaultCardType
		}
		if c.Interfaces[i].Name == "" {
			c.Interfaces[i].Name = fmt.Sprintf("ether%d", i)
		}
	}
}

func (c *Config) Validate() error {
	switch c.Bus.Kind {
	case BusSysfs, BusSim:
	default:
		return fmt.Errorf("unknown bus kind %q", c.Bus.Kind)
	}
	if len(c.Interfaces) == 0 {
		return fmt.Errorf("no interfaces configured")
	}
	names := map[string]bool{}
	for _, iface := range c.Interfaces {
		if names[iface.Name] {
			return fmt.Errorf("interface %s configured twice", iface.Name)
		}
		names[iface.Name] = true
	}
	return nil
}
