package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// LiveTable holds the persisted application settings.
type LiveTable struct {
	RefreshRate    float32 `yaml:"refreshRate"`
	DefaultProfile string  `yaml:"defaultProfile"`
	Headless       bool    `yaml:"headless"`
	ResetPaging    bool    `yaml:"resetPaging"`
}

// DefaultRefreshRate is the default polling cadence in seconds.
const DefaultRefreshRate = 2.0

// NewLiveTable creates settings with defaults applied.
func NewLiveTable() *LiveTable {
	return &LiveTable{
		RefreshRate: DefaultRefreshRate,
	}
}

// Validate ensures the settings are sane.
func (l *LiveTable) Validate() {
	if l.RefreshRate <= 0 {
		l.RefreshRate = DefaultRefreshRate
	}
}

// Override applies CLI flag values over the loaded settings.
func (l *LiveTable) Override(f *Flags) {
	if f.RefreshRate != nil && *f.RefreshRate > 0 {
		l.RefreshRate = *f.RefreshRate
	}
	if IsStringSet(f.Profile) {
		l.DefaultProfile = *f.Profile
	}
	if IsBoolSet(f.Headless) {
		l.Headless = true
	}
	if IsBoolSet(f.ResetPaging) {
		l.ResetPaging = true
	}
}

// Config is the root configuration for the application.
type Config struct {
	LiveTable *LiveTable `yaml:"livetable"`
	mx        sync.RWMutex
}

// NewConfig creates a new Config with defaults.
func NewConfig() *Config {
	return &Config{
		LiveTable: NewLiveTable(),
	}
}

// Load loads the configuration from the given path.
// If the file doesn't exist, the current config is kept.
func (c *Config) Load(path string, force bool) error {
	c.mx.Lock()
	defer c.mx.Unlock()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if !force {
			return nil
		}
		return fmt.Errorf("config file does not exist: %s", path)
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config from %s: %w", path, err)
	}
	if err := yaml.Unmarshal(bytes, c); err != nil {
		return fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if c.LiveTable == nil {
		c.LiveTable = NewLiveTable()
	}
	c.LiveTable.Validate()
	return nil
}

// Save writes the configuration to the given path.
func (c *Config) Save(path string) error {
	c.mx.RLock()
	defer c.mx.RUnlock()

	bytes, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	return os.WriteFile(path, bytes, 0600)
}
