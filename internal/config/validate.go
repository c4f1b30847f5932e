package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

// Default values applied by ApplyDefaults.
const (
	DefaultTick           = 3 * time.Second
	DefaultVengeanceDelay = 5 * time.Second
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "auto"
)

var logFormats = []string{"auto", "text", "json"}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in unset fields. A zero Dog becomes the parent of the
// current process.
func (c *Config) ApplyDefaults() {
	if c.Dog == 0 {
		c.Dog = os.Getppid()
	}
	if !c.Tick.IsSet() {
		c.Tick = Of(DefaultTick)
	}
	if !c.VengeanceDelay.IsSet() {
		c.VengeanceDelay = Of(DefaultVengeanceDelay)
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

// Validate ensures the configuration can drive a watch.
func (c *Config) Validate() error {
	if c.Dog <= 0 {
		return fmt.Errorf("dog: pid must be positive, got %d", c.Dog)
	}
	if len(c.Targets) == 0 {
		return fmt.Errorf("targets: %w", ErrNoTargets)
	}
	for idx, pid := range c.Targets {
		if pid <= 0 {
			return fmt.Errorf("targets[%d]: %w: %d", idx, ErrInvalidTarget, pid)
		}
		if pid == c.Dog {
			return fmt.Errorf("targets[%d]: pid %d is the dog itself", idx, pid)
		}
	}
	if c.Tick.Duration <= 0 {
		return fmt.Errorf("tick: must be positive, got %s", c.Tick.Duration)
	}
	if c.VengeanceDelay.Duration < 0 {
		return fmt.Errorf("vengeanceDelay: must not be negative, got %s", c.VengeanceDelay.Duration)
	}
	if c.Log.Format != "" && !slices.Contains(logFormats, strings.ToLower(c.Log.Format)) {
		return fmt.Errorf("log.format: must be one of %s, got %q", strings.Join(logFormats, ", "), c.Log.Format)
	}
	return nil
}
