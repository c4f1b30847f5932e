package config

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := &Config{Dog: 10, Targets: TargetList{20, 30}}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Dog != os.Getppid() {
		t.Fatalf("expected dog to default to parent pid, got %d", cfg.Dog)
	}
	if cfg.Tick.Duration != DefaultTick || cfg.VengeanceDelay.Duration != DefaultVengeanceDelay {
		t.Fatalf("unexpected default durations %+v", cfg)
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Fatalf("unexpected log defaults %+v", cfg.Log)
	}

	explicit := &Config{Dog: 5, VengeanceDelay: Of(0)}
	explicit.ApplyDefaults()
	if explicit.Dog != 5 {
		t.Fatalf("explicit dog overwritten")
	}
	if explicit.VengeanceDelay.Duration != 0 {
		t.Fatalf("explicit zero delay overwritten with %s", explicit.VengeanceDelay.Duration)
	}
}

func TestValidateSuccess(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestValidateFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "dog", mutate: func(c *Config) { c.Dog = -1 }, want: "dog: pid must be positive"},
		{name: "no targets", mutate: func(c *Config) { c.Targets = nil }, want: "no valid targets"},
		{name: "bad target", mutate: func(c *Config) { c.Targets = TargetList{0} }, want: "targets[0]"},
		{name: "dog as target", mutate: func(c *Config) { c.Targets = TargetList{10} }, want: "dog itself"},
		{name: "tick", mutate: func(c *Config) { c.Tick = Of(0) }, want: "tick: must be positive"},
		{name: "delay", mutate: func(c *Config) { c.VengeanceDelay = Of(-time.Second) }, want: "vengeanceDelay"},
		{name: "format", mutate: func(c *Config) { c.Log.Format = "xml" }, want: "log.format"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("unexpected error: got %q want substring %q", err, tc.want)
			}
		})
	}

	cfg := validConfig()
	cfg.Targets = nil
	if err := cfg.Validate(); !errors.Is(err, ErrNoTargets) {
		t.Fatalf("expected ErrNoTargets, got %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	cfg := validConfig()
	cp := cfg.Clone()
	cp.Targets[0] = 99
	if cfg.Targets[0] == 99 {
		t.Fatalf("clone shares targets")
	}
}
