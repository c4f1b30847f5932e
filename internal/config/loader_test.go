package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "procwick.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOG_DIR", "logs")

	path := writeConfig(t, dir, `dog: 4242
targets: [300, 100, 300]
tick: 2
vengeanceDelay: 750ms
log:
  level: debug
  file: ${LOG_DIR}/procwick.log
  format: json
metricsAddr: 127.0.0.1:9310
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Dog != 4242 {
		t.Fatalf("unexpected dog %d", cfg.Dog)
	}
	if !reflect.DeepEqual(cfg.Targets, TargetList{100, 300}) {
		t.Fatalf("unexpected targets %v", cfg.Targets)
	}
	if cfg.Tick.Duration != 2*time.Second || cfg.VengeanceDelay.Duration != 750*time.Millisecond {
		t.Fatalf("unexpected durations tick=%s delay=%s", cfg.Tick.Duration, cfg.VengeanceDelay.Duration)
	}
	if got, want := cfg.Log.File, filepath.Join(dir, "logs", "procwick.log"); got != want {
		t.Fatalf("log file not resolved against config dir: got %q want %q", got, want)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" || cfg.MetricsAddr != "127.0.0.1:9310" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "dog: 1\ntarget: [2]\n")
	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected unknown field error")
	}
	if !strings.Contains(err.Error(), "field target not found") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestApplyEnvOverridesFile(t *testing.T) {
	cfg := &Config{Dog: 1, Targets: TargetList{5}, Tick: Of(time.Second)}
	env := map[string]string{
		EnvDog:            "77",
		EnvTargets:        "9, 8,9",
		EnvVengeanceDelay: "0",
		EnvLogLevel:       "warn",
		EnvLogFormat:      "text",
		EnvMetricsAddr:    ":9400",
		EnvTick:           "  ",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	if err := ApplyEnv(cfg, lookup); err != nil {
		t.Fatalf("ApplyEnv returned error: %v", err)
	}
	if cfg.Dog != 77 || !reflect.DeepEqual(cfg.Targets, TargetList{8, 9}) {
		t.Fatalf("unexpected pids %+v", cfg)
	}
	if !cfg.VengeanceDelay.IsSet() || cfg.VengeanceDelay.Duration != 0 {
		t.Fatalf("explicit zero delay lost: %+v", cfg.VengeanceDelay)
	}
	if cfg.Tick.Duration != time.Second {
		t.Fatalf("blank env value must not override tick, got %s", cfg.Tick.Duration)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "text" || cfg.MetricsAddr != ":9400" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestApplyEnvErrors(t *testing.T) {
	cases := map[string]string{
		EnvDog:            "abc",
		EnvTargets:        "1,x",
		EnvTick:           "later",
		EnvVengeanceDelay: "forever",
	}
	for key, value := range cases {
		key, value := key, value
		t.Run(key, func(t *testing.T) {
			err := ApplyEnv(&Config{}, func(k string) (string, bool) {
				if k == key {
					return value, true
				}
				return "", false
			})
			if err == nil || !strings.Contains(err.Error(), key) {
				t.Fatalf("expected error naming %s, got %v", key, err)
			}
		})
	}

	err := ApplyEnv(&Config{}, func(k string) (string, bool) {
		if k == EnvTargets {
			return ",,", true
		}
		return "", false
	})
	if !errors.Is(err, ErrNoTargets) {
		t.Fatalf("expected ErrNoTargets, got %v", err)
	}
}

func TestLoadEnvFileKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	body := "PROCWICK_TEST_TICK=9\nPROCWICK_TEST_DOG=12\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("PROCWICK_TEST_DOG", "99")
	// Register for cleanup so the loaded value does not leak into other tests.
	t.Setenv("PROCWICK_TEST_TICK", "")
	os.Unsetenv("PROCWICK_TEST_TICK")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile returned error: %v", err)
	}
	if got := os.Getenv("PROCWICK_TEST_TICK"); got != "9" {
		t.Fatalf("expected tick from env file, got %q", got)
	}
	if got := os.Getenv("PROCWICK_TEST_DOG"); got != "99" {
		t.Fatalf("existing variable overwritten: %q", got)
	}

	if err := LoadEnvFile(filepath.Join(dir, "missing.env")); err == nil {
		t.Fatalf("expected error for missing env file")
	}
}
