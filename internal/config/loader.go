package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvDog            = "PROCWICK_DOG"
	EnvTargets        = "PROCWICK_TARGETS"
	EnvVengeanceDelay = "PROCWICK_VENGEANCE_DELAY"
	EnvTick           = "PROCWICK_TICK"
	EnvLogLevel       = "PROCWICK_LOG_LEVEL"
	EnvLogFile        = "PROCWICK_LOG_FILE"
	EnvLogFormat      = "PROCWICK_LOG_FORMAT"
	EnvMetricsAddr    = "PROCWICK_METRICS_ADDR"
)

// Load reads a watchdog config file from the provided path. Unknown keys are
// rejected. Defaults are not applied.
func Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	var doc Config
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", absPath, err)
	}
	doc.Log.File = expandPath(filepath.Dir(absPath), doc.Log.File)
	return &doc, nil
}

// LoadEnvFile loads a dotenv file into the process environment. Variables
// already set are left alone.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays PROCWICK_* variables found through lookup onto cfg.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		value, ok := lookup(key)
		if !ok {
			return "", false
		}
		value = strings.TrimSpace(value)
		return value, value != ""
	}

	if value, ok := get(EnvDog); ok {
		dog, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: invalid pid %q", EnvDog, value)
		}
		cfg.Dog = dog
	}
	if value, ok := get(EnvTargets); ok {
		pids, err := ParseTargets(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTargets, err)
		}
		cfg.Targets = pids
	}
	if value, ok := get(EnvVengeanceDelay); ok {
		if err := cfg.VengeanceDelay.Set(value); err != nil {
			return fmt.Errorf("%s: %w", EnvVengeanceDelay, err)
		}
	}
	if value, ok := get(EnvTick); ok {
		if err := cfg.Tick.Set(value); err != nil {
			return fmt.Errorf("%s: %w", EnvTick, err)
		}
	}
	if value, ok := get(EnvLogLevel); ok {
		cfg.Log.Level = value
	}
	if value, ok := get(EnvLogFile); ok {
		cfg.Log.File = value
	}
	if value, ok := get(EnvLogFormat); ok {
		cfg.Log.Format = value
	}
	if value, ok := get(EnvMetricsAddr); ok {
		cfg.MetricsAddr = value
	}
	return nil
}

func expandPath(base, path string) string {
	path = os.ExpandEnv(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Clean(filepath.Join(base, path))
}
