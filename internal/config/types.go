package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration for YAML and flag parsing. Bare numbers are
// read as seconds so "5" and "5s" mean the same thing.
type Duration struct {
	time.Duration
	explicit bool
}

// ParseDuration accepts Go duration syntax or a plain number of seconds.
func ParseDuration(text string) (time.Duration, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(text, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			return 0, fmt.Errorf("invalid duration %q", text)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	dur, err := time.ParseDuration(text)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", text, err)
	}
	return dur, nil
}

// UnmarshalText parses a textual duration, accepting empty strings.
func (d *Duration) UnmarshalText(text []byte) error {
	dur, err := ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = dur
	d.explicit = true
	return nil
}

// MarshalText renders the duration using time.Duration formatting.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// IsSet reports whether the duration was explicitly provided or non-zero.
func (d Duration) IsSet() bool {
	return d.explicit || d.Duration != 0
}

// Set implements pflag.Value.
func (d *Duration) Set(value string) error {
	return d.UnmarshalText([]byte(value))
}

// Type implements pflag.Value.
func (d *Duration) Type() string {
	return "duration"
}

// Of returns an explicitly set Duration.
func Of(d time.Duration) Duration {
	return Duration{Duration: d, explicit: true}
}

// TargetList is a de-duplicated, ascending list of target pids. In YAML it can
// be written as a sequence, a single pid or a comma-separated string.
type TargetList []int

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *TargetList) UnmarshalYAML(value *yaml.Node) error {
	var tokens []string
	switch value.Kind {
	case yaml.ScalarNode:
		tokens = []string{value.Value}
	case yaml.SequenceNode:
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: targets entries must be scalars", item.Line)
			}
			tokens = append(tokens, item.Value)
		}
	default:
		return fmt.Errorf("line %d: targets must be a list or a comma-separated string", value.Line)
	}
	pids, err := ParseTargets(tokens...)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*l = pids
	return nil
}

// Config is the resolved watchdog configuration.
type Config struct {
	// Dog is the guardian pid. Zero means the watchdog's parent.
	Dog            int        `yaml:"dog"`
	Targets        TargetList `yaml:"targets"`
	Tick           Duration   `yaml:"tick"`
	VengeanceDelay Duration   `yaml:"vengeanceDelay"`
	Log            LogSpec    `yaml:"log"`
	MetricsAddr    string     `yaml:"metricsAddr"`
}

// LogSpec configures the logger.
type LogSpec struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Targets = append(TargetList(nil), c.Targets...)
	return &cp
}
