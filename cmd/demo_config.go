package cmd

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DemoConfig is the run configuration for `sydevs-sim run`: a set of
// defaults, optionally overridden by a YAML file (--config), optionally
// overridden again by any CLI flag the caller set explicitly — the same
// defaults-then-file-then-flags precedence the teacher's workload
// configuration follows.
type DemoConfig struct {
	DurationText string  `yaml:"duration"`
	Seed         int64   `yaml:"seed"`
	Rate         float64 `yaml:"rate"`
	LogLevel     string  `yaml:"log"`
}

func defaultDemoConfig() DemoConfig {
	return DemoConfig{DurationText: "5m", Seed: 0, Rate: 2, LogLevel: "info"}
}

func (c DemoConfig) duration() (time.Duration, error) {
	return time.ParseDuration(c.DurationText)
}

// mergeFile overlays the YAML document at path onto c, leaving any field the
// document omits at its current value. Uses strict field checking so a
// misspelled key in the config file fails loudly instead of being ignored.
func (c *DemoConfig) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}
