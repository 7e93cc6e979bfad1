// Package config loads CLI configuration from an optional YAML file.
package config

import (
	"os"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// Config is the CLI-facing configuration for a store.
type Config struct {
	// Dir is the directory containing the command log.
	Dir string `yaml:"dir"`
	// CompactAfter is the number of set operations before the log is
	// compacted.
	CompactAfter int `yaml:"compact_after"`
	// SyncWrites forces an fsync after every append.
	SyncWrites bool `yaml:"sync_writes"`
	// LogLevel is a logrus level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// Default returns the reference configuration: store in the current
// directory, compact after 100 sets.
func Default() Config {
	return Config{
		Dir:          ".",
		CompactAfter: 100,
		SyncWrites:   false,
		LogLevel:     "warn",
	}
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error; the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}
