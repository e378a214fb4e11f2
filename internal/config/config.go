// Package config loads a run configuration from YAML. Fields missing from
// the file keep their defaults.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/assetworld/internal/resolve"
	"github.com/talgya/assetworld/internal/world"
)

// Config is everything a run needs.
type Config struct {
	World    world.Config   `yaml:"world"`
	Resolver resolve.Params `yaml:"resolver"`
	Run      Run            `yaml:"run"`
}

// Run holds driver settings that do not affect the simulation itself,
// except Seed.
type Run struct {
	Seed        int64  `yaml:"seed"`      // 0 picks a random seed
	MaxTicks    uint64 `yaml:"max_ticks"` // 0 runs until extinction
	ReportEvery uint64 `yaml:"report_every"`
	Verify      bool   `yaml:"verify"`
	DBPath      string `yaml:"db_path"`    // Empty disables the run recorder
	TracePath   string `yaml:"trace_path"` // Empty disables the trace
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		World:    world.DefaultConfig(),
		Resolver: resolve.DefaultParams(),
		Run: Run{
			MaxTicks:    1000,
			ReportEvery: 10,
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the world and resolver sections.
func (c Config) Validate() error {
	return errors.Join(c.World.Validate(), c.Resolver.Validate())
}

// Marshal renders the configuration as YAML, for recording alongside a run.
func (c Config) Marshal() (string, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
