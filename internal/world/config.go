package world

import (
	"errors"
	"fmt"

	"github.com/talgya/assetworld/internal/agents"
	"github.com/talgya/assetworld/internal/grid"
)

// ErrConfiguration reports a configuration the world cannot be built from.
// It is raised before any state is created.
var ErrConfiguration = grid.ErrConfiguration

// AssetLayout selects how the initial assets are scattered.
type AssetLayout string

const (
	LayoutUniform AssetLayout = "uniform" // Every cell equally likely
	LayoutNoise   AssetLayout = "noise"   // Weighted by a simplex fertility field
)

// Config holds world construction and tick parameters.
type Config struct {
	Grid grid.Bounds `yaml:"grid"`

	InitialIndividuals int         `yaml:"initial_individuals"`
	InitialPopulations int         `yaml:"initial_populations"` // Number of population centers
	InitialAssets      int         `yaml:"initial_assets"`
	UniqueCenters      bool        `yaml:"unique_centers"`
	AssetLayout        AssetLayout `yaml:"asset_layout"`

	RegenerationCap  int     `yaml:"regeneration_cap"` // Per cell, per type
	RegenerationProb float64 `yaml:"regeneration_prob"`

	Agents agents.Params `yaml:"agents"`
}

// DefaultConfig returns a reasonable starting configuration.
func DefaultConfig() Config {
	return Config{
		Grid:               grid.Bounds{Width: 100, Height: 100},
		InitialIndividuals: 100,
		InitialPopulations: 10,
		InitialAssets:      1000,
		UniqueCenters:      true,
		AssetLayout:        LayoutUniform,
		RegenerationCap:    5,
		RegenerationProb:   0.1,
		Agents:             agents.DefaultParams(),
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() Config {
	cfg := DefaultConfig()
	cfg.Grid = grid.Bounds{Width: 10, Height: 10}
	cfg.InitialIndividuals = 20
	cfg.InitialPopulations = 3
	cfg.InitialAssets = 50
	return cfg
}

// Validate checks every field and reports all problems wrapped in
// ErrConfiguration.
func (c Config) Validate() error {
	var problems []error
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		problems = append(problems, fmt.Errorf("grid %dx%d must be positive", c.Grid.Width, c.Grid.Height))
	}
	if c.InitialIndividuals < 0 || c.InitialPopulations < 0 || c.InitialAssets < 0 {
		problems = append(problems, fmt.Errorf("initial counts must not be negative"))
	}
	if c.InitialIndividuals > 0 && c.InitialPopulations == 0 {
		problems = append(problems, fmt.Errorf("%d individuals need at least one population center", c.InitialIndividuals))
	}
	if c.UniqueCenters && c.InitialPopulations > c.Grid.Cells() {
		problems = append(problems, fmt.Errorf("%d unique population centers do not fit on %s",
			c.InitialPopulations, c.Grid))
	}
	switch c.AssetLayout {
	case LayoutUniform, LayoutNoise, "":
	default:
		problems = append(problems, fmt.Errorf("unknown asset layout %q", c.AssetLayout))
	}
	if c.RegenerationCap < 0 {
		problems = append(problems, fmt.Errorf("regeneration cap %d must not be negative", c.RegenerationCap))
	}
	if c.RegenerationProb < 0 || c.RegenerationProb > 1 {
		problems = append(problems, fmt.Errorf("regeneration probability %v outside [0, 1]", c.RegenerationProb))
	}
	if err := c.Agents.Validate(); err != nil {
		problems = append(problems, fmt.Errorf("agents: %w", err))
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrConfiguration, errors.Join(problems...))
}
