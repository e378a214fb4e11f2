// Package world owns the spatial state of the simulation (who stands where
// and which assets lie on each cell) and runs the per-tick pipeline.
package world

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/talgya/assetworld/internal/agents"
	"github.com/talgya/assetworld/internal/assets"
	"github.com/talgya/assetworld/internal/entropy"
	"github.com/talgya/assetworld/internal/grid"
)

// cell is one grid position in the arena. The site is created on first use.
type cell struct {
	individuals []*agents.Individual
	site        *assets.Site
}

// World holds the complete simulation state.
type World struct {
	cfg     Config
	bounds  grid.Bounds
	rng     entropy.Source
	spawner *agents.Spawner

	cells []cell // Indexed by bounds.Index
	tick  uint64
	last  TickStats
}

// New builds a world from cfg. The configuration is validated before any
// state is created.
func New(cfg Config, rng entropy.Source) (*World, error) {
	if cfg.AssetLayout == "" {
		cfg.AssetLayout = LayoutUniform
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &World{
		cfg:     cfg,
		bounds:  cfg.Grid,
		rng:     rng,
		spawner: agents.NewSpawner(cfg.Agents),
		cells:   make([]cell, cfg.Grid.Cells()),
	}
	if err := w.distributeIndividuals(); err != nil {
		return nil, fmt.Errorf("distribute individuals: %w", err)
	}
	if err := w.distributeAssets(); err != nil {
		return nil, fmt.Errorf("distribute assets: %w", err)
	}

	slog.Info("world initialized",
		"grid", w.bounds.String(),
		"individuals", cfg.InitialIndividuals,
		"populations", cfg.InitialPopulations,
		"assets", cfg.InitialAssets,
		"layout", string(cfg.AssetLayout),
	)
	return w, nil
}

// distributeIndividuals places fresh individuals around random population
// centers, each jittered by up to one cell.
func (w *World) distributeIndividuals() error {
	if w.cfg.InitialIndividuals == 0 {
		return nil
	}
	centers, err := grid.DistributePoints(w.bounds, w.cfg.InitialPopulations, w.cfg.UniqueCenters, w.rng)
	if err != nil {
		return err
	}
	for _, ind := range w.spawner.Batch(w.cfg.InitialIndividuals, w.rng) {
		center := centers[w.rng.Intn(len(centers))]
		p := w.bounds.Jitter(center, 1, w.rng)
		c := &w.cells[w.bounds.Index(p)]
		c.individuals = append(c.individuals, ind)
	}
	return nil
}

// distributeAssets scatters random assets; a cell may receive several.
func (w *World) distributeAssets() error {
	n := w.cfg.InitialAssets
	if n == 0 {
		return nil
	}

	var points []grid.Point
	switch w.cfg.AssetLayout {
	case LayoutNoise:
		field := grid.NewFertilityField(w.bounds, w.rng.Int63())
		points = make([]grid.Point, n)
		for i := range points {
			points[i] = field.RandomPoint(w.rng)
		}
	default:
		var err error
		points, err = grid.DistributePoints(w.bounds, n, false, w.rng)
		if err != nil {
			return err
		}
	}

	for _, p := range points {
		w.siteAt(p).Extend(assets.Random(1, w.rng))
	}
	return nil
}

// Config returns the configuration the world was built with.
func (w *World) Config() Config { return w.cfg }

// Bounds returns the grid extent.
func (w *World) Bounds() grid.Bounds { return w.bounds }

// Spawner returns the spawner issuing individual IDs for this world.
func (w *World) Spawner() *agents.Spawner { return w.spawner }

// Tick returns the number of MoveTime calls so far.
func (w *World) Tick() uint64 { return w.tick }

// LastTickStats returns the bookkeeping of the most recent MoveTime.
func (w *World) LastTickStats() TickStats { return w.last }

func (w *World) siteAt(p grid.Point) *assets.Site {
	c := &w.cells[w.bounds.Index(p)]
	if c.site == nil {
		c.site = assets.NewSite()
	}
	return c.site
}

// SiteAt returns the asset site at p, creating an empty one on first access.
func (w *World) SiteAt(p grid.Point) (*assets.Site, error) {
	if !w.bounds.Contains(p) {
		return nil, fmt.Errorf("%w: site at %v outside %s", assets.ErrInvariant, p, w.bounds)
	}
	return w.siteAt(p), nil
}

// IndividualsAt returns the individuals standing on p.
func (w *World) IndividualsAt(p grid.Point) []*agents.Individual {
	if !w.bounds.Contains(p) {
		return nil
	}
	return w.cells[w.bounds.Index(p)].individuals
}

// Place puts individuals on p.
func (w *World) Place(p grid.Point, inds ...*agents.Individual) error {
	if !w.bounds.Contains(p) {
		return fmt.Errorf("%w: place at %v outside %s", assets.ErrInvariant, p, w.bounds)
	}
	c := &w.cells[w.bounds.Index(p)]
	c.individuals = append(c.individuals, inds...)
	return nil
}

// AddAssets drops assets onto the site at p.
func (w *World) AddAssets(p grid.Point, as ...*assets.Asset) error {
	site, err := w.SiteAt(p)
	if err != nil {
		return err
	}
	site.Extend(as)
	return nil
}

// Population returns every living individual in cell order.
func (w *World) Population() []*agents.Individual {
	var all []*agents.Individual
	for i := range w.cells {
		all = append(all, w.cells[i].individuals...)
	}
	return all
}

// TotalAssets counts every asset in the world, on sites and in holdings.
func (w *World) TotalAssets() int {
	total := 0
	for i := range w.cells {
		c := &w.cells[i]
		total += c.site.Len()
		for _, ind := range c.individuals {
			total += len(ind.Assets)
		}
	}
	return total
}

// Conflict is a contested cell: more than one individual on the same point.
type Conflict struct {
	Point       grid.Point
	Individuals []*agents.Individual
	Site        *assets.Site
}

// Conflicts returns one Conflict per multiply occupied cell, in cell order.
func (w *World) Conflicts() []Conflict {
	var out []Conflict
	for i := range w.cells {
		if len(w.cells[i].individuals) <= 1 {
			continue
		}
		p := w.bounds.PointAt(i)
		out = append(out, Conflict{
			Point:       p,
			Individuals: slices.Clone(w.cells[i].individuals),
			Site:        w.siteAt(p),
		})
	}
	return out
}

// SolveConflicts writes resolved conflicts back, replacing exactly those
// cells' individuals and sites. Nothing is applied if any point is invalid.
func (w *World) SolveConflicts(resolved []Conflict) error {
	for _, c := range resolved {
		if !w.bounds.Contains(c.Point) {
			return fmt.Errorf("%w: resolved conflict at %v outside %s", assets.ErrInvariant, c.Point, w.bounds)
		}
	}
	for _, c := range resolved {
		site := c.Site
		if site == nil {
			site = assets.NewSite()
		}
		w.cells[w.bounds.Index(c.Point)] = cell{individuals: c.Individuals, site: site}
	}
	return nil
}

// Indicators summarizes the world for the driver.
type Indicators struct {
	Tick            uint64    `json:"tick"`
	TotalPopulation int       `json:"total_population"`
	AvgHappiness    float64   `json:"avg_happiness"`
	TotalAssets     int       `json:"total_assets"`
	Stats           TickStats `json:"stats"`
}

// Indicators computes the current population, average happiness (0 for an
// empty world) and total asset count.
func (w *World) Indicators() Indicators {
	pop := w.Population()
	avg := 0.0
	if len(pop) > 0 {
		sum := 0.0
		for _, ind := range pop {
			sum += ind.Happiness(w.cfg.Agents.HappinessUnit)
		}
		avg = sum / float64(len(pop))
	}
	return Indicators{
		Tick:            w.tick,
		TotalPopulation: len(pop),
		AvgHappiness:    avg,
		TotalAssets:     w.TotalAssets(),
		Stats:           w.last,
	}
}

// Verify walks the whole world and checks its bookkeeping: site counts,
// preference ranges, and that no individual or asset is held twice.
func (w *World) Verify() error {
	seenInd := make(map[*agents.Individual]grid.Point)
	seenID := make(map[agents.IndividualID]grid.Point)
	seenAsset := make(map[*assets.Asset]struct{})

	claim := func(a *assets.Asset, where string) error {
		if _, dup := seenAsset[a]; dup {
			return fmt.Errorf("%w: asset %p held twice (again in %s)", assets.ErrInvariant, a, where)
		}
		seenAsset[a] = struct{}{}
		return nil
	}

	for i := range w.cells {
		c := &w.cells[i]
		p := w.bounds.PointAt(i)
		if c.site != nil {
			if err := c.site.Verify(); err != nil {
				return fmt.Errorf("site %v: %w", p, err)
			}
			for a := range c.site.All() {
				if err := claim(a, "site "+p.String()); err != nil {
					return err
				}
			}
		}
		for _, ind := range c.individuals {
			if prev, dup := seenInd[ind]; dup {
				return fmt.Errorf("%w: individual %d at both %v and %v", assets.ErrInvariant, ind.ID, prev, p)
			}
			if prev, dup := seenID[ind.ID]; dup {
				return fmt.Errorf("%w: ID %d used at both %v and %v", assets.ErrInvariant, ind.ID, prev, p)
			}
			seenInd[ind], seenID[ind.ID] = p, p
			if err := ind.Verify(w.cfg.Agents); err != nil {
				return err
			}
			for _, a := range ind.Assets {
				if err := claim(a, fmt.Sprintf("individual %d", ind.ID)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
