// The per-tick pipeline. Phases run in a fixed order and each one consumes
// the state committed by the previous one.
package world

import (
	"log/slog"

	"github.com/talgya/assetworld/internal/agents"
	"github.com/talgya/assetworld/internal/assets"
	"github.com/talgya/assetworld/internal/grid"
)

// TickStats is the asset and population bookkeeping of one MoveTime.
// Assets after a tick == before + Regenerated - Consumed.
type TickStats struct {
	Collected   int `json:"collected"`   // Moved from sites into holdings
	Regenerated int `json:"regenerated"` // Created by regeneration
	Consumed    int `json:"consumed"`    // Eaten while aging
	Deaths      int `json:"deaths"`
}

// MoveTime advances the world one tick: collect, regenerate, age,
// recompute influence, move.
func (w *World) MoveTime() {
	var stats TickStats
	w.collectAssets(&stats)
	w.regenerateAssets(&stats)
	w.ageIndividuals(&stats)
	w.updateInfluences()
	w.moveIndividuals()

	w.tick++
	w.last = stats
	slog.Debug("tick",
		"tick", w.tick,
		"collected", stats.Collected,
		"regenerated", stats.Regenerated,
		"consumed", stats.Consumed,
		"deaths", stats.Deaths,
	)
}

// collectAssets lets every lone individual pick from the site it stands on.
func (w *World) collectAssets(stats *TickStats) {
	for i := range w.cells {
		c := &w.cells[i]
		if len(c.individuals) != 1 || c.site.Len() == 0 {
			continue
		}
		before := c.site.Len()
		c.site = c.individuals[0].CollectAssets(c.site, w.rng)
		stats.Collected += before - c.site.Len()
	}
}

type growableSource struct {
	point grid.Point
	asset *assets.Asset
}

// freeGrowableAssets lists the growable assets lying on unoccupied cells.
func (w *World) freeGrowableAssets() []growableSource {
	var out []growableSource
	for i := range w.cells {
		c := &w.cells[i]
		if len(c.individuals) != 0 || c.site.Len() == 0 {
			continue
		}
		p := w.bounds.PointAt(i)
		for _, a := range c.site.GrowableAssets() {
			out = append(out, growableSource{point: p, asset: a})
		}
	}
	return out
}

// regenerateAssets spreads growable assets from unoccupied cells onto a
// random neighbour, up to the per-type cap. The source list is fixed before
// any asset is created, so new assets never spread in the tick they appear.
func (w *World) regenerateAssets(stats *TickStats) {
	for _, src := range w.freeGrowableAssets() {
		neighbor := w.bounds.RandomNeighbor(src.point, w.rng)
		site := w.siteAt(neighbor)
		if site.CountOf(src.asset.Type) < w.cfg.RegenerationCap && w.rng.Float64() < w.cfg.RegenerationProb {
			site.Append(assets.New(src.asset.Type))
			stats.Regenerated++
		}
	}
}

// ageIndividuals ages everyone by one unit. The dead leave their holdings on
// the cell where they died.
func (w *World) ageIndividuals(stats *TickStats) {
	for i := range w.cells {
		c := &w.cells[i]
		if len(c.individuals) == 0 {
			continue
		}
		alive := c.individuals[:0]
		for _, ind := range c.individuals {
			held := len(ind.Assets)
			ok := ind.AgeBy(1, w.cfg.Agents, w.rng)
			stats.Consumed += held - len(ind.Assets)
			if ok {
				alive = append(alive, ind)
				continue
			}
			stats.Deaths++
			if c.site == nil {
				c.site = assets.NewSite()
			}
			c.site.Extend(ind.Assets)
			ind.Assets = nil
		}
		clear(c.individuals[len(alive):])
		c.individuals = alive
	}
}

// updateInfluences recomputes everyone's influence from genetic closeness to
// the population average, age, and share of the world's wealth.
func (w *World) updateInfluences() {
	pop := w.Population()
	if len(pop) == 0 {
		return
	}
	avg := agents.AverageGenome(pop)
	wealth := float64(w.TotalAssets())
	maxAge := float64(w.cfg.Agents.MaxAge)

	for _, ind := range pop {
		distance := ind.DNADistance(avg)
		if distance > 0 && wealth > 0 {
			ind.Influence = (1.0 / distance) *
				float64(ind.Age) / maxAge *
				float64(len(ind.Assets)) / wealth
		} else {
			ind.Influence = 1.0
		}
	}
}

// moveIndividuals steps every individual to a random valid neighbour. Moves
// are computed from the positions at the start of the phase.
func (w *World) moveIndividuals() {
	next := make([][]*agents.Individual, len(w.cells))
	for i := range w.cells {
		p := w.bounds.PointAt(i)
		for _, ind := range w.cells[i].individuals {
			n := w.bounds.Index(w.bounds.RandomNeighbor(p, w.rng))
			next[n] = append(next[n], ind)
		}
	}
	for i := range w.cells {
		w.cells[i].individuals = next[i]
	}
}
