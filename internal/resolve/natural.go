// The "natural" resolution policy and its parallel batch driver.
package resolve

import (
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/talgya/assetworld/internal/agents"
	"github.com/talgya/assetworld/internal/assets"
	"github.com/talgya/assetworld/internal/entropy"
	"github.com/talgya/assetworld/internal/world"
)

// Resolver applies the natural policy to conflicts.
type Resolver struct {
	params  Params
	spawner *agents.Spawner
	workers int
}

// New creates a resolver. Children are issued IDs by spawner, which should
// be the world's own so IDs stay unique.
func New(p Params, spawner *agents.Spawner) *Resolver {
	return &Resolver{
		params:  p,
		spawner: spawner,
		workers: runtime.GOMAXPROCS(0),
	}
}

// Params returns the resolver's probabilities.
func (r *Resolver) Params() Params { return r.params }

// SolveInteraction decides the fate of one pair: reproduce with
// ReproductionProb, otherwise fight with AssassinationProb, otherwise duel.
func (r *Resolver) SolveInteraction(a, b *agents.Individual, rng entropy.Source) ([]*agents.Individual, Outcome, bool) {
	if rng.Float64() < r.params.ReproductionProb {
		return a.ReproduceWith(b, r.spawner, rng), OutcomeReproduction, false
	}
	if rng.Float64() < r.params.AssassinationProb {
		survivors := a.Fight(b)
		if len(survivors) == 1 {
			return survivors, OutcomeAssassination, false
		}
		return survivors, OutcomeDraw, false
	}
	moved := SolveDuel(a, b)
	return []*agents.Individual{a, b}, OutcomeDuel, moved
}

// SolveNaturally resolves one conflict: harvest by influence, then pair
// individuals (0,1), (2,3), ... An odd individual out is carried through
// untouched.
func (r *Resolver) SolveNaturally(c world.Conflict, rng entropy.Source) (world.Conflict, Summary, error) {
	resolved, sum, _, err := r.solveNaturally(c, rng)
	return resolved, sum, err
}

func (r *Resolver) solveNaturally(c world.Conflict, rng entropy.Source) (world.Conflict, Summary, []*agents.Individual, error) {
	site := c.Site
	if site == nil {
		site = assets.NewSite()
	}
	inds := slices.Clone(c.Individuals)
	before := countAssets(inds, site)

	site = HarvestByInfluence(inds, site, rng)

	sum := Summary{Conflicts: 1}
	var births []*agents.Individual
	out := make([]*agents.Individual, 0, len(inds)+len(inds)/2)
	for k := 0; k+1 < len(inds); k += 2 {
		result, outcome, moved := r.SolveInteraction(inds[k], inds[k+1], rng)
		if outcome == OutcomeReproduction {
			births = append(births, result[1])
		}
		out = append(out, result...)
		sum.record(outcome, moved)
	}
	if len(inds)%2 == 1 {
		out = append(out, inds[len(inds)-1])
		sum.Unpaired++
	}

	if after := countAssets(out, site); after != before {
		return c, sum, nil, fmt.Errorf("%w: conflict at %v had %d assets, resolved to %d",
			assets.ErrInvariant, c.Point, before, after)
	}
	return world.Conflict{Point: c.Point, Individuals: out, Site: site}, sum, births, nil
}

// Solve resolves a batch of conflicts independently. Each conflict gets its
// own random stream derived from rng in input order, so the result is the
// same however the work is scheduled.
func (r *Resolver) Solve(conflicts []world.Conflict, rng entropy.Source) ([]world.Conflict, Summary, error) {
	streams := make([]entropy.Source, len(conflicts))
	for i := range streams {
		streams[i] = entropy.Derive(rng)
	}

	resolved := make([]world.Conflict, len(conflicts))
	sums := make([]Summary, len(conflicts))
	births := make([][]*agents.Individual, len(conflicts))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i := range conflicts {
		g.Go(func() error {
			c, s, b, err := r.solveNaturally(conflicts[i], streams[i])
			if err != nil {
				return err
			}
			resolved[i], sums[i], births[i] = c, s, b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}

	renumberBirths(births)

	var total Summary
	for _, s := range sums {
		total.Add(s)
	}
	return resolved, total, nil
}

// renumberBirths hands the IDs issued during a parallel batch back out in
// conflict order, so children get the same IDs on every run.
func renumberBirths(births [][]*agents.Individual) {
	var ids []agents.IndividualID
	for _, group := range births {
		for _, child := range group {
			ids = append(ids, child.ID)
		}
	}
	slices.Sort(ids)
	k := 0
	for _, group := range births {
		for _, child := range group {
			child.ID = ids[k]
			k++
		}
	}
}

func countAssets(inds []*agents.Individual, site *assets.Site) int {
	n := site.Len()
	for _, ind := range inds {
		n += len(ind.Assets)
	}
	return n
}
