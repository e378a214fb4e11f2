// Package resolve decides what happens on contested cells: who harvests
// first, and whether each pair of individuals reproduces, fights or duels.
package resolve

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/talgya/assetworld/internal/agents"
	"github.com/talgya/assetworld/internal/assets"
	"github.com/talgya/assetworld/internal/entropy"
	"github.com/talgya/assetworld/internal/world"
)

// Params holds the interaction probabilities.
type Params struct {
	ReproductionProb  float64 `yaml:"reproduction_prob"`
	AssassinationProb float64 `yaml:"assassination_prob"`
}

// DefaultParams returns a reasonable starting configuration.
func DefaultParams() Params {
	return Params{
		ReproductionProb:  0.3,
		AssassinationProb: 0.1,
	}
}

// Validate checks that both probabilities lie in [0, 1].
func (p Params) Validate() error {
	if p.ReproductionProb < 0 || p.ReproductionProb > 1 {
		return fmt.Errorf("%w: reproduction probability %v outside [0, 1]", world.ErrConfiguration, p.ReproductionProb)
	}
	if p.AssassinationProb < 0 || p.AssassinationProb > 1 {
		return fmt.Errorf("%w: assassination probability %v outside [0, 1]", world.ErrConfiguration, p.AssassinationProb)
	}
	return nil
}

// Outcome is what happened to one pair.
type Outcome uint8

const (
	OutcomeReproduction  Outcome = iota // Pair had a child
	OutcomeAssassination                // One killed the other
	OutcomeDraw                         // Fight between equals, nobody died
	OutcomeDuel                         // Property duel, both survive
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReproduction:
		return "reproduction"
	case OutcomeAssassination:
		return "assassination"
	case OutcomeDraw:
		return "draw"
	case OutcomeDuel:
		return "duel"
	default:
		return "unknown"
	}
}

// Summary counts the outcomes of a batch of resolutions.
type Summary struct {
	Conflicts      int `json:"conflicts"`
	Pairs          int `json:"pairs"`
	Reproductions  int `json:"reproductions"`
	Assassinations int `json:"assassinations"`
	Draws          int `json:"draws"`
	Duels          int `json:"duels"`
	Transfers      int `json:"transfers"` // Duels where an asset changed hands
	Unpaired       int `json:"unpaired"`  // Odd individuals carried through
}

// Add accumulates other into s.
func (s *Summary) Add(other Summary) {
	s.Conflicts += other.Conflicts
	s.Pairs += other.Pairs
	s.Reproductions += other.Reproductions
	s.Assassinations += other.Assassinations
	s.Draws += other.Draws
	s.Duels += other.Duels
	s.Transfers += other.Transfers
	s.Unpaired += other.Unpaired
}

func (s *Summary) record(o Outcome, transferred bool) {
	s.Pairs++
	switch o {
	case OutcomeReproduction:
		s.Reproductions++
	case OutcomeAssassination:
		s.Assassinations++
	case OutcomeDraw:
		s.Draws++
	case OutcomeDuel:
		s.Duels++
		if transferred {
			s.Transfers++
		}
	}
}

// HarvestByInfluence lets individuals collect from the shared site in order
// of descending influence, then shuffles them in place so pairing order is
// random. It returns what is left of the site.
func HarvestByInfluence(inds []*agents.Individual, site *assets.Site, rng entropy.Source) *assets.Site {
	slices.SortStableFunc(inds, func(a, b *agents.Individual) int {
		return cmp.Compare(b.Influence, a.Influence)
	})
	for _, ind := range inds {
		site = ind.CollectAssets(site, rng)
	}
	rng.Shuffle(len(inds), func(i, j int) {
		inds[i], inds[j] = inds[j], inds[i]
	})
	return site
}

// Take moves one asset of the receiver's preferred type from giver to
// receiver. It reports whether anything moved.
func Take(giver, receiver *agents.Individual) bool {
	t := receiver.PreferredAssetType()
	if !giver.HasAssetType(t) {
		return false
	}
	a, err := giver.Revoke(t)
	if err != nil {
		return false
	}
	receiver.Grant(a)
	return true
}

// SolveDuel lets the more influential of a and b take one unit of its
// preferred asset type from the other. Equal influence changes nothing.
func SolveDuel(a, b *agents.Individual) bool {
	switch {
	case a.Influence > b.Influence:
		return Take(b, a)
	case b.Influence > a.Influence:
		return Take(a, b)
	default:
		return false
	}
}
