// Individual spawning: fresh individuals "from atoms" at world start and
// children "from parents" during conflict resolution.
package agents

import (
	"sync/atomic"

	"github.com/talgya/assetworld/internal/assets"
	"github.com/talgya/assetworld/internal/entropy"
)

// Spawner creates individuals and issues their IDs. It is safe for
// concurrent use; randomness comes from the caller's Source.
type Spawner struct {
	params Params
	nextID atomic.Uint64
}

// NewSpawner creates a spawner whose first issued ID is 1.
func NewSpawner(p Params) *Spawner {
	s := &Spawner{params: p}
	s.nextID.Store(1)
	return s
}

// Params returns the parameters individuals are built with.
func (s *Spawner) Params() Params {
	return s.params
}

// SetNextID sets the next ID to be issued.
func (s *Spawner) SetNextID(id IndividualID) {
	s.nextID.Store(uint64(id))
}

func (s *Spawner) issueID() IndividualID {
	return IndividualID(s.nextID.Add(1) - 1)
}

// FromAtoms creates an individual with a random genome and preferences
// spread evenly over [PreferenceMin, PreferenceMax] in random type order.
func (s *Spawner) FromAtoms(rng entropy.Source) *Individual {
	return &Individual{
		ID:          s.issueID(),
		Genome:      s.newGenome([]byte(s.params.GenomeAlphabet), rng),
		Preferences: s.preferencesFromAtoms(rng),
	}
}

// FromParents creates a child whose genome is drawn from both parents and
// whose preferences average theirs plus one shared perturbation.
func (s *Spawner) FromParents(p1, p2 *Individual, rng entropy.Source) *Individual {
	pool := make([]byte, 0, len(p1.Genome)+len(p2.Genome))
	pool = append(pool, p1.Genome...)
	pool = append(pool, p2.Genome...)
	if len(pool) == 0 {
		pool = []byte(s.params.GenomeAlphabet)
	}
	return &Individual{
		ID:          s.issueID(),
		Genome:      s.newGenome(pool, rng),
		Preferences: s.preferencesFromParents(p1, p2, rng),
	}
}

// Batch creates size individuals from atoms.
func (s *Spawner) Batch(size int, rng entropy.Source) []*Individual {
	out := make([]*Individual, 0, size)
	for i := 0; i < size; i++ {
		out = append(out, s.FromAtoms(rng))
	}
	return out
}

// newGenome draws GenomeLength symbols from pool with replacement.
func (s *Spawner) newGenome(pool []byte, rng entropy.Source) Genome {
	g := make(Genome, s.params.GenomeLength)
	for i := range g {
		g[i] = pool[rng.Intn(len(pool))]
	}
	return g
}

func (s *Spawner) preferencesFromAtoms(rng entropy.Source) Preferences {
	lo, hi := s.params.PreferenceMin, s.params.PreferenceMax
	step := 0.0
	if assets.NumTypes > 1 {
		step = (hi - lo) / float64(assets.NumTypes-1)
	}

	var prefs Preferences
	for i, idx := range rng.Sample(assets.NumTypes, assets.NumTypes) {
		v := lo + float64(i)*step
		// Guard the last step against float drift past the upper bound.
		if v > hi {
			v = hi
		}
		prefs[assets.AllTypes[idx]] = v
	}
	return prefs
}

func (s *Spawner) preferencesFromParents(p1, p2 *Individual, rng entropy.Source) Preferences {
	randomness := (rng.Float64()*2 - 1) * s.params.PreferenceDelta

	var prefs Preferences
	for _, t := range assets.AllTypes {
		avg := (p1.Preferences[t] + p2.Preferences[t]) / 2.0
		prefs[t] = clampFloat(avg+randomness, s.params.PreferenceMin, s.params.PreferenceMax)
	}
	return prefs
}

// AverageGenome returns the population-wide mean count of every symbol
// occurring in any genome.
func AverageGenome(population []*Individual) map[byte]float64 {
	avg := make(map[byte]float64)
	if len(population) == 0 {
		return avg
	}
	for _, ind := range population {
		for _, b := range ind.Genome {
			avg[b]++
		}
	}
	n := float64(len(population))
	for b := range avg {
		avg[b] /= n
	}
	return avg
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
