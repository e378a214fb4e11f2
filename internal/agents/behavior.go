// Individual behaviour: collecting, aging, inheritance, fighting and
// reproduction. All random draws come from the Source passed in.
package agents

import (
	"maps"
	"math"
	"slices"

	"github.com/talgya/assetworld/internal/assets"
	"github.com/talgya/assetworld/internal/entropy"
)

// CollectAssets offers every asset in site to the individual once. An asset
// is taken when a uniform draw falls below the preference for its type. The
// returned site holds exactly the assets left behind.
func (i *Individual) CollectAssets(site *assets.Site, rng entropy.Source) *assets.Site {
	left := assets.NewSite()
	for a := range site.All() {
		if rng.Float64() < i.Preferences[a.Type] {
			i.Grant(a)
		} else {
			left.Append(a)
		}
	}
	return left
}

// AgeBy advances age by units, eats one edible asset if any is held, and
// rolls for death. It returns false when the individual dies.
func (i *Individual) AgeBy(units int, p Params, rng entropy.Source) bool {
	i.Age += units

	ate := false
	for idx, a := range i.Assets {
		if a.IsEdible() {
			i.Assets = append(i.Assets[:idx], i.Assets[idx+1:]...)
			ate = true
			break
		}
	}
	if ate {
		i.StarvingDays = 0
	} else {
		i.StarvingDays++
	}

	starvePressure := math.Pow(1+p.DailyStarveProb, float64(i.StarvingDays)) - 1
	if rng.Float64() < p.BaseDeathProb+starvePressure || i.Age > p.MaxAge {
		return false
	}
	return true
}

// DNADistance is the squared distance between the individual's symbol
// counts and the population average, over the symbols present in avg.
// Symbols are summed in byte order so the result is reproducible.
func (i *Individual) DNADistance(avg map[byte]float64) float64 {
	own := i.Genome.Counts()
	d := 0.0
	for _, b := range slices.Sorted(maps.Keys(avg)) {
		diff := avg[b] - float64(own[b])
		d += diff * diff
	}
	return d
}

// Inherit moves half of the parent's holdings, chosen at random, to i. The
// odd asset of an odd count stays with the parent.
func (i *Individual) Inherit(parent *Individual, rng entropy.Source) {
	i.GrantMany(parent.leaveHeritage(rng))
}

func (i *Individual) leaveHeritage(rng entropy.Source) []*assets.Asset {
	rng.Shuffle(len(i.Assets), func(a, b int) {
		i.Assets[a], i.Assets[b] = i.Assets[b], i.Assets[a]
	})
	half := len(i.Assets) / 2
	heritage := append([]*assets.Asset(nil), i.Assets[:half]...)
	i.Assets = append([]*assets.Asset(nil), i.Assets[half:]...)
	return heritage
}

// Fight resolves an assassination attempt. The strictly more influential
// individual takes all of the other's holdings and is the only survivor.
// Equal influence is a draw and both survive untouched.
func (i *Individual) Fight(other *Individual) []*Individual {
	switch {
	case i.Influence < other.Influence:
		other.GrantMany(i.Assets)
		i.Assets = nil
		return []*Individual{other}
	case i.Influence > other.Influence:
		i.GrantMany(other.Assets)
		other.Assets = nil
		return []*Individual{i}
	default:
		return []*Individual{i, other}
	}
}

// ReproduceWith creates a child of i and other. The child inherits half of
// i's holdings, then half of other's.
func (i *Individual) ReproduceWith(other *Individual, s *Spawner, rng entropy.Source) []*Individual {
	child := s.FromParents(i, other, rng)
	child.Inherit(i, rng)
	child.Inherit(other, rng)
	return []*Individual{i, child, other}
}
