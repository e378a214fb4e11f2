// Package agents provides the individual data model: genome, preferences,
// holdings, aging and the pairwise interactions between individuals.
package agents

import (
	"errors"
	"fmt"

	"github.com/talgya/assetworld/internal/assets"
)

// ErrNotFound is returned when an individual is asked for an asset type it
// does not hold.
var ErrNotFound = errors.New("not found")

// IndividualID is a unique identifier for an individual. IDs are issued by a
// Spawner and never reused within a run.
type IndividualID uint64

// Genome is a fixed-length symbol sequence over Params.GenomeAlphabet.
type Genome []byte

// Counts returns how many times each symbol occurs.
func (g Genome) Counts() map[byte]int {
	c := make(map[byte]int, len(g))
	for _, b := range g {
		c[b]++
	}
	return c
}

// Preferences holds one weight per asset type, indexed by assets.Type.
type Preferences [assets.NumTypes]float64

// Params holds the constants governing individuals.
type Params struct {
	GenomeAlphabet string `yaml:"genome_alphabet"`
	GenomeLength   int    `yaml:"genome_length"`

	PreferenceMin   float64 `yaml:"preference_min"`
	PreferenceMax   float64 `yaml:"preference_max"`
	PreferenceDelta float64 `yaml:"preference_delta"` // Shared perturbation applied at birth

	HappinessUnit float64 `yaml:"happiness_unit"`

	MaxAge          int     `yaml:"max_age"`
	BaseDeathProb   float64 `yaml:"base_death_prob"`
	DailyStarveProb float64 `yaml:"daily_starve_prob"` // Growth base of starvation pressure
}

// DefaultParams returns a reasonable starting configuration.
func DefaultParams() Params {
	return Params{
		GenomeAlphabet:  "abcdefghijklmnopqrstuvwxyz",
		GenomeLength:    26,
		PreferenceMin:   0.1,
		PreferenceMax:   0.9,
		PreferenceDelta: 0.05,
		HappinessUnit:   1.0,
		MaxAge:          100,
		BaseDeathProb:   0.001,
		DailyStarveProb: 0.05,
	}
}

// Validate checks that the parameters describe a usable population.
func (p Params) Validate() error {
	if p.GenomeAlphabet == "" {
		return fmt.Errorf("genome alphabet is empty")
	}
	if p.GenomeLength <= 0 {
		return fmt.Errorf("genome length %d must be positive", p.GenomeLength)
	}
	if p.PreferenceMin < 0 || p.PreferenceMax > 1 || p.PreferenceMin >= p.PreferenceMax {
		return fmt.Errorf("preference range [%v, %v] must satisfy 0 <= min < max <= 1",
			p.PreferenceMin, p.PreferenceMax)
	}
	if p.PreferenceDelta < 0 {
		return fmt.Errorf("preference delta %v must not be negative", p.PreferenceDelta)
	}
	if p.MaxAge <= 0 {
		return fmt.Errorf("max age %d must be positive", p.MaxAge)
	}
	if p.BaseDeathProb < 0 || p.BaseDeathProb > 1 {
		return fmt.Errorf("base death probability %v outside [0, 1]", p.BaseDeathProb)
	}
	if p.DailyStarveProb < 0 {
		return fmt.Errorf("daily starvation probability %v must not be negative", p.DailyStarveProb)
	}
	return nil
}

// Individual is a simulated agent.
type Individual struct {
	ID          IndividualID `json:"id"`
	Genome      Genome       `json:"genome"`
	Preferences Preferences  `json:"preferences"`

	Age          int `json:"age"`
	StarvingDays int `json:"starving_days"`

	Assets    []*assets.Asset `json:"-"`
	Influence float64         `json:"influence"` // Recomputed once per tick
}

// PreferenceFor returns the weight for asset type t.
func (i *Individual) PreferenceFor(t assets.Type) float64 {
	return i.Preferences[t]
}

// PreferredAssetType returns the type with the highest weight. Ties go to
// the type that comes first in assets.AllTypes.
func (i *Individual) PreferredAssetType() assets.Type {
	best := assets.AllTypes[0]
	for _, t := range assets.AllTypes[1:] {
		if i.Preferences[t] > i.Preferences[best] {
			best = t
		}
	}
	return best
}

// Happiness is the preference-weighted value of current holdings.
func (i *Individual) Happiness(unit float64) float64 {
	sum := 0.0
	for _, a := range i.Assets {
		sum += i.Preferences[a.Type]
	}
	return sum * unit
}

// Grant adds one asset to the holdings.
func (i *Individual) Grant(a *assets.Asset) {
	i.Assets = append(i.Assets, a)
}

// GrantMany adds every asset in as to the holdings.
func (i *Individual) GrantMany(as []*assets.Asset) {
	i.Assets = append(i.Assets, as...)
}

// Revoke removes and returns the first held asset of type t.
func (i *Individual) Revoke(t assets.Type) (*assets.Asset, error) {
	for idx, a := range i.Assets {
		if a.Type == t {
			i.Assets = append(i.Assets[:idx], i.Assets[idx+1:]...)
			return a, nil
		}
	}
	return nil, fmt.Errorf("individual %d revoke %s: %w", i.ID, t, ErrNotFound)
}

// HasAssetType reports whether any held asset is of type t.
func (i *Individual) HasAssetType(t assets.Type) bool {
	for _, a := range i.Assets {
		if a.Type == t {
			return true
		}
	}
	return false
}

// CountOf returns how many held assets are of type t.
func (i *Individual) CountOf(t assets.Type) int {
	n := 0
	for _, a := range i.Assets {
		if a.Type == t {
			n++
		}
	}
	return n
}

// Verify checks that every preference weight is inside the configured range.
func (i *Individual) Verify(p Params) error {
	for _, t := range assets.AllTypes {
		w := i.Preferences[t]
		if w < p.PreferenceMin || w > p.PreferenceMax {
			return fmt.Errorf("%w: individual %d preference for %s = %v outside [%v, %v]",
				assets.ErrInvariant, i.ID, t, w, p.PreferenceMin, p.PreferenceMax)
		}
	}
	for _, a := range i.Assets {
		if a == nil {
			return fmt.Errorf("%w: individual %d holds a nil asset", assets.ErrInvariant, i.ID)
		}
	}
	return nil
}

func (i *Individual) String() string {
	return fmt.Sprintf("Individual(id=%d, age=%d, assets=%d, influence=%.4g)",
		i.ID, i.Age, len(i.Assets), i.Influence)
}
