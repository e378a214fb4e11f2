// Package assets provides typed resource units and the per-cell sites that
// hold them.
package assets

import (
	"errors"

	"github.com/talgya/assetworld/internal/entropy"
)

// ErrInvariant reports broken bookkeeping: negative or mismatched counts,
// assets held twice, out-of-range weights. It always indicates a bug.
var ErrInvariant = errors.New("invariant violation")

// Type enumerates resource kinds. The numeric order is the canonical total
// order used wherever types must be tie-broken.
type Type uint8

const (
	TypeGrain   Type = iota // Edible staple
	TypeFish                // Edible
	TypeTimber              // Growable
	TypeHerbs               // Growable
	TypeStone               // Inert
	TypeIronOre             // Inert
	TypeGems                // Inert, luxury
)

// NumTypes is the total number of asset types.
const NumTypes = 7

// AllTypes lists every type in canonical order.
var AllTypes = [NumTypes]Type{
	TypeGrain, TypeFish, TypeTimber, TypeHerbs, TypeStone, TypeIronOre, TypeGems,
}

// Nature classifies how a type behaves in the world.
type Nature uint8

const (
	NatureEdible      Nature = iota // Eaten by aging; also spreads
	NatureGrowable                  // Spreads onto neighbouring cells
	NatureNonGrowable               // Never spreads
)

// NatureOf returns the fixed nature of t.
func NatureOf(t Type) Nature {
	switch t {
	case TypeGrain, TypeFish:
		return NatureEdible
	case TypeTimber, TypeHerbs:
		return NatureGrowable
	default:
		return NatureNonGrowable
	}
}

// String returns a human-readable name for a type.
func (t Type) String() string {
	switch t {
	case TypeGrain:
		return "Grain"
	case TypeFish:
		return "Fish"
	case TypeTimber:
		return "Timber"
	case TypeHerbs:
		return "Herbs"
	case TypeStone:
		return "Stone"
	case TypeIronOre:
		return "IronOre"
	case TypeGems:
		return "Gems"
	default:
		return "Unknown"
	}
}

func (n Nature) String() string {
	switch n {
	case NatureEdible:
		return "Edible"
	case NatureGrowable:
		return "Growable"
	case NatureNonGrowable:
		return "NonGrowable"
	default:
		return "Unknown"
	}
}

// Asset is a single resource unit. Two assets of the same type are
// interchangeable but distinct: identity is the pointer.
type Asset struct {
	Type Type `json:"type"`
}

// New creates an asset of type t.
func New(t Type) *Asset {
	return &Asset{Type: t}
}

// Nature returns the nature of the asset's type.
func (a *Asset) Nature() Nature {
	return NatureOf(a.Type)
}

// IsEdible reports whether the asset can be eaten.
func (a *Asset) IsEdible() bool {
	return NatureOf(a.Type) == NatureEdible
}

// IsGrowable reports whether the asset spreads during regeneration. Edible
// assets are growable too.
func (a *Asset) IsGrowable() bool {
	n := NatureOf(a.Type)
	return n == NatureEdible || n == NatureGrowable
}

func (a *Asset) String() string {
	return "<Asset: " + a.Type.String() + ">"
}

// Random creates size assets with uniformly chosen types.
func Random(size int, rng entropy.Source) []*Asset {
	out := make([]*Asset, size)
	for i := range out {
		out[i] = New(AllTypes[rng.Intn(NumTypes)])
	}
	return out
}

// Many creates size assets of type t.
func Many(t Type, size int) []*Asset {
	out := make([]*Asset, size)
	for i := range out {
		out[i] = New(t)
	}
	return out
}
