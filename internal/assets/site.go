package assets

import (
	"fmt"
	"iter"
)

// Site is the unordered collection of assets lying on one grid cell,
// bucketed by type so per-type counts are O(1).
type Site struct {
	byType [NumTypes][]*Asset
	total  int
}

// NewSite returns an empty site.
func NewSite() *Site {
	return &Site{}
}

// Append adds one asset.
func (s *Site) Append(a *Asset) {
	s.byType[a.Type] = append(s.byType[a.Type], a)
	s.total++
}

// Extend adds every asset in as.
func (s *Site) Extend(as []*Asset) {
	for _, a := range as {
		s.Append(a)
	}
}

// CountOf returns how many assets of type t are present.
func (s *Site) CountOf(t Type) int {
	return len(s.byType[t])
}

// Counts returns the per-type counts indexed by Type.
func (s *Site) Counts() [NumTypes]int {
	var c [NumTypes]int
	for t := range s.byType {
		c[t] = len(s.byType[t])
	}
	return c
}

// Contains reports whether any asset of a's type is present.
func (s *Site) Contains(a *Asset) bool {
	return s.CountOf(a.Type) > 0
}

// Len returns the total number of assets.
func (s *Site) Len() int {
	if s == nil {
		return 0
	}
	return s.total
}

// All yields every asset exactly once, grouped by type in canonical order.
func (s *Site) All() iter.Seq[*Asset] {
	return func(yield func(*Asset) bool) {
		if s == nil {
			return
		}
		for t := range s.byType {
			for _, a := range s.byType[t] {
				if !yield(a) {
					return
				}
			}
		}
	}
}

// GrowableAssets returns the edible assets followed by the growable ones:
// the pool that regeneration spreads from.
func (s *Site) GrowableAssets() []*Asset {
	var out []*Asset
	for _, t := range AllTypes {
		if NatureOf(t) == NatureEdible {
			out = append(out, s.byType[t]...)
		}
	}
	for _, t := range AllTypes {
		if NatureOf(t) == NatureGrowable {
			out = append(out, s.byType[t]...)
		}
	}
	return out
}

// Verify checks the site's bookkeeping.
func (s *Site) Verify() error {
	sum := 0
	for t, bucket := range s.byType {
		for _, a := range bucket {
			if a == nil {
				return fmt.Errorf("%w: nil asset in %s bucket", ErrInvariant, Type(t))
			}
			if a.Type != Type(t) {
				return fmt.Errorf("%w: %s asset filed under %s", ErrInvariant, a.Type, Type(t))
			}
		}
		sum += len(bucket)
	}
	if s.total < 0 || sum != s.total {
		return fmt.Errorf("%w: site total %d, bucket sum %d", ErrInvariant, s.total, sum)
	}
	return nil
}

func (s *Site) String() string {
	return fmt.Sprintf("Site(total=%d, counts=%v)", s.Len(), s.Counts())
}
