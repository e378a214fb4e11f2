// Fertility fields built from layered simplex noise. Used to bias where the
// initial assets land so resources clump the way terrain does.
package grid

import (
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/assetworld/internal/entropy"
)

// FertilityField assigns every cell a weight in [0, 1].
type FertilityField struct {
	Bounds  Bounds
	Weights []float64 // indexed by Bounds.Index

	cumulative []float64
}

// NewFertilityField samples normalized simplex noise over the grid.
func NewFertilityField(b Bounds, seed int64) *FertilityField {
	noise := opensimplex.NewNormalized(seed)
	f := &FertilityField{
		Bounds:     b,
		Weights:    make([]float64, b.Cells()),
		cumulative: make([]float64, b.Cells()),
	}

	total := 0.0
	for i := range f.Weights {
		p := b.PointAt(i)
		w := octaveNoise(noise, float64(p.X), float64(p.Y), 3, 0.12, 0.5)
		f.Weights[i] = w
		total += w
		f.cumulative[i] = total
	}
	return f
}

// Weight returns the fertility of p.
func (f *FertilityField) Weight(p Point) float64 {
	return f.Weights[f.Bounds.Index(p)]
}

// RandomPoint draws a cell with probability proportional to its weight.
// A field with no weight at all falls back to a uniform draw.
func (f *FertilityField) RandomPoint(rng entropy.Source) Point {
	n := len(f.cumulative)
	if n == 0 || f.cumulative[n-1] <= 0 {
		return f.Bounds.RandomPoint(rng)
	}
	target := rng.Float64() * f.cumulative[n-1]
	i := sort.Search(n, func(i int) bool { return f.cumulative[i] > target })
	if i >= n {
		i = n - 1
	}
	return f.Bounds.PointAt(i)
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
