// Package grid provides the bounded 2D grid and its integer coordinates.
package grid

import (
	"fmt"

	"github.com/talgya/assetworld/internal/entropy"
)

// Point is a position on the grid. It is a comparable value and safe to use
// as a map key.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(x=%d, y=%d)", p.X, p.Y)
}

// MooreDirections holds the eight neighbour offsets around a cell.
var MooreDirections = [8]Point{
	{X: -1, Y: -1},
	{X: -1, Y: 0},
	{X: -1, Y: 1},
	{X: 0, Y: -1},
	{X: 0, Y: 1},
	{X: 1, Y: -1},
	{X: 1, Y: 0},
	{X: 1, Y: 1},
}

// Bounds is the extent of a width × height grid anchored at (0, 0).
type Bounds struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Cells returns the number of cells in the grid.
func (b Bounds) Cells() int {
	return b.Width * b.Height
}

// Contains reports whether p lies on the grid.
func (b Bounds) Contains(p Point) bool {
	return 0 <= p.X && p.X < b.Width && 0 <= p.Y && p.Y < b.Height
}

// Index flattens p into [0, Cells()). p must be inside the bounds.
func (b Bounds) Index(p Point) int {
	return p.Y*b.Width + p.X
}

// PointAt is the inverse of Index.
func (b Bounds) PointAt(i int) Point {
	return Point{X: i % b.Width, Y: i / b.Width}
}

// Clamp moves p onto the nearest cell inside the bounds.
func (b Bounds) Clamp(p Point) Point {
	return Point{X: clamp(p.X, 0, b.Width-1), Y: clamp(p.Y, 0, b.Height-1)}
}

// Neighbors returns the valid Moore neighbours of p: 3 at a corner, 5 along
// an edge, 8 inside.
func (b Bounds) Neighbors(p Point) []Point {
	result := make([]Point, 0, len(MooreDirections))
	for _, dir := range MooreDirections {
		n := Point{X: p.X + dir.X, Y: p.Y + dir.Y}
		if b.Contains(n) {
			result = append(result, n)
		}
	}
	return result
}

// RandomNeighbor picks uniformly among the valid neighbours of p. On a 1×1
// grid there are none and p itself is returned.
func (b Bounds) RandomNeighbor(p Point, rng entropy.Source) Point {
	options := b.Neighbors(p)
	if len(options) == 0 {
		return p
	}
	return options[rng.Intn(len(options))]
}

// Jitter displaces p by up to units cells on each axis and clamps the
// result onto the grid.
func (b Bounds) Jitter(p Point, units int, rng entropy.Source) Point {
	dx := rng.IntRange(-units, units)
	dy := rng.IntRange(-units, units)
	return b.Clamp(Point{X: p.X + dx, Y: p.Y + dy})
}

// RandomPoint returns a uniformly chosen cell.
func (b Bounds) RandomPoint(rng entropy.Source) Point {
	return Point{X: rng.Intn(b.Width), Y: rng.Intn(b.Height)}
}

func (b Bounds) String() string {
	return fmt.Sprintf("Grid(%dx%d)", b.Width, b.Height)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
