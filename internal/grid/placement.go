package grid

import (
	"errors"
	"fmt"

	"github.com/talgya/assetworld/internal/entropy"
)

// ErrConfiguration reports a request the grid cannot satisfy, such as more
// unique points than it has cells.
var ErrConfiguration = errors.New("configuration error")

// DistributePoints draws n points from the grid. With unique set no point is
// repeated, and asking for more points than cells fails before anything is
// drawn.
func DistributePoints(b Bounds, n int, unique bool, rng entropy.Source) ([]Point, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative point count %d", ErrConfiguration, n)
	}
	if n > 0 && b.Cells() <= 0 {
		return nil, fmt.Errorf("%w: %d points requested on empty %s", ErrConfiguration, n, b)
	}
	if unique && n > b.Cells() {
		return nil, fmt.Errorf("%w: %d unique points requested on %s with %d cells",
			ErrConfiguration, n, b, b.Cells())
	}

	points := make([]Point, 0, n)
	if unique {
		for _, i := range rng.Sample(b.Cells(), n) {
			points = append(points, b.PointAt(i))
		}
		return points, nil
	}
	for i := 0; i < n; i++ {
		points = append(points, b.RandomPoint(rng))
	}
	return points, nil
}
