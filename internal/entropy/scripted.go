package entropy

// Scripted is a Source that replays queued float draws before falling back
// to a seeded stream. Tests use it to force specific probabilistic branches.
type Scripted struct {
	Floats   []float64
	fallback *Rand
}

// NewScripted queues floats to be returned by Float64, in order.
func NewScripted(seed int64, floats ...float64) *Scripted {
	if seed == 0 {
		seed = 1
	}
	return &Scripted{Floats: floats, fallback: New(seed)}
}

// Push appends more float draws to the queue.
func (s *Scripted) Push(floats ...float64) {
	s.Floats = append(s.Floats, floats...)
}

func (s *Scripted) Float64() float64 {
	if len(s.Floats) == 0 {
		return s.fallback.Float64()
	}
	v := s.Floats[0]
	s.Floats = s.Floats[1:]
	return v
}

func (s *Scripted) Intn(n int) int { return s.fallback.Intn(n) }

func (s *Scripted) IntRange(lo, hi int) int { return s.fallback.IntRange(lo, hi) }

func (s *Scripted) Sample(n, k int) []int { return sample(s, n, k) }

func (s *Scripted) Shuffle(n int, swap func(i, j int)) { s.fallback.Shuffle(n, swap) }

func (s *Scripted) Int63() int64 { return s.fallback.Int63() }

// Constant is a Source whose Float64 always returns the same value.
type Constant struct {
	Value float64
	*Rand
}

// NewConstant returns a Source with a fixed Float64 result.
func NewConstant(v float64, seed int64) *Constant {
	if seed == 0 {
		seed = 1
	}
	return &Constant{Value: v, Rand: New(seed)}
}

func (c *Constant) Float64() float64 { return c.Value }

func (c *Constant) Sample(n, k int) []int { return sample(c, n, k) }
