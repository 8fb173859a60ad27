package mirror

import (
	"math/rand"
	"time"
)

// Rand is the random source behind every randomized timer, duration and
// variant choice. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NewRand returns a seeded source. A zero seed uses the current time.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// FixedRand replays a fixed sequence of values in [0, 1], cycling when
// exhausted. Intn maps the next value onto [0, n). A value of exactly 1 hits
// the top of every range.
type FixedRand struct {
	Values []float64
	next   int
}

// NewFixedRand creates a FixedRand over values.
func NewFixedRand(values ...float64) *FixedRand {
	return &FixedRand{Values: values}
}

// Float64 returns the next value in the sequence (0 if empty).
func (f *FixedRand) Float64() float64 {
	if len(f.Values) == 0 {
		return 0
	}
	v := f.Values[f.next%len(f.Values)]
	f.next++
	return v
}

// Intn returns the next value scaled onto [0, n).
func (f *FixedRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(f.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
