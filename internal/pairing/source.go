package pairing

import (
	"hash/fnv"

	"github.com/google/uuid"
)

// Source is a deterministic pseudo-random sequence derived from a seed
// string. Two sources built from the same seed produce identical values, so
// a plan can be recomputed exactly by replaying its seed.
type Source struct {
	state uint64
}

// NewSource builds a source from the given seed string. Short or adversarial
// seeds are safe: the state is derived through FNV-1a and an all-zero state
// is remapped before the generator starts.
func NewSource(seed string) *Source {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	state := h.Sum64()
	if state == 0 {
		// xorshift has a fixed point at zero
		state = 0x9E3779B97F4A7C15
	}

	return &Source{state: state}
}

// NewSeed returns a fresh random seed suitable for NewSource. Callers echo it
// back to clients so a preview can be recomputed or audited later.
func NewSeed() string {
	return uuid.NewString()
}

// Next returns the next value in [0, 1).
func (s *Source) Next() float64 {
	s.state ^= s.state >> 12
	s.state ^= s.state << 25
	s.state ^= s.state >> 27

	return float64((s.state*0x2545F4914F6CDD1D)>>11) / float64(1<<53)
}

// Intn returns a uniform integer in [0, n). n must be positive.
func (s *Source) Intn(n int) int {
	return int(s.Next() * float64(n))
}

// Shuffle performs an unbiased Fisher-Yates shuffle over n elements.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.Intn(i + 1)
		swap(i, j)
	}
}
