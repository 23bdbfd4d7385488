package numeric

import "golang.org/x/exp/rand"

// Stream is the private random-number stream of one simulated path.
type Stream struct {
	rng *rand.Rand
}

// NewStream seeds a PCG generator. Equal seeds reproduce identical draws.
func NewStream(seed uint64) *Stream {
	return &Stream{rng: rand.New(rand.NewSource(seed))}
}

// Normal draws a standard normal variate.
func (s *Stream) Normal() float64 {
	return s.rng.NormFloat64()
}

// PathSeed maps a path index within a batch to its seed.
func PathSeed(offset uint64, index int) uint64 {
	return offset + uint64(index)
}
