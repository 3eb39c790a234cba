package sample

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// Sampler draws uniform random integers from a single source.
//
// It is safe for concurrent use.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Sampler drawing from src. The source is used as-is for the
// Sampler's lifetime.
func New(src rand.Source) *Sampler {
	return &Sampler{rng: rand.New(src)}
}

// NewCrypto returns a Sampler backed by crypto/rand.
func NewCrypto() *Sampler {
	return New(cryptoSource{})
}

// NewSeeded returns a deterministic Sampler seeded once with seed.
func NewSeeded(seed uint64) *Sampler {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	return New(rand.NewChaCha8(key))
}

// cryptoSource implements rand.Source on top of crypto/rand.
type cryptoSource struct{}

func (cryptoSource) Uint64() uint64 {
	var b [8]byte
	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = crand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// Intn returns a uniform integer in [0, n). It returns 0 when n <= 0.
func (s *Sampler) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Range returns a uniform integer in [lo, hi], both ends inclusive.
// It returns lo when lo >= hi.
func (s *Sampler) Range(lo, hi int) int {
	if lo >= hi {
		return lo
	}
	// The width is computed in uint64 so ranges wider than math.MaxInt work.
	n := uint64(hi) - uint64(lo) + 1
	s.mu.Lock()
	defer s.mu.Unlock()
	if n == 0 {
		return int(s.rng.Uint64())
	}
	return lo + int(s.rng.Uint64N(n))
}

// Bool returns true or false with equal probability.
func (s *Sampler) Bool() bool {
	return s.Intn(2) == 0
}

// Element returns a uniformly chosen element of items, or false when items
// is empty.
func Element[T any](s *Sampler, items []T) (T, bool) {
	if len(items) == 0 {
		var zero T
		return zero, false
	}
	return items[s.Intn(len(items))], true
}

// Shuffle returns a uniformly permuted copy of items. items is not modified.
func Shuffle[T any](s *Sampler, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(out) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
