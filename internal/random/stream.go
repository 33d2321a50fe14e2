// Package random provides the deterministic random stream every rule that
// shuffles, rolls or digests draws from. Given the same seed it yields the
// same sequence on every platform and in every process.
package random

import "golang.org/x/exp/rand"

const (
	multiplier = 0x5DEECE66D
	addend     = 0xB
	mask       = (int64(1) << 48) - 1
)

// Stream is a 48-bit linear congruential generator. It implements
// rand.Source so it can back a *rand.Rand where a richer API is wanted.
type Stream struct {
	seed int64
}

var _ rand.Source = (*Stream)(nil)

// New returns a stream seeded with key.
func New(key int64) *Stream {
	s := &Stream{}
	s.SetSeed(key)
	return s
}

// SetSeed restarts the stream from key.
func (s *Stream) SetSeed(key int64) {
	s.seed = (key ^ multiplier) & mask
}

// Seed implements rand.Source.
func (s *Stream) Seed(seed uint64) { s.SetSeed(int64(seed)) }

// Uint64 implements rand.Source.
func (s *Stream) Uint64() uint64 { return uint64(s.NextLong()) }

func (s *Stream) next(bits uint) int32 {
	s.seed = (s.seed*multiplier + addend) & mask
	return int32(uint64(s.seed) >> (48 - bits))
}

// NextInt returns a value in [0, bound). bound must be positive.
func (s *Stream) NextInt(bound int) int {
	if bound <= 0 {
		panic("random: bound must be positive")
	}
	b := int32(bound)
	if b&(-b) == b {
		return int((int64(b) * int64(s.next(31))) >> 31)
	}
	for {
		bits := s.next(31)
		val := bits % b
		if bits-val+(b-1) >= 0 {
			return int(val)
		}
	}
}

// NextLong returns a full 64-bit value.
func (s *Stream) NextLong() int64 {
	hi := int64(s.next(32)) << 32
	return hi + int64(s.next(32))
}

// RollDie returns a die face in 1..6.
func (s *Stream) RollDie() int { return s.NextInt(6) + 1 }

// Shuffle permutes n elements with four swap passes, calling swap for each
// exchange. The pass count is part of the deterministic contract.
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	if n < 2 {
		return
	}
	for pass := 0; pass < 4; pass++ {
		for i := 0; i < n; i++ {
			j := s.NextInt(n)
			swap(i, j)
		}
	}
}
