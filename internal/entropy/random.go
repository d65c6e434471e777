// Package entropy provides the seedable randomness used by dice, board
// generation and counter-offer choices. Falls back to crypto/rand when no
// seed is configured.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"log/slog"
	mrand "math/rand"
)

// Source is the random draw every stochastic decision goes through.
// *math/rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// New returns a deterministic generator for seed.
func New(seed int64) *mrand.Rand {
	return mrand.New(mrand.NewSource(seed))
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1), nil
}

// SeedOrRandom returns seed unchanged when non-zero, otherwise a fresh
// crypto seed. 0 is the "unset" value in configuration.
func SeedOrRandom(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	s, err := NewSeed()
	if err != nil {
		// This should never happen but keep playing with a fixed seed.
		slog.Warn("crypto seed unavailable, using fixed seed", "error", err)
		return 1
	}
	return s
}

// Pick returns a uniformly chosen element of items. ok is false for an empty slice.
func Pick[T any](src Source, items []T) (item T, ok bool) {
	if len(items) == 0 {
		return item, false
	}
	return items[src.Intn(len(items))], true
}

// Sequence is a scripted Source returning fixed draws, wrapping at the end.
// Draws are reduced modulo n.
type Sequence struct {
	Draws []int
	next  int
}

func (s *Sequence) Intn(n int) int {
	if n <= 0 {
		panic("entropy: invalid argument to Intn")
	}
	if len(s.Draws) == 0 {
		return 0
	}
	v := s.Draws[s.next%len(s.Draws)]
	s.next++
	if v < 0 {
		v = -v
	}
	return v % n
}
