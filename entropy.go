// entropy.go -- entropy sources that drive hasher-seed draws
//
// (c) Sudhi Herle 2018, adapted 2026
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package fks

import (
	"crypto/rand"
	"encoding/binary"
	"io"
)

// EntropySource supplies the initial seed draws the construction engine
// uses for the top-level hasher (s0) and each bucket's second-level
// hasher (t). Retries never call back into the source -- they advance the
// drawn seed via the fixed successor function seed' = seed+1 (wrapping
// uint64 addition, §9 open question 2), so that two builds against the
// same EntropySource are deterministic from that point on.
type EntropySource interface {
	Next() uint64
}

// successor is the one fixed retry-seed derivation used throughout Build:
// wrapping uint64 increment. Pinned here, rather than left to convention,
// per spec §9 open question 2.
func successor(seed uint64) uint64 {
	return seed + 1
}

// CryptoEntropy draws fresh seeds from crypto/rand. It is the default
// entropy source for production builds where reproducibility across runs
// is not required.
type CryptoEntropy struct{}

func (CryptoEntropy) Next() uint64 { return rand64() }

// CounterEntropy draws seeds from a fixed counter seeded once at
// construction, making builds against it fully reproducible: the same
// initial seed and the same sequence of Next() calls always yields the
// same draws (spec §4.3.5, §8 property 5).
type CounterEntropy struct {
	seed uint64
}

// NewCounterEntropy returns a deterministic entropy source whose first
// draw is successor(seed) = seed+1 (wrapping) and whose every later draw
// is the successor of the draw before it.
func NewCounterEntropy(seed uint64) *CounterEntropy {
	return &CounterEntropy{seed: seed}
}

func (c *CounterEntropy) Next() uint64 {
	c.seed = successor(c.seed)
	return c.seed
}

func rand64() uint64 {
	var b [8]byte

	_, err := io.ReadFull(rand.Reader, b[:])
	if err != nil {
		panic("can't read crypto/rand")
	}

	return binary.BigEndian.Uint64(b[:])
}
