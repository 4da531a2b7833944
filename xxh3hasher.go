// xxh3hasher.go -- XXH3-backed HasherFamily, the spec's named plug-in point
//
// (c) 2026
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package fks

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// maxStackWords bounds the key sizes (in 64-bit words) that xxh3Hasher can
// hash without allocating: keys up to 256 bytes fit in the on-stack
// buffer below. Longer keys fall back to a heap-allocated buffer -- a
// deliberately rare path, not the one spec §4.4 holds to zero allocations
// (that guarantee is made by MSPFamily, the spec's required default).
const maxStackWords = 32

// xxh3Hasher is an alternate HasherFamily member (spec §1: "An alternative
// XXH3-style hasher is mentioned only as a plug-in point"), proving the
// Hasher abstraction is genuinely pluggable: the FKS construction engine
// and PerfectMap.Lookup are written once against Hasher/HasherFamily and
// never know which family produced a given instance.
type xxh3Hasher struct {
	seed     uint64
	outRange uint64
}

func newXXH3Hasher(seed, outputRange uint64) *xxh3Hasher {
	return &xxh3Hasher{seed: seed, outRange: outputRange}
}

func (h *xxh3Hasher) Evaluate(k Key) uint64 {
	n := k.wordCount()

	var stack [maxStackWords * 8]byte
	buf := stack[:0]
	if n <= maxStackWords {
		buf = stack[:n*8]
	} else {
		buf = make([]byte, n*8)
	}

	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint64(buf[i*8:], k.word(i))
	}

	x := xxh3.HashSeed(buf, h.seed)
	return reduceRange(x, h.outRange)
}

func (h *xxh3Hasher) Reseed(seed uint64) Hasher { return newXXH3Hasher(seed, h.outRange) }

func (h *xxh3Hasher) Range() uint64 { return h.outRange }

func (h *xxh3Hasher) Seed() uint64 { return h.seed }

// XXH3Family is the alternate HasherFamily. It requires no polynomial
// pre-mix: XXH3 already accepts multi-word input directly, so composite
// keys are hashed in one pass instead of MSP's two-stage reduction.
type XXH3Family struct{}

func (XXH3Family) New(seed, outputRange uint64) Hasher { return newXXH3Hasher(seed, outputRange) }
