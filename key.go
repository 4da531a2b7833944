// key.go -- key representations accepted by the FKS builder and query path
//
// (c) Sudhi Herle 2018, adapted 2026
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package fks

import "bytes"

// Key is the representation accepted by Build and Lookup. The core never
// interprets a caller's domain type directly -- reducing a domain type to
// a Key (a fixed-width unsigned integer, or an immutable byte sequence of
// known length) is the caller's responsibility.
//
// Key is implemented by IntKey and BytesKey. wordCount/word let the
// universal hash primitives walk a key's 64-bit-word representation
// without ever allocating a slice on the query path -- that's the whole
// reason this is a tiny two-method reader instead of a words() []uint64
// getter.
type Key interface {
	wordCount() int
	word(i int) uint64
	equal(Key) bool
}

// IntKey wraps a fixed-width unsigned integer key (w <= 64 bits).
type IntKey uint64

func (k IntKey) wordCount() int      { return 1 }
func (k IntKey) word(i int) uint64   { return uint64(k) }
func (k IntKey) equal(o Key) bool {
	v, ok := o.(IntKey)
	return ok && v == k
}

// BytesKey wraps an immutable byte-sequence key. By default the map does
// not copy the backing array -- the caller owns it and must keep it alive
// and unmodified for the lifetime of the map, unless the map was built
// with CopyKeys set (see BuildOptions).
type BytesKey []byte

func (k BytesKey) wordCount() int {
	n := (len(k) + 7) / 8
	if n == 0 {
		n = 1
	}
	return n
}

// word returns the i'th little-endian 64-bit word of the key, zero-padded
// past the end of the byte slice. Computed on demand, never materialized
// as a slice.
func (k BytesKey) word(i int) uint64 {
	var w uint64
	base := i * 8
	for j := 0; j < 8; j++ {
		idx := base + j
		if idx >= len(k) {
			break
		}
		w |= uint64(k[idx]) << (8 * uint(j))
	}
	return w
}

func (k BytesKey) equal(o Key) bool {
	v, ok := o.(BytesKey)
	return ok && bytes.Equal(v, k)
}

// own returns a copy of the key with its own backing storage, used when
// BuildOptions.CopyKeys is set. IntKey is already self-contained.
func own(k Key) Key {
	if b, ok := k.(BytesKey); ok {
		cp := make(BytesKey, len(b))
		copy(cp, b)
		return cp
	}
	return k
}
