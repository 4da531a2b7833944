// polynomial.go -- strongly-universal polynomial hash over GF(2^61-1)
//
// (c) Sudhi Herle 2018, adapted 2026
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package fks

import "math/bits"

// mersennePrime61 is 2^61-1, a Mersenne prime. Key words are 64 bits
// wide, wider than this field, so evalPolynomial reduces each word mod p
// before folding it in; two words that differ by a multiple of p are not
// distinguished by the polynomial hash.
const mersennePrime61 = (uint64(1) << 61) - 1

// polynomialParams holds the two field elements a,b in [0,p) that define
// one polynomial-hash instance. Value type, pure functions only -- shared
// by the runtime Hasher and ConstEquivalent (spec §4.2, §9).
type polynomialParams struct {
	a, b uint64
}

// newPolynomialParams deterministically derives (a,b) from a single
// entropy word via splitmix64, so construction can retry by handing in a
// successor seed (spec §4.1: "deterministic re-derivation of the full
// parameter set from a single entropy word").
func newPolynomialParams(seed uint64) polynomialParams {
	s := seed
	a := splitmix64(&s) % mersennePrime61
	b := splitmix64(&s) % mersennePrime61
	if a == 0 {
		a = 1
	}
	return polynomialParams{a: a, b: b}
}

// evalPolynomial computes the Horner evaluation, modulo mersennePrime61,
// of the polynomial whose coefficients are k's words, then folds in the
// additive term b. Reads k's words one at a time via the Key interface so
// no intermediate []uint64 is ever allocated on the query path.
func evalPolynomial(p polynomialParams, k Key) uint64 {
	acc := uint64(0)
	for i, n := 0, k.wordCount(); i < n; i++ {
		acc = mulModMersenne61(acc, p.a)
		acc = addModMersenne61(acc, k.word(i)%mersennePrime61)
	}
	return addModMersenne61(acc, p.b)
}

// mulModMersenne61 computes a*b mod (2^61-1) using the standard Mersenne
// trick: the 128-bit product is split into high and low halves and added
// back together, using 2^64 ≡ 8 (mod 2^61-1).
func mulModMersenne61(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	t := hi * 8 // safe: a,b < 2^61 so hi < 2^58, hi*8 < 2^61
	sum, carry := bits.Add64(lo, t, 0)
	sum += carry * 8
	return reduceMersenne61(sum)
}

// addModMersenne61 computes a+b mod (2^61-1) for a,b already < 2^61-1.
func addModMersenne61(a, b uint64) uint64 {
	return reduceMersenne61(a + b)
}

// reduceMersenne61 folds the high bits above bit 61 back in, repeatedly
// (split into high/low halves and add), until the value is canonical.
func reduceMersenne61(x uint64) uint64 {
	for x > mersennePrime61 {
		x = (x & mersennePrime61) + (x >> 61)
	}
	if x == mersennePrime61 {
		x = 0
	}
	return x
}

// splitmix64 advances *s and returns the next pseudo-random word. Used
// only to fan a single entropy word out into a full parameter set
// deterministically -- not a cryptographic primitive.
func splitmix64(s *uint64) uint64 {
	*s += 0x9E3779B97F4A7C15
	z := *s
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z = z ^ (z >> 31)
	return z
}
