// hasher.go -- the Hasher/HasherFamily abstraction and the MSP hasher
//
// (c) Sudhi Herle 2018, adapted 2026
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package fks

import "math/bits"

// Hasher is the contract the FKS construction engine and query structure
// drive: seed-derived construction, evaluation into [0, Range()), and
// re-seeding. Every Hasher implementation must be self-contained (hold
// all of its own parameters) and its Evaluate must be pure, branch-poor,
// and allocation-free -- it sits on the query hot path.
type Hasher interface {
	// Evaluate returns an index in [0, Range()) for key k.
	Evaluate(k Key) uint64

	// Reseed returns a new instance with the same Range() derived from
	// seed -- used by the construction engine's retry loops.
	Reseed(seed uint64) Hasher

	// Range returns the output range this instance was constructed with.
	Range() uint64
}

// HasherFamily constructs Hasher instances from a seed and an output
// range. The FKS construction engine is written once against this
// interface (spec §4.2, §9) so that MSPFamily and XXH3Family (and any
// other family satisfying it) drive identical construction and query
// code.
type HasherFamily interface {
	New(seed, outputRange uint64) Hasher
}

// mspParams is the pure, value-only parameter set for one MSP hasher
// instance -- no pointers, no interfaces, safe to construct and evaluate
// from any context. Both the runtime MSP type and ConstEquivalent call
// the exact same evalMSP function over this type, which is what makes the
// two "doors" (spec §4.2's compile-time equivalence contract) produce
// byte-identical results by construction.
type mspParams struct {
	ms       multiplyShiftParams
	poly     polynomialParams
	outRange uint64
}

// newMSPParams derives both the multiply-shift and polynomial parameter
// sets from a single entropy word, so a failed trial can be retried by
// handing in a successor seed (spec §4.1(c)).
func newMSPParams(seed, outputRange uint64) mspParams {
	s := seed
	msSeed := splitmix64(&s)
	return mspParams{
		ms:       newMultiplyShiftParams(msSeed, msOutBits(outputRange)),
		poly:     newPolynomialParams(seed),
		outRange: outputRange,
	}
}

// msOutBits picks how many high bits evalMultiplyShift should extract for
// a given output range. When outputRange is an exact power of two, that's
// log2(outputRange): h(x) = (a*x) >> (64-ell) then already lands in
// [0, outputRange), and -- critically -- it does so by keeping the *high*
// bits of the product, which is what makes Dietzfelbinger's guarantee
// hold. Masking the *low* bits instead (as a fixed 64-bit hash reduced by
// "& (n-1)" would do) only depends on (a mod n) and (x mod n), so any two
// keys congruent mod n collide under every seed -- retrying could never
// separate them. For a non-power-of-two range, the full 64-bit hash is
// produced instead and reduceRange's multiply-high step does the actual
// range reduction.
func msOutBits(outputRange uint64) uint {
	if outputRange == 0 || outputRange&(outputRange-1) != 0 {
		return 64
	}
	return uint(bits.TrailingZeros64(outputRange))
}

// evalMSP is the MSP hasher's pure evaluation core (spec §4.2): a
// single-word key goes straight through multiply-shift; a multi-word key
// is first collapsed to one word by the polynomial primitive. The result
// is then folded into [0, outRange) via reduceRange.
func evalMSP(p mspParams, k Key) uint64 {
	var w uint64
	if k.wordCount() == 1 {
		w = k.word(0)
	} else {
		w = evalPolynomial(p.poly, k)
	}
	h := evalMultiplyShift(p.ms, w)
	return reduceRange(h, p.outRange)
}

// reduceRange folds x into [0, n). For a power-of-two n this is a plain
// mask. On the MSP path msOutBits has already had evalMultiplyShift
// extract exactly log2(n) high bits, so for n >= 2 x is already < n and
// the mask changes nothing; for n == 1 multiply-shift still yields one
// bit, which the mask clears to 0. xxh3Hasher passes its full 64-bit
// hash, for which the mask is the reduction. For a non-power-of-two n, x
// is the full 64-bit hash and this is
// Lemire's multiply-high reduction (spec §4.1.1, §4.2: "reduce modulo
// bucket_count by multiply-high if bucket_count is not a power of two").
func reduceRange(x, n uint64) uint64 {
	if n == 0 {
		return 0
	}
	if n&(n-1) == 0 {
		return x & (n - 1)
	}
	hi, _ := bits.Mul64(x, n)
	return hi
}

// MSP is the hash family the FKS engine actually uses: multiply-shift
// combined with a polynomial pre-mix for composite keys (spec §4.2).
type MSP struct {
	seed   uint64
	params mspParams
}

// newMSP constructs an MSP hasher from (seed, bucket_count).
func newMSP(seed, outputRange uint64) *MSP {
	return &MSP{seed: seed, params: newMSPParams(seed, outputRange)}
}

func (m *MSP) Evaluate(k Key) uint64 { return evalMSP(m.params, k) }

func (m *MSP) Reseed(seed uint64) Hasher { return newMSP(seed, m.params.outRange) }

func (m *MSP) Range() uint64 { return m.params.outRange }

// Seed reports the seed this instance was constructed with, for Inspect.
func (m *MSP) Seed() uint64 { return m.seed }

// MSPFamily is the default HasherFamily (spec §1, §4.2).
type MSPFamily struct{}

func (MSPFamily) New(seed, outputRange uint64) Hasher { return newMSP(seed, outputRange) }

// constZeroHasher is the trivial descriptor for a bucket with exactly one
// key (spec §4.3.3: "hasher is the constant zero function"). Range is
// always 1.
type constZeroHasher struct{}

func (constZeroHasher) Evaluate(Key) uint64  { return 0 }
func (constZeroHasher) Reseed(uint64) Hasher { return constZeroHasher{} }
func (constZeroHasher) Range() uint64        { return 1 }
func (constZeroHasher) Seed() uint64         { return 0 }

// SeededHasher is implemented by hashers that can report the seed they
// were constructed with. Inspect uses it to surface per-bucket seeds;
// Lookup and Build never need it.
type SeededHasher interface {
	Hasher
	Seed() uint64
}
