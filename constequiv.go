// constequiv.go -- the compile-time "door" stand-in for the MSP hasher
//
// (c) 2026
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package fks

// ConstEquivalent evaluates the MSP hasher for (seed, outputRange, k)
// using nothing but the pure, value-in/value-out helpers (evalMultiplyShift,
// evalPolynomial, reduceRange) that the runtime MSP type also calls.
//
// The source this library is modeled on keeps two parallel method sets --
// one usable from ordinary code, one callable from a constant-evaluation
// context -- because its host language doesn't yet allow constant-evaluable
// methods inside the family's trait. Go has no constant-evaluation context
// of that kind, so there is nothing to keep in lock-step by convention:
// ConstEquivalent and MSP.Evaluate both call evalMSP over the exact same
// mspParams value, so they cannot drift. This is the equivalence contract
// spec §4.2 and §8 property 4 require, made true by construction rather
// than by a second implementation that has to be kept in sync by hand.
func ConstEquivalent(seed, outputRange uint64, k Key) uint64 {
	return evalMSP(newMSPParams(seed, outputRange), k)
}
