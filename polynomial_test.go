package fks

import "testing"

func TestReduceMersenne61Canonical(t *testing.T) {
	assert := newAsserter(t)

	assert(reduceMersenne61(mersennePrime61) == 0, "prime itself must reduce to 0")
	assert(reduceMersenne61(0) == 0, "0 must stay 0")
	assert(reduceMersenne61(mersennePrime61-1) == mersennePrime61-1, "values below the prime are already canonical")
}

func TestMulModMersenne61Bounds(t *testing.T) {
	assert := newAsserter(t)

	vals := []uint64{0, 1, 2, mersennePrime61 - 1, mersennePrime61 / 2}
	for _, a := range vals {
		for _, b := range vals {
			r := mulModMersenne61(a, b)
			assert(r < mersennePrime61, "mulModMersenne61(%d,%d)=%d >= p", a, b, r)
		}
	}
}

func TestMulModMersenne61Identity(t *testing.T) {
	assert := newAsserter(t)

	for _, a := range []uint64{0, 1, 42, mersennePrime61 - 1} {
		r := mulModMersenne61(a, 1)
		assert(r == a, "a*1 should equal a, got %d for a=%d", r, a)
	}
}

func TestPolynomialDeterministic(t *testing.T) {
	assert := newAsserter(t)

	p := newPolynomialParams(0xabc123)
	k := BytesKey("the quick brown fox jumps over the lazy dog")
	a := evalPolynomial(p, k)
	b := evalPolynomial(p, k)
	assert(a == b, "evalPolynomial not deterministic: %d != %d", a, b)
}

func TestPolynomialBounded(t *testing.T) {
	assert := newAsserter(t)

	p := newPolynomialParams(99)
	k := BytesKey("0123456789abcdef0123456789abcdef0123456789")
	v := evalPolynomial(p, k)
	assert(v < mersennePrime61, "evalPolynomial result %d not reduced mod p", v)
}

func TestPolynomialSensitiveToContent(t *testing.T) {
	assert := newAsserter(t)

	p := newPolynomialParams(1)
	a := evalPolynomial(p, BytesKey("hello world, this is more than eight bytes"))
	b := evalPolynomial(p, BytesKey("hallo world, this is more than eight bytes"))
	assert(a != b, "single-byte difference produced identical polynomial hash (astronomically unlikely, check params)")
}

func TestNewPolynomialParamsNonZeroMultiplier(t *testing.T) {
	assert := newAsserter(t)

	for _, seed := range []uint64{0, 1, 2, 1 << 63} {
		p := newPolynomialParams(seed)
		assert(p.a != 0, "polynomial multiplier must never be 0 (seed=%d)", seed)
	}
}
