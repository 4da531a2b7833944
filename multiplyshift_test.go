package fks

import "testing"

func TestMultiplyShiftOddMultiplier(t *testing.T) {
	assert := newAsserter(t)

	for _, seed := range []uint64{0, 2, 4, 1 << 40, ^uint64(0) - 1} {
		p := newMultiplyShiftParams(seed, 32)
		assert(p.a&1 == 1, "multiplier not odd for seed %d: a=%x", seed, p.a)
	}
}

func TestMultiplyShiftOutBitsClamped(t *testing.T) {
	assert := newAsserter(t)

	p := newMultiplyShiftParams(7, 0)
	assert(p.shift == 63, "outBits=0 should clamp to 1 bit of output, got shift=%d", p.shift)

	p = newMultiplyShiftParams(7, 200)
	assert(p.shift == 0, "outBits>64 should clamp to 64, got shift=%d", p.shift)
}

func TestMultiplyShiftDeterministic(t *testing.T) {
	assert := newAsserter(t)

	p := newMultiplyShiftParams(0xdeadbeef, 20)
	a := evalMultiplyShift(p, 12345)
	b := evalMultiplyShift(p, 12345)
	assert(a == b, "evalMultiplyShift not deterministic: %d != %d", a, b)
}

func TestMultiplyShiftRangeBound(t *testing.T) {
	assert := newAsserter(t)

	p := newMultiplyShiftParams(0x1234, 10)
	limit := uint64(1) << 10
	for x := uint64(0); x < 5000; x++ {
		v := evalMultiplyShift(p, x)
		assert(v < limit, "output %d exceeds 2^10", v)
	}
}
