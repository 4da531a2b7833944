package fks

import (
	"errors"
	"fmt"
	"testing"
)

// Each of these exercises one end-to-end behavioral guarantee the
// construction and query path together must hold.

func buildIntEntries(n int, stride int) []Entry {
	entries := make([]Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = Entry{Key: IntKey(i * stride), Value: []byte(fmt.Sprintf("val-%d", i))}
	}
	return entries
}

func TestPropertyEveryInsertedKeyIsFound(t *testing.T) {
	assert := newAsserter(t)

	families := map[string]HasherFamily{"msp": MSPFamily{}, "xxh3": XXH3Family{}}
	for name, fam := range families {
		entries := buildIntEntries(777, 104729)
		pm, err := Build(entries, BuildOptions{Family: fam, Entropy: NewCounterEntropy(41)})
		assert(err == nil, "[%s] Build failed: %v", name, err)

		for _, e := range entries {
			v, ok := pm.Lookup(e.Key)
			assert(ok, "[%s] inserted key %v not found", name, e.Key)
			assert(string(v) == string(e.Value), "[%s] wrong value for key %v", name, e.Key)
		}
	}
}

func TestPropertyNoFalsePositives(t *testing.T) {
	assert := newAsserter(t)

	entries := buildIntEntries(500, 3)
	pm, err := Build(entries, BuildOptions{Entropy: NewCounterEntropy(2)})
	assert(err == nil, "Build failed: %v", err)

	// Every key not a multiple of 3 within the inserted range was never
	// inserted -- equality is checked on every candidate slot, so none of
	// these may ever report present.
	for i := 0; i < 1500; i++ {
		if i%3 == 0 && i/3 < 500 {
			continue
		}
		_, ok := pm.Lookup(IntKey(i))
		assert(!ok, "key %d was never inserted but Lookup reported present", i)
	}
}

func TestPropertySlotCountIsLinearInN(t *testing.T) {
	assert := newAsserter(t)

	for _, n := range []int{1, 2, 10, 100, 1000} {
		entries := buildIntEntries(n, 97)
		pm, err := Build(entries, BuildOptions{Entropy: NewCounterEntropy(uint64(n))})
		assert(err == nil, "Build(n=%d) failed: %v", n, err)
		assert(pm.Size() <= int(defaultC1*float64(n))+n, "S=%d exceeds the O(n) bound for n=%d", pm.Size(), n)
	}
}

func TestPropertyRepeatedBuildsFromFreshCounterEntropyAgree(t *testing.T) {
	assert := newAsserter(t)

	entries := buildIntEntries(300, 13)
	var sizes []int
	for i := 0; i < 3; i++ {
		pm, err := Build(entries, BuildOptions{Entropy: NewCounterEntropy(555)})
		assert(err == nil, "Build attempt %d failed: %v", i, err)
		sizes = append(sizes, pm.Size())
	}
	for i := 1; i < len(sizes); i++ {
		assert(sizes[i] == sizes[0], "build %d produced a different slot count (%d vs %d) from the same entropy sequence", i, sizes[i], sizes[0])
	}
}

func TestPropertyEmptyMapAnswersAbsentForAnyKey(t *testing.T) {
	assert := newAsserter(t)

	pm, err := Build(nil, BuildOptions{})
	assert(err == nil, "Build(nil) failed: %v", err)

	for _, k := range []Key{IntKey(0), IntKey(1), IntKey(^uint64(0)), BytesKey("anything")} {
		_, ok := pm.Lookup(k)
		assert(!ok, "empty map reported present for key %v", k)
	}
}

func TestPropertyMixedKeyTypesAllowed(t *testing.T) {
	assert := newAsserter(t)

	entries := []Entry{
		{Key: IntKey(1), Value: []byte("a")},
		{Key: BytesKey("b"), Value: []byte("b")},
	}
	pm, err := Build(entries, BuildOptions{})
	assert(err == nil, "Build with mixed key types across distinct entries must be allowed: %v", err)

	v, ok := pm.Lookup(IntKey(1))
	assert(ok && string(v) == "a", "IntKey(1) lookup failed in a mixed-key-type map")
	v, ok = pm.Lookup(BytesKey("b"))
	assert(ok && string(v) == "b", "BytesKey(\"b\") lookup failed in a mixed-key-type map")
}

func TestPropertyRetryBudgetsAreHonored(t *testing.T) {
	assert := newAsserter(t)

	entries := buildIntEntries(50, 1)
	opts := BuildOptions{Entropy: NewCounterEntropy(1), TopRetry: 1, BucketRetry: 1}
	// A single retry is not guaranteed to succeed, but Build must never
	// loop past the requested budget -- either it returns a usable map or
	// a wrapped ErrTopLevelExhaustion, never anything else.
	pm, err := Build(entries, opts)
	if err != nil {
		assert(errors.Is(err, ErrTopLevelExhaustion), "Build failure with an exhausted retry budget must wrap ErrTopLevelExhaustion, got %v", err)
		return
	}
	assert(pm != nil, "Build returned neither an error nor a map")
}
