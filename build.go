// build.go -- the FKS construction engine
//
// (c) Sudhi Herle 2018, adapted 2026
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package fks

import "fmt"

const (
	// defaultTopRetry is R_top, the top-level hasher retry budget (spec §4.3.1).
	defaultTopRetry = 32

	// defaultBucketRetry is R_bucket, the per-bucket second-level retry budget
	// (spec §4.3.3).
	defaultBucketRetry = 128

	// defaultC1 is the top-level acceptance constant: a top-level hasher is
	// accepted when Σk_i² < c1*n (spec §4.3.1).
	defaultC1 = 4.0
)

// Entry is one (key, value) pair handed to Build. Keys must be distinct.
type Entry struct {
	Key   Key
	Value []byte
}

// BuildOptions configures Build. The zero value is usable: it selects
// MSPFamily, a fresh CryptoEntropy source, and the spec's recommended
// retry budgets and acceptance constant.
type BuildOptions struct {
	// Family selects the hash family driving both levels of the
	// construction. Defaults to MSPFamily{}.
	Family HasherFamily

	// Entropy supplies the initial seed draws for the top-level hasher
	// and each bucket's second-level hasher. Defaults to CryptoEntropy{}.
	// Use CounterEntropy for reproducible builds.
	Entropy EntropySource

	// TopRetry bounds top-level hasher attempts (R_top). Defaults to 32.
	TopRetry int

	// BucketRetry bounds per-bucket second-level hasher attempts
	// (R_bucket). Defaults to 128.
	BucketRetry int

	// C1 is the top-level acceptance constant. Defaults to 4.
	C1 float64

	// CopyKeys, when true, copies BytesKey backing arrays into
	// map-owned storage so the caller's slices may be reused or
	// discarded after Build returns. Defaults to false (the map
	// borrows the caller's backing arrays, per the data model's
	// "does not own non-primitive key storage unless requested").
	CopyKeys bool
}

func (o *BuildOptions) setDefaults() {
	if o.Family == nil {
		o.Family = MSPFamily{}
	}
	if o.Entropy == nil {
		o.Entropy = CryptoEntropy{}
	}
	if o.TopRetry <= 0 {
		o.TopRetry = defaultTopRetry
	}
	if o.BucketRetry <= 0 {
		o.BucketRetry = defaultBucketRetry
	}
	if o.C1 <= 0 {
		o.C1 = defaultC1
	}
}

// Build constructs a PerfectMap from entries using opts (spec §4.3, §6
// "Builder entry point"). An empty entries slice is accepted and yields a
// map that answers absent to every query (spec §7 "Empty input").
// Duplicate keys are rejected before any hash trial (ErrDuplicateKey).
// Exhausting the top-level retry budget -- whether from repeated
// acceptance-test failures or repeated bucket exhaustion -- is reported as
// ErrTopLevelExhaustion.
func Build(entries []Entry, opts BuildOptions) (*PerfectMap, error) {
	opts.setDefaults()

	n := len(entries)
	if n == 0 {
		return &PerfectMap{family: opts.Family, topHasher: opts.Family.New(0, 0)}, nil
	}

	if err := checkDuplicates(entries); err != nil {
		return nil, err
	}

	m := uint64(n)
	seed := opts.Entropy.Next()

	var lastErr error
	for attempt := 0; attempt < opts.TopRetry; attempt++ {
		top := opts.Family.New(seed, m)

		buckets, counts := partition(entries, top, m)
		total := sumSquares(counts)

		if float64(total) >= opts.C1*float64(n) {
			lastErr = fmt.Errorf("top-level acceptance test failed (T=%d, n=%d, c1=%.1f)", total, n, opts.C1)
			seed = successor(seed)
			continue
		}

		pm, err := assemble(buckets, counts, opts)
		if err != nil {
			// Bucket exhaustion is folded into a top-level retry (spec §7):
			// it is not surfaced to the caller unless the outer budget is
			// also exhausted.
			lastErr = err
			seed = successor(seed)
			continue
		}

		pm.family = opts.Family
		pm.topHasher = top
		return pm, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrTopLevelExhaustion, lastErr)
}

// checkDuplicates rejects entries with equal keys. BytesKey values are
// not comparable with Go's built-in ==, so int and byte-sequence keys are
// tracked in separate maps keyed by a comparable proxy (the raw uint64,
// or the key bytes converted to a string).
func checkDuplicates(entries []Entry) error {
	ints := make(map[uint64]struct{}, len(entries))
	strs := make(map[string]struct{}, len(entries))

	for _, e := range entries {
		switch k := e.Key.(type) {
		case IntKey:
			if _, ok := ints[uint64(k)]; ok {
				return errDuplicateKey(k)
			}
			ints[uint64(k)] = struct{}{}

		case BytesKey:
			s := string(k)
			if _, ok := strs[s]; ok {
				return errDuplicateKey(k)
			}
			strs[s] = struct{}{}

		default:
			return fmt.Errorf("fks: unsupported key type %T", e.Key)
		}
	}
	return nil
}

// partition groups entries by their top-level hash, preserving no
// particular within-bucket order (spec §4.3.2).
func partition(entries []Entry, top Hasher, m uint64) ([][]Entry, []int) {
	buckets := make([][]Entry, m)
	for _, e := range entries {
		i := top.Evaluate(e.Key)
		buckets[i] = append(buckets[i], e)
	}

	counts := make([]int, m)
	for i, b := range buckets {
		counts[i] = len(b)
	}
	return buckets, counts
}

// sumSquares computes T = Σk_i², the top-level acceptance statistic.
func sumSquares(counts []int) int64 {
	var t int64
	for _, k := range counts {
		t += int64(k) * int64(k)
	}
	return t
}

// assemble runs the per-bucket second-level search (spec §4.3.3) and lays
// out the flat slot array (spec §4.3.4). It returns errBucketExhaustion,
// unwrapped, if any bucket's search fails -- Build is responsible for
// folding that into its own retry loop.
func assemble(buckets [][]Entry, counts []int, opts BuildOptions) (*PerfectMap, error) {
	m := len(buckets)

	slotCounts := make([]uint64, m)
	for i, c := range counts {
		switch {
		case c == 0:
			slotCounts[i] = 0
		case c == 1:
			slotCounts[i] = 1
		default:
			// s_i = k_i^2 exactly -- the rounding policy pinned in
			// DESIGN.md's Open Question 1.
			slotCounts[i] = uint64(c) * uint64(c)
		}
	}

	offsets := make([]uint64, m)
	var total uint64
	for i, s := range slotCounts {
		offsets[i] = total
		total += s
	}

	slots := make([]slot, total)
	descriptors := make([]BucketDescriptor, m)

	for i, bucket := range buckets {
		d := BucketDescriptor{Offset: offsets[i], SlotCount: slotCounts[i]}

		switch counts[i] {
		case 0:
			// empty bucket: no hasher, no slots

		case 1:
			d.Hasher = constZeroHasher{}
			placeEntry(slots, d.Offset, bucket[0], opts.CopyKeys)

		default:
			h, err := bucketSearch(bucket, opts.Family, opts.Entropy, opts.BucketRetry)
			if err != nil {
				return nil, err
			}
			d.Hasher = h
			for _, e := range bucket {
				j := h.Evaluate(e.Key)
				placeEntry(slots, d.Offset+j, e, opts.CopyKeys)
			}
		}

		descriptors[i] = d
	}

	return &PerfectMap{descriptors: descriptors, slots: slots}, nil
}

func placeEntry(slots []slot, at uint64, e Entry, copyKeys bool) {
	k := e.Key
	if copyKeys {
		k = own(k)
	}
	slots[at] = slot{occupied: true, key: k, value: e.Value}
}

// bucketSearch draws a per-bucket seed and retries with its successor
// until a hasher is found that is collision-free on bucket's keys, or the
// retry budget is exhausted (spec §4.3.3). occ is reused across attempts
// as pure scratch space.
func bucketSearch(bucket []Entry, family HasherFamily, entropy EntropySource, maxRetry int) (Hasher, error) {
	k := len(bucket)
	s := uint64(k) * uint64(k)
	occ := newBitVector(s)

	seed := entropy.Next()
	for attempt := 0; attempt < maxRetry; attempt++ {
		occ.Reset()
		h := family.New(seed, s)

		collided := false
		for _, e := range bucket {
			j := h.Evaluate(e.Key)
			if occ.IsSet(j) {
				collided = true
				break
			}
			occ.Set(j)
		}

		if !collided {
			return h, nil
		}
		seed = successor(seed)
	}

	return nil, errBucketExhaustion
}
