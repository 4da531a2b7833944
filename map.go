// map.go -- the FKS query structure
//
// (c) Sudhi Herle 2018, adapted 2026
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package fks

// slot is one entry in the flat second-level slot array. A slot with
// occupied == false was never written by Build -- it is padding inside a
// bucket's k_i² table (a single-key bucket's one slot is always occupied).
type slot struct {
	occupied bool
	key      Key
	value    []byte
}

// BucketDescriptor is the top-level directory entry for one bucket: where
// its slice of the flat slot array begins, how many slots it owns, and the
// second-level hasher that picks among them (spec §4.3.4, §6 "data
// model"). Hasher is nil for an empty bucket (SlotCount == 0).
type BucketDescriptor struct {
	Offset    uint64
	SlotCount uint64
	Hasher    Hasher
}

// PerfectMap is the built, queryable two-level perfect hash map (spec §4,
// §6). Its zero value is not usable -- obtain one from Build.
type PerfectMap struct {
	family      HasherFamily
	topHasher   Hasher
	descriptors []BucketDescriptor
	slots       []slot
}

// Lookup evaluates the top-level hasher, then the selected bucket's
// second-level hasher, then confirms the candidate slot's key actually
// equals k (spec §4.4). Every step is O(1) and allocation-free for
// MSPFamily-backed maps. A key absent from the original entries, or any
// key at all when the map was built from zero entries, reports ok == false.
func (pm *PerfectMap) Lookup(k Key) (value []byte, ok bool) {
	if len(pm.descriptors) == 0 {
		return nil, false
	}

	i := pm.topHasher.Evaluate(k)
	d := &pm.descriptors[i]
	if d.SlotCount == 0 {
		return nil, false
	}

	j := d.Hasher.Evaluate(k)
	s := &pm.slots[d.Offset+j]
	if !s.occupied || !s.key.equal(k) {
		return nil, false
	}
	return s.value, true
}

// Size returns S, the total length of the flat slot array backing this
// map -- the quantity spec §4.3 bounds at O(n) via the top-level
// acceptance test.
func (pm *PerfectMap) Size() int {
	return len(pm.slots)
}

// Family returns the HasherFamily this map was built with. A companion
// package that wants to serialize a built map's layout (rather than rely
// on the core for persistence, which it deliberately does not own) needs
// this to reconstruct top- and second-level hashers from the seeds
// Inspect reports.
func (pm *PerfectMap) Family() HasherFamily {
	return pm.family
}

// BucketCount returns m, the number of top-level buckets (equal to the
// number of entries Build was given, per spec §4.3.1's m = n policy).
func (pm *PerfectMap) BucketCount() int {
	return len(pm.descriptors)
}

// Inspection is the result of Inspect: a read-only snapshot of a built
// map's internal layout, for tests and diagnostics (spec's supplemented
// "inspection surface" -- the core exposes this instead of owning any
// persisted form of it).
type Inspection struct {
	TotalSlots int
	TopSeed    uint64
	Buckets    []BucketInspection
}

// BucketInspection describes one bucket's placement and occupancy.
type BucketInspection struct {
	KeyCount  int
	SlotCount uint64
	Offset    uint64
	Seed      uint64
	HasSeed   bool
	Occupied  []bool
}

// Inspect walks the built map and reports, per bucket: its key count, its
// slice of the flat slot array, its second-level seed (when the hasher
// exposes one), and which of its slots are occupied. It never mutates the
// map and allocates freely -- this is a diagnostics path, not the query
// hot path.
func (pm *PerfectMap) Inspect() Inspection {
	ins := Inspection{
		TotalSlots: len(pm.slots),
		Buckets:    make([]BucketInspection, len(pm.descriptors)),
	}

	if sh, ok := pm.topHasher.(SeededHasher); ok {
		ins.TopSeed = sh.Seed()
	}

	for i, d := range pm.descriptors {
		bi := BucketInspection{SlotCount: d.SlotCount, Offset: d.Offset}

		if sh, ok := d.Hasher.(SeededHasher); ok {
			bi.Seed, bi.HasSeed = sh.Seed(), true
		}

		occ := make([]bool, d.SlotCount)
		keyCount := 0
		for j := uint64(0); j < d.SlotCount; j++ {
			o := pm.slots[d.Offset+j].occupied
			occ[j] = o
			if o {
				keyCount++
			}
		}
		bi.Occupied = occ
		bi.KeyCount = keyCount

		ins.Buckets[i] = bi
	}

	return ins
}
