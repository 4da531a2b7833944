// format.go -- on-disk layout of a serialized perfect map
//
// (c) Sudhi Herle 2018, adapted 2026
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package persist

// The file format is the teacher's constant-DB shape generalized from a
// single-level CHD table to a two-level FKS layout:
//
//   - 64 byte file header, all multibyte ints big-endian:
//       magic    [4]byte "FKSB"
//       family   uint32  0 = MSPFamily, 1 = XXH3Family
//       salt     [16]byte  siphash key for record integrity
//       nkeys    uint64
//       nbuckets uint64  top-level bucket count m
//       topSeed  uint64
//       tbloff   uint64  file offset of the bucket/slot tables
//
//   - Contiguous value records, one per occupied slot:
//       cksum    uint64  siphash(recOff, keykind, keylen, vlen, keybytes, val), big-endian
//       keykind  byte    0 = IntKey, 1 = BytesKey
//       keylen   uint32  big-endian
//       vlen     uint32  big-endian
//       keybytes []byte
//       val      []byte
//
//   - Possibly a gap until the next page boundary
//   - Bucket table: nbuckets entries, little-endian (mmap'd as-is):
//       offset    uint64  index into the slot table
//       slotcount uint64
//       seed      uint64  0 for empty or single-key buckets
//   - Slot table: S entries, little-endian (mmap'd as-is):
//       recoff    uint64  file offset of the value record, or
//                         noRecord if the slot was never occupied
//   - 32 bytes of SHA512-256 over the bucket table, the slot table, and
//     then the header, hashed in that order.
const (
	magic       = "FKSB"
	headerSize  = 64
	trailerSize = 32

	bucketEntrySize = 24 // offset + slotcount + seed, each uint64
	slotEntrySize   = 8  // recoff, uint64

	familyMSP  uint32 = 0
	familyXXH3 uint32 = 1

	keyKindInt   byte = 0
	keyKindBytes byte = 1
)

// noRecord marks a slot table entry for a slot that was never occupied.
const noRecord = ^uint64(0)
