// endian_le.go -- endian conversion for the common little-endian case;
// conversion _to_ little-endian is idempotent here, mirroring
// endian_be.go's big-endian case. We build this file into every arch not
// covered by endian_be.go.
//
// (c) Sudhi Herle 2018, adapted 2026
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// +build !ppc64,!mips,!mips64

package persist

// toLittleEndianUint64 is the only conversion the bucket/slot table
// reader calls (reader.go) -- every table field is a uint64 (format.go),
// so the 32-bit/16-bit and to-big-endian variants this package's teacher
// carried have no caller here and were dropped.
func toLittleEndianUint64(v uint64) uint64 { return v }
