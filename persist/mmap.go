// mmap.go -- mmap a slice of ints/uints from a file
//
//
// (c) Sudhi Herle 2018, adapted 2026
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package persist

import (
	"reflect"
	"unsafe"
)

// bsToUint64Slice reinterprets the mmap'd bucket+slot table bytes as a
// []uint64 overlay -- the table's only field width (format.go) -- without
// copying.
func bsToUint64Slice(b []byte) []uint64 {
	n := len(b) / 8
	bh := (*reflect.SliceHeader)(unsafe.Pointer(&b))
	var v []uint64

	sh := (*reflect.SliceHeader)(unsafe.Pointer(&v))
	sh.Data = bh.Data
	sh.Len = n
	sh.Cap = n

	return v
}
