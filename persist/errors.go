// errors.go -- error taxonomy for the on-disk perfect-map format
//
// (c) Sudhi Herle 2018, adapted 2026
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package persist

import (
	"errors"
	"fmt"
)

var (
	// ErrFrozen is returned by any Writer method called after Freeze.
	ErrFrozen = errors.New("persist: writer already frozen")

	// ErrNoKey is returned by Find when the key is absent (Lookup reports
	// that case as ok == false).
	ErrNoKey = errors.New("persist: no such key")

	// ErrValueTooLarge is returned when a value exceeds the 32-bit length
	// field used in the on-disk record format.
	ErrValueTooLarge = errors.New("persist: value too large")

	// ErrCorrupt is returned when a file's header, tables, or trailer
	// checksum fail validation.
	ErrCorrupt = errors.New("persist: corrupt or truncated file")

	// ErrUnsupportedFamily is returned when a file's family flag does not
	// match a HasherFamily this package knows how to reconstruct.
	ErrUnsupportedFamily = errors.New("persist: unsupported hasher family")
)

func errShortWrite(n int) error {
	return fmt.Errorf("persist: short write (%d bytes)", n)
}
