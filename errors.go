// errors.go -- error taxonomy for the FKS builder
//
// (c) Sudhi Herle 2018, adapted 2026
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package fks

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey is returned by Build when two entries carry equal
	// keys. Detected before any hash trial.
	ErrDuplicateKey = errors.New("fks: duplicate key")

	// ErrTopLevelExhaustion is returned when no top-level hasher keeps
	// bucket-size variance bounded (T < c1*n) within the retry budget,
	// or every top-level attempt also suffered a bucket exhaustion.
	ErrTopLevelExhaustion = errors.New("fks: top-level hasher exhausted retry budget")

	// errBucketExhaustion is an internal signal: no second-level seed was
	// collision-free for some bucket within its retry budget. Build folds
	// this into a top-level retry and only surfaces ErrTopLevelExhaustion
	// to the caller if the outer retry budget is also exhausted (spec §7).
	errBucketExhaustion = errors.New("fks: bucket exhausted second-level retry budget")
)

func errDuplicateKey(k Key) error {
	return fmt.Errorf("%w: %v", ErrDuplicateKey, k)
}
