// testutil_test.go -- small test helper shared across this package's tests
//
// (c) Sudhi Herle 2018, adapted 2026

package fks

import "testing"

// newAsserter returns a closure that fails the test with a formatted
// message when the condition is false -- used throughout this package's
// tests in place of a table of if-err-fatal boilerplate.
func newAsserter(t *testing.T) func(cond bool, format string, args ...interface{}) {
	t.Helper()
	return func(cond bool, format string, args ...interface{}) {
		if !cond {
			t.Helper()
			t.Fatalf(format, args...)
		}
	}
}
