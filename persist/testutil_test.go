package persist

import "testing"

func newAsserter(t *testing.T) func(cond bool, format string, args ...interface{}) {
	t.Helper()
	return func(cond bool, format string, args ...interface{}) {
		if !cond {
			t.Helper()
			t.Fatalf(format, args...)
		}
	}
}
