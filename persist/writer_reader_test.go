package persist

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sherle/fks"
)

func buildTestMap(t *testing.T, n int) ([]fks.Entry, *fks.PerfectMap) {
	t.Helper()

	entries := make([]fks.Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = fks.Entry{Key: fks.IntKey(i * 101), Value: []byte(fmt.Sprintf("value-%d", i))}
	}

	pm, err := fks.Build(entries, fks.BuildOptions{Entropy: fks.NewCounterEntropy(uint64(n))})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return entries, pm
}

func TestWriterReaderRoundTrip(t *testing.T) {
	assert := newAsserter(t)

	entries, pm := buildTestMap(t, 250)

	dir := t.TempDir()
	fn := filepath.Join(dir, "test.fksb")

	w, err := NewWriter(fn)
	assert(err == nil, "NewWriter failed: %v", err)

	err = w.Freeze(entries, pm)
	assert(err == nil, "Freeze failed: %v", err)

	rd, err := Open(fn, 0)
	assert(err == nil, "Open failed: %v", err)
	defer rd.Close()

	assert(rd.Len() == len(entries), "Len()=%d, want %d", rd.Len(), len(entries))

	for _, e := range entries {
		v, ok := rd.Lookup(e.Key)
		assert(ok, "lookup missed key %v", e.Key)
		assert(string(v) == string(e.Value), "lookup of %v returned %q, want %q", e.Key, v, e.Value)
	}

	_, ok := rd.Lookup(fks.IntKey(999999))
	assert(!ok, "lookup of an absent key must report absent")
}

func TestWriterReaderBytesKeys(t *testing.T) {
	assert := newAsserter(t)

	words := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot"}
	entries := make([]fks.Entry, len(words))
	for i, w := range words {
		entries[i] = fks.Entry{Key: fks.BytesKey(w), Value: []byte(w)}
	}

	pm, err := fks.Build(entries, fks.BuildOptions{Entropy: fks.NewCounterEntropy(7)})
	assert(err == nil, "Build failed: %v", err)

	dir := t.TempDir()
	fn := filepath.Join(dir, "test-bytes.fksb")

	w, err := NewWriter(fn)
	assert(err == nil, "NewWriter failed: %v", err)
	assert(w.Freeze(entries, pm) == nil, "Freeze failed")

	rd, err := Open(fn, 0)
	assert(err == nil, "Open failed: %v", err)
	defer rd.Close()

	for _, word := range words {
		v, ok := rd.Lookup(fks.BytesKey(word))
		assert(ok, "lookup missed key %q", word)
		assert(string(v) == word, "lookup of %q returned %q", word, v)
	}

	_, ok := rd.Lookup(fks.BytesKey("not-a-member"))
	assert(!ok, "lookup of an absent byte-slice key must report absent")
}

func TestWriterReaderXXH3Family(t *testing.T) {
	assert := newAsserter(t)

	entries := make([]fks.Entry, 64)
	for i := range entries {
		entries[i] = fks.Entry{Key: fks.IntKey(i), Value: []byte(fmt.Sprintf("x%d", i))}
	}

	pm, err := fks.Build(entries, fks.BuildOptions{Family: fks.XXH3Family{}, Entropy: fks.NewCounterEntropy(3)})
	assert(err == nil, "Build with XXH3Family failed: %v", err)

	dir := t.TempDir()
	fn := filepath.Join(dir, "test-xxh3.fksb")

	w, err := NewWriter(fn)
	assert(err == nil, "NewWriter failed: %v", err)
	assert(w.Freeze(entries, pm) == nil, "Freeze failed")

	rd, err := Open(fn, 0)
	assert(err == nil, "Open failed: %v", err)
	defer rd.Close()

	for _, e := range entries {
		v, ok := rd.Lookup(e.Key)
		assert(ok, "lookup missed key %v", e.Key)
		assert(string(v) == string(e.Value), "lookup mismatch for %v", e.Key)
	}
}

func TestWriterReaderEmptyMap(t *testing.T) {
	assert := newAsserter(t)

	pm, err := fks.Build(nil, fks.BuildOptions{})
	assert(err == nil, "Build(nil) failed: %v", err)

	dir := t.TempDir()
	fn := filepath.Join(dir, "empty.fksb")

	w, err := NewWriter(fn)
	assert(err == nil, "NewWriter failed: %v", err)
	assert(w.Freeze(nil, pm) == nil, "Freeze of an empty map failed")

	rd, err := Open(fn, 0)
	assert(err == nil, "Open of an empty map's file failed: %v", err)
	defer rd.Close()

	assert(rd.Len() == 0, "Len() of an empty map must be 0, got %d", rd.Len())
	_, ok := rd.Lookup(fks.IntKey(1))
	assert(!ok, "lookup on an empty persisted map must report absent")
}

func TestOpenRejectsTruncatedFile(t *testing.T) {
	assert := newAsserter(t)

	dir := t.TempDir()
	fn := filepath.Join(dir, "truncated.fksb")
	assert(os.WriteFile(fn, []byte("too small"), 0600) == nil, "setup: write failed")

	_, err := Open(fn, 0)
	assert(err != nil, "Open must reject a file smaller than the header+trailer")
}

func TestOpenRejectsBadMagic(t *testing.T) {
	assert := newAsserter(t)

	_, pm := buildTestMap(t, 5)
	_ = pm

	dir := t.TempDir()
	fn := filepath.Join(dir, "badmagic.fksb")
	buf := make([]byte, headerSize+trailerSize)
	assert(os.WriteFile(fn, buf, 0600) == nil, "setup: write failed")

	_, err := Open(fn, 0)
	assert(err != nil, "Open must reject a file with a zeroed/bad magic")
}
