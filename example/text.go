// text.go -- read key/value pairs from text or CSV streams

package main

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/opencoff/go-fasthash"

	"github.com/sherle/fks"
)

type record struct {
	key uint64
	val []byte
}

// AddTextFile reads key/value pairs from text file fn, where key and value
// are separated by one of the characters in delim. Empty lines and comment
// lines (starting with '#') are skipped.
func AddTextFile(fn string, delim string) ([]fks.Entry, error) {
	fd, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	if len(delim) == 0 {
		delim = " \t"
	}
	return AddTextStream(fd, delim)
}

// AddTextStream reads key/value pairs from fd the same way AddTextFile does.
func AddTextStream(fd io.Reader, delim string) ([]fks.Entry, error) {
	sc := bufio.NewScanner(bufio.NewReader(fd))
	ch := make(chan *record, 10)

	go func(sc *bufio.Scanner, ch chan *record) {
		var empty string

		for sc.Scan() {
			s := strings.TrimSpace(sc.Text())
			if len(s) == 0 || s[0] == '#' {
				continue
			}

			var k, v string

			i := strings.IndexAny(s, delim)
			if i > 0 {
				k = s[:i]
				v = s[i+1:]
			} else {
				k = s
				v = empty
			}

			if len(v) >= 4294967295 {
				continue
			}

			ch <- makeRecord(k, v)
		}

		close(ch)
	}(sc, ch)

	return entriesFromChan(ch)
}

// AddCSVFile reads key/value pairs from CSV file fn. kwfield and valfield
// name the field numbers for the key and value (default 0 and 1). comma
// and comment select the CSV delimiter and comment rune.
func AddCSVFile(fn string, comma, comment rune, kwfield, valfield int) ([]fks.Entry, error) {
	fd, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	return AddCSVStream(fd, comma, comment, kwfield, valfield)
}

// AddCSVStream is AddCSVFile reading from an already-open stream.
func AddCSVStream(fd io.Reader, comma, comment rune, kwfield, valfield int) ([]fks.Entry, error) {
	if kwfield < 0 {
		kwfield = 0
	}
	if valfield < 0 {
		valfield = 1
	}

	max := valfield
	if kwfield > valfield {
		max = kwfield
	}
	max++

	ch := make(chan *record, 10)
	cr := csv.NewReader(fd)
	cr.Comma = comma
	cr.Comment = comment
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	go func(cr *csv.Reader, ch chan *record) {
		for {
			v, err := cr.Read()
			if err != nil {
				break
			}

			if len(v) < max {
				continue
			}

			ch <- makeRecord(v[kwfield], v[valfield])
		}
		close(ch)
	}(cr, ch)

	return entriesFromChan(ch)
}

// entriesFromChan drains ch into a slice of Entry, discarding records whose
// key collides with one already seen -- Build rejects duplicates outright,
// so it is kinder to drop them here than to fail the whole load.
func entriesFromChan(ch chan *record) ([]fks.Entry, error) {
	seen := make(map[uint64]bool)
	var entries []fks.Entry
	for r := range ch {
		if seen[r.key] {
			continue
		}
		seen[r.key] = true
		entries = append(entries, fks.Entry{Key: fks.IntKey(r.key), Value: r.val})
	}
	return entries, nil
}

// makeRecord reduces a text key to a fixed-width uint64 via fasthash, the
// same hash the teacher used to turn arbitrary strings into CHD-compatible
// uint64 keys.
func makeRecord(key, val string) *record {
	h := fasthash.Hash64(0, []byte(key))
	return &record{key: h, val: []byte(val)}
}
