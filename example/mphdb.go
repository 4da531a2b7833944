// mphdb.go -- build a constant DB backed by a two-level FKS perfect hash
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// mphdb is an example of using fks.Build and the persist package. It
// constructs an on-disk constant DB from a variety of inputs:
//   - white space delimited text file: first field is key, second is value
//   - Comma Separated text file (CSV): first field is key, second is value
//
// Unlike a streaming hash-and-displace builder, FKS needs every key before
// it can run its acceptance test, so mphdb collects all entries first and
// calls fks.Build once, before handing the result to persist.Writer.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sherle/fks"
	"github.com/sherle/fks/persist"

	flag "github.com/opencoff/pflag"
)

func main() {
	var verify bool
	var cacheSize int

	usage := fmt.Sprintf("%s [options] OUTPUT [INPUT ...]", os.Args[0])

	flag.IntVarP(&cacheSize, "cache", "c", 128, "Cache `N` decoded records in memory")
	flag.BoolVarP(&verify, "verify", "V", false, "Verify a constant DB")
	flag.Usage = func() {
		fmt.Printf("mphdb - create a constant DB from txt or CSV files using FKS\nUsage: %s\n", usage)
		flag.PrintDefaults()
	}

	flag.Parse()
	args := flag.Args()

	if len(args) < 1 {
		die("No output file name!\nUsage: %s\n", usage)
	}

	fn := args[0]
	args = args[1:]

	if verify {
		db, err := persist.Open(fn, cacheSize)
		if err != nil {
			die("Can't read %s: %s", fn, err)
		}

		fmt.Printf("%s: %d records\n", fn, db.Len())
		db.Close()
		return
	}

	var entries []fks.Entry

	if len(args) > 0 {
		for _, f := range args {
			var part []fks.Entry
			var err error

			switch {
			case strings.HasSuffix(f, ".txt"):
				part, err = AddTextFile(f, " \t")

			case strings.HasSuffix(f, ".csv"):
				part, err = AddCSVFile(f, ',', '#', 0, 1)

			default:
				warn("Don't know how to add %s", f)
				continue
			}

			if err != nil {
				warn("can't add %s: %s", f, err)
				continue
			}

			entries = append(entries, part...)
			fmt.Printf("+ %s: %d records\n", f, len(part))
		}
	} else {
		part, err := AddTextStream(os.Stdin, " \t")
		if err != nil {
			die("can't add STDIN: %s", err)
		}

		entries = append(entries, part...)
		fmt.Printf("+ <STDIN>: %d records\n", len(part))
	}

	pm, err := fks.Build(entries, fks.BuildOptions{})
	if err != nil {
		die("can't build perfect hash: %s", err)
	}

	w, err := persist.NewWriter(fn)
	if err != nil {
		die("can't create constant DB: %s", err)
	}

	if err := w.Freeze(entries, pm); err != nil {
		w.Abort()
		die("can't write db %s: %s", fn, err)
	}

	fmt.Printf("%s: %d records, %d slots\n", fn, len(entries), pm.Size())
}

// die with error
func die(f string, v ...interface{}) {
	warn(f, v...)
	os.Exit(1)
}

func warn(f string, v ...interface{}) {
	z := fmt.Sprintf("%s: %s", os.Args[0], f)
	s := fmt.Sprintf(z, v...)
	if n := len(s); s[n-1] != '\n' {
		s += "\n"
	}

	os.Stderr.WriteString(s)
	os.Stderr.Sync()
}

// vim: ft=go:sw=4:ts=4:noexpandtab:tw=78:
