// writer.go -- serializes a built fks.PerfectMap to disk
//
// (c) Sudhi Herle 2018, adapted 2026
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package persist

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/dchest/siphash"

	"github.com/sherle/fks"
)

// Writer serializes a single fks.PerfectMap -- together with the entries
// it was built from -- into the on-disk format described in format.go.
// The core deliberately owns no persisted state (it exposes PerfectMap.Inspect
// for exactly this purpose); Writer is the "caller serializes the exposed
// layout themselves" story made concrete.
type Writer struct {
	fd   *os.File
	salt []byte

	off uint64

	fntmp string
	fn    string

	frozen bool
}

// NewWriter prepares fn to receive a serialized perfect map. The file is
// written to a temporary name and renamed into place atomically by Freeze.
func NewWriter(fn string) (*Writer, error) {
	var suffix [4]byte
	if _, err := io.ReadFull(rand.Reader, suffix[:]); err != nil {
		return nil, fmt.Errorf("persist: can't read salt: %w", err)
	}

	tmp := fmt.Sprintf("%s.tmp.%x", fn, suffix)
	fd, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, err
	}

	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		fd.Close()
		os.Remove(tmp)
		return nil, fmt.Errorf("persist: can't read salt: %w", err)
	}

	w := &Writer{
		fd:    fd,
		salt:  salt,
		off:   headerSize,
		fn:    fn,
		fntmp: tmp,
	}

	var z [headerSize]byte
	if _, err := writeAll(fd, z[:]); err != nil {
		fd.Close()
		os.Remove(tmp)
		return nil, err
	}

	return w, nil
}

// Freeze writes pm's layout and entries' values to disk and closes the
// writer. entries must be the same entries pm was built from -- Freeze
// recomputes each entry's (bucket, slot) placement from pm's exported
// seeds rather than trusting a caller-supplied mapping.
func (w *Writer) Freeze(entries []fks.Entry, pm *fks.PerfectMap) (err error) {
	defer func() {
		if err != nil {
			w.fd.Close()
			os.Remove(w.fntmp)
		}
	}()

	if w.frozen {
		return ErrFrozen
	}

	familyFlag, err := familyFlagOf(pm.Family())
	if err != nil {
		return err
	}

	ins := pm.Inspect()
	recOffsets := make([]uint64, ins.TotalSlots)
	for i := range recOffsets {
		recOffsets[i] = noRecord
	}

	top := pm.Family().New(ins.TopSeed, uint64(len(ins.Buckets)))

	for _, e := range entries {
		kind, kb, err := encodeKey(e.Key)
		if err != nil {
			return err
		}

		bi := top.Evaluate(e.Key)
		b := ins.Buckets[bi]

		var j uint64
		if b.SlotCount > 1 {
			j = pm.Family().New(b.Seed, b.SlotCount).Evaluate(e.Key)
		}

		recOff := w.off
		if err := w.writeRecord(kind, kb, e.Value); err != nil {
			return err
		}
		recOffsets[b.Offset+j] = recOff
	}

	h := sha512.New512_256()
	tee := io.MultiWriter(w.fd, h)

	pgsz := uint64(os.Getpagesize())
	tbloff := (w.off + pgsz - 1) &^ (pgsz - 1)
	if tbloff > w.off {
		if _, err := writeAll(w.fd, make([]byte, tbloff-w.off)); err != nil {
			return err
		}
		w.off = tbloff
	}

	if err := w.writeTables(tee, ins, recOffsets); err != nil {
		return err
	}

	var hdr [headerSize]byte
	be := binary.BigEndian
	copy(hdr[:4], magic)
	be.PutUint32(hdr[4:8], familyFlag)
	copy(hdr[8:24], w.salt)
	be.PutUint64(hdr[24:32], uint64(len(entries)))
	be.PutUint64(hdr[32:40], uint64(len(ins.Buckets)))
	be.PutUint64(hdr[40:48], ins.TopSeed)
	be.PutUint64(hdr[48:56], tbloff)

	h.Write(hdr[:])
	cksum := h.Sum(nil)
	if _, err := writeAll(w.fd, cksum); err != nil {
		return err
	}

	if _, err := w.fd.Seek(0, 0); err != nil {
		return err
	}
	if _, err := writeAll(w.fd, hdr[:]); err != nil {
		return err
	}

	w.frozen = true
	w.fd.Sync()
	w.fd.Close()

	return os.Rename(w.fntmp, w.fn)
}

// Abort discards the in-progress file.
func (w *Writer) Abort() {
	w.fd.Close()
	os.Remove(w.fntmp)
}

func (w *Writer) writeTables(tee io.Writer, ins fks.Inspection, recOffsets []uint64) error {
	var buf [bucketEntrySize]byte
	for _, b := range ins.Buckets {
		binary.LittleEndian.PutUint64(buf[0:8], b.Offset)
		binary.LittleEndian.PutUint64(buf[8:16], b.SlotCount)
		binary.LittleEndian.PutUint64(buf[16:24], b.Seed)
		if _, err := writeAll(tee, buf[:]); err != nil {
			return err
		}
	}

	var sbuf [slotEntrySize]byte
	for _, r := range recOffsets {
		binary.LittleEndian.PutUint64(sbuf[:], r)
		if _, err := writeAll(tee, sbuf[:]); err != nil {
			return err
		}
	}

	w.off += uint64(len(ins.Buckets))*bucketEntrySize + uint64(len(recOffsets))*slotEntrySize
	return nil
}

func (w *Writer) writeRecord(kind byte, keyBytes, val []byte) error {
	if uint64(len(val)) > (uint64(1)<<32)-1 {
		return ErrValueTooLarge
	}

	recOff := w.off

	var lens [9]byte
	lens[0] = kind
	binary.BigEndian.PutUint32(lens[1:5], uint32(len(keyBytes)))
	binary.BigEndian.PutUint32(lens[5:9], uint32(len(val)))

	var off [8]byte
	binary.BigEndian.PutUint64(off[:], recOff)

	h := siphash.New(w.salt)
	h.Write(off[:])
	h.Write(lens[:])
	h.Write(keyBytes)
	h.Write(val)

	var csum [8]byte
	binary.BigEndian.PutUint64(csum[:], h.Sum64())

	if _, err := writeAll(w.fd, csum[:]); err != nil {
		return err
	}
	if _, err := writeAll(w.fd, lens[:]); err != nil {
		return err
	}
	if _, err := writeAll(w.fd, keyBytes); err != nil {
		return err
	}
	if _, err := writeAll(w.fd, val); err != nil {
		return err
	}

	w.off += uint64(8 + len(lens) + len(keyBytes) + len(val))
	return nil
}

// encodeKey reduces a caller's fks.Key to the kind tag and byte
// representation this package stores in each record; Reader.Find encodes
// the query key the same way and compares the two.
func encodeKey(k fks.Key) (byte, []byte, error) {
	switch v := k.(type) {
	case fks.IntKey:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(v))
		return keyKindInt, b[:], nil
	case fks.BytesKey:
		return keyKindBytes, []byte(v), nil
	default:
		return 0, nil, fmt.Errorf("persist: unsupported key type %T", k)
	}
}

func familyFlagOf(f fks.HasherFamily) (uint32, error) {
	switch f.(type) {
	case fks.MSPFamily:
		return familyMSP, nil
	case fks.XXH3Family:
		return familyXXH3, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrUnsupportedFamily, f)
	}
}

func writeAll(w io.Writer, buf []byte) (int, error) {
	n, err := w.Write(buf)
	if err != nil {
		return 0, err
	}
	if n != len(buf) {
		return n, errShortWrite(n)
	}
	return n, nil
}
