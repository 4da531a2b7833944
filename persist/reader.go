// reader.go -- mmap-backed reader for the on-disk perfect-map format
//
// (c) Sudhi Herle 2018, adapted 2026
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package persist

import (
	"bytes"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/dchest/siphash"
	lru "github.com/opencoff/golang-lru"

	"github.com/sherle/fks"
)

// Reader is the query interface for a file written by Writer.Freeze. It
// mmaps the bucket and slot directory so a miss that lands on an empty
// bucket or an unoccupied slot is answered without reading a record from
// disk, and keeps a small ARC cache of recently decoded records so a hot
// key also avoids disk i/o on repeat lookups.
type Reader struct {
	fd *os.File
	fn string

	salt     []byte
	nkeys    uint64
	nbuckets uint64
	topSeed  uint64

	fam fks.HasherFamily
	top fks.Hasher

	mmap  []byte
	words []uint64 // little-endian overlay: [bucket table][slot table]

	cache *lru.ARCCache
}

// Open reads and validates a file written by Writer.Freeze and prepares it
// for Lookup. cache bounds the number of decoded records kept in memory
// (0 selects a default of 128, matching the teacher's constant-DB reader).
func Open(fn string, cache int) (rd *Reader, err error) {
	fd, err := os.Open(fn)
	if err != nil {
		return nil, err
	}

	if cache <= 0 {
		cache = 128
	}

	rd = &Reader{fd: fd, fn: fn, salt: make([]byte, 16)}

	st, err := fd.Stat()
	if err != nil {
		return nil, fmt.Errorf("%s: can't stat: %w", fn, err)
	}
	if st.Size() < headerSize+trailerSize {
		return nil, fmt.Errorf("%s: %w", fn, ErrCorrupt)
	}

	var hdr [headerSize]byte
	if _, err := io.ReadFull(fd, hdr[:]); err != nil {
		return nil, fmt.Errorf("%s: can't read header: %w", fn, err)
	}

	tbloff, familyFlag, err := rd.decodeHeader(hdr[:], st.Size())
	if err != nil {
		return nil, err
	}

	rd.fam, err = familyFromFlag(familyFlag)
	if err != nil {
		return nil, err
	}

	if err := rd.verifyChecksum(hdr[:], tbloff, st.Size()); err != nil {
		return nil, err
	}

	mmapsz := st.Size() - int64(tbloff) - trailerSize
	if mmapsz > 0 {
		bs, err := syscall.Mmap(int(fd.Fd()), int64(tbloff), int(mmapsz), syscall.PROT_READ, syscall.MAP_PRIVATE)
		if err != nil {
			return nil, fmt.Errorf("%s: can't mmap %d bytes at off %d: %w", fn, mmapsz, tbloff, err)
		}
		rd.mmap = bs
		rd.words = bsToUint64Slice(bs)
	}

	if uint64(len(rd.words)) < 3*rd.nbuckets {
		if rd.mmap != nil {
			syscall.Munmap(rd.mmap)
		}
		return nil, fmt.Errorf("%s: %w (short bucket table)", fn, ErrCorrupt)
	}

	rd.top = rd.fam.New(rd.topSeed, rd.nbuckets)

	rd.cache, err = lru.NewARC(cache)
	if err != nil {
		if rd.mmap != nil {
			syscall.Munmap(rd.mmap)
		}
		return nil, err
	}

	return rd, nil
}

// Len returns the number of distinct keys stored.
func (rd *Reader) Len() int { return int(rd.nkeys) }

// Close unmaps and closes the underlying file.
func (rd *Reader) Close() {
	if rd.mmap != nil {
		syscall.Munmap(rd.mmap)
	}
	rd.fd.Close()
	rd.cache.Purge()
	rd.mmap = nil
	rd.words = nil
	rd.fd = nil
}

// Lookup looks up k and returns its value, or ok == false if k is absent
// or the map contains no bucket for it (spec behavior mirrored from
// PerfectMap.Lookup: an absent key is reported, never an error).
func (rd *Reader) Lookup(k fks.Key) (value []byte, ok bool) {
	v, err := rd.Find(k)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Find is Lookup with the underlying error exposed (not-found, corrupt
// record, or i/o failure).
func (rd *Reader) Find(k fks.Key) ([]byte, error) {
	if rd.nbuckets == 0 {
		return nil, ErrNoKey
	}

	kind, kb, err := encodeKey(k)
	if err != nil {
		return nil, err
	}

	i := rd.top.Evaluate(k)
	base := 3 * i
	offset := toLittleEndianUint64(rd.words[base])
	slotCount := toLittleEndianUint64(rd.words[base+1])
	seed := toLittleEndianUint64(rd.words[base+2])

	if slotCount == 0 {
		return nil, ErrNoKey
	}

	var j uint64
	if slotCount > 1 {
		j = rd.fam.New(seed, slotCount).Evaluate(k)
	}

	slotIdx := 3*rd.nbuckets + offset + j
	if slotIdx >= uint64(len(rd.words)) {
		return nil, ErrCorrupt
	}

	recOff := toLittleEndianUint64(rd.words[slotIdx])
	if recOff == noRecord {
		return nil, ErrNoKey
	}

	type cachedRecord struct {
		kind byte
		key  []byte
		val  []byte
	}

	if v, ok := rd.cache.Get(recOff); ok {
		r := v.(cachedRecord)
		if r.kind != kind || !bytes.Equal(r.key, kb) {
			return nil, ErrNoKey
		}
		return r.val, nil
	}

	val, storedKind, storedKey, err := rd.decodeRecord(recOff)
	if err != nil {
		return nil, err
	}
	if storedKind != kind || !bytes.Equal(storedKey, kb) {
		return nil, ErrNoKey
	}

	rd.cache.Add(recOff, cachedRecord{kind: storedKind, key: storedKey, val: val})
	return val, nil
}

func (rd *Reader) decodeRecord(off uint64) (val []byte, kind byte, keyBytes []byte, err error) {
	if _, err = rd.fd.Seek(int64(off), 0); err != nil {
		return nil, 0, nil, err
	}

	var head [8 + 9]byte
	if _, err = io.ReadFull(rd.fd, head[:]); err != nil {
		return nil, 0, nil, err
	}

	csum := binary.BigEndian.Uint64(head[:8])
	kind = head[8]
	keylen := binary.BigEndian.Uint32(head[9:13])
	vlen := binary.BigEndian.Uint32(head[13:17])

	body := make([]byte, keylen+vlen)
	if _, err = io.ReadFull(rd.fd, body); err != nil {
		return nil, 0, nil, err
	}
	keyBytes = body[:keylen]
	val = body[keylen:]

	var offb [8]byte
	binary.BigEndian.PutUint64(offb[:], off)

	h := siphash.New(rd.salt)
	h.Write(offb[:])
	h.Write(head[8:])
	h.Write(body)

	if csum != h.Sum64() {
		return nil, 0, nil, fmt.Errorf("%s: %w at off %d", rd.fn, ErrCorrupt, off)
	}

	return val, kind, keyBytes, nil
}

func (rd *Reader) verifyChecksum(hdr []byte, tbloff uint64, sz int64) error {
	h := sha512.New512_256()

	remsz := sz - int64(tbloff) - trailerSize
	if _, err := rd.fd.Seek(int64(tbloff), 0); err != nil {
		return err
	}
	if _, err := io.CopyN(h, rd.fd, remsz); err != nil {
		return fmt.Errorf("%s: metadata i/o error: %w", rd.fn, err)
	}
	h.Write(hdr)

	var expsum [trailerSize]byte
	if _, err := rd.fd.Seek(sz-trailerSize, 0); err != nil {
		return err
	}
	if _, err := io.ReadFull(rd.fd, expsum[:]); err != nil {
		return fmt.Errorf("%s: checksum i/o error: %w", rd.fn, err)
	}

	got := h.Sum(nil)
	if subtle.ConstantTimeCompare(got, expsum[:]) != 1 {
		return fmt.Errorf("%s: %w (checksum mismatch)", rd.fn, ErrCorrupt)
	}

	_, err := rd.fd.Seek(int64(tbloff), 0)
	return err
}

func (rd *Reader) decodeHeader(b []byte, sz int64) (tbloff uint64, familyFlag uint32, err error) {
	if string(b[:4]) != magic {
		return 0, 0, fmt.Errorf("%s: %w (bad file magic)", rd.fn, ErrCorrupt)
	}

	be := binary.BigEndian
	familyFlag = be.Uint32(b[4:8])

	copy(rd.salt, b[8:24])
	rd.nkeys = be.Uint64(b[24:32])
	rd.nbuckets = be.Uint64(b[32:40])
	rd.topSeed = be.Uint64(b[40:48])
	tbloff = be.Uint64(b[48:56])

	if tbloff < headerSize || int64(tbloff) > sz-trailerSize {
		return 0, 0, fmt.Errorf("%s: %w (bad table offset)", rd.fn, ErrCorrupt)
	}
	return tbloff, familyFlag, nil
}

func familyFromFlag(flag uint32) (fks.HasherFamily, error) {
	switch flag {
	case familyMSP:
		return fks.MSPFamily{}, nil
	case familyXXH3:
		return fks.XXH3Family{}, nil
	default:
		return nil, fmt.Errorf("%w: flag %d", ErrUnsupportedFamily, flag)
	}
}
