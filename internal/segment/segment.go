// Package segment implements the immutable, key-sorted on-disk run
// produced each time a memtable is flushed.
package segment

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/darrenpicard25/simple-lsm-db/internal/dberr"
	"github.com/darrenpicard25/simple-lsm-db/internal/entry"
	"github.com/darrenpicard25/simple-lsm-db/internal/memtable"
)

// Extension is the file suffix for segment files: segment_<N>.sst.
const Extension = ".sst"

const prefix = "segment_"

// Name returns the canonical file name for segment number n.
func Name(n int) string {
	return fmt.Sprintf("%s%d%s", prefix, n, Extension)
}

// IsSegmentFile reports whether name matches the segment_<N>.sst pattern.
func IsSegmentFile(name string) bool {
	_, err := Number(name)
	return err == nil
}

// Number extracts N from a segment_<N>.sst file name (or a bare path; the
// directory component and extension are both stripped).
func Number(name string) (int, error) {
	base := name
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if !strings.HasSuffix(base, Extension) || !strings.HasPrefix(base, prefix) {
		return 0, dberr.New(dberr.MalformedRecord, "not a segment file: "+name)
	}
	numStr := strings.TrimSuffix(strings.TrimPrefix(base, prefix), Extension)
	n, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, dberr.Wrap(dberr.MalformedRecord, "invalid segment number in "+name, err)
	}
	return n, nil
}

// CreateAndStore writes every entry of m, in ascending key order, to a new
// file at path. The file must not already exist.
func CreateAndStore(path string, m *memtable.Memtable) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return dberr.Wrap(dberr.IoFailure, "create segment file", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range m.Entries() {
		if _, err := w.Write(entry.Encode(e)); err != nil {
			return dberr.Wrap(dberr.IoFailure, "write segment entry", err)
		}
	}
	if err := w.Flush(); err != nil {
		return dberr.Wrap(dberr.IoFailure, "flush segment file", err)
	}
	return nil
}

// Line pairs a decoded entry with the byte offset at which its line began.
type Line struct {
	Offset int64
	Entry  entry.Entry
}

// Iterator walks a segment's entries in file order, starting from a given
// byte offset.
type Iterator struct {
	f      *os.File
	r      *bufio.Reader
	offset int64
}

// OpenIterator opens path and positions the iterator at startOffset.
func OpenIterator(path string, startOffset int64) (*Iterator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dberr.Wrap(dberr.IoFailure, "open segment file", err)
	}
	if startOffset > 0 {
		if _, err := f.Seek(startOffset, io.SeekStart); err != nil {
			f.Close()
			return nil, dberr.Wrap(dberr.IoFailure, "seek segment file", err)
		}
	}
	return &Iterator{f: f, r: bufio.NewReader(f), offset: startOffset}, nil
}

// Next returns the next line, or ok=false at EOF.
func (it *Iterator) Next() (Line, bool, error) {
	raw, err := it.r.ReadBytes('\n')
	if len(raw) == 0 || raw[len(raw)-1] != '\n' {
		if err == io.EOF {
			return Line{}, false, nil
		}
		if err != nil {
			return Line{}, false, dberr.Wrap(dberr.IoFailure, "read segment entry", err)
		}
	}
	start := it.offset
	it.offset += int64(len(raw))
	e, decodeErr := entry.Decode(bytes.TrimSuffix(raw, []byte{'\n'}))
	if decodeErr != nil {
		return Line{}, false, decodeErr
	}
	return Line{Offset: start, Entry: e}, true, nil
}

// Close releases the underlying file handle.
func (it *Iterator) Close() error {
	return it.f.Close()
}

// Lookup scans path starting at startOffset looking for key, relying on
// ascending key order within the segment to terminate early once a key
// greater than the target is seen.
func Lookup(path string, startOffset int64, key []byte) (value []byte, tombstoned bool, found bool, err error) {
	it, err := OpenIterator(path, startOffset)
	if err != nil {
		return nil, false, false, err
	}
	defer it.Close()

	for {
		line, ok, err := it.Next()
		if err != nil {
			return nil, false, false, err
		}
		if !ok {
			return nil, false, false, nil
		}
		cmp := bytes.Compare(line.Entry.Key, key)
		if cmp == 0 {
			return line.Entry.Value, line.Entry.IsTombstone(), true, nil
		}
		if cmp > 0 {
			return nil, false, false, nil
		}
	}
}
