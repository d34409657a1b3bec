// Package index implements the sparse per-segment index: every 100th key
// of a segment, mapped to the byte offset of its line within that segment.
package index

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/darrenpicard25/simple-lsm-db/internal/dberr"
)

// Extension is the file suffix for index files: segment_<N>.idx.
const Extension = ".idx"

// SampleStride controls how often a segment's keys are recorded in its
// sparse index: every SampleStride-th entry (0-indexed) is sampled.
const SampleStride = 100

const offsetLen = 8 // u64 LE

const prefix = "segment_"

// Name returns the canonical index file name for segment number n.
func Name(n int) string {
	return fmt.Sprintf("%s%d%s", prefix, n, Extension)
}

// Number extracts N from a segment_<N>.idx file name.
func Number(name string) (int, error) {
	base := name
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if !strings.HasSuffix(base, Extension) || !strings.HasPrefix(base, prefix) {
		return 0, dberr.New(dberr.MalformedRecord, "not an index file: "+name)
	}
	numStr := strings.TrimSuffix(strings.TrimPrefix(base, prefix), Extension)
	n, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, dberr.Wrap(dberr.MalformedRecord, "invalid index number in "+name, err)
	}
	return n, nil
}

// Entry is one sparse index record: key maps to the byte offset of its
// line within the owning segment file.
type Entry struct {
	Key    []byte
	Offset uint64
}

// Encode renders an entry as key || offset (8-byte LE) || LF.
//
// The offset bytes may themselves contain 0x0A. ReadAll splits records at
// every 0x0A byte, so a record whose offset contains one is misread.
func Encode(e Entry) []byte {
	out := make([]byte, 0, len(e.Key)+offsetLen+1)
	out = append(out, e.Key...)
	var off [offsetLen]byte
	binary.LittleEndian.PutUint64(off[:], e.Offset)
	out = append(out, off[:]...)
	out = append(out, '\n')
	return out
}

// Decode parses a single line (LF already stripped). Because the encoded
// offset may contain a literal 0x0A, the only reliable split point is
// "the last 8 bytes of the line are the offset" — the line's length must
// therefore be read in full before splitting, never incrementally.
func Decode(line []byte) (Entry, error) {
	if len(line) < offsetLen+1 {
		return Entry{}, dberr.New(dberr.MalformedRecord, "index line too short")
	}
	splitAt := len(line) - offsetLen
	key := make([]byte, splitAt)
	copy(key, line[:splitAt])
	offset := binary.LittleEndian.Uint64(line[splitAt:])
	return Entry{Key: key, Offset: offset}, nil
}

// CreateAndStore writes entries, in order, to a new file at path.
func CreateAndStore(path string, entries []Entry) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return dberr.Wrap(dberr.IoFailure, "create index file", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range entries {
		if _, err := w.Write(Encode(e)); err != nil {
			return dberr.Wrap(dberr.IoFailure, "write index entry", err)
		}
	}
	if err := w.Flush(); err != nil {
		return dberr.Wrap(dberr.IoFailure, "flush index file", err)
	}
	return nil
}

// ReadAll parses every record in path, in file order.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dberr.Wrap(dberr.IoFailure, "open index file", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var out []Entry
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 && line[len(line)-1] == '\n' {
			e, decodeErr := Decode(bytes.TrimSuffix(line, []byte{'\n'}))
			if decodeErr != nil {
				return nil, decodeErr
			}
			out = append(out, e)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, dberr.Wrap(dberr.IoFailure, "read index file", err)
		}
	}
	return out, nil
}

// StartOffset returns the byte offset to begin scanning the owning
// segment from, for a lookup of key: the offset of the largest indexed
// key <= key, or 0 if no such entry exists.
func StartOffset(entries []Entry, key []byte) uint64 {
	var offset uint64
	for _, e := range entries {
		if bytes.Compare(e.Key, key) > 0 {
			break
		}
		offset = e.Offset
	}
	return offset
}
