// Package entry implements the on-disk record format shared by the WAL and
// segment files: a key/value pair, or a tombstone marking a deleted key.
package entry

import (
	"bytes"

	"github.com/darrenpicard25/simple-lsm-db/internal/dberr"
)

const (
	sep byte = ' '
	lf  byte = '\n'
)

// Entry is a single write: either a live value or a tombstone for Key.
// Value is nil for a tombstone.
type Entry struct {
	Key   []byte
	Value []byte
}

// IsTombstone reports whether this entry represents a deletion.
func (e Entry) IsTombstone() bool {
	return e.Value == nil
}

// NewValue builds a KeyValue entry.
func NewValue(key, value []byte) Entry {
	return Entry{Key: key, Value: value}
}

// NewTombstone builds a Tombstone entry.
func NewTombstone(key []byte) Entry {
	return Entry{Key: key, Value: nil}
}

// Valid reports whether a key or value obeys the byte restrictions: no
// space, no line feed, and non-empty.
func Valid(b []byte) bool {
	return len(b) > 0 && bytes.IndexByte(b, sep) < 0 && bytes.IndexByte(b, lf) < 0
}

// Encode renders an entry as its wire/disk line, including the trailing LF.
func Encode(e Entry) []byte {
	if e.IsTombstone() {
		out := make([]byte, 0, len(e.Key)+1)
		out = append(out, e.Key...)
		out = append(out, lf)
		return out
	}
	out := make([]byte, 0, len(e.Key)+len(e.Value)+2)
	out = append(out, e.Key...)
	out = append(out, sep)
	out = append(out, e.Value...)
	out = append(out, lf)
	return out
}

// Decode parses a single line (with the trailing LF already stripped) into
// an Entry. A line with no space is a Tombstone; otherwise the text up to
// the first space is the key and the rest is the value.
func Decode(line []byte) (Entry, error) {
	if len(line) == 0 {
		return Entry{}, dberr.New(dberr.MalformedRecord, "empty record line")
	}
	if i := bytes.IndexByte(line, sep); i >= 0 {
		key := line[:i]
		value := line[i+1:]
		if len(key) == 0 {
			return Entry{}, dberr.New(dberr.MalformedRecord, "record has empty key")
		}
		k := make([]byte, len(key))
		copy(k, key)
		v := make([]byte, len(value))
		copy(v, value)
		return Entry{Key: k, Value: v}, nil
	}
	k := make([]byte, len(line))
	copy(k, line)
	return Entry{Key: k}, nil
}
