// Package memtable holds the ordered in-memory buffer of writes that have
// not yet been flushed to a segment file.
package memtable

import (
	"sort"

	"github.com/darrenpicard25/simple-lsm-db/internal/entry"
)

// DefaultMaxTableSize is the entry cap used when none is configured.
const DefaultMaxTableSize = 1000

// slot holds either a live value or a tombstone (value == nil, tombstoned
// == true) for one key.
type slot struct {
	value      []byte
	tombstoned bool
}

// Memtable is an ordered map from key to optional value, capped at
// maxSize entries. Iteration is always ascending by key.
type Memtable struct {
	maxSize int
	byKey   map[string]slot
}

// New creates an empty memtable capped at maxSize entries.
func New(maxSize int) *Memtable {
	if maxSize <= 0 {
		maxSize = DefaultMaxTableSize
	}
	return &Memtable{maxSize: maxSize, byKey: make(map[string]slot)}
}

// Insert upserts a live value for key.
func (m *Memtable) Insert(key, value []byte) {
	m.byKey[string(key)] = slot{value: cloneBytes(value)}
}

// Remove upserts a tombstone for key.
func (m *Memtable) Remove(key []byte) {
	m.byKey[string(key)] = slot{tombstoned: true}
}

// Get reports the key's state: found=false means "not present here, look
// on disk"; found=true with tombstoned=true means "deleted"; found=true
// with tombstoned=false returns the live value.
func (m *Memtable) Get(key []byte) (value []byte, tombstoned bool, found bool) {
	s, ok := m.byKey[string(key)]
	if !ok {
		return nil, false, false
	}
	return cloneBytes(s.value), s.tombstoned, true
}

// Len returns the number of distinct keys held.
func (m *Memtable) Len() int {
	return len(m.byKey)
}

// ShouldFlush reports whether the table has reached its configured cap.
func (m *Memtable) ShouldFlush() bool {
	return len(m.byKey) >= m.maxSize
}

// Clear empties the table in place, keeping its configured max size.
func (m *Memtable) Clear() {
	m.byKey = make(map[string]slot)
}

// Entries returns every key's current entry in ascending key order.
func (m *Memtable) Entries() []entry.Entry {
	keys := m.sortedKeys()
	out := make([]entry.Entry, 0, len(keys))
	for _, k := range keys {
		s := m.byKey[k]
		if s.tombstoned {
			out = append(out, entry.NewTombstone([]byte(k)))
			continue
		}
		out = append(out, entry.NewValue([]byte(k), cloneBytes(s.value)))
	}
	return out
}

func (m *Memtable) sortedKeys() []string {
	keys := make([]string, 0, len(m.byKey))
	for k := range m.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromEntries rebuilds a memtable from a sequence of entries (as replayed
// from the WAL); later entries for the same key overwrite earlier ones.
func FromEntries(entries []entry.Entry, maxSize int) *Memtable {
	m := New(maxSize)
	for _, e := range entries {
		if e.IsTombstone() {
			m.Remove(e.Key)
			continue
		}
		m.Insert(e.Key, e.Value)
	}
	return m
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
