package memtable

import (
	"bytes"
	"testing"

	"github.com/darrenpicard25/simple-lsm-db/internal/entry"
)

func TestInsertThenGet(t *testing.T) {
	m := New(10)
	m.Insert([]byte("k"), []byte("v"))
	v, tomb, found := m.Get([]byte("k"))
	if !found || tomb || !bytes.Equal(v, []byte("v")) {
		t.Fatalf("unexpected result: v=%q tomb=%v found=%v", v, tomb, found)
	}
}

func TestRemoveMarksTombstone(t *testing.T) {
	m := New(10)
	m.Insert([]byte("k"), []byte("v"))
	m.Remove([]byte("k"))
	_, tomb, found := m.Get([]byte("k"))
	if !found || !tomb {
		t.Fatalf("expected tombstone, got tomb=%v found=%v", tomb, found)
	}
}

func TestGetMissingKey(t *testing.T) {
	m := New(10)
	_, _, found := m.Get([]byte("missing"))
	if found {
		t.Fatal("expected not found")
	}
}

func TestShouldFlush(t *testing.T) {
	m := New(2)
	m.Insert([]byte("a"), []byte("1"))
	if m.ShouldFlush() {
		t.Fatal("should not flush yet")
	}
	m.Insert([]byte("b"), []byte("2"))
	if !m.ShouldFlush() {
		t.Fatal("should flush now")
	}
}

func TestEntriesAscending(t *testing.T) {
	m := New(10)
	m.Insert([]byte("c"), []byte("3"))
	m.Insert([]byte("a"), []byte("1"))
	m.Insert([]byte("b"), []byte("2"))
	entries := m.Entries()
	want := []string{"a", "b", "c"}
	for i, e := range entries {
		if string(e.Key) != want[i] {
			t.Fatalf("entries[%d].Key = %q, want %q", i, e.Key, want[i])
		}
	}
}

func TestFromEntriesLaterOverwritesEarlier(t *testing.T) {
	entries := []entry.Entry{
		entry.NewValue([]byte("k"), []byte("old")),
		entry.NewValue([]byte("k"), []byte("new")),
	}
	m := FromEntries(entries, 10)
	v, _, found := m.Get([]byte("k"))
	if !found || !bytes.Equal(v, []byte("new")) {
		t.Fatalf("expected latest value, got %q found=%v", v, found)
	}
}

func TestFromEntriesTombstoneOverwrites(t *testing.T) {
	entries := []entry.Entry{
		entry.NewValue([]byte("k"), []byte("v")),
		entry.NewTombstone([]byte("k")),
	}
	m := FromEntries(entries, 10)
	_, tomb, found := m.Get([]byte("k"))
	if !found || !tomb {
		t.Fatal("expected tombstone to win replay")
	}
}
