package wal

import (
	"path/filepath"
	"testing"

	"github.com/darrenpicard25/simple-lsm-db/internal/entry"
)

func TestAppendThenEntries(t *testing.T) {
	dir := t.TempDir()
	w, err := Open(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer w.Close()

	if err := w.Append(entry.NewValue([]byte("k1"), []byte("v1"))); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := w.Append(entry.NewTombstone([]byte("k2"))); err != nil {
		t.Fatalf("Append: %v", err)
	}

	entries, err := w.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if string(entries[0].Key) != "k1" || string(entries[0].Value) != "v1" {
		t.Fatalf("unexpected entry 0: %+v", entries[0])
	}
	if string(entries[1].Key) != "k2" || !entries[1].IsTombstone() {
		t.Fatalf("unexpected entry 1: %+v", entries[1])
	}
}

func TestClearTruncates(t *testing.T) {
	dir := t.TempDir()
	w, err := Open(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer w.Close()

	_ = w.Append(entry.NewValue([]byte("k"), []byte("v")))
	if err := w.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, err := w.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty wal after clear, got %d entries", len(entries))
	}
}

func TestReopenPreservesEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	w1, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = w1.Append(entry.NewValue([]byte("k"), []byte("v")))
	_ = w1.Close()

	w2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer w2.Close()
	entries, err := w2.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after reopen, got %d", len(entries))
	}
}
