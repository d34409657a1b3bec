package segment

import (
	"path/filepath"
	"testing"

	"github.com/darrenpicard25/simple-lsm-db/internal/memtable"
)

func buildMemtable() *memtable.Memtable {
	m := memtable.New(100)
	m.Insert([]byte("key1"), []byte("value1"))
	m.Insert([]byte("key2"), []byte("value2"))
	m.Insert([]byte("key3"), []byte("value3"))
	return m
}

func TestCreateAndStoreThenLookup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, Name(0))
	if err := CreateAndStore(path, buildMemtable()); err != nil {
		t.Fatalf("CreateAndStore: %v", err)
	}

	value, tomb, found, err := Lookup(path, 0, []byte("key2"))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !found || tomb || string(value) != "value2" {
		t.Fatalf("unexpected lookup result: value=%q tomb=%v found=%v", value, tomb, found)
	}
}

func TestLookupMissingKeyTerminatesEarly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, Name(0))
	if err := CreateAndStore(path, buildMemtable()); err != nil {
		t.Fatalf("CreateAndStore: %v", err)
	}

	_, _, found, err := Lookup(path, 0, []byte("key15"))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if found {
		t.Fatal("expected key15 not found")
	}
}

func TestNumberParsing(t *testing.T) {
	n, err := Number("segment_42.sst")
	if err != nil || n != 42 {
		t.Fatalf("Number() = %d, %v; want 42, nil", n, err)
	}
	if _, err := Number("notasegment.txt"); err == nil {
		t.Fatal("expected error for non-segment file")
	}
}

func TestRegistryStoreNewAssignsDenseNumbers(t *testing.T) {
	dir := t.TempDir()
	reg, err := OpenRegistry(dir)
	if err != nil {
		t.Fatalf("OpenRegistry: %v", err)
	}
	_, n0, err := reg.StoreNew(buildMemtable())
	if err != nil {
		t.Fatalf("StoreNew: %v", err)
	}
	_, n1, err := reg.StoreNew(buildMemtable())
	if err != nil {
		t.Fatalf("StoreNew: %v", err)
	}
	if n0 != 0 || n1 != 1 {
		t.Fatalf("expected segment numbers 0,1; got %d,%d", n0, n1)
	}
	paths := reg.Paths()
	if len(paths) != 2 || filepath.Base(paths[0]) != Name(1) {
		t.Fatalf("expected newest-first ordering, got %v", paths)
	}
}

func TestOpenRegistryOrdersDescending(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []int{0, 1, 2} {
		if err := CreateAndStore(filepath.Join(dir, Name(n)), buildMemtable()); err != nil {
			t.Fatalf("CreateAndStore: %v", err)
		}
	}
	reg, err := OpenRegistry(dir)
	if err != nil {
		t.Fatalf("OpenRegistry: %v", err)
	}
	paths := reg.Paths()
	want := []string{Name(2), Name(1), Name(0)}
	for i, p := range paths {
		if filepath.Base(p) != want[i] {
			t.Fatalf("paths[%d] = %s, want %s", i, filepath.Base(p), want[i])
		}
	}
}
