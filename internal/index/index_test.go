package index

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	e := Entry{Key: []byte("key1"), Offset: 0}
	line := Encode(e)
	got, err := Decode(line[:len(line)-1])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(got.Key, e.Key) || got.Offset != e.Offset {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, e)
	}
}

func TestCreateAndStoreThenReadAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, Name(0))
	entries := []Entry{
		{Key: []byte("key1"), Offset: 0},
		{Key: []byte("key101"), Offset: 1024},
	}
	if err := CreateAndStore(path, entries); err != nil {
		t.Fatalf("CreateAndStore: %v", err)
	}
	got, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 2 || got[0].Offset != 0 || got[1].Offset != 1024 {
		t.Fatalf("unexpected entries: %+v", got)
	}
}

func TestStartOffsetFindsLargestKeyLessOrEqual(t *testing.T) {
	entries := []Entry{
		{Key: []byte("b"), Offset: 10},
		{Key: []byte("d"), Offset: 30},
		{Key: []byte("f"), Offset: 50},
	}
	if off := StartOffset(entries, []byte("e")); off != 30 {
		t.Fatalf("StartOffset(e) = %d, want 30", off)
	}
	if off := StartOffset(entries, []byte("a")); off != 0 {
		t.Fatalf("StartOffset(a) = %d, want 0", off)
	}
	if off := StartOffset(entries, []byte("z")); off != 50 {
		t.Fatalf("StartOffset(z) = %d, want 50", off)
	}
}

func TestNumberParsing(t *testing.T) {
	n, err := Number("segment_7.idx")
	if err != nil || n != 7 {
		t.Fatalf("Number() = %d, %v; want 7, nil", n, err)
	}
}
