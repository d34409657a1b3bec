package bloom

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/darrenpicard25/simple-lsm-db/internal/dberr"
	"github.com/darrenpicard25/simple-lsm-db/internal/memtable"
)

// Extension is the file suffix for bloom sidecar files: segment_<N>.bf.
const Extension = ".bf"

const prefix = "segment_"

// Name returns the canonical bloom file name for segment number n.
func Name(n int) string {
	return fmt.Sprintf("%s%d%s", prefix, n, Extension)
}

func number(name string) (int, error) {
	base := name
	if !strings.HasSuffix(base, Extension) || !strings.HasPrefix(base, prefix) {
		return 0, dberr.New(dberr.MalformedRecord, "not a bloom file: "+name)
	}
	numStr := strings.TrimSuffix(strings.TrimPrefix(base, prefix), Extension)
	return strconv.Atoi(numStr)
}

// Registry caches one Filter per segment, keyed by the segment's file
// stem, and persists new filters to disk as segments are flushed.
type Registry struct {
	dir     string
	byStem  map[string]*Filter
	pathFor map[string]string
}

// OpenRegistry scans dir for segment_<N>.bf files and loads each filter
// into memory.
func OpenRegistry(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, dberr.Wrap(dberr.IoFailure, "read bloom directory", err)
	}
	r := &Registry{dir: dir, byStem: make(map[string]*Filter), pathFor: make(map[string]string)}
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		if _, err := number(de.Name()); err != nil {
			continue
		}
		path := filepath.Join(dir, de.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, dberr.Wrap(dberr.IoFailure, "read bloom file", err)
		}
		f, err := Deserialize(b)
		if err != nil {
			return nil, err
		}
		stem := stemOf(de.Name())
		r.byStem[stem] = f
		r.pathFor[stem] = path
	}
	return r, nil
}

// MightContain reports whether the filter registered for segmentStem
// might contain key. A segment with no registered filter (legacy data)
// is always treated as "might contain" — the caller must still scan it.
func (r *Registry) MightContain(segmentStem string, key []byte) bool {
	f, ok := r.byStem[segmentStem]
	if !ok {
		return true
	}
	return f.MightContain(key)
}

// Store builds a filter sized for m's keys, inserts every key, writes it
// to segment_<n>.bf, and caches it under that segment's stem.
func (r *Registry) Store(n int, m *memtable.Memtable) error {
	f := ForKeys(m.Len())
	for _, e := range m.Entries() {
		f.Insert(e.Key)
	}
	path := filepath.Join(r.dir, Name(n))
	if err := os.WriteFile(path, Serialize(f), 0o644); err != nil {
		return dberr.Wrap(dberr.IoFailure, "write bloom file", err)
	}
	stem := stemOf(Name(n))
	r.byStem[stem] = f
	r.pathFor[stem] = path
	return nil
}

func stemOf(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}
