package index

import (
	"os"
	"path/filepath"

	"github.com/darrenpicard25/simple-lsm-db/internal/dberr"
)

// Registry tracks the sparse index file for each segment, keyed by the
// segment's file stem (e.g. "segment_3").
type Registry struct {
	dir    string
	byStem map[string]string // stem -> path
}

// OpenRegistry scans dir for segment_<N>.idx files.
func OpenRegistry(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, dberr.Wrap(dberr.IoFailure, "read index directory", err)
	}
	r := &Registry{dir: dir, byStem: make(map[string]string)}
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		if _, err := Number(de.Name()); err != nil {
			continue
		}
		stem := stemOf(de.Name())
		r.byStem[stem] = filepath.Join(dir, de.Name())
	}
	return r, nil
}

// PathForStem returns the index path registered for a segment stem.
func (r *Registry) PathForStem(stem string) (string, bool) {
	p, ok := r.byStem[stem]
	return p, ok
}

// StoreNew writes entries as the index for segment number n and registers
// it under that segment's stem.
func (r *Registry) StoreNew(n int, entries []Entry) (string, error) {
	path := filepath.Join(r.dir, Name(n))
	if err := CreateAndStore(path, entries); err != nil {
		return "", err
	}
	r.byStem[stemOf(Name(n))] = path
	return path, nil
}

func stemOf(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}
