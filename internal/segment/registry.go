package segment

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/darrenpicard25/simple-lsm-db/internal/dberr"
	"github.com/darrenpicard25/simple-lsm-db/internal/memtable"
)

// Registry tracks every segment file in a directory, newest first.
type Registry struct {
	dir   string
	paths []string // newest-first
	nums  []int    // parallel to paths
}

// OpenRegistry scans dir for segment_<N>.sst files and orders them newest
// first (highest N first).
func OpenRegistry(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, dberr.Wrap(dberr.IoFailure, "read segment directory", err)
	}

	type found struct {
		path string
		num  int
	}
	var all []found
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		n, err := Number(de.Name())
		if err != nil {
			continue
		}
		all = append(all, found{path: filepath.Join(dir, de.Name()), num: n})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].num > all[j].num })

	r := &Registry{dir: dir}
	for _, f := range all {
		r.paths = append(r.paths, f.path)
		r.nums = append(r.nums, f.num)
	}
	return r, nil
}

// Count returns the number of segments currently tracked.
func (r *Registry) Count() int {
	return len(r.paths)
}

// Paths returns every tracked segment path, newest first.
func (r *Registry) Paths() []string {
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}

// PathForStem returns the segment path whose file stem (name without
// extension) matches stem.
func (r *Registry) PathForStem(stem string) (string, bool) {
	for _, p := range r.paths {
		if stemOf(p) == stem {
			return p, true
		}
	}
	return "", false
}

// StoreNew writes m as a new segment numbered with the current segment
// count, and registers it as the newest segment.
func (r *Registry) StoreNew(m *memtable.Memtable) (path string, number int, err error) {
	number = len(r.paths)
	path = filepath.Join(r.dir, Name(number))
	if err := CreateAndStore(path, m); err != nil {
		return "", 0, err
	}
	r.paths = append([]string{path}, r.paths...)
	r.nums = append([]int{number}, r.nums...)
	return path, number, nil
}

func stemOf(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}
