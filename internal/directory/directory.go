// Package directory owns the on-disk store root: the write-ahead log and
// the three per-segment artifact registries (segment, bloom, index), and
// coordinates the multi-step algorithm that flushes a memtable to disk.
package directory

import (
	"os"
	"path/filepath"

	"github.com/darrenpicard25/simple-lsm-db/internal/bloom"
	"github.com/darrenpicard25/simple-lsm-db/internal/dberr"
	"github.com/darrenpicard25/simple-lsm-db/internal/index"
	"github.com/darrenpicard25/simple-lsm-db/internal/memtable"
	"github.com/darrenpicard25/simple-lsm-db/internal/segment"
	"github.com/darrenpicard25/simple-lsm-db/internal/wal"
)

// Directory composes the durability log and the three artifact registries
// for a single store root.
type Directory struct {
	root     string
	WAL      *wal.WAL
	Segments *segment.Registry
	Blooms   *bloom.Registry
	Indexes  *index.Registry
}

// Open creates root if missing and opens the WAL (without fsync-on-write)
// and the three registries rooted there.
func Open(root string) (*Directory, error) {
	return OpenWithSync(root, false)
}

// OpenWithSync is Open, additionally configuring the WAL to fsync after
// every append when sync is true.
func OpenWithSync(root string, sync bool) (*Directory, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, dberr.Wrap(dberr.IoFailure, "create store directory", err)
	}
	w, err := wal.OpenWithSync(filepath.Join(root, wal.FileName), sync)
	if err != nil {
		return nil, err
	}
	segments, err := segment.OpenRegistry(root)
	if err != nil {
		return nil, err
	}
	blooms, err := bloom.OpenRegistry(root)
	if err != nil {
		return nil, err
	}
	indexes, err := index.OpenRegistry(root)
	if err != nil {
		return nil, err
	}
	return &Directory{root: root, WAL: w, Segments: segments, Blooms: blooms, Indexes: indexes}, nil
}

// Root returns the directory's filesystem root.
func (d *Directory) Root() string {
	return d.root
}

// StoreSegment performs the three-step flush algorithm: write the segment,
// then its bloom filter, then re-read the segment to build its sparse
// index. The re-read (rather than indexing while writing) is deliberate:
// the on-disk byte offset of a line is only authoritative once the file
// is fully written, and the sample stride is measured in entries.
func (d *Directory) StoreSegment(m *memtable.Memtable) error {
	path, n, err := d.Segments.StoreNew(m)
	if err != nil {
		return err
	}
	if err := d.Blooms.Store(n, m); err != nil {
		return err
	}
	return d.buildIndex(path, n)
}

func (d *Directory) buildIndex(segmentPath string, n int) error {
	it, err := segment.OpenIterator(segmentPath, 0)
	if err != nil {
		return err
	}
	defer it.Close()

	var entries []index.Entry
	for i := 0; ; i++ {
		line, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if i%index.SampleStride == 0 {
			entries = append(entries, index.Entry{Key: line.Entry.Key, Offset: uint64(line.Offset)})
		}
	}
	_, err = d.Indexes.StoreNew(n, entries)
	return err
}

// Stem returns a path's file name with its extension stripped, the key
// under which the bloom and index registries cross-reference a segment.
func Stem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}
