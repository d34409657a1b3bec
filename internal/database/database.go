// Package database assembles the memtable, write-ahead log, and on-disk
// directory into the single point-lookup engine served by the TCP front
// end.
package database

import (
	"sync"

	"go.uber.org/zap"

	"github.com/darrenpicard25/simple-lsm-db/internal/dberr"
	"github.com/darrenpicard25/simple-lsm-db/internal/directory"
	"github.com/darrenpicard25/simple-lsm-db/internal/entry"
	"github.com/darrenpicard25/simple-lsm-db/internal/index"
	"github.com/darrenpicard25/simple-lsm-db/internal/memtable"
	"github.com/darrenpicard25/simple-lsm-db/internal/segment"
)

// Recorder receives operational events for metrics. A nil Recorder is
// never called: Open substitutes a no-op implementation when rec is nil.
type Recorder interface {
	ObserveOperation(op, outcome string)
	ObserveBloomSkip()
	ObserveFlush()
	SetSegmentCount(n int)
}

type noopRecorder struct{}

func (noopRecorder) ObserveOperation(string, string) {}
func (noopRecorder) ObserveBloomSkip()                {}
func (noopRecorder) ObserveFlush()                    {}
func (noopRecorder) SetSegmentCount(int)              {}

// Database is the top-level storage engine: one memtable guarded by one
// mutex, backed by a WAL and an on-disk directory of segments.
type Database struct {
	mu sync.Mutex

	opts    Options
	mem     *memtable.Memtable
	dir     *directory.Directory
	logger  *zap.SugaredLogger
	metrics Recorder
}

// Open replays the WAL (if present) into a fresh memtable and opens the
// on-disk directory rooted at opts.Dir.
func Open(opts Options, logger *zap.SugaredLogger, rec Recorder) (*Database, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if rec == nil {
		rec = noopRecorder{}
	}

	dir, err := directory.OpenWithSync(opts.Dir, opts.SyncWAL)
	if err != nil {
		return nil, err
	}

	replayed, err := dir.WAL.Entries()
	if err != nil {
		_ = dir.WAL.Close()
		return nil, err
	}
	mem := memtable.FromEntries(replayed, opts.MaxTableSize)
	if len(replayed) > 0 {
		logger.Infow("replayed wal entries", "count", len(replayed))
	}
	rec.SetSegmentCount(dir.Segments.Count())

	return &Database{opts: opts, mem: mem, dir: dir, logger: logger, metrics: rec}, nil
}

// Close releases the WAL's file handle. Safe to call once.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dir.WAL.Close()
}

// Set durably logs and applies a live value for key.
func (d *Database) Set(key, value []byte) error {
	if !entry.Valid(key) || !entry.Valid(value) {
		d.metrics.ObserveOperation("set", "error")
		return dberr.New(dberr.MalformedRequest, "key or value contains a forbidden byte")
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.dir.WAL.Append(entry.NewValue(key, value)); err != nil {
		d.metrics.ObserveOperation("set", "error")
		return err
	}
	d.mem.Insert(key, value)
	if err := d.maybeFlushLocked(); err != nil {
		d.metrics.ObserveOperation("set", "error")
		return err
	}
	d.metrics.ObserveOperation("set", "ok")
	return nil
}

// Delete durably logs and applies a tombstone for key.
func (d *Database) Delete(key []byte) error {
	if !entry.Valid(key) {
		d.metrics.ObserveOperation("delete", "error")
		return dberr.New(dberr.MalformedRequest, "key contains a forbidden byte")
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.dir.WAL.Append(entry.NewTombstone(key)); err != nil {
		d.metrics.ObserveOperation("delete", "error")
		return err
	}
	d.mem.Remove(key)
	if err := d.maybeFlushLocked(); err != nil {
		d.metrics.ObserveOperation("delete", "error")
		return err
	}
	d.metrics.ObserveOperation("delete", "ok")
	return nil
}

// Get resolves key against the memtable, then the on-disk segments
// newest-first. A tombstoned key reports found=false, the same as a key
// that was never written.
func (d *Database) Get(key []byte) (value []byte, found bool, err error) {
	if !entry.Valid(key) {
		d.metrics.ObserveOperation("get", "error")
		return nil, false, dberr.New(dberr.MalformedRequest, "key contains a forbidden byte")
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if v, tomb, ok := d.mem.Get(key); ok {
		d.metrics.ObserveOperation("get", "ok")
		if tomb {
			return nil, false, nil
		}
		return v, true, nil
	}

	for _, path := range d.dir.Segments.Paths() {
		stem := directory.Stem(path)
		if !d.dir.Blooms.MightContain(stem, key) {
			d.metrics.ObserveBloomSkip()
			continue
		}

		var startOffset uint64
		if idxPath, ok := d.dir.Indexes.PathForStem(stem); ok {
			entries, err := index.ReadAll(idxPath)
			if err != nil {
				d.metrics.ObserveOperation("get", "error")
				return nil, false, err
			}
			startOffset = index.StartOffset(entries, key)
		}

		v, tomb, ok, err := segment.Lookup(path, int64(startOffset), key)
		if err != nil {
			d.metrics.ObserveOperation("get", "error")
			return nil, false, err
		}
		if ok {
			d.metrics.ObserveOperation("get", "ok")
			if tomb {
				return nil, false, nil
			}
			return v, true, nil
		}
	}

	d.metrics.ObserveOperation("get", "ok")
	return nil, false, nil
}

// maybeFlushLocked flushes the memtable to a new segment (and its bloom
// and index sidecars) when it has reached its configured cap. The WAL is
// only truncated once the segment is durably on disk, so a crash between
// these steps still replays correctly on the next Open.
func (d *Database) maybeFlushLocked() error {
	if !d.mem.ShouldFlush() {
		return nil
	}
	d.logger.Infow("flushing memtable", "entries", d.mem.Len())
	if err := d.dir.StoreSegment(d.mem); err != nil {
		return err
	}
	if err := d.dir.WAL.Clear(); err != nil {
		return err
	}
	d.mem.Clear()
	d.metrics.ObserveFlush()
	d.metrics.SetSegmentCount(d.dir.Segments.Count())
	return nil
}
