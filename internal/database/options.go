package database

import "github.com/darrenpicard25/simple-lsm-db/internal/dberr"

// Options configures a Database instance. Zero values are not replaced
// by DefaultOptions: Open rejects an empty Dir or a MaxTableSize <= 0.
type Options struct {
	// Dir is the store's root directory; created if missing.
	Dir string
	// MaxTableSize caps the number of distinct keys the memtable holds
	// before a flush is triggered.
	MaxTableSize int
	// SyncWAL requests an fsync after every WAL append.
	SyncWAL bool
}

// DefaultOptions returns the engine defaults: a 1000-entry memtable.
func DefaultOptions() Options {
	return Options{MaxTableSize: 1000}
}

// Option mutates an Options value; used to override defaults one field
// at a time.
type Option func(*Options)

// WithDir sets the store's root directory.
func WithDir(dir string) Option {
	return func(o *Options) { o.Dir = dir }
}

// WithMaxTableSize sets the memtable entry cap.
func WithMaxTableSize(n int) Option {
	return func(o *Options) { o.MaxTableSize = n }
}

// WithSyncWAL toggles fsync-on-append for the WAL.
func WithSyncWAL(sync bool) Option {
	return func(o *Options) { o.SyncWAL = sync }
}

func (o Options) validate() error {
	if o.Dir == "" {
		return dberr.New(dberr.ConfigurationError, "store directory must not be empty")
	}
	if o.MaxTableSize <= 0 {
		return dberr.New(dberr.ConfigurationError, "max table size must be positive")
	}
	return nil
}
