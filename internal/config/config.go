// Package config holds the top-level settings for a store process: the
// storage root, listen addresses, and the engine knobs exposed by
// database.Options and threadpool.New.
package config

import (
	"strings"

	"github.com/darrenpicard25/simple-lsm-db/internal/dberr"
	"github.com/darrenpicard25/simple-lsm-db/internal/threadpool"
)

const (
	// DefaultListenAddr is the server's default bind address.
	DefaultListenAddr = "0.0.0.0:8080"
	// DefaultMaxTableSize is the memtable entry cap used when unset.
	DefaultMaxTableSize = 1000
	// DefaultPoolSize is the worker pool size used when unset.
	DefaultPoolSize = 4
)

// Config is the full set of knobs cmd/server wires into the engine, the
// dispatcher, and the optional metrics listener.
type Config struct {
	// Dir is the store's root directory (WAL + segments + sidecars).
	Dir string
	// ListenAddr is the address the TCP server binds.
	ListenAddr string
	// MetricsAddr, if non-empty, serves /metrics via promhttp on its own
	// listener. Empty disables the metrics endpoint.
	MetricsAddr string
	// PoolSize is the number of dispatcher workers; must be within
	// [threadpool.MinSize, threadpool.MaxSize].
	PoolSize int
	// MaxTableSize caps the memtable's entry count before a flush.
	MaxTableSize int
	// SyncWAL requests an fsync after every WAL append (§4.4 allows for
	// this behind a configuration flag; off by default).
	SyncWAL bool
	// Verbose selects a development (human-readable) zap logger instead
	// of the default production (JSON) one.
	Verbose bool
}

// Option mutates a Config value; applied in order over New's defaults.
type Option func(*Config)

// WithDir sets the store's root directory.
func WithDir(dir string) Option { return func(c *Config) { c.Dir = dir } }

// WithListenAddr sets the TCP listen address.
func WithListenAddr(addr string) Option { return func(c *Config) { c.ListenAddr = addr } }

// WithMetricsAddr enables the /metrics endpoint on addr.
func WithMetricsAddr(addr string) Option { return func(c *Config) { c.MetricsAddr = addr } }

// WithPoolSize overrides the dispatcher's worker count.
func WithPoolSize(n int) Option { return func(c *Config) { c.PoolSize = n } }

// WithMaxTableSize overrides the memtable's entry cap.
func WithMaxTableSize(n int) Option { return func(c *Config) { c.MaxTableSize = n } }

// WithSyncWAL toggles fsync-on-append for the WAL.
func WithSyncWAL(sync bool) Option { return func(c *Config) { c.SyncWAL = sync } }

// WithVerbose selects the development logger.
func WithVerbose(v bool) Option { return func(c *Config) { c.Verbose = v } }

// New builds a Config from the package defaults, then applies opts in
// order.
func New(dir string, opts ...Option) Config {
	c := Config{
		Dir:          dir,
		ListenAddr:   DefaultListenAddr,
		PoolSize:     DefaultPoolSize,
		MaxTableSize: DefaultMaxTableSize,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Validate checks the bounds §4.10/§7 attach to ConfigurationError: a
// non-empty directory, a positive table size, and a pool size within
// threadpool's bounds.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Dir) == "" {
		return dberr.New(dberr.ConfigurationError, "store directory must not be empty")
	}
	if c.MaxTableSize <= 0 {
		return dberr.New(dberr.ConfigurationError, "max table size must be positive")
	}
	if c.PoolSize < threadpool.MinSize || c.PoolSize > threadpool.MaxSize {
		return dberr.New(dberr.ConfigurationError, "pool size must be between 1 and 10")
	}
	return nil
}
