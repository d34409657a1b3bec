// Command server runs the LSM store's TCP front end: it opens the
// engine, starts a fixed worker pool, accepts connections on the
// configured listen address, and (optionally) serves Prometheus metrics
// on a second listener.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/darrenpicard25/simple-lsm-db/internal/config"
	"github.com/darrenpicard25/simple-lsm-db/internal/database"
	"github.com/darrenpicard25/simple-lsm-db/internal/logging"
	"github.com/darrenpicard25/simple-lsm-db/internal/metrics"
	"github.com/darrenpicard25/simple-lsm-db/internal/server"
	"github.com/darrenpicard25/simple-lsm-db/internal/threadpool"
)

func main() {
	dir := flag.String("dir", "data", "store directory (WAL + segments live here)")
	listenAddr := flag.String("listen", config.DefaultListenAddr, "TCP address to accept GET/SET/DELETE connections on")
	metricsAddr := flag.String("metrics-addr", "", "if set, serve Prometheus /metrics on this address")
	poolSize := flag.Int("pool-size", config.DefaultPoolSize, "number of dispatcher worker goroutines (1-10)")
	maxTableSize := flag.Int("max-table-size", config.DefaultMaxTableSize, "memtable entry cap before a flush")
	syncWAL := flag.Bool("sync-wal", false, "fsync the WAL after every append")
	verbose := flag.Bool("verbose", false, "use a development (human-readable) logger")
	flag.Parse()

	cfg := config.New(*dir,
		config.WithListenAddr(*listenAddr),
		config.WithMetricsAddr(*metricsAddr),
		config.WithPoolSize(*poolSize),
		config.WithMaxTableSize(*maxTableSize),
		config.WithSyncWAL(*syncWAL),
		config.WithVerbose(*verbose),
	)
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	rec := metrics.New()

	db, err := database.Open(database.Options{
		Dir:          cfg.Dir,
		MaxTableSize: cfg.MaxTableSize,
		SyncWAL:      cfg.SyncWAL,
	}, logger, rec)
	if err != nil {
		fatal(err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Errorw("close database", "error", err)
		}
	}()

	pool, err := threadpool.New(cfg.PoolSize)
	if err != nil {
		fatal(err)
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		fatal(fmt.Errorf("listen on %s: %w", cfg.ListenAddr, err))
	}
	logger.Infow("listening", "addr", ln.Addr().String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, rec, logger)
	}

	srv := server.New(ln, pool, db, logger)
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ctx) }()

	select {
	case <-ctx.Done():
		logger.Infow("shutting down")
	case err := <-serveErr:
		if err != nil {
			logger.Errorw("server stopped", "error", err)
		}
	}

	// Stop accepting, then let in-flight and already-queued jobs drain
	// before the process exits — the ThreadPool drop-join from §5 must
	// still run during normal shutdown.
	_ = ln.Close()
	pool.Close()
}

func serveMetrics(ctx context.Context, addr string, rec *metrics.Recorder, logger interface {
	Errorw(string, ...interface{})
	Infow(string, ...interface{})
}) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(rec.Registry(), promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	logger.Infow("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorw("metrics server stopped", "error", err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
