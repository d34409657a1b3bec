// Package threadpool implements a fixed-size worker pool that dispatches
// closures submitted to a shared job queue.
package threadpool

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/darrenpicard25/simple-lsm-db/internal/dberr"
)

// MinSize and MaxSize bound the number of workers a pool may have.
const (
	MinSize = 1
	MaxSize = 10
)

// Job is a unit of work submitted to the pool.
type Job func()

// Pool is a fixed number of worker goroutines draining a shared job
// channel. Unlike a mutex-guarded receiver, a Go channel is already safe
// for concurrent consumption by multiple goroutines, so no extra lock is
// needed around the queue itself.
type Pool struct {
	jobs  chan Job
	group *errgroup.Group
}

// New starts size workers pulling from a shared, unbuffered job channel.
// There is no queue of pending jobs: Execute returns only once a worker
// has taken the job. size must be within [MinSize, MaxSize].
func New(size int) (*Pool, error) {
	if size < MinSize || size > MaxSize {
		return nil, dberr.New(dberr.ConfigurationError, "thread pool size must be between 1 and 10")
	}

	p := &Pool{
		jobs:  make(chan Job),
		group: &errgroup.Group{},
	}
	for i := 0; i < size; i++ {
		p.group.Go(p.worker)
	}
	return p, nil
}

func (p *Pool) worker() error {
	for job := range p.jobs {
		job()
	}
	return nil
}

// Execute enqueues job for a worker to run. It blocks if every worker is
// currently busy, since the queue is unbuffered; submission order across
// callers is FIFO, but execution order among workers is not guaranteed.
func (p *Pool) Execute(job Job) {
	p.jobs <- job
}

// Close stops accepting new jobs and waits for every in-flight job to
// finish, mirroring the original's drop-then-join shutdown: closing
// the channel first signals end-of-stream, then every worker is joined.
func (p *Pool) Close() {
	close(p.jobs)
	_ = p.group.Wait()
}

// CloseWithContext is Close but bails out early if ctx is done before the
// workers finish draining the queue.
func (p *Pool) CloseWithContext(ctx context.Context) error {
	close(p.jobs)
	done := make(chan error, 1)
	go func() { done <- p.group.Wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
