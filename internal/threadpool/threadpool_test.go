package threadpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewRejectsOutOfBoundsSize(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for size 0")
	}
	if _, err := New(11); err == nil {
		t.Fatal("expected error for size 11")
	}
	if _, err := New(1); err != nil {
		t.Fatalf("New(1) should succeed: %v", err)
	}
}

func TestExecuteRunsAllJobs(t *testing.T) {
	p, err := New(4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var count int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		p.Execute(func() {
			defer wg.Done()
			atomic.AddInt64(&count, 1)
		})
	}
	wg.Wait()
	p.Close()

	if count != 50 {
		t.Fatalf("expected 50 jobs to run, got %d", count)
	}
}

func TestCloseWaitsForInFlightJobs(t *testing.T) {
	p, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var ran int32
	p.Execute(func() {
		time.Sleep(10 * time.Millisecond)
		atomic.StoreInt32(&ran, 1)
	})
	p.Close()
	if atomic.LoadInt32(&ran) != 1 {
		t.Fatal("expected Close to wait for the job to finish")
	}
}
