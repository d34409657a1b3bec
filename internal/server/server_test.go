package server

import (
	"bufio"
	"context"
	"net"
	"testing"

	"github.com/darrenpicard25/simple-lsm-db/internal/dberr"
	"github.com/darrenpicard25/simple-lsm-db/internal/threadpool"
)

// fakeEngine is an in-memory stand-in for *database.Database, letting the
// dispatcher be tested without touching disk.
type fakeEngine struct {
	values map[string][]byte
	tombs  map[string]bool
	failOn string // command kind that returns an error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{values: map[string][]byte{}, tombs: map[string]bool{}}
}

func (f *fakeEngine) Get(key []byte) ([]byte, bool, error) {
	if f.failOn == "get" {
		return nil, false, dberr.New(dberr.IoFailure, "boom")
	}
	k := string(key)
	if f.tombs[k] {
		return nil, false, nil
	}
	v, ok := f.values[k]
	if !ok {
		return nil, false, nil
	}
	return v, true, nil
}

func (f *fakeEngine) Set(key, value []byte) error {
	if f.failOn == "set" {
		return dberr.New(dberr.IoFailure, "boom")
	}
	k := string(key)
	f.values[k] = value
	delete(f.tombs, k)
	return nil
}

func (f *fakeEngine) Delete(key []byte) error {
	if f.failOn == "delete" {
		return dberr.New(dberr.IoFailure, "boom")
	}
	k := string(key)
	delete(f.values, k)
	f.tombs[k] = true
	return nil
}

func startServer(t *testing.T, engine Engine) net.Conn {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	pool, err := threadpool.New(2)
	if err != nil {
		t.Fatalf("threadpool.New: %v", err)
	}
	srv := New(ln, pool, engine, nil)
	go func() { _ = srv.Serve(context.Background()) }()
	t.Cleanup(func() { ln.Close(); pool.Close() })

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// TestScenarioS1OverTheWire mirrors §8 S1 against the real TCP dispatcher.
func TestScenarioS1OverTheWire(t *testing.T) {
	conn := startServer(t, newFakeEngine())
	r := bufio.NewReader(conn)

	write(t, conn, "SET k1 v1\n")
	expectLine(t, r, "OK\n")

	write(t, conn, "GET k1\n")
	expectLine(t, r, "OK: v1\n")

	write(t, conn, "GET k2\n")
	expectLine(t, r, "OK:\n")
}

// TestScenarioS6UnknownCommandDoesNotPoisonConnection mirrors §8 S6: an
// unknown command gets ERROR:, and the connection keeps serving.
func TestScenarioS6UnknownCommandDoesNotPoisonConnection(t *testing.T) {
	conn := startServer(t, newFakeEngine())
	r := bufio.NewReader(conn)

	write(t, conn, "FOO bar\n")
	line := readLine(t, r)
	if len(line) < 6 || line[:6] != "ERROR:" {
		t.Fatalf("got %q, want ERROR: prefix", line)
	}

	write(t, conn, "SET k v\n")
	expectLine(t, r, "OK\n")
}

func TestDispatchSurfacesEngineFailureAsError(t *testing.T) {
	engine := newFakeEngine()
	engine.failOn = "get"
	conn := startServer(t, engine)
	r := bufio.NewReader(conn)

	write(t, conn, "GET k\n")
	line := readLine(t, r)
	if len(line) < 6 || line[:6] != "ERROR:" {
		t.Fatalf("got %q, want ERROR: prefix", line)
	}
}

func write(t *testing.T, conn net.Conn, s string) {
	t.Helper()
	if _, err := conn.Write([]byte(s)); err != nil {
		t.Fatalf("Write: %v", err)
	}
}

func readLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	return line
}

func expectLine(t *testing.T, r *bufio.Reader, want string) {
	t.Helper()
	got := readLine(t, r)
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
