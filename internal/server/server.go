// Package server implements the TCP accept loop and per-connection
// dispatcher: each accepted connection is handed to the thread pool,
// which serialises access to the Database by acquiring its lock for the
// full duration of one command.
package server

import (
	"bufio"
	"context"
	"net"

	"go.uber.org/zap"

	"github.com/darrenpicard25/simple-lsm-db/internal/dberr"
	"github.com/darrenpicard25/simple-lsm-db/internal/logging"
	"github.com/darrenpicard25/simple-lsm-db/internal/protocol"
	"github.com/darrenpicard25/simple-lsm-db/internal/threadpool"
)

// Engine is the subset of *database.Database the dispatcher needs. A
// narrow interface keeps this package testable against a fake.
type Engine interface {
	Get(key []byte) (value []byte, found bool, err error)
	Set(key, value []byte) error
	Delete(key []byte) error
}

// Server accepts TCP connections on a listener and dispatches each to a
// fixed worker pool, which serves every command it reads against a single
// shared Engine.
type Server struct {
	ln     net.Listener
	pool   *threadpool.Pool
	engine Engine
	logger *zap.SugaredLogger
}

// New wraps an already-bound listener, a worker pool, and the engine the
// pool's workers will serve commands against.
func New(ln net.Listener, pool *threadpool.Pool, engine Engine, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Server{ln: ln, pool: pool, engine: engine, logger: logger}
}

// Serve runs the accept loop on the calling goroutine until ctx is
// canceled or Accept fails. The acceptor itself never touches the
// Database; it only hands connections to the pool, whose workers acquire
// the Database's lock for the duration of one command.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.ln.Close()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return dberr.Wrap(dberr.IoFailure, "accept connection", err)
		}
		s.pool.Execute(func() { s.handleConn(conn) })
	}
}

// handleConn reads one request line at a time from conn and writes one
// response line per request, until the client disconnects or a read
// fails. A malformed request closes neither the connection nor any later
// command on it (§7, §8 S6).
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			trimmed := line
			if trimmed[len(trimmed)-1] == '\n' {
				trimmed = trimmed[:len(trimmed)-1]
			}
			if len(trimmed) > 0 {
				resp := s.dispatch(trimmed)
				if _, writeErr := conn.Write(protocol.EncodeResponse(resp)); writeErr != nil {
					return
				}
			}
		}
		if err != nil {
			return
		}
	}
}

// dispatch parses and executes a single request line, returning the wire
// response to send back.
func (s *Server) dispatch(line []byte) protocol.Response {
	cmd, err := protocol.ParseCommand(line)
	if err != nil {
		logging.Log(s.logger, "parse request", err)
		return protocol.Err(err.Error())
	}

	switch cmd.Kind {
	case protocol.CommandGet:
		value, found, err := s.engine.Get(cmd.Key)
		if err != nil {
			logging.Log(s.logger, "get", err)
			return protocol.Err(err.Error())
		}
		if !found {
			return protocol.OK(nil)
		}
		return protocol.OK(value)
	case protocol.CommandSet:
		if err := s.engine.Set(cmd.Key, cmd.Value); err != nil {
			logging.Log(s.logger, "set", err)
			return protocol.Err(err.Error())
		}
		return protocol.Success()
	case protocol.CommandDelete:
		if err := s.engine.Delete(cmd.Key); err != nil {
			logging.Log(s.logger, "delete", err)
			return protocol.Err(err.Error())
		}
		return protocol.Success()
	default:
		return protocol.Err("unrecognized command")
	}
}
