// Package protocol implements the line-oriented wire format spoken by the
// server and the CLI client: one command per request line, one response
// per reply line.
package protocol

import (
	"bytes"
	"fmt"

	"github.com/darrenpicard25/simple-lsm-db/internal/dberr"
)

// CommandKind identifies which operation a Command carries.
type CommandKind int

const (
	CommandGet CommandKind = iota
	CommandSet
	CommandDelete
)

var (
	tokenGet    = []byte("GET")
	tokenSet    = []byte("SET")
	tokenDelete = []byte("DELETE")
)

// Command is a parsed client request.
type Command struct {
	Kind  CommandKind
	Key   []byte
	Value []byte // only set for CommandSet
}

// ParseCommand parses a single request line (trailing LF already
// stripped). Command tokens are matched case-insensitively.
func ParseCommand(line []byte) (Command, error) {
	line = bytes.TrimSpace(line)
	parts := bytes.SplitN(line, []byte(" "), 3)
	if len(parts) == 0 || len(parts[0]) == 0 {
		return Command{}, dberr.New(dberr.MalformedRequest, "missing command")
	}

	verb := bytes.ToUpper(parts[0])
	switch {
	case bytes.Equal(verb, tokenGet):
		if len(parts) < 2 {
			return Command{}, dberr.New(dberr.MalformedRequest, "missing key for GET command")
		}
		return Command{Kind: CommandGet, Key: parts[1]}, nil
	case bytes.Equal(verb, tokenSet):
		if len(parts) < 3 {
			return Command{}, dberr.New(dberr.MalformedRequest, "missing key or value for SET command")
		}
		return Command{Kind: CommandSet, Key: parts[1], Value: parts[2]}, nil
	case bytes.Equal(verb, tokenDelete):
		if len(parts) < 2 {
			return Command{}, dberr.New(dberr.MalformedRequest, "missing key for DELETE command")
		}
		return Command{Kind: CommandDelete, Key: parts[1]}, nil
	default:
		return Command{}, dberr.New(dberr.MalformedRequest, fmt.Sprintf("unknown command: %q", parts[0]))
	}
}

// Encode renders a Command back to its wire form, without a trailing LF.
func Encode(c Command) []byte {
	switch c.Kind {
	case CommandGet:
		return append([]byte("GET "), c.Key...)
	case CommandSet:
		out := append([]byte("SET "), c.Key...)
		out = append(out, ' ')
		out = append(out, c.Value...)
		return out
	case CommandDelete:
		return append([]byte("DELETE "), c.Key...)
	default:
		return nil
	}
}

// ResponseKind identifies which shape a Response carries.
type ResponseKind int

const (
	ResponseOK ResponseKind = iota
	ResponseSuccess
	ResponseError
)

// Response is a parsed or to-be-encoded server reply.
type Response struct {
	Kind    ResponseKind
	Value   []byte // only meaningful for ResponseOK; nil means "no value"
	Message string // only meaningful for ResponseError
}

// OK builds a GET-hit response.
func OK(value []byte) Response { return Response{Kind: ResponseOK, Value: value} }

// Success builds the SET/DELETE acknowledgement.
func Success() Response { return Response{Kind: ResponseSuccess} }

// Err builds an error response.
func Err(message string) Response { return Response{Kind: ResponseError, Message: message} }

// EncodeResponse renders r as its wire line, including the trailing LF.
func EncodeResponse(r Response) []byte {
	switch r.Kind {
	case ResponseOK:
		if r.Value == nil {
			return []byte("OK:\n")
		}
		out := append([]byte("OK: "), r.Value...)
		return append(out, '\n')
	case ResponseError:
		return []byte("ERROR: " + r.Message + "\n")
	case ResponseSuccess:
		return []byte("OK\n")
	default:
		return []byte("ERROR: internal error\n")
	}
}

// ParseResponse parses a single response line (trailing LF already
// stripped) — used by the CLI client to interpret server replies.
func ParseResponse(line []byte) (Response, error) {
	line = bytes.TrimSpace(line)
	parts := bytes.SplitN(line, []byte(" "), 2)
	if len(parts) == 0 {
		return Response{}, dberr.New(dberr.MalformedRequest, "empty response")
	}
	switch {
	case bytes.Equal(parts[0], []byte("OK:")):
		if len(parts) < 2 {
			return Response{Kind: ResponseOK, Value: nil}, nil
		}
		return Response{Kind: ResponseOK, Value: parts[1]}, nil
	case bytes.Equal(parts[0], []byte("ERROR:")):
		msg := ""
		if len(parts) == 2 {
			msg = string(parts[1])
		}
		return Response{Kind: ResponseError, Message: msg}, nil
	case bytes.Equal(parts[0], []byte("OK")):
		return Response{Kind: ResponseSuccess}, nil
	default:
		return Response{}, dberr.New(dberr.MalformedRequest, "unknown response type")
	}
}
