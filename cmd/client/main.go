// Command client is a small CLI that issues one GET/SET/DELETE command
// per invocation against a running server, using the same line protocol
// the server speaks.
package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/darrenpicard25/simple-lsm-db/internal/protocol"
)

func main() {
	var addr string

	root := &cobra.Command{
		Use:           "client",
		Short:         "Issue one GET/SET/DELETE command against an lsmdb server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&addr, "addr", "127.0.0.1:8080", "server address")

	root.AddCommand(
		getCmd(&addr),
		setCmd(&addr),
		deleteCmd(&addr),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func getCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Fetch a key's value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := roundTrip(*addr, protocol.Command{Kind: protocol.CommandGet, Key: []byte(args[0])})
			if err != nil {
				return report(err)
			}
			return printResponse(resp)
		},
	}
}

func setCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := roundTrip(*addr, protocol.Command{
				Kind: protocol.CommandSet, Key: []byte(args[0]), Value: []byte(args[1]),
			})
			if err != nil {
				return report(err)
			}
			return printResponse(resp)
		},
	}
}

func deleteCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := roundTrip(*addr, protocol.Command{Kind: protocol.CommandDelete, Key: []byte(args[0])})
			if err != nil {
				return report(err)
			}
			return printResponse(resp)
		},
	}
}

// roundTrip dials addr, writes one encoded command line, and reads one
// response line back.
func roundTrip(addr string, cmd protocol.Command) (protocol.Response, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("connect to %s: %w", addr, err)
	}
	defer conn.Close()

	line := append(protocol.Encode(cmd), '\n')
	if _, err := conn.Write(line); err != nil {
		return protocol.Response{}, fmt.Errorf("write request: %w", err)
	}

	reply, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return protocol.Response{}, fmt.Errorf("read response: %w", err)
	}
	resp, err := protocol.ParseResponse(reply[:len(reply)-1])
	if err != nil {
		return protocol.Response{}, fmt.Errorf("parse response: %w", err)
	}
	return resp, nil
}

// printResponse prints the response in the format the original CLI used:
// "OK: <value>" / "OK: [None]" for a GET, "Success" for a SET/DELETE, and
// returns a non-nil error (already printed by report) for ERROR:.
func printResponse(resp protocol.Response) error {
	switch resp.Kind {
	case protocol.ResponseOK:
		if resp.Value == nil {
			fmt.Println("OK: [None]")
		} else {
			fmt.Printf("OK: %s\n", resp.Value)
		}
	case protocol.ResponseSuccess:
		fmt.Println("Success")
	case protocol.ResponseError:
		return report(fmt.Errorf("%s", resp.Message))
	}
	return nil
}

func report(err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return err
}
