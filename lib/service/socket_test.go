// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/oddrunner/simbridge/lib/codec"
	"github.com/oddrunner/simbridge/lib/logging"
	"github.com/oddrunner/simbridge/lib/testutil"
)

type statusReply struct {
	Initialized bool   `cbor:"initialized"`
	Scene       string `cbor:"scene"`
}

// startServer runs a server with the given handlers and returns its
// socket path. The server is stopped when the test ends.
func startServer(t *testing.T, handlers map[string]ActionFunc) string {
	t.Helper()
	socketPath := filepath.Join(testutil.SocketDir(t), "control.sock")
	server := NewSocketServer(socketPath, logging.Discard())
	for action, handler := range handlers {
		server.Handle(action, handler)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := testutil.RequireReceive(t, done, 5*time.Second, "server shutdown"); err != nil {
			t.Errorf("Serve: %v", err)
		}
	})

	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "server ready")
	return socketPath
}

func TestCallReturnsData(t *testing.T) {
	socketPath := startServer(t, map[string]ActionFunc{
		"status": func(ctx context.Context, raw []byte) (any, error) {
			return statusReply{Initialized: true, Scene: "BorregasAve"}, nil
		},
	})

	var reply statusReply
	if err := NewClient(socketPath).Call(context.Background(), "status", nil, &reply); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !reply.Initialized || reply.Scene != "BorregasAve" {
		t.Fatalf("reply = %+v", reply)
	}
}

func TestCallPassesFields(t *testing.T) {
	socketPath := startServer(t, map[string]ActionFunc{
		"echo": func(ctx context.Context, raw []byte) (any, error) {
			var request struct {
				Value string `cbor:"value"`
			}
			if err := codec.Unmarshal(raw, &request); err != nil {
				return nil, err
			}
			return map[string]string{"value": request.Value}, nil
		},
	})

	var reply map[string]string
	err := NewClient(socketPath).Call(context.Background(), "echo", map[string]any{"value": "ping"}, &reply)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if reply["value"] != "ping" {
		t.Fatalf("reply = %v", reply)
	}
}

func TestCallReportsActionErrors(t *testing.T) {
	socketPath := startServer(t, map[string]ActionFunc{
		"broken": func(ctx context.Context, raw []byte) (any, error) {
			return nil, errors.New("not today")
		},
	})
	client := NewClient(socketPath)

	var actionError *ActionError
	if err := client.Call(context.Background(), "broken", nil, nil); !errors.As(err, &actionError) || actionError.Message != "not today" {
		t.Fatalf("Call(broken) = %v", err)
	}
	if err := client.Call(context.Background(), "missing", nil, nil); !errors.As(err, &actionError) {
		t.Fatalf("Call(missing) = %v, want *ActionError", err)
	}
}

func TestRequestWithoutAction(t *testing.T) {
	socketPath := startServer(t, nil)

	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if err := codec.NewEncoder(conn).Encode(map[string]any{"verb": "status"}); err != nil {
		t.Fatalf("writing request: %v", err)
	}
	var response Response
	if err := codec.NewDecoder(conn).Decode(&response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if response.OK || response.Error != "missing required field: action" {
		t.Fatalf("response = %+v", response)
	}
}

func TestCallWithoutServer(t *testing.T) {
	socketPath := filepath.Join(testutil.SocketDir(t), "absent.sock")
	err := NewClient(socketPath).Call(context.Background(), "status", nil, nil)
	var actionError *ActionError
	if err == nil || errors.As(err, &actionError) {
		t.Fatalf("Call without server = %v, want a connection error", err)
	}
}

func TestDuplicateHandlerPanics(t *testing.T) {
	server := NewSocketServer("/tmp/unused.sock", logging.Discard())
	server.Handle("status", func(context.Context, []byte) (any, error) { return nil, nil })
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate Handle did not panic")
		}
	}()
	server.Handle("status", func(context.Context, []byte) (any, error) { return nil, nil })
}
