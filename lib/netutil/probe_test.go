// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"
	"time"
)

func TestProbeTCPReachable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()
	go func() {
		for {
			connection, err := listener.Accept()
			if err != nil {
				return
			}
			connection.Close()
		}
	}()

	port := listener.Addr().(*net.TCPAddr).Port
	if err := ProbeTCP(context.Background(), "127.0.0.1", port, time.Second); err != nil {
		t.Fatalf("ProbeTCP: %v", err)
	}
}

func TestProbeTCPUnreachable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	if err := ProbeTCP(context.Background(), "127.0.0.1", port, time.Second); err == nil {
		t.Fatal("ProbeTCP succeeded against a closed port")
	}
}

func TestIsExpectedCloseError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{io.EOF, true},
		{fmt.Errorf("recv: %w", net.ErrClosed), true},
		{context.Canceled, true},
		{syscall.EPIPE, true},
		{syscall.ECONNRESET, true},
		{syscall.ECONNREFUSED, false},
		{errors.New("decode failure"), false},
	}
	for _, test := range tests {
		if got := IsExpectedCloseError(test.err); got != test.want {
			t.Errorf("IsExpectedCloseError(%v) = %v, want %v", test.err, got, test.want)
		}
	}
}
