// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/coder/websocket"
)

// receivedCommand is one command as the fake simulator saw it.
type receivedCommand struct {
	Command   string          `json:"command"`
	Arguments json.RawMessage `json:"arguments"`
}

// fakeSimulator answers commands through a per-command reply function.
// A reply function returns the JSON to send back verbatim.
type fakeSimulator struct {
	t       *testing.T
	server  *httptest.Server
	replies map[string]func(arguments json.RawMessage) string

	mu       sync.Mutex
	received []receivedCommand
}

func newFakeSimulator(t *testing.T, replies map[string]func(json.RawMessage) string) *fakeSimulator {
	t.Helper()
	fake := &fakeSimulator{t: t, replies: replies}
	fake.server = httptest.NewServer(http.HandlerFunc(fake.serve))
	t.Cleanup(fake.server.Close)
	return fake
}

func (f *fakeSimulator) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var command receivedCommand
		if err := json.Unmarshal(data, &command); err != nil {
			_ = conn.Write(ctx, websocket.MessageText, []byte(`{"error":"bad json"}`))
			continue
		}
		f.mu.Lock()
		f.received = append(f.received, command)
		f.mu.Unlock()

		reply := `{"result":null}`
		if handler, ok := f.replies[command.Command]; ok {
			reply = handler(command.Arguments)
		}
		if err := conn.Write(ctx, websocket.MessageText, []byte(reply)); err != nil {
			return
		}
	}
}

func (f *fakeSimulator) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.received))
	for index, command := range f.received {
		names[index] = command.Command
	}
	return names
}

func (f *fakeSimulator) arguments(index int) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var decoded map[string]any
	if err := json.Unmarshal(f.received[index].Arguments, &decoded); err != nil {
		f.t.Fatalf("decoding arguments of command %d: %v", index, err)
	}
	return decoded
}

func (f *fakeSimulator) dial(t *testing.T) *Client {
	t.Helper()
	host, portText, err := net.SplitHostPort(f.server.Listener.Addr().String())
	if err != nil {
		t.Fatalf("SplitHostPort: %v", err)
	}
	port, err := strconv.Atoi(portText)
	if err != nil {
		t.Fatalf("Atoi: %v", err)
	}
	client, err := Dial(context.Background(), host, port, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func constant(reply string) func(json.RawMessage) string {
	return func(json.RawMessage) string { return reply }
}
