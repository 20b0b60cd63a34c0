// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package service implements the bridge's control socket: a CBOR
// request-response protocol on a Unix socket.
//
// Each connection carries exactly one exchange. The client writes a
// CBOR map with an "action" field plus action-specific fields; the
// server answers with a [Response] envelope ({ok, error, data}) and
// closes the connection. CBOR is self-delimiting, so no framing is
// needed.
//
// [SocketServer] routes actions to registered [ActionFunc] handlers.
// [Client] is the matching caller used by the `simbridge status`
// command.
//
// The socket is a local operator interface with no authentication:
// access is governed by the socket file's permissions.
package service
