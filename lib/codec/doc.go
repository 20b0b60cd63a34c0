// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the single place the repository configures CBOR.
//
// CBOR is used for the bridge's own artifacts: the control socket
// protocol served by lib/service and the records in a traffic journal
// written by lib/journal. The scenario runner's channels speak
// protobuf and are handled by the simapi package instead.
//
// Consumers import this package rather than fxamacker/cbor directly so
// that every encoder shares the deterministic configuration.
package codec
