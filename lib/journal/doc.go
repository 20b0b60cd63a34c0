// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package journal records channel traffic for later inspection.
//
// A journal is a zstd-compressed stream of CBOR [Record] values, one
// per request/reply exchange, in the order the bridge handled them.
// Each record carries a BLAKE3 keyed digest of its request and reply
// bytes so a reader can detect corruption or tampering per record.
//
// [Writer] flushes a zstd block after every record: a journal cut off
// by a crash is readable up to the last completed exchange. [Reader]
// returns records in order and io.EOF at the end.
package journal
