// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"github.com/oddrunner/simbridge/lib/clock"
	"github.com/oddrunner/simbridge/lib/codec"
)

// ErrDigestMismatch is returned by Record.Verify when the stored digest
// does not match the payloads.
var ErrDigestMismatch = errors.New("journal: digest mismatch")

// Record is one request/reply exchange.
type Record struct {
	Sequence uint64 `cbor:"sequence"`
	Session  string `cbor:"session,omitempty"`
	Kind     string `cbor:"kind"`

	// Timestamp is Unix nanoseconds. The shared CBOR mode encodes
	// time.Time as whole seconds.
	Timestamp int64 `cbor:"timestamp"`

	Request  []byte `cbor:"request"`
	Response []byte `cbor:"response"`
	Digest   []byte `cbor:"digest"`
}

// Time returns the timestamp as a UTC time.
func (r Record) Time() time.Time {
	return time.Unix(0, r.Timestamp).UTC()
}

// Verify recomputes the record's digest.
func (r Record) Verify() error {
	want := Digest(r.Request, r.Response)
	if !bytes.Equal(r.Digest, want[:]) {
		return fmt.Errorf("record %d: %w", r.Sequence, ErrDigestMismatch)
	}
	return nil
}

// exchangeDomainKey separates journal digests from any other BLAKE3
// use of the same bytes.
var exchangeDomainKey = [32]byte{
	's', 'i', 'm', 'b', 'r', 'i', 'd', 'g', 'e', '.', 'j', 'o', 'u', 'r', 'n', 'a',
	'l', '.', 'e', 'x', 'c', 'h', 'a', 'n', 'g', 'e', 0, 0, 0, 0, 0, 0,
}

// Digest is the keyed BLAKE3 hash of a request and its reply. The
// request length is hashed first so the split point is unambiguous.
func Digest(request, response []byte) [32]byte {
	hasher, err := blake3.NewKeyed(exchangeDomainKey[:])
	if err != nil {
		panic("journal: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(request)))
	hasher.Write(length[:])
	hasher.Write(request)
	hasher.Write(response)

	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// Writer appends records to a journal. It is safe for concurrent use.
type Writer struct {
	clock clock.Clock

	mu         sync.Mutex
	closer     io.Closer
	compressor *zstd.Encoder
	encoder    *codec.Encoder
	sequence   uint64
}

// Create truncates or creates the journal file at path.
func Create(path string, clk clock.Clock) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating journal: %w", err)
	}
	writer, err := NewWriter(file, clk)
	if err != nil {
		file.Close()
		return nil, err
	}
	writer.closer = file
	return writer, nil
}

// NewWriter writes a journal to w. Closing the Writer does not close w.
func NewWriter(w io.Writer, clk clock.Clock) (*Writer, error) {
	if clk == nil {
		clk = clock.Real()
	}
	compressor, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("initializing zstd encoder: %w", err)
	}
	return &Writer{
		clock:      clk,
		compressor: compressor,
		encoder:    codec.NewEncoder(compressor),
	}, nil
}

// Append records one exchange and returns the stored record.
func (w *Writer) Append(session, kind string, request, response []byte) (Record, error) {
	digest := Digest(request, response)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.compressor == nil {
		return Record{}, errors.New("journal: append after close")
	}

	w.sequence++
	record := Record{
		Sequence:  w.sequence,
		Session:   session,
		Kind:      kind,
		Timestamp: w.clock.Now().UnixNano(),
		Request:   request,
		Response:  response,
		Digest:    digest[:],
	}
	if err := w.encoder.Encode(record); err != nil {
		return Record{}, fmt.Errorf("encoding journal record %d: %w", record.Sequence, err)
	}
	if err := w.compressor.Flush(); err != nil {
		return Record{}, fmt.Errorf("flushing journal record %d: %w", record.Sequence, err)
	}
	return record, nil
}

// Close finishes the zstd stream and closes the file opened by Create.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.compressor == nil {
		return nil
	}
	err := w.compressor.Close()
	w.compressor = nil
	if w.closer != nil {
		err = errors.Join(err, w.closer.Close())
	}
	return err
}

// Reader reads records back in order.
type Reader struct {
	closer       io.Closer
	decompressor *zstd.Decoder
	decoder      *codec.Decoder
}

// Open opens the journal file at path.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	reader, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	reader.closer = file
	return reader, nil
}

// NewReader reads a journal from r.
func NewReader(r io.Reader) (*Reader, error) {
	decompressor, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("initializing zstd decoder: %w", err)
	}
	return &Reader{
		decompressor: decompressor,
		decoder:      codec.NewDecoder(decompressor),
	}, nil
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	var record Record
	if err := r.decoder.Decode(&record); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("decoding journal record: %w", err)
	}
	return record, nil
}

// Close releases the decoder and closes the file opened by Open.
func (r *Reader) Close() error {
	r.decompressor.Close()
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
