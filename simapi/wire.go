// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package simapi

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Encoders follow proto3: scalar fields holding their zero value are
// omitted.

func appendDouble(b []byte, number protowire.Number, value float64) []byte {
	if value == 0 && !math.Signbit(value) {
		return b
	}
	b = protowire.AppendTag(b, number, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(value))
}

func appendBool(b []byte, number protowire.Number, value bool) []byte {
	if !value {
		return b
	}
	b = protowire.AppendTag(b, number, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(value))
}

func appendVarint(b []byte, number protowire.Number, value uint64) []byte {
	if value == 0 {
		return b
	}
	b = protowire.AppendTag(b, number, protowire.VarintType)
	return protowire.AppendVarint(b, value)
}

func appendString(b []byte, number protowire.Number, value string) []byte {
	if value == "" {
		return b
	}
	b = protowire.AppendTag(b, number, protowire.BytesType)
	return protowire.AppendString(b, value)
}

// appendMessage always writes the field, even for an empty body, so a
// present-but-default submessage survives the trip.
func appendMessage(b []byte, number protowire.Number, body []byte) []byte {
	b = protowire.AppendTag(b, number, protowire.BytesType)
	return protowire.AppendBytes(b, body)
}

// field is one decoded tag/value pair. scalar holds varint, fixed32
// and fixed64 payloads; bytes holds length-delimited payloads.
type field struct {
	number   protowire.Number
	wireType protowire.Type
	scalar   uint64
	bytes    []byte
}

func (f field) double() (float64, error) {
	if f.wireType != protowire.Fixed64Type {
		return 0, f.mismatch("double")
	}
	return math.Float64frombits(f.scalar), nil
}

func (f field) varint() (uint64, error) {
	if f.wireType != protowire.VarintType {
		return 0, f.mismatch("varint")
	}
	return f.scalar, nil
}

func (f field) boolean() (bool, error) {
	value, err := f.varint()
	if err != nil {
		return false, err
	}
	return protowire.DecodeBool(value), nil
}

func (f field) text() (string, error) {
	if f.wireType != protowire.BytesType {
		return "", f.mismatch("string")
	}
	return string(f.bytes), nil
}

func (f field) message() ([]byte, error) {
	if f.wireType != protowire.BytesType {
		return nil, f.mismatch("message")
	}
	return f.bytes, nil
}

func (f field) mismatch(want string) error {
	return fmt.Errorf("field %d: wire type %d cannot hold a %s", f.number, f.wireType, want)
}

// walkFields calls visit for each field in data, in wire order. Groups
// and other wire types no message here uses are skipped whole.
func walkFields(data []byte, visit func(field) error) error {
	for len(data) > 0 {
		number, wireType, length := protowire.ConsumeTag(data)
		if length < 0 {
			return fmt.Errorf("tag: %w", protowire.ParseError(length))
		}
		data = data[length:]

		current := field{number: number, wireType: wireType}
		switch wireType {
		case protowire.VarintType:
			current.scalar, length = protowire.ConsumeVarint(data)
		case protowire.Fixed64Type:
			current.scalar, length = protowire.ConsumeFixed64(data)
		case protowire.Fixed32Type:
			var value uint32
			value, length = protowire.ConsumeFixed32(data)
			current.scalar = uint64(value)
		case protowire.BytesType:
			current.bytes, length = protowire.ConsumeBytes(data)
		default:
			length = protowire.ConsumeFieldValue(number, wireType, data)
		}
		if length < 0 {
			return fmt.Errorf("field %d: %w", number, protowire.ParseError(length))
		}
		data = data[length:]

		if err := visit(current); err != nil {
			return err
		}
	}
	return nil
}

func setDouble(f field, dst *float64) error {
	value, err := f.double()
	if err != nil {
		return err
	}
	*dst = value
	return nil
}

func setString(f field, dst *string) error {
	value, err := f.text()
	if err != nil {
		return err
	}
	*dst = value
	return nil
}

func setBool(f field, dst *bool) error {
	value, err := f.boolean()
	if err != nil {
		return err
	}
	*dst = value
	return nil
}

// mergeNested decodes a submessage field into dst. Repeated
// occurrences of a singular submessage merge, as in proto3.
func mergeNested[T any](f field, dst *T, merge func(*T, []byte) error) error {
	body, err := f.message()
	if err != nil {
		return err
	}
	if err := merge(dst, body); err != nil {
		return fmt.Errorf("field %d: %w", f.number, err)
	}
	return nil
}
