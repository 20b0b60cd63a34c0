// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package simapi defines the ten request kinds a scenario runner sends
// to the bridge and their protobuf wire messages.
//
// Each [Kind] is served on its own channel, at a fixed offset from the
// base port. Messages use the field numbers of the scenario simulator's
// simulation_api_schema and are encoded and decoded directly with
// protowire, so the bridge carries no generated code. Decoders skip
// unknown fields: newer runners add fields the bridge never reads.
//
// Geometry fields decode straight into [coordinate] types so the
// bridge can hand them to the translator without copying.
package simapi
