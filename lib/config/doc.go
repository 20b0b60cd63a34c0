// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads simbridge configuration.
//
// Values are layered in a fixed order:
//
//  1. [Default] supplies the channel layout, preset palettes and
//     timeouts.
//  2. An optional YAML file, named by the --config flag or the
//     SIMBRIDGE_CONFIG environment variable. Unknown keys are
//     rejected so typos fail loudly.
//  3. Environment variables. The simulator settings keep the names
//     the scenario runner tooling already exports
//     (LGSVL__SIMULATOR_HOST, LGSVL__SIMULATOR_PORT, LGSVL__MAP,
//     LGSVL__VEHICLE_0); the rest use a SIMBRIDGE_ prefix.
//
// Command-line flags are applied last by the caller.
//
// [Config.Validate] checks structure only. The simulator endpoint,
// scene and ego vehicle may legitimately be absent until a request
// needs them, so they are checked at the point of use through the
// Require methods on [SimulatorConfig], which return errors wrapping
// [ErrMissingSetting].
//
// This package depends on no other simbridge packages.
package config
