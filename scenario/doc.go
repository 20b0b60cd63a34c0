// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package scenario prepares a scenario for the scenario runner.
//
// A run names a scenario file (TierIV YAML or OpenSCENARIO .xosc) and
// a Lanelet2 .osm map, either as local paths or as http(s) URLs.
// [Prepare] fetches both into a work directory and writes a localized
// copy of the scenario: the map reference is rewritten to the local
// map path and the ego flag is cleared, because the ego vehicle is
// driven by the bridge's configured vehicle rather than by the runner.
package scenario
