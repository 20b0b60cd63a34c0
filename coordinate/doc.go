// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package coordinate translates poses and velocities from the scenario
// runner's world frame into the simulator's frame.
//
// The world frame is planar UTM-derived: X is easting, Y is northing,
// Z is up, orientations are quaternions. The simulator frame is the
// left-handed Unity convention: X points west (negative northing), Y is
// up, Z is easting, and rotations are Euler angles in degrees around
// those axes.
//
// The runner only works with coordinates inside one 100 km grid square,
// while the simulator reports its map origin in full UTM. An [Origin]
// keeps the map origin reduced modulo [TileSize] so that world
// coordinates can be re-based by subtraction. All functions are pure;
// the origin is passed explicitly.
package coordinate
