// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package coordinate

import "fmt"

// Vector is a 3D vector. In the simulator frame it is also used for
// Euler rotations in degrees.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vector) String() string {
	return fmt.Sprintf("[%.2f %.2f %.2f]", v.X, v.Y, v.Z)
}

// Quaternion is a world-frame orientation.
type Quaternion struct {
	X float64
	Y float64
	Z float64
	W float64
}

// Euler holds roll, pitch and yaw in degrees.
type Euler struct {
	Roll  float64
	Pitch float64
	Yaw   float64
}

// Pose is a world-frame position and orientation.
type Pose struct {
	Position    Vector
	Orientation Quaternion
}

// Twist is a body-frame linear and angular velocity.
type Twist struct {
	Linear  Vector
	Angular Vector
}

// Transform is a simulator-frame position and Euler rotation.
type Transform struct {
	Position Vector `json:"position"`
	Rotation Vector `json:"rotation"`
}

// AgentState is the full simulator-frame state pushed to an agent.
type AgentState struct {
	Transform       Transform `json:"transform"`
	Velocity        Vector    `json:"velocity"`
	AngularVelocity Vector    `json:"angular_velocity"`
}
