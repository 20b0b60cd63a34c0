// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package coordinate

import "math"

// TileSize is the edge of a UTM 100 km grid square in meters.
const TileSize = 100_000.0

// DefaultRotation is the orientation given to freshly spawned agents.
// Spawn requests only carry a bounding box, so there is no heading to
// translate.
var DefaultRotation = Vector{X: 0, Y: -90, Z: 0}

// Origin is the world-frame position of the simulator's (0, 0, 0),
// reduced to the current grid square.
type Origin struct {
	Northing float64
	Easting  float64
}

// OriginFromGPS reduces a full UTM northing/easting reading to the
// position inside its grid square.
func OriginFromGPS(northing, easting float64) Origin {
	return Origin{
		Northing: reduceToTile(northing),
		Easting:  reduceToTile(easting),
	}
}

// reduceToTile is a floored modulo, so negative inputs land in
// [0, TileSize) as well.
func reduceToTile(value float64) float64 {
	remainder := math.Mod(value, TileSize)
	if remainder < 0 {
		remainder += TileSize
	}
	return remainder
}

// WorldToSim re-bases a world-frame position onto the simulator tile
// and permutes it into simulator axes.
func (o Origin) WorldToSim(world Vector) Vector {
	return Vector{
		X: -(world.Y - o.Northing),
		Y: world.Z,
		Z: world.X - o.Easting,
	}
}

// SimToWorld is the inverse of WorldToSim.
func (o Origin) SimToWorld(sim Vector) Vector {
	return Vector{
		X: sim.Z + o.Easting,
		Y: o.Northing - sim.X,
		Z: sim.Y,
	}
}

// QuaternionToEuler decomposes q into roll (X), pitch (Y) and yaw (Z)
// in degrees. The pitch sine is clamped to [-1, 1] because quaternions
// that are not exactly unit length can push it slightly outside the
// arcsine domain.
func QuaternionToEuler(q Quaternion) Euler {
	sinRollCosPitch := 2.0 * (q.W*q.X + q.Y*q.Z)
	cosRollCosPitch := 1.0 - 2.0*(q.X*q.X+q.Y*q.Y)
	roll := math.Atan2(sinRollCosPitch, cosRollCosPitch)

	sinPitch := 2.0 * (q.W*q.Y - q.Z*q.X)
	sinPitch = math.Max(-1.0, math.Min(1.0, sinPitch))
	pitch := math.Asin(sinPitch)

	sinYawCosPitch := 2.0 * (q.W*q.Z + q.X*q.Y)
	cosYawCosPitch := 1.0 - 2.0*(q.Y*q.Y+q.Z*q.Z)
	yaw := math.Atan2(sinYawCosPitch, cosYawCosPitch)

	return Euler{
		Roll:  degrees(roll),
		Pitch: degrees(pitch),
		Yaw:   degrees(yaw),
	}
}

// WorldRotationToSim converts a world orientation into simulator Euler
// angles: X is the world pitch, Y the negated yaw, Z the negated roll.
func WorldRotationToSim(q Quaternion) Vector {
	euler := QuaternionToEuler(q)
	return Vector{
		X: euler.Pitch,
		Y: -euler.Yaw,
		Z: -euler.Roll,
	}
}

// WorldLinearVelocityToSim projects a vehicle's forward speed onto the
// simulator's horizontal plane. Only linear.X is used: vehicles are
// assumed to move along their own forward axis. simRotation.Y is the
// simulator yaw in degrees.
func WorldLinearVelocityToSim(linear Vector, simRotation Vector) Vector {
	yaw := radians(simRotation.Y)
	return Vector{
		X: linear.X * math.Sin(yaw),
		Y: 0,
		Z: linear.X * math.Cos(yaw),
	}
}

// WorldAngularVelocityToSim keeps only the yaw rate, mapped onto the
// simulator's vertical axis.
func WorldAngularVelocityToSim(angular Vector) Vector {
	return Vector{X: 0, Y: angular.Z, Z: 0}
}

// InitialAgentState builds a spawn state at the bounding-box center
// (with Y and Z swapped into simulator axes) facing DefaultRotation.
func InitialAgentState(boundingBoxCenter Vector) AgentState {
	return AgentState{
		Transform: Transform{
			Position: Vector{
				X: boundingBoxCenter.X,
				Y: boundingBoxCenter.Z,
				Z: boundingBoxCenter.Y,
			},
			Rotation: DefaultRotation,
		},
	}
}

// AgentState translates a world pose and body twist into the simulator
// state for one agent.
func (o Origin) AgentState(pose Pose, twist Twist) AgentState {
	rotation := WorldRotationToSim(pose.Orientation)
	return AgentState{
		Transform: Transform{
			Position: o.WorldToSim(pose.Position),
			Rotation: rotation,
		},
		Velocity:        WorldLinearVelocityToSim(twist.Linear, rotation),
		AngularVelocity: WorldAngularVelocityToSim(twist.Angular),
	}
}

func degrees(angle float64) float64 {
	return angle * 180.0 / math.Pi
}

func radians(angle float64) float64 {
	return angle * math.Pi / 180.0
}
