// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package simapi

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/oddrunner/simbridge/coordinate"
)

// BoundingBox is an entity's extent: center offset from the entity
// origin plus full dimensions along each axis.
type BoundingBox struct {
	Center     coordinate.Vector
	Dimensions coordinate.Vector
}

// Accel is a linear plus angular acceleration.
type Accel struct {
	Linear  coordinate.Vector
	Angular coordinate.Vector
}

// RosTime is a ROS builtin_interfaces/Time stamp.
type RosTime struct {
	Sec     int32
	Nanosec uint32
}

// Seconds returns the stamp as fractional seconds.
func (t RosTime) Seconds() float64 {
	return float64(t.Sec) + float64(t.Nanosec)/1e9
}

// geometry_msgs Point and Vector3 share one layout: x=1, y=2, z=3.
func appendVector(b []byte, number protowire.Number, v coordinate.Vector) []byte {
	var body []byte
	body = appendDouble(body, 1, v.X)
	body = appendDouble(body, 2, v.Y)
	body = appendDouble(body, 3, v.Z)
	return appendMessage(b, number, body)
}

func mergeVector(dst *coordinate.Vector, data []byte) error {
	return walkFields(data, func(f field) error {
		switch f.number {
		case 1:
			return setDouble(f, &dst.X)
		case 2:
			return setDouble(f, &dst.Y)
		case 3:
			return setDouble(f, &dst.Z)
		}
		return nil
	})
}

func appendQuaternion(b []byte, number protowire.Number, q coordinate.Quaternion) []byte {
	var body []byte
	body = appendDouble(body, 1, q.X)
	body = appendDouble(body, 2, q.Y)
	body = appendDouble(body, 3, q.Z)
	body = appendDouble(body, 4, q.W)
	return appendMessage(b, number, body)
}

func mergeQuaternion(dst *coordinate.Quaternion, data []byte) error {
	return walkFields(data, func(f field) error {
		switch f.number {
		case 1:
			return setDouble(f, &dst.X)
		case 2:
			return setDouble(f, &dst.Y)
		case 3:
			return setDouble(f, &dst.Z)
		case 4:
			return setDouble(f, &dst.W)
		}
		return nil
	})
}

func appendPose(b []byte, number protowire.Number, pose coordinate.Pose) []byte {
	var body []byte
	body = appendVector(body, 1, pose.Position)
	body = appendQuaternion(body, 2, pose.Orientation)
	return appendMessage(b, number, body)
}

func mergePose(dst *coordinate.Pose, data []byte) error {
	return walkFields(data, func(f field) error {
		switch f.number {
		case 1:
			return mergeNested(f, &dst.Position, mergeVector)
		case 2:
			return mergeNested(f, &dst.Orientation, mergeQuaternion)
		}
		return nil
	})
}

func appendTwist(b []byte, number protowire.Number, twist coordinate.Twist) []byte {
	var body []byte
	body = appendVector(body, 1, twist.Linear)
	body = appendVector(body, 2, twist.Angular)
	return appendMessage(b, number, body)
}

func mergeTwist(dst *coordinate.Twist, data []byte) error {
	return walkFields(data, func(f field) error {
		switch f.number {
		case 1:
			return mergeNested(f, &dst.Linear, mergeVector)
		case 2:
			return mergeNested(f, &dst.Angular, mergeVector)
		}
		return nil
	})
}

func appendAccel(b []byte, number protowire.Number, accel Accel) []byte {
	var body []byte
	body = appendVector(body, 1, accel.Linear)
	body = appendVector(body, 2, accel.Angular)
	return appendMessage(b, number, body)
}

func mergeAccel(dst *Accel, data []byte) error {
	return walkFields(data, func(f field) error {
		switch f.number {
		case 1:
			return mergeNested(f, &dst.Linear, mergeVector)
		case 2:
			return mergeNested(f, &dst.Angular, mergeVector)
		}
		return nil
	})
}

func appendBoundingBox(b []byte, number protowire.Number, box BoundingBox) []byte {
	var body []byte
	body = appendVector(body, 1, box.Center)
	body = appendVector(body, 2, box.Dimensions)
	return appendMessage(b, number, body)
}

func mergeBoundingBox(dst *BoundingBox, data []byte) error {
	return walkFields(data, func(f field) error {
		switch f.number {
		case 1:
			return mergeNested(f, &dst.Center, mergeVector)
		case 2:
			return mergeNested(f, &dst.Dimensions, mergeVector)
		}
		return nil
	})
}

// builtin_interfaces/Time: sec=1 (int32), nanosec=2 (uint32).
func appendRosTime(b []byte, number protowire.Number, stamp RosTime) []byte {
	var body []byte
	body = appendVarint(body, 1, uint64(int64(stamp.Sec)))
	body = appendVarint(body, 2, uint64(stamp.Nanosec))
	return appendMessage(b, number, body)
}

func mergeRosTime(dst *RosTime, data []byte) error {
	return walkFields(data, func(f field) error {
		switch f.number {
		case 1:
			value, err := f.varint()
			if err != nil {
				return err
			}
			dst.Sec = int32(value)
		case 2:
			value, err := f.varint()
			if err != nil {
				return err
			}
			dst.Nanosec = uint32(value)
		}
		return nil
	})
}
