// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package simapi

import "fmt"

// Kind identifies one request/response pair and the channel it
// travels on.
type Kind int

const (
	KindInitialize Kind = iota
	KindUpdateFrame
	KindUpdateSensorFrame
	KindSpawnVehicleEntity
	KindSpawnPedestrianEntity
	KindSpawnMiscObjectEntity
	KindDespawnEntity
	KindUpdateEntityStatus
	KindAttachLidarSensor
	KindAttachDetectionSensor

	kindCount
)

// DefaultBasePort is the port of the Initialize channel. Every other
// kind listens at DefaultBasePort plus its offset.
const DefaultBasePort = 5555

var kindNames = [kindCount]string{
	"Initialize",
	"UpdateFrame",
	"UpdateSensorFrame",
	"SpawnVehicleEntity",
	"SpawnPedestrianEntity",
	"SpawnMiscObjectEntity",
	"DespawnEntity",
	"UpdateEntityStatus",
	"AttachLidarSensor",
	"AttachDetectionSensor",
}

var kindOperations = [kindCount]string{
	"initialize",
	"update_frame",
	"update_sensor_frame",
	"spawn_vehicle_entity",
	"spawn_pedestrian_entity",
	"spawn_misc_object_entity",
	"despawn_entity",
	"update_entity_status",
	"attach_lidar_sensor",
	"attach_detection_sensor",
}

// Kinds returns every request kind in channel order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for kind := KindInitialize; kind < kindCount; kind++ {
		kinds = append(kinds, kind)
	}
	return kinds
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	return k >= KindInitialize && k < kindCount
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Operation is the snake_case operation name used in log lines,
// metric labels and stub descriptions.
func (k Kind) Operation() string {
	if !k.Valid() {
		return fmt.Sprintf("kind_%d", int(k))
	}
	return kindOperations[k]
}

// Port returns the TCP port of this kind's channel.
func (k Kind) Port(basePort int) int {
	return basePort + int(k)
}

// Supported is false for the kinds the bridge acknowledges with a
// "not implemented" failure.
func (k Kind) Supported() bool {
	switch k {
	case KindUpdateSensorFrame, KindSpawnMiscObjectEntity,
		KindAttachLidarSensor, KindAttachDetectionSensor:
		return false
	}
	return k.Valid()
}

// ParseKind accepts either the CamelCase name or the operation name.
func ParseKind(name string) (Kind, error) {
	for kind := KindInitialize; kind < kindCount; kind++ {
		if kindNames[kind] == name || kindOperations[kind] == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown request kind %q", name)
}
