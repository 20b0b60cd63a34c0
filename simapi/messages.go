// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package simapi

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/oddrunner/simbridge/coordinate"
)

// Request is implemented by the pointer form of every request message.
type Request interface {
	Kind() Kind
	Marshal() []byte
	Unmarshal(data []byte) error
}

// NewRequest returns an empty request message for kind.
func NewRequest(kind Kind) (Request, error) {
	switch kind {
	case KindInitialize:
		return &InitializeRequest{}, nil
	case KindUpdateFrame:
		return &UpdateFrameRequest{}, nil
	case KindUpdateSensorFrame:
		return &UpdateSensorFrameRequest{}, nil
	case KindSpawnVehicleEntity:
		return &SpawnVehicleEntityRequest{}, nil
	case KindSpawnPedestrianEntity:
		return &SpawnPedestrianEntityRequest{}, nil
	case KindSpawnMiscObjectEntity:
		return &SpawnMiscObjectEntityRequest{}, nil
	case KindDespawnEntity:
		return &DespawnEntityRequest{}, nil
	case KindUpdateEntityStatus:
		return &UpdateEntityStatusRequest{}, nil
	case KindAttachLidarSensor:
		return &AttachLidarSensorRequest{}, nil
	case KindAttachDetectionSensor:
		return &AttachDetectionSensorRequest{}, nil
	}
	return nil, fmt.Errorf("no request message for %v", kind)
}

// DecodeRequest decodes data as the request message for kind.
func DecodeRequest(kind Kind, data []byte) (Request, error) {
	request, err := NewRequest(kind)
	if err != nil {
		return nil, err
	}
	if err := request.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("decoding %v request: %w", kind, err)
	}
	return request, nil
}

// InitializeRequest starts a session.
type InitializeRequest struct {
	RealtimeFactor float64
	StepTime       float64
}

func (*InitializeRequest) Kind() Kind { return KindInitialize }

func (r *InitializeRequest) Marshal() []byte {
	var b []byte
	b = appendDouble(b, 1, r.RealtimeFactor)
	b = appendDouble(b, 2, r.StepTime)
	return b
}

func (r *InitializeRequest) Unmarshal(data []byte) error {
	return walkFields(data, func(f field) error {
		switch f.number {
		case 1:
			return setDouble(f, &r.RealtimeFactor)
		case 2:
			return setDouble(f, &r.StepTime)
		}
		return nil
	})
}

// UpdateFrameRequest advances the simulation by one step.
type UpdateFrameRequest struct {
	CurrentTime    float64
	CurrentRosTime RosTime
}

func (*UpdateFrameRequest) Kind() Kind { return KindUpdateFrame }

func (r *UpdateFrameRequest) Marshal() []byte {
	return marshalFrame(r.CurrentTime, r.CurrentRosTime)
}

func (r *UpdateFrameRequest) Unmarshal(data []byte) error {
	return unmarshalFrame(data, &r.CurrentTime, &r.CurrentRosTime)
}

// UpdateSensorFrameRequest has the same layout as UpdateFrameRequest.
type UpdateSensorFrameRequest struct {
	CurrentTime    float64
	CurrentRosTime RosTime
}

func (*UpdateSensorFrameRequest) Kind() Kind { return KindUpdateSensorFrame }

func (r *UpdateSensorFrameRequest) Marshal() []byte {
	return marshalFrame(r.CurrentTime, r.CurrentRosTime)
}

func (r *UpdateSensorFrameRequest) Unmarshal(data []byte) error {
	return unmarshalFrame(data, &r.CurrentTime, &r.CurrentRosTime)
}

func marshalFrame(currentTime float64, rosTime RosTime) []byte {
	var b []byte
	b = appendDouble(b, 1, currentTime)
	b = appendRosTime(b, 2, rosTime)
	return b
}

func unmarshalFrame(data []byte, currentTime *float64, rosTime *RosTime) error {
	return walkFields(data, func(f field) error {
		switch f.number {
		case 1:
			return setDouble(f, currentTime)
		case 2:
			return mergeNested(f, rosTime, mergeRosTime)
		}
		return nil
	})
}

// Performance holds a vehicle's dynamic limits.
type Performance struct {
	MaxSpeed        float64
	MaxAcceleration float64
	MaxDeceleration float64
}

func appendPerformance(b []byte, number protowire.Number, performance Performance) []byte {
	var body []byte
	body = appendDouble(body, 1, performance.MaxSpeed)
	body = appendDouble(body, 2, performance.MaxAcceleration)
	body = appendDouble(body, 3, performance.MaxDeceleration)
	return appendMessage(b, number, body)
}

func mergePerformance(dst *Performance, data []byte) error {
	return walkFields(data, func(f field) error {
		switch f.number {
		case 1:
			return setDouble(f, &dst.MaxSpeed)
		case 2:
			return setDouble(f, &dst.MaxAcceleration)
		case 3:
			return setDouble(f, &dst.MaxDeceleration)
		}
		return nil
	})
}

// VehicleParameters describes a vehicle to spawn. Axle geometry is
// carried on the wire but not decoded.
type VehicleParameters struct {
	Name            string
	VehicleCategory string
	Performance     Performance
	BoundingBox     BoundingBox
}

func appendVehicleParameters(b []byte, number protowire.Number, parameters VehicleParameters) []byte {
	var body []byte
	body = appendString(body, 1, parameters.Name)
	body = appendString(body, 2, parameters.VehicleCategory)
	body = appendPerformance(body, 3, parameters.Performance)
	body = appendBoundingBox(body, 4, parameters.BoundingBox)
	return appendMessage(b, number, body)
}

func mergeVehicleParameters(dst *VehicleParameters, data []byte) error {
	return walkFields(data, func(f field) error {
		switch f.number {
		case 1:
			return setString(f, &dst.Name)
		case 2:
			return setString(f, &dst.VehicleCategory)
		case 3:
			return mergeNested(f, &dst.Performance, mergePerformance)
		case 4:
			return mergeNested(f, &dst.BoundingBox, mergeBoundingBox)
		}
		return nil
	})
}

// SpawnVehicleEntityRequest asks for a vehicle; IsEgo selects the
// configured ego vehicle instead of an NPC.
type SpawnVehicleEntityRequest struct {
	Parameters VehicleParameters
	IsEgo      bool
}

func (*SpawnVehicleEntityRequest) Kind() Kind { return KindSpawnVehicleEntity }

func (r *SpawnVehicleEntityRequest) Marshal() []byte {
	var b []byte
	b = appendVehicleParameters(b, 1, r.Parameters)
	b = appendBool(b, 2, r.IsEgo)
	return b
}

func (r *SpawnVehicleEntityRequest) Unmarshal(data []byte) error {
	return walkFields(data, func(f field) error {
		switch f.number {
		case 1:
			return mergeNested(f, &r.Parameters, mergeVehicleParameters)
		case 2:
			return setBool(f, &r.IsEgo)
		}
		return nil
	})
}

// PedestrianParameters describes a pedestrian to spawn.
type PedestrianParameters struct {
	Name               string
	PedestrianCategory string
	BoundingBox        BoundingBox
}

// SpawnPedestrianEntityRequest asks for a pedestrian.
type SpawnPedestrianEntityRequest struct {
	Parameters PedestrianParameters
}

func (*SpawnPedestrianEntityRequest) Kind() Kind { return KindSpawnPedestrianEntity }

func (r *SpawnPedestrianEntityRequest) Marshal() []byte {
	var body []byte
	body = appendString(body, 1, r.Parameters.Name)
	body = appendString(body, 2, r.Parameters.PedestrianCategory)
	body = appendBoundingBox(body, 3, r.Parameters.BoundingBox)
	return appendMessage(nil, 1, body)
}

func (r *SpawnPedestrianEntityRequest) Unmarshal(data []byte) error {
	return walkFields(data, func(f field) error {
		if f.number != 1 {
			return nil
		}
		return mergeNested(f, &r.Parameters, func(dst *PedestrianParameters, body []byte) error {
			return walkFields(body, func(f field) error {
				switch f.number {
				case 1:
					return setString(f, &dst.Name)
				case 2:
					return setString(f, &dst.PedestrianCategory)
				case 3:
					return mergeNested(f, &dst.BoundingBox, mergeBoundingBox)
				}
				return nil
			})
		})
	})
}

// MiscObjectParameters describes a static object to spawn.
type MiscObjectParameters struct {
	Name               string
	MiscObjectCategory string
	BoundingBox        BoundingBox
}

// SpawnMiscObjectEntityRequest asks for a static object.
type SpawnMiscObjectEntityRequest struct {
	Parameters MiscObjectParameters
}

func (*SpawnMiscObjectEntityRequest) Kind() Kind { return KindSpawnMiscObjectEntity }

func (r *SpawnMiscObjectEntityRequest) Marshal() []byte {
	var body []byte
	body = appendString(body, 1, r.Parameters.Name)
	body = appendString(body, 2, r.Parameters.MiscObjectCategory)
	body = appendBoundingBox(body, 3, r.Parameters.BoundingBox)
	return appendMessage(nil, 1, body)
}

func (r *SpawnMiscObjectEntityRequest) Unmarshal(data []byte) error {
	return walkFields(data, func(f field) error {
		if f.number != 1 {
			return nil
		}
		return mergeNested(f, &r.Parameters, func(dst *MiscObjectParameters, body []byte) error {
			return walkFields(body, func(f field) error {
				switch f.number {
				case 1:
					return setString(f, &dst.Name)
				case 2:
					return setString(f, &dst.MiscObjectCategory)
				case 3:
					return mergeNested(f, &dst.BoundingBox, mergeBoundingBox)
				}
				return nil
			})
		})
	})
}

// DespawnEntityRequest removes an entity by name.
type DespawnEntityRequest struct {
	Name string
}

func (*DespawnEntityRequest) Kind() Kind { return KindDespawnEntity }

func (r *DespawnEntityRequest) Marshal() []byte {
	return appendString(nil, 1, r.Name)
}

func (r *DespawnEntityRequest) Unmarshal(data []byte) error {
	return walkFields(data, func(f field) error {
		if f.number == 1 {
			return setString(f, &r.Name)
		}
		return nil
	})
}

// EntityType classifies an entity in a status update.
type EntityType int32

const (
	EntityTypeEgo EntityType = iota
	EntityTypeVehicle
	EntityTypePedestrian
	EntityTypeMiscObject
)

func (t EntityType) String() string {
	switch t {
	case EntityTypeEgo:
		return "ego"
	case EntityTypeVehicle:
		return "vehicle"
	case EntityTypePedestrian:
		return "pedestrian"
	case EntityTypeMiscObject:
		return "misc_object"
	}
	return fmt.Sprintf("EntityType(%d)", int32(t))
}

// EntityType travels wrapped in a message with a single enum field.
func appendEntityType(b []byte, number protowire.Number, entityType EntityType) []byte {
	body := appendVarint(nil, 1, uint64(int64(entityType)))
	return appendMessage(b, number, body)
}

func mergeEntityType(dst *EntityType, data []byte) error {
	return walkFields(data, func(f field) error {
		if f.number != 1 {
			return nil
		}
		value, err := f.varint()
		if err != nil {
			return err
		}
		*dst = EntityType(int32(value))
		return nil
	})
}

// ActionStatus is an entity's current action and motion.
type ActionStatus struct {
	CurrentAction string
	Twist         coordinate.Twist
	Accel         Accel
}

func appendActionStatus(b []byte, number protowire.Number, status ActionStatus) []byte {
	var body []byte
	body = appendString(body, 1, status.CurrentAction)
	body = appendTwist(body, 2, status.Twist)
	body = appendAccel(body, 3, status.Accel)
	return appendMessage(b, number, body)
}

func mergeActionStatus(dst *ActionStatus, data []byte) error {
	return walkFields(data, func(f field) error {
		switch f.number {
		case 1:
			return setString(f, &dst.CurrentAction)
		case 2:
			return mergeNested(f, &dst.Twist, mergeTwist)
		case 3:
			return mergeNested(f, &dst.Accel, mergeAccel)
		}
		return nil
	})
}

// EntityStatus is the runner's view of one entity at a point in time.
// Lanelet coordinates are not decoded; only their validity flag is.
type EntityStatus struct {
	Type             EntityType
	Time             float64
	Name             string
	BoundingBox      BoundingBox
	ActionStatus     ActionStatus
	Pose             coordinate.Pose
	LaneletPoseValid bool
}

func appendEntityStatus(b []byte, number protowire.Number, status EntityStatus) []byte {
	var body []byte
	body = appendEntityType(body, 1, status.Type)
	body = appendDouble(body, 2, status.Time)
	body = appendString(body, 3, status.Name)
	body = appendBoundingBox(body, 4, status.BoundingBox)
	body = appendActionStatus(body, 5, status.ActionStatus)
	body = appendPose(body, 6, status.Pose)
	body = appendBool(body, 8, status.LaneletPoseValid)
	return appendMessage(b, number, body)
}

func mergeEntityStatus(dst *EntityStatus, data []byte) error {
	return walkFields(data, func(f field) error {
		switch f.number {
		case 1:
			return mergeNested(f, &dst.Type, mergeEntityType)
		case 2:
			return setDouble(f, &dst.Time)
		case 3:
			return setString(f, &dst.Name)
		case 4:
			return mergeNested(f, &dst.BoundingBox, mergeBoundingBox)
		case 5:
			return mergeNested(f, &dst.ActionStatus, mergeActionStatus)
		case 6:
			return mergeNested(f, &dst.Pose, mergePose)
		case 8:
			return setBool(f, &dst.LaneletPoseValid)
		}
		return nil
	})
}

// UpdateEntityStatusRequest carries a batch of entity states, applied
// in order.
type UpdateEntityStatusRequest struct {
	Status []EntityStatus
}

func (*UpdateEntityStatusRequest) Kind() Kind { return KindUpdateEntityStatus }

func (r *UpdateEntityStatusRequest) Marshal() []byte {
	var b []byte
	for _, status := range r.Status {
		b = appendEntityStatus(b, 1, status)
	}
	return b
}

func (r *UpdateEntityStatusRequest) Unmarshal(data []byte) error {
	return walkFields(data, func(f field) error {
		if f.number != 1 {
			return nil
		}
		var status EntityStatus
		if err := mergeNested(f, &status, mergeEntityStatus); err != nil {
			return err
		}
		r.Status = append(r.Status, status)
		return nil
	})
}

// SensorConfiguration is the part of a sensor attachment the bridge
// reads: the target entity. The full configuration is kept as raw
// bytes.
type SensorConfiguration struct {
	Entity string
	Raw    []byte
}

func mergeSensorConfiguration(dst *SensorConfiguration, data []byte) error {
	dst.Raw = append(dst.Raw, data...)
	return walkFields(data, func(f field) error {
		if f.number == 1 {
			return setString(f, &dst.Entity)
		}
		return nil
	})
}

func marshalSensorConfiguration(configuration SensorConfiguration) []byte {
	body := configuration.Raw
	if len(body) == 0 {
		body = appendString(nil, 1, configuration.Entity)
	}
	return appendMessage(nil, 1, body)
}

// AttachLidarSensorRequest attaches a lidar to an entity.
type AttachLidarSensorRequest struct {
	Configuration SensorConfiguration
}

func (*AttachLidarSensorRequest) Kind() Kind { return KindAttachLidarSensor }

func (r *AttachLidarSensorRequest) Marshal() []byte {
	return marshalSensorConfiguration(r.Configuration)
}

func (r *AttachLidarSensorRequest) Unmarshal(data []byte) error {
	return walkFields(data, func(f field) error {
		if f.number == 1 {
			return mergeNested(f, &r.Configuration, mergeSensorConfiguration)
		}
		return nil
	})
}

// AttachDetectionSensorRequest attaches an object detector to an
// entity.
type AttachDetectionSensorRequest struct {
	Configuration SensorConfiguration
}

func (*AttachDetectionSensorRequest) Kind() Kind { return KindAttachDetectionSensor }

func (r *AttachDetectionSensorRequest) Marshal() []byte {
	return marshalSensorConfiguration(r.Configuration)
}

func (r *AttachDetectionSensorRequest) Unmarshal(data []byte) error {
	return walkFields(data, func(f field) error {
		if f.number == 1 {
			return mergeNested(f, &r.Configuration, mergeSensorConfiguration)
		}
		return nil
	})
}
