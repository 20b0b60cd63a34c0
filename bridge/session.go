// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import "github.com/google/uuid"

// Session is the per-initialization state. The zero value is an
// uninitialized session.
type Session struct {
	// ID identifies one successful Initialize. Journal records and
	// status snapshots carry it.
	ID string

	Initialized    bool
	SimTime        float64
	InitialRosTime float64
	CurrentRosTime float64
	RealtimeFactor float64
	StepTime       float64

	rosEpochSeen bool
}

// SoftReset returns the session to its zero value.
func (s *Session) SoftReset() {
	*s = Session{}
}

// Begin marks the session initialized with a fresh ID.
func (s *Session) Begin(realtimeFactor, stepTime float64) {
	s.ID = uuid.NewString()
	s.RealtimeFactor = realtimeFactor
	s.StepTime = stepTime
	s.Initialized = true
}

// RecordFrame stores the runner's clocks for one frame. The first ROS
// time seen after Begin becomes InitialRosTime.
func (s *Session) RecordFrame(simTime, rosTime float64) {
	s.SimTime = simTime
	s.CurrentRosTime = rosTime
	if !s.rosEpochSeen {
		s.InitialRosTime = rosTime
		s.rosEpochSeen = true
	}
}

// ElapsedRosTime is the ROS time since the first frame.
func (s *Session) ElapsedRosTime() float64 {
	return s.CurrentRosTime - s.InitialRosTime
}
