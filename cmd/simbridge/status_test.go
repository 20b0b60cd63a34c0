// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/oddrunner/simbridge/bridge"
)

func TestRenderStatus(t *testing.T) {
	status := &bridge.Status{
		SessionID:      "4d3f0c1e-9d7a-4c51-8a3e-2f6b0d9e7a11",
		Initialized:    true,
		Connected:      true,
		Scene:          "BorregasAve",
		SceneLoads:     1,
		SceneResets:    2,
		SimTime:        12.5,
		RealtimeFactor: 1,
		StepTime:       0.02,
		Entities: []bridge.EntityStatus{
			{Name: "ego", Kind: "ego", Preset: "Lexus2016RXHybrid", Handle: "uid-1"},
			{Name: "npc1", Kind: "npc", Preset: "Sedan", Handle: "uid-2"},
		},
		Channels: []bridge.ChannelStatus{
			{Kind: "Initialize", Address: "tcp://*:5555", Supported: true, Requests: 1},
			{Kind: "UpdateSensorFrame", Address: "tcp://*:5557", Requests: 40, Failures: 40},
		},
	}

	var out bytes.Buffer
	renderStatus(&out, status, false)
	text := out.String()

	for _, want := range []string{
		"4d3f0c1e-9d7a-4c51-8a3e-2f6b0d9e7a11",
		"BorregasAve",
		"1 / 2",
		"Entities (2)",
		"Lexus2016RXHybrid",
		"npc1",
		"tcp://*:5557",
		"stub",
		"0.02 s",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output lacks %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "\x1b[") {
		t.Error("colorless output contains escape sequences")
	}
}

func TestRenderStatusBeforeInitialize(t *testing.T) {
	var out bytes.Buffer
	renderStatus(&out, &bridge.Status{}, false)
	text := out.String()
	if !strings.Contains(text, "Entities (0)") {
		t.Errorf("output:\n%s", text)
	}
	if !strings.Contains(text, "no") {
		t.Errorf("uninitialized status not reported:\n%s", text)
	}
}
