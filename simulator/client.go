// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"github.com/coder/websocket"

	"github.com/oddrunner/simbridge/coordinate"
	"github.com/oddrunner/simbridge/lib/netutil"
)

// maxReplySize bounds one reply message. Scene loads and GPS queries
// stay far below this.
const maxReplySize = 16 << 20

// AgentType selects what kind of agent add_agent creates. Values match
// the simulator's enumeration.
type AgentType int

const (
	AgentTypeEgo        AgentType = 1
	AgentTypeNPC        AgentType = 2
	AgentTypePedestrian AgentType = 3
)

func (t AgentType) String() string {
	switch t {
	case AgentTypeEgo:
		return "ego"
	case AgentTypeNPC:
		return "npc"
	case AgentTypePedestrian:
		return "pedestrian"
	}
	return "AgentType(" + strconv.Itoa(int(t)) + ")"
}

// GPSData is the geographic reading of a simulator position.
type GPSData struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Northing    float64 `json:"northing"`
	Easting     float64 `json:"easting"`
	Altitude    float64 `json:"altitude"`
	Orientation float64 `json:"orientation"`
}

// CommandError is an error reported by the simulator for one command.
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("simulator rejected %s: %s", e.Command, e.Message)
}

// Client is a connection to one simulator instance. It is safe for
// concurrent use, though commands never overlap on the wire.
type Client struct {
	logger *slog.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// Dial connects to the simulator listening at host:port.
func Dial(ctx context.Context, host string, port int, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	url := "ws://" + net.JoinHostPort(host, strconv.Itoa(port))
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to simulator at %s: %w", url, err)
	}
	conn.SetReadLimit(maxReplySize)
	logger.Info("connected to simulator", "url", url)
	return &Client{logger: logger, conn: conn}, nil
}

// Close ends the websocket session.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close(websocket.StatusNormalClosure, "bridge shutting down")
	c.conn = nil
	if err != nil && !netutil.IsExpectedCloseError(err) {
		var closeError websocket.CloseError
		if errors.As(err, &closeError) && closeError.Code == websocket.StatusNormalClosure {
			return nil
		}
		return fmt.Errorf("closing simulator connection: %w", err)
	}
	return nil
}

type commandMessage struct {
	Command   string `json:"command"`
	Arguments any    `json:"arguments"`
}

type replyMessage struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// command sends one command and decodes its result into result, which
// may be nil when the caller does not need it.
func (c *Client) command(ctx context.Context, name string, arguments any, result any) error {
	if arguments == nil {
		arguments = struct{}{}
	}
	request, err := json.Marshal(commandMessage{Command: name, Arguments: arguments})
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("%s: %w", name, net.ErrClosed)
	}

	c.logger.Debug("simulator command", "command", name)
	if err := c.conn.Write(ctx, websocket.MessageText, request); err != nil {
		return fmt.Errorf("sending %s: %w", name, err)
	}
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading reply to %s: %w", name, err)
	}

	var reply replyMessage
	if err := json.Unmarshal(data, &reply); err != nil {
		return fmt.Errorf("decoding reply to %s: %w", name, err)
	}
	if reply.Error != nil {
		return &CommandError{Command: name, Message: *reply.Error}
	}
	if result == nil || len(reply.Result) == 0 || string(reply.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(reply.Result, result); err != nil {
		return fmt.Errorf("decoding result of %s: %w", name, err)
	}
	return nil
}

// CurrentScene returns the name of the loaded scene, or "" when none
// is loaded.
func (c *Client) CurrentScene(ctx context.Context) (string, error) {
	var scene *string
	if err := c.command(ctx, "simulator/current_scene", nil, &scene); err != nil {
		return "", err
	}
	if scene == nil {
		return "", nil
	}
	return *scene, nil
}

// LoadScene loads a scene by name. Loading discards every agent.
func (c *Client) LoadScene(ctx context.Context, scene string) error {
	arguments := map[string]any{"scene": scene, "seed": nil}
	return c.command(ctx, "simulator/load_scene", arguments, nil)
}

// Reset removes all agents and rewinds the loaded scene.
func (c *Client) Reset(ctx context.Context) error {
	return c.command(ctx, "simulator/reset", nil, nil)
}

// Stop halts a running simulation.
func (c *Client) Stop(ctx context.Context) error {
	return c.command(ctx, "simulator/stop", nil, nil)
}

type runResult struct {
	Events []json.RawMessage `json:"events"`
}

// Run advances the simulation by timeLimit seconds at the simulator's
// own time scale. The simulator pauses to deliver agent events; Run
// acknowledges them and continues until the step completes. It returns
// the number of events seen.
func (c *Client) Run(ctx context.Context, timeLimit float64) (int, error) {
	arguments := map[string]any{"time_limit": timeLimit, "time_scale": nil}
	var result runResult
	if err := c.command(ctx, "simulator/run", arguments, &result); err != nil {
		return 0, err
	}

	events := 0
	for len(result.Events) > 0 {
		events += len(result.Events)
		for _, event := range result.Events {
			c.logger.Debug("simulator event", "event", string(event))
		}
		result = runResult{}
		if err := c.command(ctx, "simulator/continue", nil, &result); err != nil {
			return events, err
		}
	}
	return events, nil
}

// AddAgent spawns an agent from a named preset and returns its uid.
func (c *Client) AddAgent(ctx context.Context, preset string, agentType AgentType, state coordinate.AgentState) (string, error) {
	arguments := map[string]any{
		"name":  preset,
		"type":  int(agentType),
		"state": state,
		"color": nil,
	}
	var uid string
	if err := c.command(ctx, "simulator/add_agent", arguments, &uid); err != nil {
		return "", err
	}
	if uid == "" {
		return "", fmt.Errorf("simulator returned no uid for %s agent %q", agentType, preset)
	}
	return uid, nil
}

// RemoveAgent despawns the agent with the given uid.
func (c *Client) RemoveAgent(ctx context.Context, uid string) error {
	return c.command(ctx, "simulator/agent/remove", map[string]any{"uid": uid}, nil)
}

// SetAgentState overwrites an agent's transform and velocities.
func (c *Client) SetAgentState(ctx context.Context, uid string, state coordinate.AgentState) error {
	arguments := map[string]any{"uid": uid, "state": state}
	return c.command(ctx, "agent/state/set", arguments, nil)
}

// MapToGPS converts a simulator transform to GPS coordinates.
func (c *Client) MapToGPS(ctx context.Context, transform coordinate.Transform) (GPSData, error) {
	arguments := map[string]any{"transforms": []coordinate.Transform{transform}}
	var readings []GPSData
	if err := c.command(ctx, "map/to_gps", arguments, &readings); err != nil {
		return GPSData{}, err
	}
	if len(readings) != 1 {
		return GPSData{}, fmt.Errorf("map/to_gps returned %d readings for one transform", len(readings))
	}
	return readings[0], nil
}
