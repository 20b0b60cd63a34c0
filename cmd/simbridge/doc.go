// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Simbridge connects a scenario runner to the SVL simulator.
//
// The runner speaks the scenario simulator API: ten request kinds,
// each on its own ZeroMQ request/reply channel (ports 5555-5564 by
// default). Simbridge answers them by driving the simulator over its
// websocket API.
//
// Subcommands:
//
//   - serve: bind the channels, connect, load the configured scene and
//     answer requests until interrupted
//   - run: fetch and localize a scenario and its HD map, start the
//     bridge, launch the scenario runner once the bridge is ready and
//     exit with the runner's status
//   - status: print a running bridge's state from its control socket
//   - journal: list the exchanges recorded in a traffic journal
//   - version: print build information
//
// Configuration comes from an optional YAML file (--config or
// $SIMBRIDGE_CONFIG), then the environment (including the LGSVL__*
// simulator variables), then flags.
package main
