// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/oddrunner/simbridge/lib/process"
)

func main() {
	process.Exit(run())
}

func run() error {
	return rootCommand().Execute(os.Args[1:])
}
