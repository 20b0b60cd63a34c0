// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"os"
)

// ExitError is an error that requests a specific process exit status.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode returns the requested status.
func (e *ExitError) ExitCode() int { return e.Code }

// Code returns the status the process should exit with for err: 0 for
// nil, the value of ExitCode() if any error in the chain provides one,
// and 1 otherwise.
func Code(err error) int {
	if err == nil {
		return 0
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

// Exit terminates the process with the status Code(err) reports. A
// non-nil error without its own exit code is written to stderr first.
func Exit(err error) {
	if err == nil {
		os.Exit(0)
	}
	var coder interface{ ExitCode() int }
	if !errors.As(err, &coder) {
		Fatal(err)
	}
	os.Exit(coder.ExitCode())
}

// Fatal writes "error: err" to stderr and exits with status 1.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
