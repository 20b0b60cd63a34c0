// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"errors"
	"fmt"
)

// ErrFatal marks errors the bridge cannot continue after. Test with
// errors.Is.
var ErrFatal = errors.New("fatal")

// ErrNotConnected is returned by operations that need the simulator
// before SetupConnection has succeeded.
var ErrNotConnected = errors.New("simulator is not connected")

// ErrUnknownEntity is returned when a request names an entity that was
// never spawned or has already been despawned.
var ErrUnknownEntity = errors.New("unknown entity")

// ErrDuplicateEntity is returned when a spawn reuses a registered name,
// or asks for a second ego.
var ErrDuplicateEntity = errors.New("entity already exists")

// Fatal marks err as fatal. Wrapping an already fatal error returns it
// unchanged.
func Fatal(err error) error {
	if err == nil || errors.Is(err, ErrFatal) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrFatal, err)
}

// IsFatal reports whether err was marked with Fatal.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatal)
}
