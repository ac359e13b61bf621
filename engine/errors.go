// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNoSession      = errors.New("streams not started")
	ErrSessionRunning = errors.New("session already running")
	ErrUnknownOwner   = errors.New("no audio configured for slot")
)

// DeviceError reports a failure to open, start or keep running one of the
// session streams. It is fatal to the session.
type DeviceError struct {
	Op     string
	Device string
	Err    error
}

func (e *DeviceError) Error() string {
	if e.Device == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Device, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// ErrRenderStalled is reported by the watchdog when the output device stops
// calling back.
var ErrRenderStalled = errors.New("no render callback within watchdog interval")
