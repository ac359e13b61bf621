// SPDX-License-Identifier: EPL-2.0

package device

import "errors"

var (
	ErrNoDevice        = errors.New("no device with specified ID")
	ErrNoDefaultDevice = errors.New("no default device available")
	ErrNotInput        = errors.New("device has no input channels")
	ErrNotOutput       = errors.New("device has no output channels")
	ErrBackendClosed   = errors.New("audio backend closed")
)
