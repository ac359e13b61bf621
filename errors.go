// SPDX-License-Identifier: EPL-2.0

package voxswitch

import "errors"

var (
	// ErrNotFound means the playback file does not exist.
	ErrNotFound = errors.New("audio file not found")
	// ErrDecode wraps unknown extensions and decoder failures.
	ErrDecode = errors.New("cannot decode audio file")
)
