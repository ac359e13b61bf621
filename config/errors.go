// SPDX-License-Identifier: EPL-2.0

package config

import "errors"

var (
	ErrInvalidSize   = errors.New("size must be positive")
	ErrInvalidGain   = errors.New("gain must be within [0,1]")
	ErrInvalidDevice = errors.New("device index must be -1 (default) or a device ID")
)
