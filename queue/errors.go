// SPDX-License-Identifier: EPL-2.0

package queue

import "errors"

var (
	// ErrClosed is returned by Push once the queue has been torn down.
	ErrClosed = errors.New("queue closed")
	// ErrInvalidSize is returned for a non-positive capacity or block size.
	ErrInvalidSize = errors.New("queue capacity and block size must be positive")
)
