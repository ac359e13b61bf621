// SPDX-License-Identifier: EPL-2.0

package routing

import "errors"

var (
	// ErrOwnerActive is returned by Enter while another owner holds Playback.
	ErrOwnerActive = errors.New("playback already owned")
	// ErrNoOwner is returned by Enter for the zero Owner.
	ErrNoOwner = errors.New("playback requires an owner")
)
