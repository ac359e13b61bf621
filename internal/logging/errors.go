// SPDX-License-Identifier: EPL-2.0

package logging

import "errors"

// ErrUnknownLevel is returned for level names other than none, error, warn,
// info and debug.
var ErrUnknownLevel = errors.New("unknown log level")
