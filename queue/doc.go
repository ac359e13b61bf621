// SPDX-License-Identifier: EPL-2.0

// Package queue holds the fixed-size block FIFO shared between the hardware
// callbacks and the playback scheduler, plus a free-list of blocks so the
// callbacks do not allocate.
//
// Only Push blocks. TryPush, TryPop, Drain and the Pool methods return
// immediately and are safe to call from an audio callback.
package queue
