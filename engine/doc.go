// SPDX-License-Identifier: EPL-2.0

// Package engine is the realtime routing and mixing core.
//
// Three hardware callbacks share a bounded frame queue:
//
//	mic ──Capture──▶ frame queue ──Render──▶ limiter ──▶ virtual cable
//	                     ▲                      │
//	file ──Scheduler─────┘                      └──▶ monitor queue ──Monitor──▶ headphones
//
// Capture feeds the queue in Voice mode. In Playback mode a single
// Scheduler worker feeds it instead, blocking on the full queue so the
// render callback sets the pace. The Controller goroutine owns every start
// and cancel decision; callbacks only read the routing mode and gains
// through atomics.
//
// Session wraps the above around three device streams and publishes status
// events on a buffered channel.
package engine
