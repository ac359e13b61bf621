// SPDX-License-Identifier: EPL-2.0

// Package routing decides whose audio reaches the virtual microphone.
//
// The machine is in Voice mode (microphone passthrough) or Playback mode,
// and in Playback exactly one owner holds the output: the music track or a
// single soundboard slot. Mode is published atomically so audio callbacks can
// read it without locking. Transitions are expected to come from a single
// controller goroutine.
//
// Precedence between owners:
//
//	current   request   decision
//	none      any       Start
//	X         X         Cancel (toggle)
//	slot A    slot B    Busy
//	music     slot      Ignore
//	slot      music     Preempt
package routing
