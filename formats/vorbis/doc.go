// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files (.ogg, .oga) with
// github.com/jfreymuth/oggvorbis. Samples arrive as float32 already, so the
// source is a thin adapter that keeps reads frame aligned.
package vorbis
