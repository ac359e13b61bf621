// SPDX-License-Identifier: EPL-2.0

// Package voxswitch turns a physical microphone into a virtual one that can
// be switched between live voice and file playback.
//
// The realtime routing and mixing engine lives in the engine package. This
// root package holds the file loading path the engine plays from: an
// extension based decoder registry and helpers that produce mono float32
// buffers at the device rate.
//
// # Supported Formats
//
//   - WAV (integer PCM, 8 to 32 bit) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF via formats/aiff
//
// # Quick Start
//
//	samples, err := voxswitch.LoadMono("airhorn.mp3", 44100, audio.Cubic)
//	if errors.Is(err, voxswitch.ErrNotFound) {
//	    // the configured path is gone
//	}
//
// Decode returns the mono signal at the file's own rate when no conversion
// is wanted.
package voxswitch
