// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III audio through
// github.com/hajimehoshi/go-mp3.
//
// The decoder always reports two channels. Mono files come out with the
// channel duplicated, which the audio.MonoMixer folds back losslessly.
package mp3
