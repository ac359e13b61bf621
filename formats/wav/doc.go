// SPDX-License-Identifier: EPL-2.0

// Package wav decodes integer PCM WAV files into an audio.Source.
//
// Parsing is delegated to github.com/go-audio/wav, so files with extra
// chunks (LIST, fact, cue) and WAVE_FORMAT_EXTENSIBLE headers are accepted.
// Supported sample widths are 8 (unsigned), 16, 24 and 32 bits. IEEE float
// files are rejected with ErrUnsupportedWavFormat.
//
//	file, _ := os.Open("clip.wav")
//	defer file.Close()
//	source, err := wav.Decoder{}.Decode(file)
//
// Readers that cannot seek are buffered in memory first.
package wav
