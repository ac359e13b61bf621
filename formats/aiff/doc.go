// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files through github.com/go-audio/aiff.
//
// Integer PCM at 8, 16, 24 and 32 bits is supported, in any channel count
// and sample rate. AIFF-C compressed variants are rejected by the
// underlying parser.
//
//	file, _ := os.Open("intro.aiff")
//	defer file.Close()
//	source, err := aiff.Decoder{}.Decode(file)
package aiff
