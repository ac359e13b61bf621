// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"fmt"

	"github.com/ik5/voxswitch/audio"
	"github.com/ik5/voxswitch/internal/audiotest"
)

// Example_resampler demonstrates how to use the Resampler to change sample rates.
func Example_resampler() {
	// One second of a 440Hz tone at 48kHz
	source := audiotest.NewSineSource(48000, 1, 48000, 440.0)

	resampler := audio.NewResampler(source, 16000)
	fmt.Printf("Output sample rate: %d Hz\n", resampler.SampleRate())
	fmt.Printf("Channels: %d\n", resampler.Channels())

	samples, err := audio.ReadAll(resampler)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Total samples read: %d\n", len(samples))
	// Output:
	// Output sample rate: 16000 Hz
	// Channels: 1
	// Total samples read: 16000
}

// Example_toMono prepares a stereo clip for playback on a 44.1kHz device.
func Example_toMono() {
	source := audiotest.NewConstantSource(22050, 2, 22050, 0.5)

	samples, err := audio.ToMono(source, 44100, audio.Cubic)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Mono samples: %d\n", len(samples))
	fmt.Printf("First sample: %.2f\n", samples[0])
	// Output:
	// Mono samples: 44100
	// First sample: 0.50
}
