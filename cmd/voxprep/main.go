// SPDX-License-Identifier: EPL-2.0

// Command voxprep converts an audio file to a mono 16-bit WAV at the stream
// sample rate, so soundboard slots load without resampling.
package main

import (
	"flag"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/voxswitch"
	"github.com/ik5/voxswitch/audio"
	"github.com/ik5/voxswitch/engine"
)

func main() {
	rate := flag.Int("rate", engine.DefaultSampleRate, "output sample rate")
	resampler := flag.String("resampler", string(audio.Cubic), "resampler: cubic or sinc")
	peak := flag.Float64("normalize", 0, "scale so the peak equals this value (0 keeps levels)")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: voxprep [flags] <input.{wav|mp3|ogg|aiff}> <output.wav>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	if err := convert(flag.Arg(0), flag.Arg(1), *rate, *resampler, *peak); err != nil {
		fmt.Fprintln(os.Stderr, "voxprep:", err)
		os.Exit(1)
	}
}

func convert(inPath, outPath string, rate int, resampler string, peak float64) error {
	kind, err := audio.ParseResamplerKind(resampler)
	if err != nil {
		return err
	}

	samples, err := voxswitch.LoadMono(inPath, rate, kind)
	if err != nil {
		return err
	}
	if peak > 0 {
		engine.Normalize(samples, peak)
	}

	if err := writeWAV16(outPath, rate, samples); err != nil {
		return err
	}
	fmt.Printf("%s: %d samples at %d Hz (%.2fs)\n", outPath, len(samples), rate, float64(len(samples))/float64(rate))
	return nil
}

// writeWAV16 writes mono samples in [-1,1] as 16-bit PCM.
func writeWAV16(path string, rate int, samples []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer f.Close()

	data := make([]int, len(samples))
	for i, s := range samples {
		s = max(min(s, 1), -1)
		data[i] = int(s * 32767)
	}

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encoding wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finishing wav: %w", err)
	}
	return f.Close()
}
