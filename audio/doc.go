// SPDX-License-Identifier: EPL-2.0

// Package audio provides the streaming primitives voxswitch uses to turn
// decoded files into mono buffers at the device rate.
//
// # Source Interface
//
// Every decoder and processor implements Source:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// ReadSamples returns io.EOF once the stream is finished. A read may return
// n > 0 together with io.EOF.
//
// # Resampling
//
// Two converters are available. Resampler uses cubic interpolation with a
// one-pole low-pass when downsampling. SincResampler wraps a windowed-sinc
// filter and costs more CPU. NewResamplerOf picks one by ResamplerKind:
//
//	rs, err := audio.NewResamplerOf(audio.Sinc, src, 48000)
//
// # Channel Mixing
//
// MonoMixer averages all channels of a frame into one sample:
//
//	mono := audio.NewMonoMixer(source)
//
// ToMono chains the mixer and a resampler and collects the whole stream,
// which is how playback files are prepared:
//
//	samples, err := audio.ToMono(src, 44100, audio.Cubic)
//
// # Format Registry
//
// Registry maps file extensions to decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register(wav.Decoder{}, "wav")
//	decoder, ok := registry.ForPath("clip.WAV")
//
// # Sample Format
//
// Samples are float32 in [-1.0, 1.0], interleaved by channel.
package audio
