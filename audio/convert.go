// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"fmt"
	"io"
)

// ResamplerKind selects the interpolation used by Resample and ToMono.
type ResamplerKind string

const (
	// Cubic is the streaming Catmull-Rom Resampler. Cheap, fine for speech.
	Cubic ResamplerKind = "cubic"
	// Sinc is the windowed-sinc SincResampler.
	Sinc ResamplerKind = "sinc"
)

// ParseResamplerKind accepts "cubic", "sinc" or "" (Cubic).
func ParseResamplerKind(s string) (ResamplerKind, error) {
	switch ResamplerKind(s) {
	case "", Cubic:
		return Cubic, nil
	case Sinc:
		return Sinc, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownResampler, s)
}

// NewResamplerOf builds a resampling Source of the given kind. When the rates
// already match src is returned untouched.
func NewResamplerOf(kind ResamplerKind, src Source, dstRate int) (Source, error) {
	if dstRate <= 0 || src.SampleRate() <= 0 {
		return nil, ErrInvalidRate
	}
	if src.SampleRate() == dstRate {
		return src, nil
	}
	switch kind {
	case "", Cubic:
		return NewResampler(src, dstRate), nil
	case Sinc:
		return NewSincResampler(src, dstRate, DefaultSincQuality)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownResampler, kind)
}

// ReadAll drains src and returns every sample it produced.
func ReadAll(src Source) ([]float32, error) {
	return ReadAllContext(context.Background(), src)
}

// ReadAllContext is ReadAll that gives up between chunks once ctx is done.
func ReadAllContext(ctx context.Context, src Source) ([]float32, error) {
	bufSize := src.BufSize()
	if bufSize <= 0 {
		bufSize = 4096
	}
	if ch := max(src.Channels(), 1); bufSize%ch != 0 {
		bufSize += ch - bufSize%ch
	}

	out := make([]float32, 0, bufSize)
	buf := make([]float32, bufSize)
	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)

		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("%w", err)
		}
	}
}

// ToMono runs src through a mono mixer and a resampler of the given kind and
// collects the result.
func ToMono(src Source, targetRate int, kind ResamplerKind) ([]float32, error) {
	return ToMonoContext(context.Background(), src, targetRate, kind)
}

// ToMonoContext is ToMono bounded by ctx.
func ToMonoContext(ctx context.Context, src Source, targetRate int, kind ResamplerKind) ([]float32, error) {
	var mono Source = src
	if src.Channels() != 1 {
		mono = NewMonoMixer(src)
	}

	resampled, err := NewResamplerOf(kind, mono, targetRate)
	if err != nil {
		return nil, err
	}
	return ReadAllContext(ctx, resampled)
}

// Resample converts a mono buffer from one rate to another. It is the
// identity (the same slice) when the rates match.
func Resample(samples []float32, from, to int, kind ResamplerKind) ([]float32, error) {
	if from <= 0 || to <= 0 {
		return nil, ErrInvalidRate
	}
	if from == to {
		return samples, nil
	}
	return ToMono(NewSliceSource(samples, from, 1), to, kind)
}

// SliceSource serves an in-memory interleaved buffer as a Source.
type SliceSource struct {
	samples    []float32
	sampleRate int
	channels   int
	pos        int
}

func NewSliceSource(samples []float32, sampleRate, channels int) *SliceSource {
	return &SliceSource{samples: samples, sampleRate: sampleRate, channels: max(channels, 1)}
}

func (s *SliceSource) SampleRate() int { return s.sampleRate }
func (s *SliceSource) Channels() int   { return s.channels }
func (s *SliceSource) BufSize() int    { return 4096 }
func (s *SliceSource) Close() error    { return nil }

func (s *SliceSource) ReadSamples(dst []float32) (int, error) {
	if s.pos >= len(s.samples) {
		return 0, io.EOF
	}
	n := copy(dst, s.samples[s.pos:])
	s.pos += n
	if s.pos >= len(s.samples) {
		return n, io.EOF
	}
	return n, nil
}
