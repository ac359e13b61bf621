// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/oov/audio/resampler"
)

const (
	// DefaultSincQuality is the filter quality handed to the sinc resampler (0..10).
	DefaultSincQuality = 10

	// flushDivisor sets how much silence (1/flushDivisor of a second at the
	// source rate) is fed after EOF to push the filter tail out.
	flushDivisor = 20
)

// SincResampler streams src through a windowed-sinc resampler. It trades
// CPU for less aliasing than Resampler and is meant for whole-file conversion
// off the audio thread.
type SincResampler struct {
	src      Source
	srcRate  int
	dstRate  int
	channels int
	rs       *resampler.Resampler

	in       []float32
	planeIn  [][]float32
	planeOut [][]float32

	out    []float32
	outPos int

	consumed int64 // source frames fed, excluding flush padding
	produced int64 // output frames handed to callers
	srcDone  bool
	flushed  bool
}

// NewSincResampler wraps src. quality is clamped to the 0..10 range the
// resampler accepts.
func NewSincResampler(src Source, dstRate, quality int) (*SincResampler, error) {
	if dstRate <= 0 || src.SampleRate() <= 0 {
		return nil, ErrInvalidRate
	}
	channels := src.Channels()
	if channels < 1 {
		return nil, ErrNoChannels
	}
	quality = min(max(quality, 0), 10)

	s := &SincResampler{
		src:      src,
		srcRate:  src.SampleRate(),
		dstRate:  dstRate,
		channels: channels,
		rs:       resampler.New(channels, src.SampleRate(), dstRate, quality),
		in:       make([]float32, 4096-4096%channels),
		planeIn:  make([][]float32, channels),
		planeOut: make([][]float32, channels),
	}
	frames := len(s.in) / channels
	for c := range channels {
		s.planeIn[c] = make([]float32, frames)
		s.planeOut[c] = make([]float32, s.outFrames(frames))
	}
	return s, nil
}

func (s *SincResampler) SampleRate() int { return s.dstRate }
func (s *SincResampler) Channels() int   { return s.channels }
func (s *SincResampler) BufSize() int    { return s.src.BufSize() }

func (s *SincResampler) Close() error {
	if err := s.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *SincResampler) outFrames(inFrames int) int {
	return int(math.Ceil(float64(inFrames)*float64(s.dstRate)/float64(s.srcRate))) + 64
}

// expected is the number of output frames a perfect converter would emit for
// everything consumed so far.
func (s *SincResampler) expected() int64 {
	return int64(math.Ceil(float64(s.consumed) * float64(s.dstRate) / float64(s.srcRate)))
}

// process runs frames of planeIn through the filter and appends the
// interleaved result to s.out.
func (s *SincResampler) process(frames int) {
	written := -1
	for c := range s.channels {
		if need := s.outFrames(frames); len(s.planeOut[c]) < need {
			s.planeOut[c] = make([]float32, need)
		}

		in := s.planeIn[c][:frames]
		out := s.planeOut[c]
		w := 0
		for len(in) > 0 && w < len(out) {
			read, n := s.rs.ProcessFloat32(c, in, out[w:])
			if read == 0 && n == 0 {
				break
			}
			in = in[read:]
			w += n
		}
		if written < 0 || w < written {
			written = w
		}
	}

	for f := range written {
		for c := range s.channels {
			s.out = append(s.out, s.planeOut[c][f])
		}
	}
}

func (s *SincResampler) fill() error {
	s.out = s.out[:0]
	s.outPos = 0

	if s.srcDone {
		if s.flushed {
			return io.EOF
		}
		s.flushed = true
		pad := max(s.srcRate/flushDivisor, 1)
		for c := range s.channels {
			if len(s.planeIn[c]) < pad {
				s.planeIn[c] = make([]float32, pad)
			}
			clear(s.planeIn[c][:pad])
		}
		s.process(pad)
		return nil
	}

	n, err := s.src.ReadSamples(s.in)
	if err == io.EOF {
		s.srcDone = true
	} else if err != nil {
		return fmt.Errorf("%w", err)
	}

	frames := n / s.channels
	for f := range frames {
		for c := range s.channels {
			s.planeIn[c][f] = s.in[f*s.channels+c]
		}
	}
	s.consumed += int64(frames)
	s.process(frames)
	return nil
}

// ReadSamples produces interleaved samples at the target rate. The total
// output length tracks the ideal ratio; trailing filter output beyond it is
// discarded.
func (s *SincResampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	written := 0
	for written < len(dst) {
		if s.outPos >= len(s.out) {
			if err := s.fill(); err != nil {
				if err == io.EOF && written > 0 {
					return written, io.EOF
				}
				return written, err
			}
			continue
		}

		if s.srcDone && s.produced >= s.expected() {
			s.out = s.out[:0]
			s.outPos = 0
			s.flushed = true
			if written == 0 {
				return 0, io.EOF
			}
			return written, io.EOF
		}

		frames := min((len(s.out)-s.outPos)/s.channels, (len(dst)-written)/s.channels)
		if s.srcDone {
			frames = int(min(int64(frames), s.expected()-s.produced))
		}
		copy(dst[written:], s.out[s.outPos:s.outPos+frames*s.channels])
		s.outPos += frames * s.channels
		written += frames * s.channels
		s.produced += int64(frames)
	}

	return written, nil
}
