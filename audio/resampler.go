// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/voxswitch/utils"
)

// Resampler streams from src to a target sample rate using cubic (Catmull-Rom)
// interpolation. It works on interleaved samples and preserves the channel count.
// A one-pole low-pass filter is applied to the input when downsampling.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames per output frame
	channels int

	// window[1] is the frame at the integer read position, window[0] the one
	// before it, window[2] and window[3] the two after.
	window [4][]float32
	valid  [4]bool
	primed bool
	pos    float64 // fractional position between window[1] and window[2]

	// pending holds frames read from src but not yet shifted into the window.
	pending []float32
	next    int
	srcDone bool

	lowPass     bool
	filterAlpha float32
	filterState []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := max(src.Channels(), 1)
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:         src,
		dstRate:     dstRate,
		ratio:       ratio,
		channels:    channels,
		pending:     make([]float32, 0, 4096-4096%channels),
		lowPass:     ratio > 1.0,
		filterAlpha: 0.5,
		filterState: make([]float32, channels),
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}
	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// readFrame copies the next source frame into dst. ok is false once the
// source is exhausted.
func (r *Resampler) readFrame(dst []float32, first bool) (bool, error) {
	if r.next+r.channels > len(r.pending) {
		if r.srcDone {
			return false, nil
		}
		r.pending = r.pending[:cap(r.pending)]
		n, err := r.src.ReadSamples(r.pending)
		n -= n % r.channels
		r.pending = r.pending[:n]
		r.next = 0
		if err == io.EOF {
			r.srcDone = true
		} else if err != nil {
			return false, fmt.Errorf("%w", err)
		}
		if n == 0 {
			if r.srcDone {
				return false, nil
			}
			return r.readFrame(dst, first)
		}
	}

	copy(dst, r.pending[r.next:r.next+r.channels])
	r.next += r.channels

	if r.lowPass {
		if first {
			copy(r.filterState, dst)
		}
		for c := range dst {
			dst[c] = r.filterAlpha*dst[c] + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = dst[c]
		}
	}
	return true, nil
}

func (r *Resampler) prime() error {
	r.primed = true

	ok, err := r.readFrame(r.window[1], true)
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	r.valid[1] = true
	copy(r.window[0], r.window[1])
	r.valid[0] = true

	for i := 2; i < 4; i++ {
		if r.valid[i], err = r.readFrame(r.window[i], false); err != nil {
			return err
		}
	}
	return nil
}

// advance shifts the window one source frame forward.
func (r *Resampler) advance() error {
	head := r.window[0]
	copy(r.window[:], r.window[1:])
	copy(r.valid[:], r.valid[1:])
	r.window[3] = head

	var err error
	r.valid[3], err = r.readFrame(r.window[3], false)
	return err
}

// ReadSamples produces interleaved samples at the target rate.
// dst length must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	for written < len(dst)/r.channels {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}
		if !r.valid[1] {
			return written * r.channels, io.EOF
		}

		y1 := r.window[1]
		y0 := y1
		if r.valid[0] {
			y0 = r.window[0]
		}
		y2 := y1
		if r.valid[2] {
			y2 = r.window[2]
		}
		y3 := y2
		if r.valid[3] {
			y3 = r.window[3]
		}
		out := dst[written*r.channels : (written+1)*r.channels]
		utils.CubicInterpolateFrame(out, y0, y1, y2, y3, float32(r.pos))

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
