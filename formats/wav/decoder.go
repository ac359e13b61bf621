// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/voxswitch/audio"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

type wavSource struct {
	dec        *wav.Decoder
	buf        *goaudio.IntBuffer
	sampleRate int
	channels   int
	bitDepth   int
	scale      float32
	done       bool
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) BufSize() int    { return 4096 - 4096%s.channels }
func (s *wavSource) Close() error    { return nil }

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if s.done {
		return 0, io.EOF
	}

	if cap(s.buf.Data) < len(dst) {
		s.buf.Data = make([]int, len(dst))
	}
	s.buf.Data = s.buf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.buf)
	for i, v := range s.buf.Data[:n] {
		if s.bitDepth == 8 {
			// 8-bit WAV is unsigned with a 128 midpoint.
			v -= 128
		}
		dst[i] = float32(v) * s.scale
	}

	switch {
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		s.done = true
		return n, io.EOF
	case err != nil:
		return n, fmt.Errorf("%w", err)
	case n == 0:
		s.done = true
		return 0, io.EOF
	}
	return n, nil
}

// Decoder reads integer PCM WAV files (8, 16, 24 or 32 bits).
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	switch dec.WavAudioFormat {
	case formatPCM, formatExtensible:
	default:
		return nil, fmt.Errorf("%w: format tag %#x", ErrUnsupportedWavFormat, dec.WavAudioFormat)
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
	}

	channels := int(dec.NumChans)
	return &wavSource{
		dec: dec,
		buf: &goaudio.IntBuffer{
			Format:         dec.Format(),
			Data:           make([]int, 4096-4096%channels),
			SourceBitDepth: bitDepth,
		},
		sampleRate: int(dec.SampleRate),
		channels:   channels,
		bitDepth:   bitDepth,
		scale:      1 / float32(int64(1)<<(bitDepth-1)),
	}, nil
}
