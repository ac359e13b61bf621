// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"math"
	"slices"
	"testing"

	goaudio "github.com/go-audio/audio"
)

// mockAiffReader simulates the aiff.Decoder for testing
type mockAiffReader struct {
	sampleRate  int
	channels    int
	samples     []int
	offset      int
	eofWithData bool
	err         error
}

func (m *mockAiffReader) Format() *goaudio.Format {
	return &goaudio.Format{
		SampleRate:  m.sampleRate,
		NumChannels: m.channels,
	}
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.offset >= len(m.samples) {
		return 0, nil
	}

	n := copy(buf.Data, m.samples[m.offset:])
	m.offset += n

	if m.eofWithData && m.offset >= len(m.samples) {
		return n, io.EOF
	}
	return n, nil
}

func readAll(t *testing.T, src *source, bufSize int) []float32 {
	t.Helper()

	buf := make([]float32, bufSize)
	var out []float32
	for range 10000 {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	t.Fatal("no EOF")
	return nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	for name, data := range map[string][]byte{
		"garbage": []byte("This is not AIFF data"),
		"empty":   {},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(data))
			if !errors.Is(err, ErrNotAiffFile) {
				t.Errorf("Decode() error = %v, want ErrNotAiffFile", err)
			}
		})
	}
}

func TestDecoder_NonSeekableInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(io.MultiReader(bytes.NewReader([]byte("FORM"))))
	if !errors.Is(err, ErrNotAiffFile) {
		t.Errorf("Decode() error = %v, want ErrNotAiffFile", err)
	}
}

func TestSource_BitDepthNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		input    int
		expected float32
	}{
		{"8-bit max", 8, 127, 127.0 / 128.0},
		{"8-bit min", 8, -128, -1.0},
		{"16-bit max", 16, 32767, 32767.0 / 32768.0},
		{"16-bit min", 16, -32768, -1.0},
		{"24-bit", 24, 8388607, 8388607.0 / 8388608.0},
		{"32-bit", 32, 2147483647, 2147483647.0 / 2147483648.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := newSource(&mockAiffReader{sampleRate: 44100, channels: 1, samples: []int{tt.input}}, tt.bitDepth)
			got := readAll(t, src, 4)

			if len(got) != 1 {
				t.Fatalf("len = %d, want 1", len(got))
			}
			if math.Abs(float64(got[0]-tt.expected)) > 1e-6 {
				t.Errorf("got %f, want %f", got[0], tt.expected)
			}
		})
	}
}

func TestSource_ReadsEverySample(t *testing.T) {
	t.Parallel()

	for _, eofWithData := range []bool{false, true} {
		samples := make([]int, 1000)
		want := make([]float32, len(samples))
		for i := range samples {
			samples[i] = i - 500
			want[i] = float32(i-500) / 32768
		}
		dec := &mockAiffReader{sampleRate: 22050, channels: 2, samples: samples, eofWithData: eofWithData}

		got := readAll(t, newSource(dec, 16), 64)
		if !slices.Equal(got, want) {
			t.Errorf("eofWithData=%v: got %d samples, want %d in order", eofWithData, len(got), len(want))
		}
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := newSource(&mockAiffReader{sampleRate: 48000, channels: 3}, 24)
	if src.SampleRate() != 48000 || src.Channels() != 3 {
		t.Errorf("format = %d Hz x%d, want 48000 Hz x3", src.SampleRate(), src.Channels())
	}
	if src.BufSize()%3 != 0 {
		t.Errorf("BufSize() = %d, not a multiple of 3", src.BufSize())
	}
}

func TestSource_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("read failed")
	src := newSource(&mockAiffReader{sampleRate: 44100, channels: 1, err: boom}, 16)
	if _, err := src.ReadSamples(make([]float32, 8)); !errors.Is(err, boom) {
		t.Errorf("error = %v, want read failed", err)
	}
}

func TestSource_EOFIsSticky(t *testing.T) {
	t.Parallel()

	src := newSource(&mockAiffReader{sampleRate: 44100, channels: 1, samples: []int{1}}, 16)
	readAll(t, src, 8)
	if n, err := src.ReadSamples(make([]float32, 8)); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() = (%d, %v), want (0, EOF)", n, err)
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int, 44100*2)
	buf := make([]float32, 4096)

	for b.Loop() {
		src := newSource(&mockAiffReader{sampleRate: 44100, channels: 2, samples: samples}, 16)
		for {
			if _, err := src.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
