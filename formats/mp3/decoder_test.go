// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

// mockMP3Reader simulates the gomp3.Decoder for testing. chunk limits how
// many bytes a single Read returns, which exercises short reads.
type mockMP3Reader struct {
	sampleRate int
	pcm        []byte
	offset     int
	chunk      int
	err        error
}

func newMockReader(sampleRate int, samples ...int16) *mockMP3Reader {
	pcm := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(s))
	}
	return &mockMP3Reader{sampleRate: sampleRate, pcm: pcm}
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }

func (m *mockMP3Reader) Read(buf []byte) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.offset >= len(m.pcm) {
		return 0, io.EOF
	}
	if m.chunk > 0 && len(buf) > m.chunk {
		buf = buf[:m.chunk]
	}
	n := copy(buf, m.pcm[m.offset:])
	m.offset += n
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
		"garbage": []byte("This is not MP3 data"),
		"empty":   {},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(data))
			if !errors.Is(err, ErrNotMP3) {
				t.Errorf("Decode() error = %v, want ErrNotMP3", err)
			}
		})
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := newSource(newMockReader(22050))
	if src.SampleRate() != 22050 {
		t.Errorf("SampleRate() = %d, want 22050", src.SampleRate())
	}
	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
	if src.BufSize()%2 != 0 {
		t.Errorf("BufSize() = %d, want even", src.BufSize())
	}
}

func TestSource_ConversionAccuracy(t *testing.T) {
	t.Parallel()

	src := newSource(newMockReader(44100, 0, 16384, -16384, 32767, -32768, 1))
	got := readAll(t, src, 64)

	want := []float32{0, 0.5, -0.5, 32767.0 / 32768, -1, 1.0 / 32768}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-7 {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSource_ShortReadsStayFrameAligned(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 200)
	for i := range samples {
		samples[i] = int16(i * 100)
	}
	dec := newMockReader(44100, samples...)
	dec.chunk = 3

	got := readAll(t, newSource(dec), 10)
	if len(got) != len(samples) {
		t.Fatalf("len = %d, want %d", len(got), len(samples))
	}
	for i, s := range samples {
		if got[i] != float32(s)/32768 {
			t.Fatalf("got[%d] = %v, want %v", i, got[i], float32(s)/32768)
		}
	}
}

func TestSource_DropsTrailingPartialFrame(t *testing.T) {
	t.Parallel()

	got := readAll(t, newSource(newMockReader(44100, 1, 2, 3)), 64)
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestSource_EOFIsSticky(t *testing.T) {
	t.Parallel()

	src := newSource(newMockReader(44100, 1, 2))
	readAll(t, src, 8)
	if n, err := src.ReadSamples(make([]float32, 8)); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() = (%d, %v), want (0, EOF)", n, err)
	}
}

func TestSource_TinyDst(t *testing.T) {
	t.Parallel()

	n, err := newSource(newMockReader(44100, 1, 2)).ReadSamples(make([]float32, 1))
	if n != 0 || err != nil {
		t.Errorf("ReadSamples(len 1) = (%d, %v), want (0, nil)", n, err)
	}
}

func TestSource_DecodeError(t *testing.T) {
	t.Parallel()

	boom := errors.New("corrupt frame")
	dec := newMockReader(44100)
	dec.err = boom

	_, err := newSource(dec).ReadSamples(make([]float32, 8))
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want corrupt frame", err)
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int16, 44100*2)
	buf := make([]float32, 4096)

	for b.Loop() {
		src := newSource(newMockReader(44100, samples...))
		for {
			if _, err := src.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
