// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// seekBuffer is an in-memory io.WriteSeeker for the go-audio encoder.
type seekBuffer struct {
	buf []byte
	pos int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if need := b.pos + len(p); need > len(b.buf) {
		b.buf = append(b.buf, make([]byte, need-len(b.buf))...)
	}
	n := copy(b.buf[b.pos:], p)
	b.pos += n
	return n, nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		b.pos = int(offset)
	case io.SeekCurrent:
		b.pos += int(offset)
	case io.SeekEnd:
		b.pos = len(b.buf) + int(offset)
	}
	return int64(b.pos), nil
}

// EncodeWAV16 returns a 16-bit PCM WAV holding interleaved samples in [-1,1].
func EncodeWAV16(tb testing.TB, sampleRate, channels int, samples []float32) []byte {
	tb.Helper()

	out := &seekBuffer{}
	enc := wav.NewEncoder(out, sampleRate, 16, channels, 1)

	data := make([]int, len(samples))
	for i, s := range samples {
		s = max(min(s, 1), -1)
		data[i] = int(s * 32767)
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		tb.Fatalf("encoding wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		tb.Fatalf("closing wav encoder: %v", err)
	}
	return bytes.Clone(out.buf)
}

// WriteWAV writes samples as a mono 16-bit WAV at path.
func WriteWAV(tb testing.TB, path string, sampleRate int, samples []float32) {
	tb.Helper()

	if err := os.WriteFile(path, EncodeWAV16(tb, sampleRate, 1, samples), 0o644); err != nil {
		tb.Fatalf("writing %s: %v", path, err)
	}
}

// TempWAV writes a mono fixture named name into a fresh temp dir and returns
// its path.
func TempWAV(tb testing.TB, name string, sampleRate int, samples []float32) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), name)
	WriteWAV(tb, path, sampleRate, samples)
	return path
}
