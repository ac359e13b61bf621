// SPDX-License-Identifier: EPL-2.0

package voxswitch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ik5/voxswitch/audio"
	"github.com/ik5/voxswitch/formats/aiff"
	"github.com/ik5/voxswitch/formats/mp3"
	"github.com/ik5/voxswitch/formats/vorbis"
	"github.com/ik5/voxswitch/formats/wav"
)

// DefaultRegistry knows every format shipped with voxswitch.
var DefaultRegistry = NewRegistry()

// NewRegistry returns a registry with the bundled decoders registered.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register(wav.Decoder{}, "wav", "wave")
	r.Register(mp3.Decoder{}, "mp3")
	r.Register(vorbis.Decoder{}, "ogg", "oga")
	r.Register(aiff.Decoder{}, "aif", "aiff")
	return r
}

// Open resolves the decoder for path and returns its Source. The caller owns
// the returned Source and the file behind it.
func Open(registry *audio.Registry, path string) (audio.Source, func() error, error) {
	dec, ok := registry.ForPath(path)
	if !ok {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, nil, fmt.Errorf("%w: unknown extension %q", ErrDecode, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrDecode, filepath.Base(path), err)
	}
	return src, f.Close, nil
}

// Decode reads the whole file at path and mixes it down to mono. rate is the
// file's own sample rate.
func Decode(path string) ([]float32, int, error) {
	return decodeWith(context.Background(), DefaultRegistry, path, 0, audio.Cubic)
}

// LoadMono decodes path, mixes it to mono and resamples it to targetRate.
func LoadMono(path string, targetRate int, kind audio.ResamplerKind) ([]float32, error) {
	return LoadMonoContext(context.Background(), path, targetRate, kind)
}

// LoadMonoContext is LoadMono that stops decoding once ctx is done and
// returns ctx.Err().
func LoadMonoContext(ctx context.Context, path string, targetRate int, kind audio.ResamplerKind) ([]float32, error) {
	samples, _, err := decodeWith(ctx, DefaultRegistry, path, targetRate, kind)
	return samples, err
}

// decodeWith resamples to targetRate unless it is 0.
func decodeWith(ctx context.Context, registry *audio.Registry, path string, targetRate int, kind audio.ResamplerKind) ([]float32, int, error) {
	src, closeFile, err := Open(registry, path)
	if err != nil {
		return nil, 0, err
	}
	defer closeFile()
	defer src.Close()

	rate := src.SampleRate()
	if targetRate > 0 {
		rate = targetRate
	}

	samples, err := audio.ToMonoContext(ctx, src, rate, kind)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, 0, ctxErr
	}
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %w", ErrDecode, filepath.Base(path), err)
	}
	return samples, rate, nil
}
