// SPDX-License-Identifier: EPL-2.0

// Package device abstracts the host audio API behind a small callback
// interface. Streams are mono float32 at a fixed block size.
package device

import (
	"fmt"
	"strings"
)

// DefaultID selects the system default device in Resolve.
const DefaultID = -1

// Info describes one host audio device. ID is the canonical handle passed
// back to a Backend.
type Info struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
}

func (i Info) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "ID:          %d\n", i.ID)
	fmt.Fprintf(&sb, "Name:        %s\n", i.Name)
	fmt.Fprintf(&sb, "SampleRate:  %.0f\n", i.DefaultSampleRate)
	fmt.Fprintf(&sb, "Channels:    in %d / out %d\n", i.MaxInputChannels, i.MaxOutputChannels)
	return sb.String()
}

// StreamConfig is shared by every stream of a session.
type StreamConfig struct {
	SampleRate int
	BlockSize  int
}

// InputFunc receives one block of captured samples. It runs on the audio
// thread and must not block.
type InputFunc func(in []float32)

// OutputFunc fills one block of samples to play. It runs on the audio
// thread and must not block.
type OutputFunc func(out []float32)

// Stream is an opened callback stream.
type Stream interface {
	Start() error
	// Stop waits for any running callback to return.
	Stop() error
	Close() error
}

// Backend enumerates devices and opens streams on them.
type Backend interface {
	Inputs() ([]Info, error)
	Outputs() ([]Info, error)
	DefaultInput() (Info, error)
	DefaultOutput() (Info, error)
	OpenInput(dev Info, cfg StreamConfig, fn InputFunc) (Stream, error)
	OpenOutput(dev Info, cfg StreamConfig, fn OutputFunc) (Stream, error)
	Close() error
}

// Find returns the device with the given ID.
func Find(infos []Info, id int) (Info, error) {
	for _, info := range infos {
		if info.ID == id {
			return info, nil
		}
	}
	return Info{}, fmt.Errorf("%w: %d", ErrNoDevice, id)
}

// ResolveInput maps a configured device index to an input device. DefaultID
// asks the backend for its default.
func ResolveInput(b Backend, id int) (Info, error) {
	if id == DefaultID {
		return b.DefaultInput()
	}
	infos, err := b.Inputs()
	if err != nil {
		return Info{}, err
	}
	return Find(infos, id)
}

// ResolveOutput is ResolveInput for playback devices.
func ResolveOutput(b Backend, id int) (Info, error) {
	if id == DefaultID {
		return b.DefaultOutput()
	}
	infos, err := b.Outputs()
	if err != nil {
		return Info{}, err
	}
	return Find(infos, id)
}
