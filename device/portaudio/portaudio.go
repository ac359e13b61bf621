// SPDX-License-Identifier: EPL-2.0

// Package portaudio implements device.Backend on top of the PortAudio C
// library. Device IDs are indexes into the host device list as enumerated at
// New.
package portaudio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/ik5/voxswitch/device"
)

// Backend owns the PortAudio library lifetime. Only one should exist at a time.
type Backend struct {
	mu      sync.Mutex
	devices []*portaudio.DeviceInfo
	closed  bool
}

var _ device.Backend = (*Backend)(nil)

// New initializes PortAudio and snapshots the device list.
func New() (*Backend, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}

	devices, err := portaudio.Devices()
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	return &Backend{devices: devices}, nil
}

func toInfo(id int, d *portaudio.DeviceInfo) device.Info {
	name := d.Name
	if d.HostApi != nil && d.HostApi.Name != "" {
		name = fmt.Sprintf("%s (%s)", d.Name, d.HostApi.Name)
	}
	return device.Info{
		ID:                id,
		Name:              name,
		MaxInputChannels:  d.MaxInputChannels,
		MaxOutputChannels: d.MaxOutputChannels,
		DefaultSampleRate: d.DefaultSampleRate,
	}
}

func (b *Backend) list(keep func(*portaudio.DeviceInfo) bool) ([]device.Info, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, device.ErrBackendClosed
	}
	var infos []device.Info
	for id, d := range b.devices {
		if keep(d) {
			infos = append(infos, toInfo(id, d))
		}
	}
	return infos, nil
}

func (b *Backend) Inputs() ([]device.Info, error) {
	return b.list(func(d *portaudio.DeviceInfo) bool { return d.MaxInputChannels > 0 })
}

func (b *Backend) Outputs() ([]device.Info, error) {
	return b.list(func(d *portaudio.DeviceInfo) bool { return d.MaxOutputChannels > 0 })
}

func (b *Backend) lookupDefault(get func() (*portaudio.DeviceInfo, error)) (device.Info, error) {
	def, err := get()
	if err != nil {
		return device.Info{}, fmt.Errorf("%w: %w", device.ErrNoDefaultDevice, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for id, d := range b.devices {
		if d == def || (d.Name == def.Name && d.HostApi == def.HostApi) {
			return toInfo(id, d), nil
		}
	}
	return device.Info{}, device.ErrNoDefaultDevice
}

func (b *Backend) DefaultInput() (device.Info, error) {
	return b.lookupDefault(portaudio.DefaultInputDevice)
}

func (b *Backend) DefaultOutput() (device.Info, error) {
	return b.lookupDefault(portaudio.DefaultOutputDevice)
}

func (b *Backend) device(id int) (*portaudio.DeviceInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, device.ErrBackendClosed
	}
	if id < 0 || id >= len(b.devices) {
		return nil, fmt.Errorf("%w: %d", device.ErrNoDevice, id)
	}
	return b.devices[id], nil
}

func (b *Backend) OpenInput(dev device.Info, cfg device.StreamConfig, fn device.InputFunc) (device.Stream, error) {
	d, err := b.device(dev.ID)
	if err != nil {
		return nil, err
	}
	if d.MaxInputChannels < 1 {
		return nil, device.ErrNotInput
	}

	params := portaudio.LowLatencyParameters(d, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(cfg.SampleRate)
	params.FramesPerBuffer = cfg.BlockSize

	s, err := portaudio.OpenStream(params, func(in []float32) { fn(in) })
	if err != nil {
		return nil, fmt.Errorf("opening input %q: %w", d.Name, err)
	}
	return s, nil
}

func (b *Backend) OpenOutput(dev device.Info, cfg device.StreamConfig, fn device.OutputFunc) (device.Stream, error) {
	d, err := b.device(dev.ID)
	if err != nil {
		return nil, err
	}
	if d.MaxOutputChannels < 1 {
		return nil, device.ErrNotOutput
	}

	params := portaudio.LowLatencyParameters(nil, d)
	params.Output.Channels = 1
	params.SampleRate = float64(cfg.SampleRate)
	params.FramesPerBuffer = cfg.BlockSize

	s, err := portaudio.OpenStream(params, func(out []float32) { fn(out) })
	if err != nil {
		return nil, fmt.Errorf("opening output %q: %w", d.Name, err)
	}
	return s, nil
}

// Close terminates PortAudio. Streams must be closed first.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if err := portaudio.Terminate(); err != nil && !errors.Is(err, portaudio.NotInitialized) {
		return fmt.Errorf("terminating portaudio: %w", err)
	}
	return nil
}
