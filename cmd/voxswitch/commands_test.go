// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/voxswitch/config"
	"github.com/ik5/voxswitch/device"
	"github.com/ik5/voxswitch/engine"
	"github.com/ik5/voxswitch/internal/audiotest"
)

func newTestCommander(t *testing.T) (*commander, *bytes.Buffer, *config.Config) {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Audio.SampleRate = 8000
	cfg.Audio.BlockSize = 4
	cfg.Audio.QueueCapacity = 4
	cfg.Watchdog = 0
	cfg.Slots = map[string]string{
		"horn": audiotest.TempWAV(t, "horn.wav", 8000, make([]float32, 4*64)),
	}

	d := device.NewDummy(8000)
	in, _ := device.ResolveInput(d, cfg.Devices.Input)
	out, _ := device.ResolveOutput(d, 1)
	mon, _ := device.ResolveOutput(d, 2)

	s := engine.NewSession(d, sessionOptions(cfg), zerolog.Nop())
	require.NoError(t, s.Start(context.Background(), in, out, mon))
	t.Cleanup(func() { s.Stop() })

	var buf bytes.Buffer
	return newCommander(s, cfg, &buf), &buf, cfg
}

func TestCommander_Gain(t *testing.T) {
	c, _, cfg := newTestCommander(t)
	ctx := context.Background()

	require.NoError(t, c.exec(ctx, "gain mic 0.4"))
	require.NoError(t, c.exec(ctx, "gain monitor 7"))

	assert.InDelta(t, 0.4, c.session.Gains().Mic(), 1e-12)
	assert.InDelta(t, 0.4, cfg.Gains.Mic, 1e-12)
	assert.InDelta(t, 1.0, cfg.Gains.Monitor, 1e-12, "stored value is clamped")

	assert.Error(t, c.exec(ctx, "gain mic loud"))
	assert.Error(t, c.exec(ctx, "gain bass 0.5"))
	assert.Error(t, c.exec(ctx, "gain mic"))
}

func TestCommander_PlayToggle(t *testing.T) {
	c, out, _ := newTestCommander(t)
	ctx := context.Background()

	require.NoError(t, c.exec(ctx, "play horn"))
	require.NoError(t, c.exec(ctx, "play horn"))

	assert.Equal(t, "slot:horn: started\nslot:horn: cancelled\n", out.String())
}

func TestCommander_Errors(t *testing.T) {
	c, _, _ := newTestCommander(t)
	ctx := context.Background()

	assert.ErrorIs(t, c.exec(ctx, "play nothing"), engine.ErrUnknownOwner)
	assert.ErrorIs(t, c.exec(ctx, "music"), engine.ErrUnknownOwner)
	assert.Error(t, c.exec(ctx, "play"))
	assert.Error(t, c.exec(ctx, "dance"))
	assert.NoError(t, c.exec(ctx, "   "))
	assert.ErrorIs(t, c.exec(ctx, "quit"), errQuit)
}

func TestCommander_StatusAndStats(t *testing.T) {
	c, out, _ := newTestCommander(t)
	ctx := context.Background()

	require.NoError(t, c.exec(ctx, "status"))
	assert.Contains(t, out.String(), "running: true  mode: voice  owner: none")
	assert.Contains(t, out.String(), "slot horn: ")

	out.Reset()
	require.NoError(t, c.exec(ctx, "stats"))
	assert.Contains(t, out.String(), "voxswitch_render_underruns_total 0")
}

func TestCommander_Loop(t *testing.T) {
	c, out, _ := newTestCommander(t)

	err := c.loop(context.Background(), strings.NewReader("help\nbogus\nstop\nquit\n"))
	assert.ErrorIs(t, err, errQuit)
	assert.Contains(t, out.String(), "commands:")
	assert.Contains(t, out.String(), `error: unknown command "bogus"`)
}

func TestCommander_LoopEndsOnEOF(t *testing.T) {
	c, _, _ := newTestCommander(t)
	assert.ErrorIs(t, c.loop(context.Background(), strings.NewReader("status\n")), errQuit)
}

func TestCommander_ApplyConfigAndSave(t *testing.T) {
	c, _, cfg := newTestCommander(t)

	next, err := config.Load("")
	require.NoError(t, err)
	next.Gains.Playback = 0.1
	next.Music = "/music/theme.ogg"
	next.Slots = map[string]string{"2": "/sfx/b.wav"}
	c.applyConfig(next)

	assert.InDelta(t, 0.1, c.session.Gains().Playback(), 1e-12)
	assert.Equal(t, map[string]string{"2": "/sfx/b.wav"}, c.session.Slots())
	assert.Equal(t, "/music/theme.ogg", cfg.Music)

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, c.save(path))
	saved, err := config.Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, saved.Gains.Playback, 1e-12)
	assert.Equal(t, "/music/theme.ogg", saved.Music)
}

func TestPrintDevices(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printDevices(&buf, device.NewDummy(44100)))

	s := buf.String()
	assert.Less(t, strings.Index(s, "Input devices:"), strings.Index(s, "Dummy Microphone"))
	assert.Less(t, strings.Index(s, "Output devices:"), strings.Index(s, "Dummy Cable"))
}
