// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/ik5/voxswitch/config"
	"github.com/ik5/voxswitch/engine"
	"github.com/ik5/voxswitch/routing"
)

var errQuit = errors.New("quit")

const help = `commands:
  music                          toggle the main track
  play <slot>                    toggle a soundboard slot
  stop                           stop all playback, back to voice
  gain mic|playback|monitor <v>  set a gain in [0,1]
  status                         show routing, gains and slots
  stats                          show engine counters
  quit                           stop streams and exit`

// commander runs text commands against a session. It also keeps cfg in
// step with live changes so they can be saved on exit.
type commander struct {
	session *engine.Session
	out     io.Writer

	mu  sync.Mutex
	cfg *config.Config
}

func newCommander(s *engine.Session, cfg *config.Config, out io.Writer) *commander {
	return &commander{session: s, cfg: cfg, out: out}
}

// loop reads commands until ctx ends, input closes or quit is entered.
func (c *commander) loop(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintln(c.out, `type "help" for commands`)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return errQuit
			}
			if err := c.exec(ctx, line); err != nil {
				if errors.Is(err, errQuit) {
					return err
				}
				fmt.Fprintln(c.out, "error:", err)
			}
		}
	}
}

func (c *commander) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch cmd, args := fields[0], fields[1:]; cmd {
	case "music":
		return c.play(ctx, routing.MusicID)

	case "play":
		if len(args) != 1 {
			return errors.New("usage: play <slot>")
		}
		return c.play(ctx, args[0])

	case "stop":
		return c.session.StopAll(ctx)

	case "gain":
		if len(args) != 2 {
			return errors.New("usage: gain mic|playback|monitor <0..1>")
		}
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("gain value: %w", err)
		}
		return c.setGain(args[0], v)

	case "status":
		c.status()
		return nil

	case "stats":
		return c.stats()

	case "help":
		fmt.Fprintln(c.out, help)
		return nil

	case "quit", "exit":
		return errQuit
	}

	return fmt.Errorf("unknown command %q", fields[0])
}

func (c *commander) play(ctx context.Context, ownerID string) error {
	outcome, err := c.session.RequestSlot(ctx, ownerID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s: %s\n", routing.ParseOwner(ownerID), outcome)
	return nil
}

func (c *commander) setGain(name string, v float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch name {
	case "mic":
		c.session.SetMicGain(v)
		c.cfg.Gains.Mic = c.session.Gains().Mic()
	case "playback":
		c.session.SetPlaybackGain(v)
		c.cfg.Gains.Playback = c.session.Gains().Playback()
	case "monitor":
		c.session.SetMonitorGain(v)
		c.cfg.Gains.Monitor = c.session.Gains().Monitor()
	default:
		return fmt.Errorf("unknown gain %q", name)
	}
	return nil
}

func (c *commander) status() {
	st := c.session.Status()
	g := c.session.Gains()

	fmt.Fprintf(c.out, "running: %t  mode: %s  owner: %s\n", c.session.Running(), st.Mode, st.Owner)
	fmt.Fprintf(c.out, "gains: mic %.2f  playback %.2f  monitor %.2f\n", g.Mic(), g.Playback(), g.Monitor())

	slots := c.session.Slots()
	for _, id := range slices.Sorted(maps.Keys(slots)) {
		fmt.Fprintf(c.out, "slot %s: %s\n", id, slots[id])
	}
}

func (c *commander) stats() error {
	families, err := c.session.Metrics().Registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var v float64
			switch {
			case m.GetCounter() != nil:
				v = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				v = m.GetGauge().GetValue()
			}
			labels := ""
			for _, lp := range m.GetLabel() {
				labels += fmt.Sprintf("{%s=%q}", lp.GetName(), lp.GetValue())
			}
			fmt.Fprintf(c.out, "%s%s %g\n", mf.GetName(), labels, v)
		}
	}
	return nil
}

// applyConfig takes gains, music and slots from a reloaded config file.
func (c *commander) applyConfig(next *config.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session.SetMicGain(next.Gains.Mic)
	c.session.SetPlaybackGain(next.Gains.Playback)
	c.session.SetMonitorGain(next.Gains.Monitor)
	c.session.SetMusic(next.Music)
	c.session.SetSlots(next.Slots)

	c.cfg.Gains = next.Gains
	c.cfg.Music = next.Music
	c.cfg.Slots = next.Slots
}

func (c *commander) save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Save(path)
}
