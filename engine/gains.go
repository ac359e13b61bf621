// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"math"
	"sync/atomic"

	"github.com/ik5/voxswitch/utils"
)

// gain is a float64 stored as atomic bits so callbacks read it lock free.
type gain struct{ bits atomic.Uint64 }

func (g *gain) load() float64   { return math.Float64frombits(g.bits.Load()) }
func (g *gain) store(v float64) { g.bits.Store(math.Float64bits(utils.Clamp01(v))) }

// Gains holds the three user gain factors. Every value is clamped to [0,1]
// on write.
type Gains struct {
	mic      gain
	playback gain
	monitor  gain
}

func NewGains(mic, playback, monitor float64) *Gains {
	g := &Gains{}
	g.SetMic(mic)
	g.SetPlayback(playback)
	g.SetMonitor(monitor)
	return g
}

func (g *Gains) Mic() float64      { return g.mic.load() }
func (g *Gains) Playback() float64 { return g.playback.load() }
func (g *Gains) Monitor() float64  { return g.monitor.load() }

func (g *Gains) SetMic(v float64)      { g.mic.store(v) }
func (g *Gains) SetPlayback(v float64) { g.playback.store(v) }
func (g *Gains) SetMonitor(v float64)  { g.monitor.store(v) }
