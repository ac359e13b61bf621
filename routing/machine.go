// SPDX-License-Identifier: EPL-2.0

package routing

import "sync/atomic"

// Mode selects what feeds the frame queue.
type Mode int32

const (
	// Voice forwards the microphone.
	Voice Mode = iota
	// Playback forwards the scheduler and discards microphone input.
	Playback
)

func (m Mode) String() string {
	switch m {
	case Voice:
		return "voice"
	case Playback:
		return "playback"
	default:
		return "unknown"
	}
}

// State is a consistent view of mode and owner.
type State struct {
	Mode  Mode
	Owner Owner
}

var voiceState = &State{Mode: Voice}

// Machine holds the routing state. The zero value is not usable, use New.
type Machine struct {
	state atomic.Pointer[State]
}

func New() *Machine {
	m := &Machine{}
	m.state.Store(voiceState)
	return m
}

// Mode is safe to call from audio callbacks: one atomic load, no allocation.
func (m *Machine) Mode() Mode { return m.state.Load().Mode }

func (m *Machine) Owner() Owner { return m.state.Load().Owner }

func (m *Machine) Snapshot() State { return *m.state.Load() }

// Decide applies Decide to the current owner.
func (m *Machine) Decide(req Owner) Decision {
	return Decide(m.Owner(), req)
}

// Enter switches to Playback for owner. It fails if anyone holds Playback.
func (m *Machine) Enter(owner Owner) error {
	if owner.IsZero() {
		return ErrNoOwner
	}
	next := &State{Mode: Playback, Owner: owner}
	for {
		cur := m.state.Load()
		if cur.Mode == Playback {
			return ErrOwnerActive
		}
		if m.state.CompareAndSwap(cur, next) {
			return nil
		}
	}
}

// Leave returns to Voice if owner is the current owner. It reports whether
// the state changed.
func (m *Machine) Leave(owner Owner) bool {
	for {
		cur := m.state.Load()
		if cur.Mode != Playback || cur.Owner != owner {
			return false
		}
		if m.state.CompareAndSwap(cur, voiceState) {
			return true
		}
	}
}

// Reset forces Voice regardless of owner and returns the previous state.
func (m *Machine) Reset() State {
	return *m.state.Swap(voiceState)
}
