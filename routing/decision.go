// SPDX-License-Identifier: EPL-2.0

package routing

// Decision is what the controller should do with a playback request.
type Decision uint8

const (
	// DecisionStart: nothing is playing, start the requested owner.
	DecisionStart Decision = iota
	// DecisionCancel: the requester already owns playback, stop it.
	DecisionCancel
	// DecisionBusy: a different slot is playing, leave it alone.
	DecisionBusy
	// DecisionIgnore: a slot was requested while music plays.
	DecisionIgnore
	// DecisionPreempt: music was requested while a slot plays. Cancel the
	// slot, then start music.
	DecisionPreempt
)

func (d Decision) String() string {
	switch d {
	case DecisionStart:
		return "start"
	case DecisionCancel:
		return "cancel"
	case DecisionBusy:
		return "busy"
	case DecisionIgnore:
		return "ignore"
	case DecisionPreempt:
		return "preempt"
	default:
		return "unknown"
	}
}

// Decide applies the precedence rules. It has no side effects. A zero
// request is always ignored.
func Decide(current, req Owner) Decision {
	switch {
	case req.IsZero():
		return DecisionIgnore
	case current.IsZero():
		return DecisionStart
	case current == req:
		return DecisionCancel
	case req.Kind == OwnerMusic:
		return DecisionPreempt
	case current.Kind == OwnerMusic:
		return DecisionIgnore
	default:
		return DecisionBusy
	}
}

// Outcome is the caller-visible result of a playback request.
type Outcome uint8

const (
	Started Outcome = iota
	Cancelled
	Busy
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Started:
		return "started"
	case Cancelled:
		return "cancelled"
	case Busy:
		return "busy"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}
