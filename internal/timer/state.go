// Package timer implements the break timer state machine.
package timer

import (
	"errors"

	"github.com/verte-zerg/stretchy/internal/model"
)

var (
	// ErrNotIdle is returned when a setting change is requested after the cycle started.
	// Paused and completed cycles must be reset first.
	ErrNotIdle = errors.New("timer is not idle")
	// ErrInvalidDuration is returned for durations that are not positive or not offered.
	ErrInvalidDuration = errors.New("invalid duration")
	// ErrInvalidMode is returned for modes other than up and down.
	ErrInvalidMode = errors.New("invalid mode")
)

// Phase is the lifecycle position of a timer cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhasePaused
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// State is a snapshot of the timer. Elapsed never exceeds Target.
type State struct {
	Mode    model.Mode
	Elapsed int
	Target  int
	Phase   Phase
}

// Running reports whether ticks advance the timer.
func (s State) Running() bool {
	return s.Phase == PhaseRunning
}

// Completed reports whether the current cycle reached its target.
func (s State) Completed() bool {
	return s.Phase == PhaseCompleted
}

// Remaining returns the seconds left in the cycle.
func (s State) Remaining() int {
	if s.Elapsed >= s.Target {
		return 0
	}
	return s.Target - s.Elapsed
}

// Display returns the value shown to the user for the current mode.
func (s State) Display() int {
	if s.Mode == model.ModeDown {
		return s.Remaining()
	}
	return s.Elapsed
}

// Progress returns the completed fraction of the cycle in [0, 1].
func (s State) Progress() float64 {
	if s.Target <= 0 {
		return 0
	}
	p := float64(s.Elapsed) / float64(s.Target)
	if p > 1 {
		return 1
	}
	return p
}

// EventKind identifies a timer event.
type EventKind int

const (
	EventStart EventKind = iota
	EventPause
	EventReset
	EventTick
	EventSetDuration
	EventSetMode
)

// Event is an input to Apply. Seconds and Mode are only read by the setter events.
type Event struct {
	Kind    EventKind
	Seconds int
	Mode    model.Mode
}

// Effect is a bit set of side effects requested by a transition.
type Effect uint8

const (
	EffectStartTicks Effect = 1 << iota
	EffectStopTicks
	EffectCompleted
)

// Has reports whether e contains flag.
func (e Effect) Has(flag Effect) bool {
	return e&flag != 0
}

// Apply computes the next state for an event. It never mutates its input; a rejected
// event returns the original state together with the reason.
func Apply(s State, ev Event) (State, Effect, error) {
	switch ev.Kind {
	case EventStart:
		switch s.Phase {
		case PhaseIdle:
			s.Elapsed = 0
			s.Phase = PhaseRunning
			return s, EffectStartTicks, nil
		case PhasePaused:
			s.Phase = PhaseRunning
			return s, EffectStartTicks, nil
		default:
			return s, 0, nil
		}
	case EventPause:
		if s.Phase != PhaseRunning {
			return s, 0, nil
		}
		s.Phase = PhasePaused
		return s, EffectStopTicks, nil
	case EventReset:
		s.Elapsed = 0
		s.Phase = PhaseIdle
		return s, EffectStopTicks, nil
	case EventTick:
		if s.Phase != PhaseRunning {
			return s, 0, nil
		}
		s.Elapsed++
		if s.Elapsed < s.Target {
			return s, 0, nil
		}
		s.Elapsed = s.Target
		s.Phase = PhaseCompleted
		return s, EffectStopTicks | EffectCompleted, nil
	case EventSetDuration:
		if s.Phase != PhaseIdle {
			return s, 0, ErrNotIdle
		}
		if ev.Seconds <= 0 {
			return s, 0, ErrInvalidDuration
		}
		s.Target = ev.Seconds
		s.Elapsed = 0
		return s, 0, nil
	case EventSetMode:
		if s.Phase != PhaseIdle {
			return s, 0, ErrNotIdle
		}
		if !ev.Mode.Valid() {
			return s, 0, ErrInvalidMode
		}
		s.Mode = ev.Mode
		return s, 0, nil
	default:
		return s, 0, nil
	}
}
