// Package engine drives a single timed typing attempt.
//
// The state machine is a pure reducer over Session values; Controller wraps it with the text
// provider, result repository and tick source.
package engine

import (
	"slices"
	"time"

	"github.com/saurabhk79/TypeRush/internal/model"
	"github.com/saurabhk79/TypeRush/internal/stats"
)

// State is the lifecycle phase of a session.
type State int

const (
	StateIdle State = iota
	StateActive
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Session is one attempt. Values are treated as immutable by Reduce.
type Session struct {
	ReferenceText    []rune
	TypedText        []rune
	State            State
	DurationBudget   int
	RemainingSeconds int
	StartedAt        time.Time
	Stats            model.Stats
	Progression      []int
	// Result is set once, on the transition to StateFinished, when anything was typed.
	Result *model.Result
}

// NewSession returns an idle session for the given reference text and budget in seconds.
func NewSession(text string, budget int) Session {
	return Session{
		ReferenceText:    []rune(text),
		TypedText:        []rune{},
		State:            StateIdle,
		DurationBudget:   budget,
		RemainingSeconds: budget,
		Stats:            stats.Compute(nil, nil, 0),
	}
}

// ElapsedSeconds is the number of ticks consumed from the budget.
func (s Session) ElapsedSeconds() int {
	return s.DurationBudget - s.RemainingSeconds
}

// Progress is the typed share of the reference text, 0..1.
func (s Session) Progress() float64 {
	if len(s.ReferenceText) == 0 {
		return 0
	}
	return float64(len(s.TypedText)) / float64(len(s.ReferenceText))
}

// Event is an input to Reduce.
type Event interface {
	isEvent()
}

// StartEvent begins a fresh attempt on Text.
type StartEvent struct {
	Text string
	At   time.Time
}

// InputEvent proposes a new value for the typed text.
type InputEvent struct {
	Text string
	At   time.Time
}

// TickEvent marks one elapsed second.
type TickEvent struct {
	At time.Time
}

// FinishEvent ends the attempt immediately.
type FinishEvent struct {
	At time.Time
}

// ResetEvent discards the attempt and loads Text.
type ResetEvent struct {
	Text string
}

// DurationEvent changes the budget outside an active attempt.
type DurationEvent struct {
	Seconds int
}

func (StartEvent) isEvent()    {}
func (InputEvent) isEvent()    {}
func (TickEvent) isEvent()     {}
func (FinishEvent) isEvent()   {}
func (ResetEvent) isEvent()    {}
func (DurationEvent) isEvent() {}

// Reduce applies ev to s and returns the next session. s is never modified.
func Reduce(s Session, ev Event) Session {
	switch ev := ev.(type) {
	case StartEvent:
		return start(s, ev)
	case InputEvent:
		return input(s, ev)
	case TickEvent:
		return tick(s, ev)
	case FinishEvent:
		if s.State != StateActive {
			return s
		}
		return finish(s, ev.At)
	case ResetEvent:
		return NewSession(ev.Text, s.DurationBudget)
	case DurationEvent:
		return setDuration(s, ev)
	default:
		return s
	}
}

func start(s Session, ev StartEvent) Session {
	if s.State == StateActive {
		return s
	}
	next := NewSession(ev.Text, s.DurationBudget)
	next.State = StateActive
	next.StartedAt = ev.At
	return next
}

func input(s Session, ev InputEvent) Session {
	if s.State == StateFinished {
		return s
	}
	proposed := []rune(ev.Text)
	if len(proposed) > len(s.ReferenceText) {
		return s
	}
	if s.State == StateIdle && len(proposed) > 0 {
		if s.RemainingSeconds <= 0 {
			return s
		}
		s.State = StateActive
		s.StartedAt = ev.At
		s.Progression = nil
	}
	s.TypedText = proposed
	if s.State == StateIdle {
		return s
	}
	s.Stats = stats.Compute(s.ReferenceText, s.TypedText, ev.At.Sub(s.StartedAt))
	if len(s.ReferenceText) > 0 && len(s.TypedText) == len(s.ReferenceText) {
		return finish(s, ev.At)
	}
	return s
}

func tick(s Session, ev TickEvent) Session {
	if s.State != StateActive {
		return s
	}
	s.RemainingSeconds = max(s.RemainingSeconds-1, 0)
	if len(s.TypedText) > 0 {
		s.Progression = stats.AppendSample(s.Progression, s.TypedText, s.ElapsedSeconds())
	}
	if s.RemainingSeconds == 0 {
		return finish(s, ev.At)
	}
	return s
}

func finish(s Session, at time.Time) Session {
	if s.State == StateFinished {
		return s
	}
	s.State = StateFinished
	if s.Stats.Keystrokes == 0 {
		return s
	}
	s.Result = &model.Result{
		Stats:          cloneStats(s.Stats),
		Progression:    slices.Clone(nonNil(s.Progression)),
		DurationUsed:   s.ElapsedSeconds(),
		DurationBudget: s.DurationBudget,
		ReferenceText:  string(s.ReferenceText),
		StartedAt:      s.StartedAt,
		EndedAt:        at,
	}
	return s
}

func setDuration(s Session, ev DurationEvent) Session {
	if s.State == StateActive || !model.ValidDuration(ev.Seconds) {
		return s
	}
	s.DurationBudget = ev.Seconds
	if s.State == StateIdle {
		s.RemainingSeconds = ev.Seconds
	}
	return s
}

func cloneStats(st model.Stats) model.Stats {
	errs := make(map[string]int, len(st.Errors))
	for ch, count := range st.Errors {
		errs[ch] = count
	}
	st.Errors = errs
	return st
}

func nonNil(values []int) []int {
	if values == nil {
		return []int{}
	}
	return values
}
