// Package pomodoro implements the focus-timer session state machine and
// the aggregation of completed focus phases into task and study-time
// bookkeeping.
package pomodoro

import "time"

// Phase is one segment of the pomodoro cycle.
type Phase string

const (
	PhaseFocus      Phase = "focus"
	PhaseShortBreak Phase = "short_break"
	PhaseLongBreak  Phase = "long_break"
)

// Label returns the phase name as shown in the UI.
func (p Phase) Label() string {
	switch p {
	case PhaseShortBreak:
		return "Short Break"
	case PhaseLongBreak:
		return "Long Break"
	default:
		return "Focus"
	}
}

// PhaseCompleted is emitted when a phase counts down to zero.
type PhaseCompleted struct {
	Phase  Phase
	TaskID string // attached task at completion time, empty if none
	At     time.Time

	// FocusSeconds is the configured duration credited for a completed
	// focus phase; zero for breaks.
	FocusSeconds int
}

// NotificationSink receives phase-completion events. Implementations
// must not fail: audio or terminal problems degrade to silence.
type NotificationSink interface {
	Notify(ev PhaseCompleted)
}

// Machine is the pomodoro session state machine. It owns the current
// phase, the remaining countdown, and the attached task reference.
//
// A Machine is not safe for concurrent use: it is designed to be driven
// by a single tick source (the timer UI loop). Sessions are ephemeral —
// an in-flight countdown is never persisted.
type Machine struct {
	cfg     Config
	pending *Config // staged config, applied on next phase entry
	clock   Clock
	sink    NotificationSink

	phase       Phase
	phaseLength int
	remaining   int
	running     bool
	attachedID  string

	// focusStreak counts completed focus phases since the last long
	// break and drives the cadence rule.
	focusStreak int
}

// NewMachine creates a machine in the initial Focus/Paused state with a
// full focus countdown. The sink may be nil.
func NewMachine(cfg Config, clock Clock, sink NotificationSink) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Machine{
		cfg:         cfg,
		clock:       clock,
		sink:        sink,
		phase:       PhaseFocus,
		phaseLength: cfg.FocusSeconds,
		remaining:   cfg.FocusSeconds,
	}, nil
}

// Start begins (or resumes) the countdown. No-op if already running.
func (m *Machine) Start() {
	m.running = true
}

// Pause stops the countdown, preserving the remaining time. No-op if
// already paused.
func (m *Machine) Pause() {
	m.running = false
}

// Running reports whether the countdown is active.
func (m *Machine) Running() bool { return m.running }

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.phase }

// Remaining returns the seconds left in the current phase.
func (m *Machine) Remaining() int { return m.remaining }

// PhaseLength returns the full duration of the current phase as it was
// when the phase was entered. A config change mid-phase does not alter
// it.
func (m *Machine) PhaseLength() int { return m.phaseLength }

// FocusStreak returns the number of focus phases completed since the
// last long break.
func (m *Machine) FocusStreak() int { return m.focusStreak }

// Attach binds the session to a task by id. The reference is weak: it
// is resolved against the store only when a focus phase completes.
func (m *Machine) Attach(taskID string) {
	m.attachedID = taskID
}

// Detach clears the task attachment.
func (m *Machine) Detach() {
	m.attachedID = ""
}

// AttachedTaskID returns the attached task id, empty if none.
func (m *Machine) AttachedTaskID() string { return m.attachedID }

// SetConfig stages a new configuration. Invalid configurations are
// rejected and the previous values retained. The staged values take
// effect on the next phase entry; the active countdown is untouched.
func (m *Machine) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.pending = &cfg
	return nil
}

func (m *Machine) applyPending() {
	if m.pending != nil {
		m.cfg = *m.pending
		m.pending = nil
	}
}

// Tick advances the countdown by elapsed seconds, clamped at zero.
// Calling it while paused is a no-op. When the countdown reaches zero
// the phase completes and the resulting event is returned so the caller
// can route it to the aggregator; nil otherwise.
func (m *Machine) Tick(elapsed int) *PhaseCompleted {
	if !m.running || elapsed <= 0 {
		return nil
	}
	if elapsed >= m.remaining {
		m.remaining = 0
	} else {
		m.remaining -= elapsed
	}
	if m.remaining > 0 {
		return nil
	}
	return m.completePhase()
}

// completePhase emits the phase-completion event, advances to the next
// phase per the cadence rule, and auto-pauses so the user starts the
// next phase explicitly.
func (m *Machine) completePhase() *PhaseCompleted {
	ev := &PhaseCompleted{
		Phase:  m.phase,
		TaskID: m.attachedID,
		At:     m.clock.Now(),
	}

	next := PhaseFocus
	if m.phase == PhaseFocus {
		ev.FocusSeconds = m.cfg.FocusSeconds
		m.focusStreak++
		if m.focusStreak >= m.cfg.Cadence {
			next = PhaseLongBreak
			m.focusStreak = 0
		} else {
			next = PhaseShortBreak
		}
	}

	m.applyPending()
	m.enterPhase(next)
	m.running = false

	if m.sink != nil {
		m.sink.Notify(*ev)
	}
	return ev
}

// SwitchPhase is the manual phase override. It discards the remaining
// time of the current phase and does not emit a completion event. The
// focus streak is preserved. The running/paused state carries over, as
// it did in the original timer.
func (m *Machine) SwitchPhase(target Phase) {
	m.applyPending()
	m.enterPhase(target)
}

// Reset returns to a paused Focus phase with a full countdown and a
// cleared focus streak. The task attachment survives a reset.
func (m *Machine) Reset() {
	m.applyPending()
	m.enterPhase(PhaseFocus)
	m.running = false
	m.focusStreak = 0
}

func (m *Machine) enterPhase(p Phase) {
	m.phase = p
	m.phaseLength = m.cfg.PhaseDuration(p)
	m.remaining = m.phaseLength
}
