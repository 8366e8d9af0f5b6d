package pomodoro

import (
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type recordingSink struct {
	events []PhaseCompleted
}

func (s *recordingSink) Notify(ev PhaseCompleted) { s.events = append(s.events, ev) }

func testConfig() Config {
	return Config{FocusSeconds: 10, ShortBreakSeconds: 3, LongBreakSeconds: 6, Cadence: 4}
}

func newTestMachine(t *testing.T) (*Machine, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	clock := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	m, err := NewMachine(testConfig(), clock, sink)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	return m, sink
}

// runFocusPhase starts the machine and ticks until the focus phase
// completes, returning the completion event.
func runFocusPhase(t *testing.T, m *Machine) *PhaseCompleted {
	t.Helper()
	m.Start()
	for i := 0; i < 1000; i++ {
		if ev := m.Tick(1); ev != nil {
			return ev
		}
	}
	t.Fatal("phase never completed")
	return nil
}

func TestNewMachine_InitialState(t *testing.T) {
	m, _ := newTestMachine(t)

	if m.Phase() != PhaseFocus {
		t.Errorf("initial phase = %s, want focus", m.Phase())
	}
	if m.Running() {
		t.Error("machine must start paused")
	}
	if m.Remaining() != 10 {
		t.Errorf("remaining = %d, want 10", m.Remaining())
	}
}

func TestNewMachine_RejectsInvalidConfig(t *testing.T) {
	if _, err := NewMachine(Config{}, nil, nil); err == nil {
		t.Fatal("expected error for zero config")
	}
	if _, err := NewMachine(Config{FocusSeconds: -5, ShortBreakSeconds: 1, LongBreakSeconds: 1, Cadence: 1}, nil, nil); err == nil {
		t.Fatal("expected error for negative duration")
	}
}

func TestTick_PausedIsNoOp(t *testing.T) {
	m, _ := newTestMachine(t)

	if ev := m.Tick(5); ev != nil {
		t.Fatal("paused tick must not complete a phase")
	}
	if m.Remaining() != 10 {
		t.Errorf("paused tick changed remaining to %d", m.Remaining())
	}
}

func TestTick_NeverGoesNegative(t *testing.T) {
	m, _ := newTestMachine(t)
	m.Start()

	// A huge elapsed value (system sleep, suspended terminal) clamps to
	// zero and completes exactly one phase.
	ev := m.Tick(10_000)
	if ev == nil {
		t.Fatal("expected phase completion")
	}
	if m.Remaining() < 0 {
		t.Errorf("remaining went negative: %d", m.Remaining())
	}
	if m.Remaining() != m.PhaseLength() {
		t.Errorf("new phase should start full: %d != %d", m.Remaining(), m.PhaseLength())
	}
}

func TestFocusCompletion_EntersShortBreakPaused(t *testing.T) {
	m, sink := newTestMachine(t)
	m.Attach("task-1")

	ev := runFocusPhase(t, m)

	if ev.Phase != PhaseFocus {
		t.Errorf("event phase = %s", ev.Phase)
	}
	if ev.TaskID != "task-1" {
		t.Errorf("event task = %q", ev.TaskID)
	}
	if ev.FocusSeconds != 10 {
		t.Errorf("event focus seconds = %d", ev.FocusSeconds)
	}
	if m.Phase() != PhaseShortBreak {
		t.Errorf("next phase = %s, want short break", m.Phase())
	}
	if m.Running() {
		t.Error("phase entry must pause the machine")
	}
	if len(sink.events) != 1 {
		t.Errorf("sink got %d events, want 1", len(sink.events))
	}
}

func TestCadence_EveryFourthFocusGetsLongBreak(t *testing.T) {
	m, _ := newTestMachine(t)

	var phases []Phase
	for i := 0; i < 4; i++ {
		runFocusPhase(t, m)
		phases = append(phases, m.Phase())
		m.SwitchPhase(PhaseFocus)
	}

	want := []Phase{PhaseShortBreak, PhaseShortBreak, PhaseShortBreak, PhaseLongBreak}
	for i := range want {
		if phases[i] != want[i] {
			t.Errorf("after focus %d: phase = %s, want %s", i+1, phases[i], want[i])
		}
	}
	if m.FocusStreak() != 0 {
		t.Errorf("streak after long break = %d, want 0", m.FocusStreak())
	}
}

func TestBreakCompletion_ReturnsToFocus(t *testing.T) {
	m, _ := newTestMachine(t)
	m.SwitchPhase(PhaseShortBreak)

	m.Start()
	var ev *PhaseCompleted
	for ev == nil {
		ev = m.Tick(1)
	}

	if ev.Phase != PhaseShortBreak {
		t.Errorf("event phase = %s", ev.Phase)
	}
	if ev.FocusSeconds != 0 {
		t.Errorf("break events carry no focus credit, got %d", ev.FocusSeconds)
	}
	if m.Phase() != PhaseFocus {
		t.Errorf("after break phase = %s, want focus", m.Phase())
	}
}

func TestSwitchPhase_PreservesStreakAndRunning(t *testing.T) {
	m, sink := newTestMachine(t)
	runFocusPhase(t, m) // streak is now 1

	m.Start()
	m.SwitchPhase(PhaseLongBreak)

	if m.Phase() != PhaseLongBreak {
		t.Errorf("phase = %s", m.Phase())
	}
	if !m.Running() {
		t.Error("manual switch must preserve the running state")
	}
	if m.FocusStreak() != 1 {
		t.Errorf("manual switch must preserve the streak, got %d", m.FocusStreak())
	}
	if len(sink.events) != 1 {
		t.Error("manual switch must not emit a completion event")
	}
}

func TestDetach_MidPhaseCompletionCarriesNoTask(t *testing.T) {
	m, _ := newTestMachine(t)
	m.Attach("task-a")
	m.Start()

	// Partway through the focus phase: pause, detach, resume.
	m.Tick(4)
	m.Pause()
	m.Detach()
	m.Start()

	var ev *PhaseCompleted
	for ev == nil {
		ev = m.Tick(1)
	}

	if ev.TaskID != "" {
		t.Errorf("detached completion carried task %q", ev.TaskID)
	}
	if m.AttachedTaskID() != "" {
		t.Errorf("attachment came back: %q", m.AttachedTaskID())
	}

	// The task's pomodoro count stays untouched: the aggregator never
	// reaches the recorder for an unattached event.
	rec := &fakeRecorder{}
	study := &fakeStudyStore{}
	agg := NewAggregator(rec, study)
	if err := agg.HandlePhaseCompleted(*ev); err != nil {
		t.Fatalf("unexpected warning: %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("detached session recorded a pomodoro: %v", rec.calls)
	}
	if study.total != 10 {
		t.Errorf("study credit must survive the detach, total = %d", study.total)
	}
}

func TestReset(t *testing.T) {
	m, _ := newTestMachine(t)
	m.Attach("task-1")
	runFocusPhase(t, m)

	m.Reset()

	if m.Phase() != PhaseFocus {
		t.Errorf("phase after reset = %s", m.Phase())
	}
	if m.Running() {
		t.Error("reset must pause")
	}
	if m.FocusStreak() != 0 {
		t.Errorf("reset must clear the streak, got %d", m.FocusStreak())
	}
	if m.AttachedTaskID() != "task-1" {
		t.Error("reset must keep the task attachment")
	}
	if m.Remaining() != 10 {
		t.Errorf("remaining after reset = %d, want full focus", m.Remaining())
	}
}

func TestSetConfig_AppliesOnNextPhaseEntry(t *testing.T) {
	m, _ := newTestMachine(t)
	m.Start()
	m.Tick(4) // mid-phase

	newCfg := Config{FocusSeconds: 20, ShortBreakSeconds: 7, LongBreakSeconds: 9, Cadence: 2}
	if err := m.SetConfig(newCfg); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}

	if m.Remaining() != 6 {
		t.Errorf("staged config must not touch the active countdown, remaining = %d", m.Remaining())
	}

	// Old focus duration still credited for the in-flight phase.
	var ev *PhaseCompleted
	for ev == nil {
		ev = m.Tick(1)
	}
	if ev.FocusSeconds != 10 {
		t.Errorf("in-flight phase credited %d seconds, want 10", ev.FocusSeconds)
	}

	// New short-break duration applies to the entered phase.
	if m.Remaining() != 7 {
		t.Errorf("new phase remaining = %d, want 7", m.Remaining())
	}
}

func TestSetConfig_RejectsInvalid(t *testing.T) {
	m, _ := newTestMachine(t)

	if err := m.SetConfig(Config{}); err == nil {
		t.Fatal("expected error for invalid config")
	}

	// Previous config still in force.
	m.SwitchPhase(PhaseShortBreak)
	if m.Remaining() != 3 {
		t.Errorf("remaining = %d, want 3 from the retained config", m.Remaining())
	}
}
