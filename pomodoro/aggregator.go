package pomodoro

import (
	"errors"
	"fmt"
	"time"

	"github.com/routineapp/routine/models"
)

// TaskRecorder is the slice of the task store the aggregator needs.
type TaskRecorder interface {
	RecordPomodoro(id string, at time.Time) (models.Task, error)
}

// StudyTimeStore persists the cumulative study-time scalar.
type StudyTimeStore interface {
	Load() (int64, error)
	Save(totalSeconds int64) error
}

// Aggregator turns completed focus phases into task pomodoro counts and
// cumulative study time. Both writes are best-effort and independent: a
// vanished task never blocks the study-time credit, and a failed
// study-time save is held in memory and retried on the next completion.
type Aggregator struct {
	tasks TaskRecorder
	study StudyTimeStore

	total   int64 // persisted cumulative seconds, once loaded
	pending int64 // credited seconds not yet persisted
	loaded  bool
}

// NewAggregator creates an aggregator over the given stores.
func NewAggregator(tasks TaskRecorder, study StudyTimeStore) *Aggregator {
	return &Aggregator{tasks: tasks, study: study}
}

// HandlePhaseCompleted processes one phase-completion event. Break
// phases are ignored. For focus phases it records the pomodoro on the
// attached task (if any) and credits the configured focus duration to
// the study-time total. The returned error is a degraded-state warning;
// the caller keeps ticking regardless.
func (a *Aggregator) HandlePhaseCompleted(ev PhaseCompleted) error {
	if ev.Phase != PhaseFocus {
		return nil
	}

	var warns []error
	if ev.TaskID != "" {
		if _, err := a.tasks.RecordPomodoro(ev.TaskID, ev.At); err != nil {
			warns = append(warns, fmt.Errorf("record pomodoro: %w", err))
		}
	}

	a.pending += int64(ev.FocusSeconds)
	if err := a.flush(); err != nil {
		warns = append(warns, fmt.Errorf("save study time: %w", err))
	}

	return errors.Join(warns...)
}

// Total returns the cumulative study seconds including any credit not
// yet persisted.
func (a *Aggregator) Total() int64 {
	if !a.loaded {
		if total, err := a.study.Load(); err == nil {
			a.total = total
			a.loaded = true
		}
	}
	return a.total + a.pending
}

// Flush retries persisting any outstanding study-time credit. Called on
// shutdown so a transient save failure does not lose completed focus
// phases.
func (a *Aggregator) Flush() error {
	return a.flush()
}

func (a *Aggregator) flush() error {
	if !a.loaded {
		total, err := a.study.Load()
		if err != nil {
			// Without the persisted baseline a save would clobber it;
			// keep the credit pending and retry later.
			return fmt.Errorf("load study time: %w", err)
		}
		a.total = total
		a.loaded = true
	}
	if a.pending == 0 {
		return nil
	}
	if err := a.study.Save(a.total + a.pending); err != nil {
		return err
	}
	a.total += a.pending
	a.pending = 0
	return nil
}
