package pomodoro

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/routineapp/routine/models"
)

type fakeRecorder struct {
	calls []string
	err   error
}

func (r *fakeRecorder) RecordPomodoro(id string, at time.Time) (models.Task, error) {
	r.calls = append(r.calls, id)
	if r.err != nil {
		return models.Task{}, r.err
	}
	return models.Task{ID: id, PomodoroCount: len(r.calls)}, nil
}

type fakeStudyStore struct {
	total   int64
	loadErr error
	saveErr error
	saves   int
}

func (s *fakeStudyStore) Load() (int64, error) {
	if s.loadErr != nil {
		return 0, s.loadErr
	}
	return s.total, nil
}

func (s *fakeStudyStore) Save(total int64) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.total = total
	s.saves++
	return nil
}

func focusEvent(taskID string, seconds int) PhaseCompleted {
	return PhaseCompleted{
		Phase:        PhaseFocus,
		TaskID:       taskID,
		At:           time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		FocusSeconds: seconds,
	}
}

func TestAggregator_FocusWithTask(t *testing.T) {
	rec := &fakeRecorder{}
	study := &fakeStudyStore{total: 100}
	agg := NewAggregator(rec, study)

	if err := agg.HandlePhaseCompleted(focusEvent("task-1", 1500)); err != nil {
		t.Fatalf("unexpected warning: %v", err)
	}

	if len(rec.calls) != 1 || rec.calls[0] != "task-1" {
		t.Errorf("recorder calls = %v", rec.calls)
	}
	if study.total != 1600 {
		t.Errorf("study total = %d, want 1600", study.total)
	}
	if agg.Total() != 1600 {
		t.Errorf("Total() = %d, want 1600", agg.Total())
	}
}

func TestAggregator_UnattachedStillCreditsStudyTime(t *testing.T) {
	rec := &fakeRecorder{}
	study := &fakeStudyStore{}
	agg := NewAggregator(rec, study)

	if err := agg.HandlePhaseCompleted(focusEvent("", 1500)); err != nil {
		t.Fatalf("unexpected warning: %v", err)
	}

	if len(rec.calls) != 0 {
		t.Errorf("recorder should not be called for unattached sessions, got %v", rec.calls)
	}
	if study.total != 1500 {
		t.Errorf("study total = %d, want 1500", study.total)
	}
}

func TestAggregator_BreaksAreIgnored(t *testing.T) {
	rec := &fakeRecorder{}
	study := &fakeStudyStore{}
	agg := NewAggregator(rec, study)

	for _, phase := range []Phase{PhaseShortBreak, PhaseLongBreak} {
		ev := focusEvent("task-1", 0)
		ev.Phase = phase
		if err := agg.HandlePhaseCompleted(ev); err != nil {
			t.Fatalf("unexpected warning for %s: %v", phase, err)
		}
	}

	if len(rec.calls) != 0 || study.saves != 0 {
		t.Error("breaks must not touch either store")
	}
}

func TestAggregator_VanishedTaskStillCreditsStudyTime(t *testing.T) {
	notFound := errors.New("task not found")
	rec := &fakeRecorder{err: fmt.Errorf("record: %w", notFound)}
	study := &fakeStudyStore{}
	agg := NewAggregator(rec, study)

	err := agg.HandlePhaseCompleted(focusEvent("gone", 1500))
	if err == nil {
		t.Fatal("expected a degraded-state warning")
	}
	if !errors.Is(err, notFound) {
		t.Errorf("warning should wrap the recorder error, got %v", err)
	}
	if study.total != 1500 {
		t.Errorf("study credit must survive a vanished task, total = %d", study.total)
	}
}

func TestAggregator_SaveFailureRetriesNextCompletion(t *testing.T) {
	rec := &fakeRecorder{}
	study := &fakeStudyStore{saveErr: errors.New("disk full")}
	agg := NewAggregator(rec, study)

	if err := agg.HandlePhaseCompleted(focusEvent("", 100)); err == nil {
		t.Fatal("expected save failure warning")
	}
	if agg.Total() != 100 {
		t.Errorf("pending credit must show in Total(), got %d", agg.Total())
	}

	study.saveErr = nil
	if err := agg.HandlePhaseCompleted(focusEvent("", 50)); err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
	if study.total != 150 {
		t.Errorf("retry must persist both credits, total = %d", study.total)
	}
}

func TestAggregator_LoadFailureNeverClobbersBaseline(t *testing.T) {
	study := &fakeStudyStore{total: 900, loadErr: errors.New("locked")}
	agg := NewAggregator(&fakeRecorder{}, study)

	if err := agg.HandlePhaseCompleted(focusEvent("", 100)); err == nil {
		t.Fatal("expected load failure warning")
	}
	if study.saves != 0 {
		t.Error("must not save without the persisted baseline")
	}

	study.loadErr = nil
	if err := agg.Flush(); err != nil {
		t.Fatalf("flush after recovery: %v", err)
	}
	if study.total != 1000 {
		t.Errorf("total = %d, want 1000", study.total)
	}
}

func TestAggregator_FlushWithNothingPending(t *testing.T) {
	study := &fakeStudyStore{total: 42}
	agg := NewAggregator(&fakeRecorder{}, study)

	if err := agg.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if study.saves != 0 {
		t.Error("flush with nothing pending must not write")
	}
}
