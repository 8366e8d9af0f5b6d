package models

import (
	"time"

	"github.com/google/uuid"
)

// NextOccurrence computes the next occurrence of a recurring task being
// marked complete. It returns nil for non-recurring tasks.
//
// The new occurrence is a copy of the input with a fresh ID, all
// completion and pomodoro bookkeeping cleared, and the due date advanced
// by one day (daily) or seven days (weekly) from the original due date.
// When the original has no due date, the interval is counted from the
// completion time instead.
func NextOccurrence(t Task, completedAt time.Time) *Task {
	var interval int
	switch t.Recurring {
	case RecurDaily:
		interval = 1
	case RecurWeekly:
		interval = 7
	default:
		return nil
	}

	base := completedAt
	if t.DueDate != nil {
		base = *t.DueDate
	}
	due := base.AddDate(0, 0, interval)

	next := t
	next.ID = uuid.NewString()
	next.Completed = false
	next.CompletedAt = nil
	next.StartedAt = nil
	next.PomodoroCount = 0
	next.LastPomodoroAt = nil
	next.DueDate = &due
	next.CreatedAt = time.Time{}
	next.UpdatedAt = time.Time{}

	// Copy slices so the occurrences do not share backing arrays.
	next.Tags = append([]string(nil), t.Tags...)
	next.Subtasks = append([]string(nil), t.Subtasks...)

	return &next
}
