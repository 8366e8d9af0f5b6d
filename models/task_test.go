package models

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func validTask() Task {
	now := time.Now().UTC()
	return Task{
		ID:        uuid.NewString(),
		Title:     "Write tests",
		Priority:  PriorityMedium,
		Recurring: RecurNone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestValidateTask(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr string
	}{
		{"valid", func(*Task) {}, ""},
		{"missing title", func(task *Task) { task.Title = "" }, "Title"},
		{"bad priority", func(task *Task) { task.Priority = "urgent" }, "Priority"},
		{"bad recurrence", func(task *Task) { task.Recurring = "monthly" }, "Recurring"},
		{"bad id", func(task *Task) { task.ID = "42" }, "ID"},
		{"negative pomodoros", func(task *Task) { task.PomodoroCount = -1 }, "PomodoroCount"},
		{
			"completed without timestamp",
			func(task *Task) { task.Completed = true },
			"no completion timestamp",
		},
		{
			"timestamp without completed",
			func(task *Task) { task.CompletedAt = &now },
			"not completed",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task := validTask()
			tc.mutate(&task)
			err := ValidateTask(task)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid task, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error mentioning %q, got nil", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestNewTaskDefaults(t *testing.T) {
	task := NewTask("read a chapter")

	if task.Priority != PriorityMedium {
		t.Errorf("expected medium priority, got %s", task.Priority)
	}
	if task.Recurring != RecurNone {
		t.Errorf("expected no recurrence, got %s", task.Recurring)
	}
	if task.Completed {
		t.Error("new tasks must start pending")
	}
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	task := validTask()
	if task.IsOverdue(now) {
		t.Error("task without due date cannot be overdue")
	}

	task.DueDate = &past
	if !task.IsOverdue(now) {
		t.Error("pending task past its due date is overdue")
	}

	task.DueDate = &future
	if task.IsOverdue(now) {
		t.Error("future due date is not overdue")
	}

	task.DueDate = &past
	task.Completed = true
	if task.IsOverdue(now) {
		t.Error("completed tasks are never overdue")
	}
}
