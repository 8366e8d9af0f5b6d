package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TaskPriority represents the priority levels of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Recurrence represents how often a task regenerates after completion.
type Recurrence string

const (
	RecurNone   Recurrence = "none"
	RecurDaily  Recurrence = "daily"
	RecurWeekly Recurrence = "weekly"
)

// Task represents a unit of work, optionally recurring, with pomodoro
// bookkeeping maintained by the session aggregator.
type Task struct {
	ID       string       `json:"id" validate:"required,uuid4"`
	Title    string       `json:"title" validate:"required,min=1,max=255"`
	Category string       `json:"category,omitempty"`
	Priority TaskPriority `json:"priority" validate:"required,oneof=low medium high"`
	Tags     []string     `json:"tags,omitempty"`
	DueDate  *time.Time   `json:"dueDate,omitempty"`

	Completed   bool       `json:"completed"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"` // set iff Completed

	// Subtasks are free-text lines with no completion state of their own.
	Subtasks  []string   `json:"subtasks,omitempty"`
	Recurring Recurrence `json:"recurring" validate:"required,oneof=none daily weekly"`

	// PomodoroCount and LastPomodoroAt are written only by the session
	// aggregator; UpdateTask refuses to touch them.
	PomodoroCount  int        `json:"pomodoroCount" validate:"min=0"`
	LastPomodoroAt *time.Time `json:"lastPomodoroAt,omitempty"`

	CreatedAt time.Time `json:"createdAt" validate:"required"`
	UpdatedAt time.Time `json:"updatedAt" validate:"required"`
}

// global validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	if validate == nil {
		validate = validator.New()
	}
	err := validate.Struct(s)
	if err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			errorMessages = append(errorMessages, fmt.Sprintf("Validation failed on field '%s': rule '%s' (value: '%v')", e.StructNamespace(), e.Tag(), e.Value()))
		}
		return fmt.Errorf("%s", strings.Join(errorMessages, "; "))
	}
	return nil
}

// ValidateTask validates a task's field constraints plus the completion
// invariant: CompletedAt is set if and only if Completed is true.
func ValidateTask(t Task) error {
	if err := ValidateStruct(t); err != nil {
		return err
	}
	if t.Completed && t.CompletedAt == nil {
		return fmt.Errorf("task %s is completed but has no completion timestamp", t.ID)
	}
	if !t.Completed && t.CompletedAt != nil {
		return fmt.Errorf("task %s has a completion timestamp but is not completed", t.ID)
	}
	return nil
}

// NewTask creates a pending task with defaults filled in. The store
// assigns the ID and timestamps on create if they are left empty.
func NewTask(title string) *Task {
	return &Task{
		Title:     title,
		Priority:  PriorityMedium,
		Recurring: RecurNone,
		Tags:      []string{},
		Subtasks:  []string{},
	}
}

// IsOverdue reports whether the task is pending with a due date in the past.
func (t Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}
