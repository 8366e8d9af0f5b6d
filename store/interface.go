package store

import (
	"errors"
	"time"

	"github.com/routineapp/routine/models"
)

// ErrNotFound is returned when a referenced task does not exist.
// Callers resolving a weak task reference (e.g. the session aggregator)
// treat it as a degraded state, not a fatal error.
var ErrNotFound = errors.New("task not found")

// Stats is the derived, read-only statistics view over the task store.
type Stats struct {
	TotalTasks          int
	CompletedTasks      int
	CompletedToday      int
	TotalPomodoros      int
	LatestPomodoroTask  string
	LatestPomodoroCount int
}

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// CreateTask adds a new task. An empty ID is assigned by the store;
	// CreatedAt/UpdatedAt are always set by the store. It returns the
	// task as persisted.
	CreateTask(task models.Task) (models.Task, error)

	// GetTask retrieves a task by ID, or ErrNotFound.
	GetTask(id string) (models.Task, error)

	// UpdateTask applies the given field updates to an existing task.
	// Allowed keys: title, category, priority, tags, dueDate, subtasks,
	// recurring. Completion state and pomodoro counters have dedicated
	// mutation paths and are rejected here.
	UpdateTask(id string, updates map[string]interface{}) (models.Task, error)

	// DeleteTask removes a task by ID. Hard delete, no tombstone.
	DeleteTask(id string) error

	// MarkTaskDone marks a task as completed, setting CompletedAt.
	MarkTaskDone(id string) (models.Task, error)

	// RecordPomodoro increments the task's pomodoro count and stamps
	// LastPomodoroAt. This is the only path that mutates those fields.
	RecordPomodoro(id string, at time.Time) (models.Task, error)

	// ListTasks retrieves tasks, optionally filtered and sorted.
	// Natural order is pending first, newest first within each group.
	ListTasks(filterFn func(models.Task) bool, sortFn func([]models.Task) []models.Task) ([]models.Task, error)

	// ListOverdue returns pending tasks whose due date is before now.
	ListOverdue(now time.Time) ([]models.Task, error)

	// FindTaskIDsByPrefix returns IDs beginning with the given prefix,
	// used for short-ID resolution on the command line.
	FindTaskIDsByPrefix(prefix string) ([]string, error)

	// ImportTask inserts or fully replaces a task row, preserving the
	// given counters and timestamps. Only the CSV import and restore
	// paths may use it.
	ImportTask(task models.Task) error

	// Stats computes the derived statistics view.
	Stats(now time.Time) (Stats, error)

	// Backup copies the underlying database to the destination path.
	Backup(destinationPath string) error

	// Close releases the underlying database handle.
	Close() error
}

// StudyTimeStore persists the single cumulative study-time scalar,
// independent of the task store.
type StudyTimeStore interface {
	// Load returns the cumulative study seconds, 0 if never saved.
	Load() (int64, error)

	// Save persists the cumulative study seconds.
	Save(totalSeconds int64) error
}
