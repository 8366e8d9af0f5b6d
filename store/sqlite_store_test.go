package store

import (
	"database/sql"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routineapp/routine/models"
)

func newStore(t *testing.T) *SQLiteTaskStore {
	t.Helper()
	s, err := NewSQLiteTaskStore(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustCreate(t *testing.T, s *SQLiteTaskStore, title string) models.Task {
	t.Helper()
	task, err := s.CreateTask(*models.NewTask(title))
	require.NoError(t, err)
	return task
}

func TestCreateAndGetTask(t *testing.T) {
	s := newStore(t)

	due := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	task := models.NewTask("write report")
	task.Category = "Work"
	task.Priority = models.PriorityHigh
	task.Tags = []string{"q3", "writing"}
	task.Subtasks = []string{"outline", "draft"}
	task.DueDate = &due
	task.Recurring = models.RecurWeekly

	created, err := s.CreateTask(*task)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.GetTask(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "write report", got.Title)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	assert.Equal(t, []string{"q3", "writing"}, got.Tags)
	assert.Equal(t, []string{"outline", "draft"}, got.Subtasks)
	assert.Equal(t, models.RecurWeekly, got.Recurring)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))
}

func TestCreateTask_RejectsInvalid(t *testing.T) {
	s := newStore(t)

	bad := models.NewTask("")
	_, err := s.CreateTask(*bad)
	assert.Error(t, err)

	bad = models.NewTask("ok")
	bad.Priority = "urgent"
	_, err = s.CreateTask(*bad)
	assert.Error(t, err)
}

func TestGetTask_NotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.GetTask("ffffffff-ffff-4fff-8fff-ffffffffffff")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTask(t *testing.T) {
	s := newStore(t)
	created := mustCreate(t, s, "original")

	due := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	updated, err := s.UpdateTask(created.ID, map[string]interface{}{
		"title":     "renamed",
		"priority":  "high",
		"tags":      []string{"a", "b"},
		"dueDate":   due,
		"recurring": "daily",
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, models.PriorityHigh, updated.Priority)
	assert.Equal(t, models.RecurDaily, updated.Recurring)
	require.NotNil(t, updated.DueDate)

	// Clearing the due date.
	updated, err = s.UpdateTask(created.ID, map[string]interface{}{"dueDate": nil})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
}

func TestUpdateTask_RejectsGuardedFields(t *testing.T) {
	s := newStore(t)
	created := mustCreate(t, s, "guarded")

	for _, field := range []string{"completed", "pomodoros", "completedAt", "id"} {
		_, err := s.UpdateTask(created.ID, map[string]interface{}{field: 1})
		assert.Error(t, err, field)
	}

	// The failed updates must not have touched the row.
	got, err := s.GetTask(created.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Zero(t, got.PomodoroCount)
}

func TestDeleteTask(t *testing.T) {
	s := newStore(t)
	created := mustCreate(t, s, "doomed")

	require.NoError(t, s.DeleteTask(created.ID))
	_, err := s.GetTask(created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteTask(created.ID), ErrNotFound)
}

func TestMarkTaskDone(t *testing.T) {
	s := newStore(t)
	created := mustCreate(t, s, "finish me")

	done, err := s.MarkTaskDone(created.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)

	_, err = s.MarkTaskDone("ffffffff-ffff-4fff-8fff-ffffffffffff")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordPomodoro(t *testing.T) {
	s := newStore(t)
	created := mustCreate(t, s, "focus target")

	at := time.Date(2025, 6, 1, 10, 25, 0, 0, time.UTC)
	task, err := s.RecordPomodoro(created.ID, at)
	require.NoError(t, err)
	assert.Equal(t, 1, task.PomodoroCount)
	require.NotNil(t, task.LastPomodoroAt)
	assert.True(t, task.LastPomodoroAt.Equal(at))

	task, err = s.RecordPomodoro(created.ID, at.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, task.PomodoroCount)

	_, err = s.RecordPomodoro("ffffffff-ffff-4fff-8fff-ffffffffffff", at)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTasks_PendingFirst(t *testing.T) {
	s := newStore(t)
	first := mustCreate(t, s, "first")
	mustCreate(t, s, "second")
	_, err := s.MarkTaskDone(first.ID)
	require.NoError(t, err)

	tasks, err := s.ListTasks(nil, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "second", tasks[0].Title, "pending tasks come first")
	assert.Equal(t, "first", tasks[1].Title)
}

func TestListTasks_FilterAndSort(t *testing.T) {
	s := newStore(t)
	mustCreate(t, s, "apple")
	mustCreate(t, s, "banana")
	mustCreate(t, s, "avocado")

	tasks, err := s.ListTasks(func(task models.Task) bool {
		return task.Title[0] == 'a'
	}, nil)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	tasks, err = s.ListTasks(nil, func(ts []models.Task) []models.Task {
		sort.Slice(ts, func(i, j int) bool { return ts[i].Title < ts[j].Title })
		return ts
	})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "apple", tasks[0].Title)
	assert.Equal(t, "banana", tasks[2].Title)
}

func TestListOverdue(t *testing.T) {
	s := newStore(t)
	now := time.Now().UTC()

	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	overdueTask := models.NewTask("late")
	overdueTask.DueDate = &past
	created, err := s.CreateTask(*overdueTask)
	require.NoError(t, err)

	fine := models.NewTask("on time")
	fine.DueDate = &future
	_, err = s.CreateTask(*fine)
	require.NoError(t, err)

	doneLate := models.NewTask("late but done")
	doneLate.DueDate = &past
	doneCreated, err := s.CreateTask(*doneLate)
	require.NoError(t, err)
	_, err = s.MarkTaskDone(doneCreated.ID)
	require.NoError(t, err)

	overdue, err := s.ListOverdue(now)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, created.ID, overdue[0].ID)
}

func TestFindTaskIDsByPrefix(t *testing.T) {
	s := newStore(t)
	created := mustCreate(t, s, "target")
	mustCreate(t, s, "decoy")

	ids, err := s.FindTaskIDsByPrefix(created.ID[:8])
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, created.ID, ids[0])

	ids, err = s.FindTaskIDsByPrefix("zzzz")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestImportTask_PreservesCountersAndUpserts(t *testing.T) {
	s := newStore(t)

	at := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	task := models.Task{
		ID:             "33333333-3333-4333-8333-333333333333",
		Title:          "imported",
		Priority:       models.PriorityMedium,
		Recurring:      models.RecurNone,
		PomodoroCount:  7,
		LastPomodoroAt: &at,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	require.NoError(t, s.ImportTask(task))

	got, err := s.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.PomodoroCount)
	assert.True(t, got.CreatedAt.Equal(at), "import keeps original timestamps")

	task.Title = "imported again"
	require.NoError(t, s.ImportTask(task))

	tasks, err := s.ListTasks(nil, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "imported again", tasks[0].Title)
}

func TestStats(t *testing.T) {
	s := newStore(t)
	now := time.Now().UTC()

	a := mustCreate(t, s, "alpha")
	b := mustCreate(t, s, "beta")
	mustCreate(t, s, "gamma")

	_, err := s.MarkTaskDone(a.ID)
	require.NoError(t, err)
	_, err = s.RecordPomodoro(b.ID, now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = s.RecordPomodoro(b.ID, now)
	require.NoError(t, err)

	stats, err := s.Stats(now)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalTasks)
	assert.Equal(t, 1, stats.CompletedTasks)
	assert.Equal(t, 1, stats.CompletedToday)
	assert.Equal(t, 2, stats.TotalPomodoros)
	assert.Equal(t, "beta", stats.LatestPomodoroTask)
	assert.Equal(t, 2, stats.LatestPomodoroCount)
}

func TestStats_EmptyDatabase(t *testing.T) {
	s := newStore(t)

	stats, err := s.Stats(time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalTasks)
	assert.Empty(t, stats.LatestPomodoroTask)
}

func TestBackup(t *testing.T) {
	s := newStore(t)
	created := mustCreate(t, s, "survives backup")

	dest := filepath.Join(t.TempDir(), "backup.db")
	require.NoError(t, s.Backup(dest))

	restored, err := NewSQLiteTaskStore(dest)
	require.NoError(t, err)
	defer func() { _ = restored.Close() }()

	got, err := restored.GetTask(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "survives backup", got.Title)
}

// TestSchemaMigration opens a database created with the original column
// set and verifies the newer columns are added with sane defaults.
func TestSchemaMigration(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "old.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			completed INTEGER NOT NULL DEFAULT 0,
			due_date TEXT,
			subtasks TEXT NOT NULL DEFAULT '',
			started_at TEXT,
			completed_at TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		INSERT INTO tasks (id, title, created_at, updated_at) VALUES
			('44444444-4444-4444-8444-444444444444', 'legacy row',
			 '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z');
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := NewSQLiteTaskStore(dbPath)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, err := s.GetTask("44444444-4444-4444-8444-444444444444")
	require.NoError(t, err)
	assert.Equal(t, models.PriorityMedium, got.Priority)
	assert.Equal(t, models.RecurNone, got.Recurring)
	assert.Zero(t, got.PomodoroCount)
}
