package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/routineapp/routine/models"
)

// SQLiteTaskStore implements TaskStore using SQLite for persistence.
// The driver serializes concurrent writers, which is sufficient for the
// single-user, last-writer-wins model.
type SQLiteTaskStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteTaskStore opens (or creates) the task database at dbPath and
// ensures the schema is current.
func NewSQLiteTaskStore(dbPath string) (*SQLiteTaskStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}

	s := &SQLiteTaskStore{db: db, path: dbPath}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// initSchema creates the tasks table if missing and adds any columns
// introduced after the table was first created, so databases written by
// older versions keep working.
func (s *SQLiteTaskStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
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

	CREATE INDEX IF NOT EXISTS idx_tasks_completed ON tasks(completed);
	CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	cols := make(map[string]bool)
	rows, err := s.db.Query("PRAGMA table_info(tasks)")
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notnull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			return err
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	additions := []struct{ column, ddl string }{
		{"priority", "ALTER TABLE tasks ADD COLUMN priority TEXT NOT NULL DEFAULT 'medium'"},
		{"tags", "ALTER TABLE tasks ADD COLUMN tags TEXT NOT NULL DEFAULT ''"},
		{"recurring", "ALTER TABLE tasks ADD COLUMN recurring TEXT NOT NULL DEFAULT 'none'"},
		{"pomodoros", "ALTER TABLE tasks ADD COLUMN pomodoros INTEGER NOT NULL DEFAULT 0"},
		{"last_pomodoro_at", "ALTER TABLE tasks ADD COLUMN last_pomodoro_at TEXT"},
	}
	for _, a := range additions {
		if !cols[a.column] {
			if _, err := s.db.Exec(a.ddl); err != nil {
				return fmt.Errorf("add column %s: %w", a.column, err)
			}
		}
	}
	return nil
}

const taskColumns = `id, title, category, priority, tags, due_date, completed,
	started_at, completed_at, subtasks, recurring, pomodoros, last_pomodoro_at,
	created_at, updated_at`

// nullTimeString returns nil for a nil time, RFC3339 string otherwise.
func nullTimeString(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// joinList flattens a string slice into the comma-separated form the
// original database used; splitList is its inverse.
func joinList(items []string) string {
	return strings.Join(items, ",")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(r rowScanner) (models.Task, error) {
	var (
		t                                       models.Task
		tags, subtasks                          string
		completed                               int
		dueDate, startedAt, completedAt, lastAt sql.NullString
		createdAt, updatedAt                    string
	)
	err := r.Scan(&t.ID, &t.Title, &t.Category, &t.Priority, &tags, &dueDate,
		&completed, &startedAt, &completedAt, &subtasks, &t.Recurring,
		&t.PomodoroCount, &lastAt, &createdAt, &updatedAt)
	if err != nil {
		return models.Task{}, err
	}

	t.Completed = completed != 0
	t.Tags = splitList(tags)
	t.Subtasks = splitList(subtasks)

	if t.DueDate, err = parseNullTime(dueDate); err != nil {
		return models.Task{}, fmt.Errorf("parse due date for %s: %w", t.ID, err)
	}
	if t.StartedAt, err = parseNullTime(startedAt); err != nil {
		return models.Task{}, fmt.Errorf("parse started_at for %s: %w", t.ID, err)
	}
	if t.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return models.Task{}, fmt.Errorf("parse completed_at for %s: %w", t.ID, err)
	}
	if t.LastPomodoroAt, err = parseNullTime(lastAt); err != nil {
		return models.Task{}, fmt.Errorf("parse last_pomodoro_at for %s: %w", t.ID, err)
	}
	if t.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return models.Task{}, fmt.Errorf("parse created_at for %s: %w", t.ID, err)
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return models.Task{}, fmt.Errorf("parse updated_at for %s: %w", t.ID, err)
	}
	return t, nil
}

// CreateTask adds a new task to the store.
func (s *SQLiteTaskStore) CreateTask(task models.Task) (models.Task, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.StartedAt == nil {
		task.StartedAt = &now
	}

	if err := models.ValidateTask(task); err != nil {
		return models.Task{}, fmt.Errorf("validation failed for new task: %w", err)
	}

	_, err := s.db.Exec(`
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Title, task.Category, task.Priority, joinList(task.Tags),
		nullTimeString(task.DueDate), boolToInt(task.Completed),
		nullTimeString(task.StartedAt), nullTimeString(task.CompletedAt),
		joinList(task.Subtasks), task.Recurring, task.PomodoroCount,
		nullTimeString(task.LastPomodoroAt),
		task.CreatedAt.Format(time.RFC3339), task.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task %q: %w", task.Title, err)
	}
	return task, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// GetTask retrieves a task by its unique identifier.
func (s *SQLiteTaskStore) GetTask(id string) (models.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return task, nil
}

// updatableColumns maps update keys to their SQL columns. Completion
// state and pomodoro counters are deliberately absent: they change only
// through MarkTaskDone and RecordPomodoro.
var updatableColumns = map[string]string{
	"title":     "title",
	"category":  "category",
	"priority":  "priority",
	"tags":      "tags",
	"dueDate":   "due_date",
	"subtasks":  "subtasks",
	"recurring": "recurring",
}

// UpdateTask modifies an existing task, applying the given updates.
func (s *SQLiteTaskStore) UpdateTask(id string, updates map[string]interface{}) (models.Task, error) {
	task, err := s.GetTask(id)
	if err != nil {
		return models.Task{}, err
	}

	for key, value := range updates {
		if _, ok := updatableColumns[key]; !ok {
			return models.Task{}, fmt.Errorf("field %q is not updatable", key)
		}
		switch key {
		case "title":
			task.Title, err = asString(key, value)
		case "category":
			task.Category, err = asString(key, value)
		case "priority":
			var v string
			if v, err = asString(key, value); err == nil {
				task.Priority = models.TaskPriority(v)
			}
		case "recurring":
			var v string
			if v, err = asString(key, value); err == nil {
				task.Recurring = models.Recurrence(v)
			}
		case "tags":
			task.Tags, err = asStringSlice(key, value)
		case "subtasks":
			task.Subtasks, err = asStringSlice(key, value)
		case "dueDate":
			task.DueDate, err = asTimePtr(key, value)
		}
		if err != nil {
			return models.Task{}, err
		}
	}

	task.UpdatedAt = time.Now().UTC()
	if err := models.ValidateTask(task); err != nil {
		return models.Task{}, fmt.Errorf("validation failed for updated task: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE tasks SET title = ?, category = ?, priority = ?, tags = ?,
			due_date = ?, subtasks = ?, recurring = ?, updated_at = ?
		WHERE id = ?`,
		task.Title, task.Category, task.Priority, joinList(task.Tags),
		nullTimeString(task.DueDate), joinList(task.Subtasks), task.Recurring,
		task.UpdatedAt.Format(time.RFC3339), id)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task %s: %w", id, err)
	}
	return task, nil
}

func asString(key string, value interface{}) (string, error) {
	v, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("invalid type for %s; must be a string", key)
	}
	return v, nil
}

func asStringSlice(key string, value interface{}) ([]string, error) {
	v, ok := value.([]string)
	if !ok {
		return nil, fmt.Errorf("invalid type for %s; must be a []string", key)
	}
	return v, nil
}

func asTimePtr(key string, value interface{}) (*time.Time, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &v, nil
	case *time.Time:
		return v, nil
	default:
		return nil, fmt.Errorf("invalid type for %s; must be a time.Time or nil", key)
	}
}

// DeleteTask removes a task from the store by its unique identifier.
func (s *SQLiteTaskStore) DeleteTask(id string) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

// MarkTaskDone marks a task as completed and stamps CompletedAt.
func (s *SQLiteTaskStore) MarkTaskDone(id string) (models.Task, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(`
		UPDATE tasks SET completed = 1, completed_at = ?, updated_at = ?
		WHERE id = ?`,
		now.Format(time.RFC3339), now.Format(time.RFC3339), id)
	if err != nil {
		return models.Task{}, fmt.Errorf("mark task %s done: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return s.GetTask(id)
}

// RecordPomodoro increments the pomodoro counter for a task. The
// increment happens in SQL so the count is monotonically non-decreasing
// even with concurrent writers.
func (s *SQLiteTaskStore) RecordPomodoro(id string, at time.Time) (models.Task, error) {
	res, err := s.db.Exec(`
		UPDATE tasks SET pomodoros = pomodoros + 1, last_pomodoro_at = ?, updated_at = ?
		WHERE id = ?`,
		at.UTC().Format(time.RFC3339), at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return models.Task{}, fmt.Errorf("record pomodoro for task %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return s.GetTask(id)
}

// ListTasks retrieves tasks: pending first, newest first within each
// group (the order the original list view used).
func (s *SQLiteTaskStore) ListTasks(filterFn func(models.Task) bool, sortFn func([]models.Task) []models.Task) ([]models.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskColumns + ` FROM tasks ORDER BY completed ASC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		if filterFn == nil || filterFn(task) {
			tasks = append(tasks, task)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	if sortFn != nil {
		tasks = sortFn(tasks)
	}
	return tasks, nil
}

// ListOverdue returns pending tasks whose due date is before now.
func (s *SQLiteTaskStore) ListOverdue(now time.Time) ([]models.Task, error) {
	rows, err := s.db.Query(`
		SELECT `+taskColumns+` FROM tasks
		WHERE completed = 0 AND due_date IS NOT NULL AND due_date < ?
		ORDER BY due_date ASC`,
		now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("list overdue tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list overdue tasks: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// FindTaskIDsByPrefix returns task IDs beginning with the given prefix.
func (s *SQLiteTaskStore) FindTaskIDsByPrefix(prefix string) ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM tasks WHERE id LIKE ? ORDER BY id`, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("find task ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ImportTask inserts or fully replaces a task row. Unlike CreateTask it
// preserves the incoming counters and timestamps, which is what the CSV
// import and restore paths need.
func (s *SQLiteTaskStore) ImportTask(task models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = now
	}
	if err := models.ValidateTask(task); err != nil {
		return fmt.Errorf("validation failed for imported task: %w", err)
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Title, task.Category, task.Priority, joinList(task.Tags),
		nullTimeString(task.DueDate), boolToInt(task.Completed),
		nullTimeString(task.StartedAt), nullTimeString(task.CompletedAt),
		joinList(task.Subtasks), task.Recurring, task.PomodoroCount,
		nullTimeString(task.LastPomodoroAt),
		task.CreatedAt.Format(time.RFC3339), task.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("import task %q: %w", task.Title, err)
	}
	return nil
}

// Stats computes the derived statistics view in SQL, mirroring the
// original stats dialog's queries.
func (s *SQLiteTaskStore) Stats(now time.Time) (Stats, error) {
	var st Stats

	err := s.db.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(completed), 0),
			COALESCE(SUM(pomodoros), 0)
		FROM tasks`).Scan(&st.TotalTasks, &st.CompletedTasks, &st.TotalPomodoros)
	if err != nil {
		return Stats{}, fmt.Errorf("stats totals: %w", err)
	}

	today := now.UTC().Format("2006-01-02")
	err = s.db.QueryRow(`
		SELECT COUNT(*) FROM tasks
		WHERE completed = 1 AND substr(completed_at, 1, 10) = ?`, today).Scan(&st.CompletedToday)
	if err != nil {
		return Stats{}, fmt.Errorf("stats completed today: %w", err)
	}

	row := s.db.QueryRow(`
		SELECT title, pomodoros FROM tasks
		WHERE last_pomodoro_at IS NOT NULL
		ORDER BY last_pomodoro_at DESC LIMIT 1`)
	if err := row.Scan(&st.LatestPomodoroTask, &st.LatestPomodoroCount); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Stats{}, fmt.Errorf("stats latest pomodoro: %w", err)
	}

	return st, nil
}

// Backup copies the database file to the destination path.
func (s *SQLiteTaskStore) Backup(destinationPath string) error {
	// Flush WAL content into the main database file first.
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("checkpoint before backup: %w", err)
	}
	input, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read database for backup: %w", err)
	}
	if err := os.WriteFile(destinationPath, input, 0o644); err != nil {
		return fmt.Errorf("write backup file %s: %w", destinationPath, err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteTaskStore) Close() error {
	return s.db.Close()
}
