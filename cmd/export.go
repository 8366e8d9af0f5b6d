package cmd

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/routineapp/routine/models"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tasks to CSV, JSON, YAML, or TOML",
	Long: `Export every task to a file or stdout.

Examples:
  routine export --format csv --output tasks.csv
  routine export --format json > tasks.json
  routine export --format yaml`,
	RunE: runExport,
}

var (
	exportFormat string
	exportOutput string

	// exportFs is swapped for an in-memory filesystem in tests.
	exportFs = afero.NewOsFs()
)

// csvHeader is the import/export column layout. Order matters: files
// written by older exports are still importable.
var csvHeader = []string{
	"id", "task", "category", "completed", "duedate", "subtasks",
	"started_at", "completed_at", "priority", "tags", "recurring",
	"pomodoros", "last_pomodoro_at",
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format (csv, json, yaml, toml)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	taskStore, err := GetStore()
	if err != nil {
		return err
	}
	defer func() { _ = taskStore.Close() }()

	tasks, err := taskStore.ListTasks(nil, nil)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	data, err := encodeTasks(tasks, exportFormat)
	if err != nil {
		return err
	}

	if exportOutput == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := afero.WriteFile(exportFs, exportOutput, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOutput, err)
	}
	fmt.Printf("✓ Exported %d tasks to %s\n", len(tasks), exportOutput)
	return nil
}

// taskRecord is the flat serialization shape shared by all export
// formats. Times are RFC 3339, lists are comma-joined, matching the
// database's own text encoding.
type taskRecord struct {
	ID             string `json:"id" yaml:"id" toml:"id"`
	Task           string `json:"task" yaml:"task" toml:"task"`
	Category       string `json:"category,omitempty" yaml:"category,omitempty" toml:"category,omitempty"`
	Completed      bool   `json:"completed" yaml:"completed" toml:"completed"`
	DueDate        string `json:"duedate,omitempty" yaml:"duedate,omitempty" toml:"duedate,omitempty"`
	Subtasks       string `json:"subtasks,omitempty" yaml:"subtasks,omitempty" toml:"subtasks,omitempty"`
	StartedAt      string `json:"started_at,omitempty" yaml:"started_at,omitempty" toml:"started_at,omitempty"`
	CompletedAt    string `json:"completed_at,omitempty" yaml:"completed_at,omitempty" toml:"completed_at,omitempty"`
	Priority       string `json:"priority" yaml:"priority" toml:"priority"`
	Tags           string `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags,omitempty"`
	Recurring      string `json:"recurring" yaml:"recurring" toml:"recurring"`
	Pomodoros      int    `json:"pomodoros" yaml:"pomodoros" toml:"pomodoros"`
	LastPomodoroAt string `json:"last_pomodoro_at,omitempty" yaml:"last_pomodoro_at,omitempty" toml:"last_pomodoro_at,omitempty"`
}

type taskExport struct {
	Tasks []taskRecord `json:"tasks" yaml:"tasks" toml:"tasks"`
}

func toRecord(t models.Task) taskRecord {
	return taskRecord{
		ID:             t.ID,
		Task:           t.Title,
		Category:       t.Category,
		Completed:      t.Completed,
		DueDate:        formatOptionalTime(t.DueDate),
		Subtasks:       strings.Join(t.Subtasks, ","),
		StartedAt:      formatOptionalTime(t.StartedAt),
		CompletedAt:    formatOptionalTime(t.CompletedAt),
		Priority:       string(t.Priority),
		Tags:           strings.Join(t.Tags, ","),
		Recurring:      string(t.Recurring),
		Pomodoros:      t.PomodoroCount,
		LastPomodoroAt: formatOptionalTime(t.LastPomodoroAt),
	}
}

func (r taskRecord) toTask() (models.Task, error) {
	due, err := parseOptionalTime(r.DueDate)
	if err != nil {
		return models.Task{}, fmt.Errorf("duedate: %w", err)
	}
	started, err := parseOptionalTime(r.StartedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("started_at: %w", err)
	}
	completedAt, err := parseOptionalTime(r.CompletedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("completed_at: %w", err)
	}
	lastPomodoro, err := parseOptionalTime(r.LastPomodoroAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("last_pomodoro_at: %w", err)
	}

	priority := models.TaskPriority(r.Priority)
	if r.Priority == "" {
		priority = models.PriorityMedium
	}
	recurring := models.Recurrence(r.Recurring)
	if r.Recurring == "" {
		recurring = models.RecurNone
	}

	return models.Task{
		ID:             r.ID,
		Title:          r.Task,
		Category:       r.Category,
		Completed:      r.Completed,
		DueDate:        due,
		Subtasks:       splitCommaList(r.Subtasks),
		StartedAt:      started,
		CompletedAt:    completedAt,
		Priority:       priority,
		Tags:           splitCommaList(r.Tags),
		Recurring:      recurring,
		PomodoroCount:  r.Pomodoros,
		LastPomodoroAt: lastPomodoro,
	}, nil
}

func encodeTasks(tasks []models.Task, format string) ([]byte, error) {
	records := make([]taskRecord, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, toRecord(t))
	}

	switch strings.ToLower(format) {
	case "csv":
		return encodeCSV(records)
	case "json":
		return json.MarshalIndent(taskExport{Tasks: records}, "", "  ")
	case "yaml", "yml":
		return yaml.Marshal(taskExport{Tasks: records})
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(taskExport{Tasks: records}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q (csv, json, yaml, toml)", format)
	}
}

func encodeCSV(records []taskRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range records {
		row := []string{
			r.ID, r.Task, r.Category, strconv.FormatBool(r.Completed),
			r.DueDate, r.Subtasks, r.StartedAt, r.CompletedAt,
			r.Priority, r.Tags, r.Recurring, strconv.Itoa(r.Pomodoros),
			r.LastPomodoroAt,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseOptionalTime(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// Plain dates appear in hand-edited files.
		t, err = time.Parse("2006-01-02", s)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q", s)
		}
	}
	t = t.UTC()
	return &t, nil
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
