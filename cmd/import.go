package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/routineapp/routine/store"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import tasks from a CSV export",
	Long: `Import tasks from a CSV file produced by "routine export". Rows are
upserted by ID: existing tasks are replaced, new ones created. Counters
and timestamps in the file are preserved as-is.

Examples:
  routine import tasks.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// importFs is swapped for an in-memory filesystem in tests.
var importFs = afero.NewOsFs()

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	taskStore, err := GetStore()
	if err != nil {
		return err
	}
	defer func() { _ = taskStore.Close() }()

	f, err := importFs.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer func() { _ = f.Close() }()

	imported, skipped, err := importCSV(taskStore, f)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Imported %d tasks", imported)
	if skipped > 0 {
		fmt.Printf(" (%d rows skipped)", skipped)
	}
	fmt.Println()
	return nil
}

// importCSV upserts every row of a CSV export into the store. Malformed
// rows are skipped with a warning rather than aborting the whole file.
func importCSV(taskStore store.TaskStore, r io.Reader) (imported, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read CSV header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	if _, ok := col["task"]; !ok {
		return 0, 0, fmt.Errorf("not a task export: missing %q column", "task")
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, skipped, fmt.Errorf("failed to read CSV row: %w", err)
		}

		completed, _ := strconv.ParseBool(field(row, "completed"))
		pomodoros, _ := strconv.Atoi(field(row, "pomodoros"))

		rec := taskRecord{
			ID:             field(row, "id"),
			Task:           field(row, "task"),
			Category:       field(row, "category"),
			Completed:      completed,
			DueDate:        field(row, "duedate"),
			Subtasks:       field(row, "subtasks"),
			StartedAt:      field(row, "started_at"),
			CompletedAt:    field(row, "completed_at"),
			Priority:       field(row, "priority"),
			Tags:           field(row, "tags"),
			Recurring:      field(row, "recurring"),
			Pomodoros:      pomodoros,
			LastPomodoroAt: field(row, "last_pomodoro_at"),
		}

		// Exports from the original app used integer IDs; anything that
		// is not a UUID gets a fresh one on import.
		if _, err := uuid.Parse(rec.ID); err != nil {
			rec.ID = ""
		}

		task, err := rec.toTask()
		if err != nil {
			logVerbose("skipping line %d: %v", line, err)
			skipped++
			continue
		}
		if task.Title == "" {
			logVerbose("skipping line %d: empty title", line)
			skipped++
			continue
		}
		// Older exports sometimes mark a row completed without a
		// timestamp; backfill so the row still satisfies the
		// completion invariant.
		if task.Completed && task.CompletedAt == nil {
			now := time.Now().UTC()
			task.CompletedAt = &now
		}

		if err := taskStore.ImportTask(task); err != nil {
			logVerbose("skipping line %d: %v", line, err)
			skipped++
			continue
		}
		imported++
	}

	return imported, skipped, nil
}
