package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/routineapp/routine/internal/ui"
	"github.com/routineapp/routine/models"
	"github.com/routineapp/routine/store"
)

// doneCmd represents the done command
var doneCmd = &cobra.Command{
	Use:     "done [task]",
	Aliases: []string{"complete", "finish"},
	Short:   "Mark a task as completed",
	Long: `Mark a task as completed. The task may be given as a full ID or a
unique ID prefix; with no argument an interactive picker opens.

Completing a recurring task spawns its next occurrence with a fresh ID
and an advanced due date.

Examples:
  routine done 9b4e6a
  routine done`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDone,
}

func init() {
	rootCmd.AddCommand(doneCmd)
}

func runDone(cmd *cobra.Command, args []string) error {
	taskStore, err := GetStore()
	if err != nil {
		return err
	}
	defer func() { _ = taskStore.Close() }()

	var id string
	if len(args) == 1 {
		id, err = resolveTaskReference(taskStore, args[0])
		if err != nil {
			return err
		}
	} else {
		task, err := selectTaskInteractive(taskStore, func(t models.Task) bool { return !t.Completed }, "Select task to complete")
		if err != nil {
			if errors.Is(err, ErrNoTasksFound) {
				fmt.Println("Nothing to complete. All tasks are done!")
				return nil
			}
			return err
		}
		id = task.ID
	}

	completed, next, err := completeTask(taskStore, id, time.Now().UTC())
	if err != nil {
		return err
	}

	fmt.Printf("✓ Completed: %s\n", completed.Title)
	if completed.Recurring != models.RecurNone {
		if next != nil {
			due := "no due date"
			if next.DueDate != nil {
				due = next.DueDate.Format("2006-01-02")
			}
			fmt.Printf("↻ Next %s occurrence scheduled (%s, %s)\n", completed.Recurring, ui.TruncateID(next.ID), due)
		}
	}

	return nil
}

// completeTask marks the task done and, for recurring tasks, spawns the
// next occurrence. The two writes are independent: a failed spawn does
// not roll back the completion, it surfaces as a warning error with the
// completion already applied.
func completeTask(taskStore store.TaskStore, id string, now time.Time) (models.Task, *models.Task, error) {
	completed, err := taskStore.MarkTaskDone(id)
	if err != nil {
		return models.Task{}, nil, fmt.Errorf("failed to complete task: %w", err)
	}

	next := models.NextOccurrence(completed, now)
	if next == nil {
		return completed, nil, nil
	}

	created, err := taskStore.CreateTask(*next)
	if err != nil {
		return completed, nil, fmt.Errorf("task completed, but spawning the next %s occurrence failed: %w", completed.Recurring, err)
	}
	return completed, &created, nil
}
