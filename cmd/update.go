package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:     "update [task]",
	Aliases: []string{"edit"},
	Short:   "Update a task's fields",
	Long: `Update a task's title, priority, category, due date, tags, subtasks,
or recurrence. Completion state and pomodoro counters are managed by
"done" and "start" and cannot be edited here.

Examples:
  routine update 9b4e6a --title "Write the annual report"
  routine update 9b4e6a --priority high --due 2025-07-01
  routine update 9b4e6a --recurring weekly`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdate,
}

var (
	updateTitle     string
	updatePriority  string
	updateCategory  string
	updateDue       string
	updateTags      []string
	updateSubtasks  []string
	updateRecurring string
)

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().StringVar(&updateTitle, "title", "", "new title")
	updateCmd.Flags().StringVarP(&updatePriority, "priority", "p", "", "priority (low, medium, high)")
	updateCmd.Flags().StringVar(&updateCategory, "category", "", "category label")
	updateCmd.Flags().StringVar(&updateDue, "due", "", "due date (YYYY-MM-DD), or 'none' to clear")
	updateCmd.Flags().StringSliceVar(&updateTags, "tags", nil, "replacement tag list")
	updateCmd.Flags().StringSliceVar(&updateSubtasks, "subtasks", nil, "replacement subtask list")
	updateCmd.Flags().StringVar(&updateRecurring, "recurring", "", "recurrence (none, daily, weekly)")
}

func runUpdate(cmd *cobra.Command, args []string) error {
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
		task, err := selectTaskInteractive(taskStore, nil, "Select task to update")
		if err != nil {
			if errors.Is(err, ErrNoTasksFound) {
				fmt.Println("No tasks to update.")
				return nil
			}
			return err
		}
		id = task.ID
	}

	updates := map[string]interface{}{}
	if cmd.Flags().Changed("title") {
		updates["title"] = updateTitle
	}
	if cmd.Flags().Changed("priority") {
		updates["priority"] = updatePriority
	}
	if cmd.Flags().Changed("category") {
		updates["category"] = updateCategory
	}
	if cmd.Flags().Changed("tags") {
		updates["tags"] = updateTags
	}
	if cmd.Flags().Changed("subtasks") {
		updates["subtasks"] = updateSubtasks
	}
	if cmd.Flags().Changed("recurring") {
		updates["recurring"] = updateRecurring
	}
	if cmd.Flags().Changed("due") {
		if updateDue == "none" {
			updates["dueDate"] = nil
		} else {
			due, err := parseDueDate(updateDue)
			if err != nil {
				return err
			}
			updates["dueDate"] = due
		}
	}

	if len(updates) == 0 {
		return fmt.Errorf("nothing to update: pass at least one field flag")
	}

	updated, err := taskStore.UpdateTask(id, updates)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	fmt.Printf("✓ Updated: %s\n", updated.Title)
	return nil
}
