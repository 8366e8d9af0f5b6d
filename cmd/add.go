package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/routineapp/routine/internal/ui"
	"github.com/routineapp/routine/models"
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a new task",
	Long: `Add a task to the tracker.

Examples:
  routine add "Write the quarterly report"
  routine add "Water the plants" --recurring weekly --due 2025-07-01
  routine add "Fix login bug" --priority high --category Work --tags bug,auth`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addPriority  string
	addCategory  string
	addDue       string
	addTags      []string
	addSubtasks  []string
	addRecurring string
)

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addPriority, "priority", "p", string(models.PriorityMedium), "priority (low, medium, high)")
	addCmd.Flags().StringVar(&addCategory, "category", "", "free-form category label")
	addCmd.Flags().StringVar(&addDue, "due", "", "due date (YYYY-MM-DD)")
	addCmd.Flags().StringSliceVar(&addTags, "tags", nil, "comma-separated tags")
	addCmd.Flags().StringSliceVar(&addSubtasks, "subtasks", nil, "comma-separated subtask titles")
	addCmd.Flags().StringVar(&addRecurring, "recurring", string(models.RecurNone), "recurrence (none, daily, weekly)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return fmt.Errorf("task title cannot be empty")
	}

	taskStore, err := GetStore()
	if err != nil {
		return err
	}
	defer func() { _ = taskStore.Close() }()

	task := models.NewTask(title)
	task.Priority = models.TaskPriority(addPriority)
	task.Category = strings.TrimSpace(addCategory)
	task.Tags = addTags
	task.Subtasks = addSubtasks
	task.Recurring = models.Recurrence(addRecurring)

	if addDue != "" {
		due, err := parseDueDate(addDue)
		if err != nil {
			return err
		}
		task.DueDate = &due
	}

	created, err := taskStore.CreateTask(*task)
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}

	fmt.Printf("✓ Added %s %s (%s)\n", ui.PriorityIcon(created.Priority), created.Title, ui.TruncateID(created.ID))
	fmt.Println("\n💡 What's next?")
	fmt.Printf("   routine start %s   # run a focus session on it\n", ui.TruncateID(created.ID))
	fmt.Println("   routine list       # see all tasks")

	return nil
}

// parseDueDate accepts a plain date or a full RFC 3339 timestamp.
func parseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid due date %q: use YYYY-MM-DD", s)
}
