package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/routineapp/routine/internal/ui"
	"github.com/routineapp/routine/models"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks, pending first, newest first within each group.

Examples:
  routine list
  routine list --overdue
  routine list --search report
  routine list --category Work --long`,
	RunE: runList,
}

var (
	listOverdue  bool
	listPending  bool
	listSearch   string
	listCategory string
	listLong     bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listOverdue, "overdue", false, "only pending tasks past their due date")
	listCmd.Flags().BoolVar(&listPending, "pending", false, "hide completed tasks")
	listCmd.Flags().StringVar(&listSearch, "search", "", "substring match on title")
	listCmd.Flags().StringVar(&listCategory, "category", "", "filter by category")
	listCmd.Flags().BoolVarP(&listLong, "long", "l", false, "table output with IDs and dates")
}

func runList(cmd *cobra.Command, args []string) error {
	taskStore, err := GetStore()
	if err != nil {
		return err
	}
	defer func() { _ = taskStore.Close() }()

	now := time.Now().UTC()

	var tasks []models.Task
	if listOverdue {
		tasks, err = taskStore.ListOverdue(now)
	} else {
		tasks, err = taskStore.ListTasks(listFilter(), nil)
	}
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks found. Add one with: routine add \"...\"")
		return nil
	}

	if listLong {
		ui.RenderTaskListVerbose(os.Stdout, tasks, now)
	} else {
		ui.RenderTaskList(os.Stdout, tasks, now)
	}
	return nil
}

func listFilter() func(models.Task) bool {
	search := strings.ToLower(strings.TrimSpace(listSearch))
	category := strings.TrimSpace(listCategory)

	if !listPending && search == "" && category == "" {
		return nil
	}
	return func(t models.Task) bool {
		if listPending && t.Completed {
			return false
		}
		if search != "" && !matchesSearch(t, search) {
			return false
		}
		if category != "" && !strings.EqualFold(t.Category, category) {
			return false
		}
		return true
	}
}

// matchesSearch checks the query against the title and tags, the same
// fields the search box covered.
func matchesSearch(t models.Task, query string) bool {
	if strings.Contains(strings.ToLower(t.Title), query) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}
