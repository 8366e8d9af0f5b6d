package cmd

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/routineapp/routine/models"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:     "delete [task]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Delete a task permanently. There is no archive; deletion is final.

Examples:
  routine delete 9b4e6a
  routine delete --yes 9b4e6a`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDelete,
}

var deleteYes bool

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	taskStore, err := GetStore()
	if err != nil {
		return err
	}
	defer func() { _ = taskStore.Close() }()

	var task models.Task
	if len(args) == 1 {
		id, err := resolveTaskReference(taskStore, args[0])
		if err != nil {
			return err
		}
		task, err = taskStore.GetTask(id)
		if err != nil {
			return fmt.Errorf("failed to load task: %w", err)
		}
	} else {
		task, err = selectTaskInteractive(taskStore, nil, "Select task to delete")
		if err != nil {
			if errors.Is(err, ErrNoTasksFound) {
				fmt.Println("No tasks to delete.")
				return nil
			}
			return err
		}
	}

	if !deleteYes {
		confirm := promptui.Prompt{
			Label:     fmt.Sprintf("Delete %q", task.Title),
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := taskStore.DeleteTask(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	fmt.Printf("🗑 Deleted: %s\n", task.Title)
	return nil
}
