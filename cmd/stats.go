package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/routineapp/routine/internal/ui"
	"github.com/routineapp/routine/pomodoro"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task and study-time statistics",
	Long: `Show a summary of your tasks and focus sessions: totals, today's
completions, pomodoro counts, and cumulative study time.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	taskStore, err := GetStore()
	if err != nil {
		return err
	}
	defer func() { _ = taskStore.Close() }()

	stats, err := taskStore.Stats(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to compute statistics: %w", err)
	}

	studySeconds, err := GetStudyStore().Load()
	if err != nil {
		logVerbose("study time unavailable: %v", err)
	}

	fmt.Println(ui.StyleTitle.Render("📊 Routine Stats"))
	fmt.Printf("  Tasks:           %d total, %d completed, %d pending\n",
		stats.TotalTasks, stats.CompletedTasks, stats.TotalTasks-stats.CompletedTasks)
	fmt.Printf("  Completed today: %d\n", stats.CompletedToday)
	fmt.Printf("  Pomodoros:       %d\n", stats.TotalPomodoros)
	if stats.LatestPomodoroTask != "" {
		fmt.Printf("  Latest focus:    %s (🍅%d)\n", stats.LatestPomodoroTask, stats.LatestPomodoroCount)
	}
	fmt.Printf("  Study time:      %s\n", pomodoro.FormatSeconds(studySeconds))

	return nil
}
