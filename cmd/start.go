package cmd

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/routineapp/routine/internal/notify"
	"github.com/routineapp/routine/internal/ui"
	"github.com/routineapp/routine/models"
	"github.com/routineapp/routine/pomodoro"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:     "start [task]",
	Aliases: []string{"focus", "pomodoro"},
	Short:   "Start a pomodoro focus session",
	Long: `Start the pomodoro timer in a full-screen terminal UI.

Attach a task by ID prefix, pick one interactively with --pick, or run
unattached: the session still counts toward your cumulative study time.
Each completed focus phase credits the attached task with one pomodoro.

Keys: space start/pause, r reset, f/b/l switch phase, d detach, q quit.

Examples:
  routine start
  routine start 9b4e6a
  routine start --pick`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStart,
}

var (
	startPick   bool
	startSilent bool
)

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().BoolVar(&startPick, "pick", false, "choose the task interactively")
	startCmd.Flags().BoolVar(&startSilent, "silent", false, "disable the terminal bell on phase completion")
}

func runStart(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the timer needs an interactive terminal")
	}

	taskStore, err := GetStore()
	if err != nil {
		return err
	}
	defer func() { _ = taskStore.Close() }()

	var attachedID, attachedTitle string
	switch {
	case len(args) == 1:
		id, err := resolveTaskReference(taskStore, args[0])
		if err != nil {
			return err
		}
		task, err := taskStore.GetTask(id)
		if err != nil {
			return fmt.Errorf("failed to load task: %w", err)
		}
		attachedID, attachedTitle = task.ID, task.Title
	case startPick:
		task, err := selectTaskInteractive(taskStore, func(t models.Task) bool { return !t.Completed }, "Select task to focus on")
		if err != nil {
			if errors.Is(err, ErrNoTasksFound) {
				fmt.Println("No pending tasks. Starting an unattached session.")
				break
			}
			return err
		}
		attachedID, attachedTitle = task.ID, task.Title
	}

	var sink pomodoro.NotificationSink = notify.NewBellSink(nil)
	if startSilent {
		sink = notify.NopSink{}
	}

	machine, err := pomodoro.NewMachine(pomodoroConfig(), pomodoro.SystemClock(), sink)
	if err != nil {
		return fmt.Errorf("invalid pomodoro configuration: %w", err)
	}
	if attachedID != "" {
		machine.Attach(attachedID)
	}

	agg := pomodoro.NewAggregator(taskStore, GetStudyStore())

	program := tea.NewProgram(ui.NewTimerModel(machine, agg, attachedTitle), tea.WithAltScreen())

	// Config edits while the timer runs are staged and take effect on
	// the next phase entry.
	viper.OnConfigChange(func(fsnotify.Event) {
		_ = viper.Unmarshal(&GlobalAppConfig)
		program.Send(ui.ConfigChangedMsg{Config: pomodoroConfig()})
	})
	viper.WatchConfig()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("timer failed: %w", err)
	}

	if err := agg.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Some study time could not be saved: %v\n", err)
	}

	fmt.Printf("Session over. Total study time: %s\n", pomodoro.FormatSeconds(agg.Total()))
	return nil
}

// pomodoroConfig converts the minute-based app configuration into the
// second-based machine configuration.
func pomodoroConfig() pomodoro.Config {
	p := GetConfig().Pomodoro
	return pomodoro.Config{
		FocusSeconds:      p.FocusMinutes * 60,
		ShortBreakSeconds: p.ShortBreakMinutes * 60,
		LongBreakSeconds:  p.LongBreakMinutes * 60,
		Cadence:           p.Cadence,
	}
}
