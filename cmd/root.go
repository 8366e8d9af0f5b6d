package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/routineapp/routine/internal/logger"
	"github.com/routineapp/routine/models"
	"github.com/routineapp/routine/store"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// ErrNoTasksFound is returned when an interactive selection is attempted but no tasks are available.
	ErrNoTasksFound = errors.New("no tasks found matching your criteria")
	// version is the application version.
	version = "0.3.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "routine",
	Short: "routine tracks your tasks and focus sessions from the terminal.",
	Long: `routine is a task tracker with a built-in pomodoro timer.
Add tasks, run focus sessions against them, and watch your cumulative
study time grow. Completed recurring tasks respawn on their next due date.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetCommand(cmd.Name())
		logger.SetVersion(version)
	},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)
	rootCmd.Version = version

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.routine.yaml or ./.routine/.routine.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// GetTaskDBPath returns the full path to the task database.
func GetTaskDBPath() string {
	config := GetConfig()
	if filepath.IsAbs(config.Data.File) {
		return config.Data.File
	}
	return filepath.Join(config.Project.RootDir, config.Data.File)
}

// GetStudyFilePath returns the full path to the study-time file.
func GetStudyFilePath() string {
	config := GetConfig()
	if filepath.IsAbs(config.Data.StudyFile) {
		return config.Data.StudyFile
	}
	return filepath.Join(config.Project.RootDir, config.Data.StudyFile)
}

// GetStore initializes and returns the task store.
func GetStore() (store.TaskStore, error) {
	dbPath := GetTaskDBPath()
	s, err := store.NewSQLiteTaskStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store at %s: %w", dbPath, err)
	}
	return s, nil
}

// GetStudyStore returns the study-time store.
func GetStudyStore() store.StudyTimeStore {
	return store.NewFileStudyTimeStore(GetStudyFilePath())
}

// resolveTaskReference resolves a user-supplied task reference, which
// may be a full ID or a unique prefix of one.
func resolveTaskReference(taskStore store.TaskStore, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty task reference")
	}

	ids, err := taskStore.FindTaskIDsByPrefix(ref)
	if err != nil {
		return "", fmt.Errorf("resolve task %q: %w", ref, err)
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("no task matches %q: %w", ref, store.ErrNotFound)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("task reference %q is ambiguous (%d matches); use a longer prefix", ref, len(ids))
	}
}

// selectTaskInteractive presents a prompt to the user to select a task
// from a list. It can be filtered using the provided filter function.
func selectTaskInteractive(taskStore store.TaskStore, filterFn func(models.Task) bool, label string) (models.Task, error) {
	tasks, err := taskStore.ListTasks(filterFn, nil)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to list tasks for selection: %w", err)
	}

	if len(tasks) == 0 {
		return models.Task{}, ErrNoTasksFound
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   `> {{ .Title | cyan }} ({{ .Priority }}{{ if .Category }}, {{ .Category }}{{ end }})`,
		Inactive: `  {{ .Title | faint }} ({{ .Priority }}{{ if .Category }}, {{ .Category }}{{ end }})`,
		Selected: `{{ "✔" | green }} {{ .Title | faint }}`,
		Details: `
--------- Task Details ----------
{{ "ID:\t" | faint }} {{ .ID }}
{{ "Title:\t" | faint }} {{ .Title }}
{{ "Priority:\t" | faint }} {{ .Priority }}
{{ "Pomodoros:\t" | faint }} {{ .PomodoroCount }}`,
	}

	searcher := func(input string, index int) bool {
		task := tasks[index]
		name := strings.ToLower(task.Title)
		input = strings.ToLower(input)
		return strings.Contains(name, input) || strings.Contains(task.ID, input)
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     tasks,
		Templates: templates,
		Searcher:  searcher,
	}

	i, _, err := prompt.Run()
	if err != nil {
		return models.Task{}, err // includes promptui.ErrInterrupt
	}

	return tasks[i], nil
}

// logVerbose prints to stderr when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose || viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
