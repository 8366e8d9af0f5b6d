package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

// backupCmd represents the backup command
var backupCmd = &cobra.Command{
	Use:   "backup [destination]",
	Short: "Back up the task database",
	Long: `Copy the task database to a timestamped backup file. With no
destination the backup lands next to the database.

Examples:
  routine backup
  routine backup ~/backups/tasks-snapshot.db`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBackup,
}

func init() {
	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	taskStore, err := GetStore()
	if err != nil {
		return err
	}
	defer func() { _ = taskStore.Close() }()

	dest := ""
	if len(args) == 1 {
		dest = args[0]
	} else {
		dbPath := GetTaskDBPath()
		stamp := time.Now().Format("20060102_150405")
		dest = filepath.Join(filepath.Dir(dbPath), fmt.Sprintf("tasks_backup_%s.db", stamp))
	}

	if err := taskStore.Backup(dest); err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	fmt.Printf("✓ Database backed up to %s\n", dest)
	return nil
}
