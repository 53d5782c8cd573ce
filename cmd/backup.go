package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/creatorbook/internal/output"
	"github.com/manav03panchal/creatorbook/internal/storage"
)

// Backup command flags.
var (
	backupFlagOutput string
	backupFlagYes    bool
)

// backupCmd represents the backup command.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up and restore all data",
	Long: `Write every stored document (revenue, videos, schedules, calendar,
settings) to a single JSON file, or replace the current data with a backup.

Examples:
  creatorbook backup create
  creatorbook backup create --output ~/Dropbox/creatorbook.json
  creatorbook backup restore creatorbook-backup-2024-03-01-120000.json --yes`,
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a backup file",
	RunE:  runBackupCreate,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore FILE",
	Short: "Replace all data with a backup",
	Long: `Replace all data with the contents of a backup file. Data missing from
the backup is removed. The restore is applied in a single transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupRestore,
}

func init() {
	backupCreateCmd.Flags().StringVarP(&backupFlagOutput, "output", "o", "", "Backup file (default: backups directory)")
	backupRestoreCmd.Flags().BoolVarP(&backupFlagYes, "yes", "y", false, "Skip confirmation prompt")

	backupCmd.AddCommand(backupCreateCmd, backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}

func runBackupCreate(cmd *cobra.Command, args []string) error {
	path := backupFlagOutput
	if path == "" {
		path = filepath.Join(ctx.Config.BackupsDir, storage.FileName(nowFunc()))
	}
	b, err := ctx.Backups.WriteFile(path)
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintStatus("created", "", map[string]any{
			"path":       path,
			"exportedAt": b.ExportedAt,
			"keys":       len(b.Data),
		})
	}
	cli := ctx.CLIFormatter()
	cli.Success(fmt.Sprintf("Backup written to %s", path))
	cli.Printf("  %d documents, exported %s\n", len(b.Data), output.FormatTime(b.ExportedAt))
	return nil
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	b, err := storage.ReadFile(args[0])
	if err != nil {
		return err
	}
	prompt := fmt.Sprintf("Replace all data with the backup from %s? (y/N): ", output.FormatTime(b.ExportedAt))
	ok, err := promptConfirmation(prompt, backupFlagYes)
	if err != nil {
		return err
	}
	if !ok {
		ctx.CLIFormatter().Muted("Cancelled")
		return nil
	}
	if err := ctx.Backups.Restore(b); err != nil {
		return err
	}
	meta, err := ctx.Metadata.Get()
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintStatus("restored", "", meta)
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Restored %d documents from %s", len(b.Data), args[0]))
	return nil
}
