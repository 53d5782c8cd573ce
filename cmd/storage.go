package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/creatorbook/internal/output"
)

// storageCmd represents the storage command.
var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Inspect the local data store",
}

var storageSizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Show how much space stored documents use",
	RunE:  runStorageSize,
}

var storageInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the database location and backup times",
	RunE:  runStorageInfo,
}

func init() {
	storageCmd.AddCommand(storageSizeCmd, storageInfoCmd)
	rootCmd.AddCommand(storageCmd)
}

func runStorageSize(cmd *cobra.Command, args []string) error {
	size, err := ctx.DB.SizeEstimate()
	if err != nil {
		return err
	}
	keys := ctx.DB.Keys()
	if ctx.IsJSON() {
		return ctx.JSONFormatter().Print(map[string]any{
			"bytes": size,
			"human": output.FormatBytes(size),
			"keys":  len(keys),
		})
	}
	ctx.CLIFormatter().PrintSize(size, len(keys))
	return nil
}

func runStorageInfo(cmd *cobra.Command, args []string) error {
	meta, err := ctx.Metadata.Get()
	if err != nil {
		return err
	}
	path := ctx.DB.Path()
	if path == "" {
		path = "(in memory)"
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().Print(map[string]any{
			"path":     path,
			"metadata": meta,
		})
	}
	cli := ctx.CLIFormatter()
	cli.Title("Storage")
	cli.Printf("  Database:     %s\n", path)
	cli.Printf("  Schema:       v%s\n", meta.Version)
	cli.Printf("  Created:      %s\n", output.FormatTime(meta.CreatedAt))
	cli.Printf("  Last backup:  %s\n", output.FormatOptionalTime(meta.LastBackup))
	cli.Printf("  Last restore: %s\n", output.FormatOptionalTime(meta.LastRestore))
	return nil
}
