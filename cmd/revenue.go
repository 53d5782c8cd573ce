package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/model"
	"github.com/manav03panchal/creatorbook/internal/output"
	"github.com/manav03panchal/creatorbook/internal/storage"
	"github.com/manav03panchal/creatorbook/internal/validate"
)

// Revenue command flags.
var (
	revenueFlagDate           string
	revenueFlagPlatform       string
	revenueFlagVideo          string
	revenueFlagNotes          string
	revenueFlagAmount         string
	revenueUpdateFlagPlatform string
	revenueUpdateFlagDate     string
	revenueUpdateFlagVideo    string
	revenueUpdateFlagNotes    string
	revenueListFlagPlatform   string
	revenueFlagFrom           string
	revenueFlagTo             string
	revenueFlagLimit          int
	revenueFlagMonths         int
	revenueFlagReplace        bool
	revenueFlagYes            bool
)

// revenueCmd represents the revenue command.
var revenueCmd = &cobra.Command{
	Use:     "revenue",
	Aliases: []string{"rev", "r"},
	Short:   "Record and review revenue",
	Long: `Record payments from platforms and review revenue totals.

Examples:
  creatorbook revenue add 120.50 --platform YouTube
  creatorbook revenue add 35 --platform Spotify --date yesterday --video "Deep Sleep"
  creatorbook revenue list --from 2024-01-01
  creatorbook revenue stats
  creatorbook revenue threshold`,
}

var revenueAddCmd = &cobra.Command{
	Use:   "add AMOUNT",
	Short: "Record a payment",
	Long: `Record a payment. The date defaults to today and accepts YYYY-MM-DD or
phrases like 'yesterday' or '3 days ago'.

Examples:
  creatorbook revenue add 120.50 --platform YouTube
  creatorbook revenue add 35 --platform Spotify --date 2024-02-01 --video "Deep Sleep"`,
	Args: cobra.ExactArgs(1),
	RunE: runRevenueAdd,
}

var revenueListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List revenue entries, newest first",
	RunE:    runRevenueList,
}

var revenueUpdateCmd = &cobra.Command{
	Use:               "update ID",
	Aliases:           []string{"edit"},
	Short:             "Update a revenue entry",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeRevenueIDs,
	RunE:              runRevenueUpdate,
}

var revenueDeleteCmd = &cobra.Command{
	Use:               "delete ID",
	Aliases:           []string{"rm"},
	Short:             "Delete a revenue entry",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeRevenueIDs,
	RunE:              runRevenueDelete,
}

var revenueStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show revenue totals by period and platform",
	RunE:  runRevenueStats,
}

var revenueThresholdCmd = &cobra.Command{
	Use:   "threshold",
	Short: "Show year-to-date progress toward the registration threshold",
	RunE: func(cmd *cobra.Command, args []string) error {
		status := ctx.Revenue.CheckThresholdStatus()
		if ctx.IsJSON() {
			return ctx.JSONFormatter().Print(status)
		}
		ctx.CLIFormatter().PrintThreshold(status)
		return nil
	},
}

var revenueGoalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Show month-to-date progress toward the monthly target",
	RunE: func(cmd *cobra.Command, args []string) error {
		status := ctx.Revenue.CheckMonthlyGoal()
		if ctx.IsJSON() {
			return ctx.JSONFormatter().Print(status)
		}
		ctx.CLIFormatter().PrintGoal(status)
		return nil
	},
}

var revenueTrendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show revenue per month",
	RunE: func(cmd *cobra.Command, args []string) error {
		trends := ctx.Revenue.MonthlyTrends(revenueFlagMonths)
		if ctx.IsJSON() {
			return output.PrintList(ctx.JSONFormatter(), trends)
		}
		ctx.CLIFormatter().PrintTrends(trends)
		return nil
	},
}

var revenueExportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Export revenue entries as JSON",
	Long: `Export every revenue entry as a JSON array. Without FILE the array is
written to standard output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRevenueExport,
}

var revenueImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import revenue entries from a JSON export",
	Long: `Import a JSON array of revenue entries. Entries whose id already exists
are skipped. With --replace the current entries are discarded first.`,
	Args: cobra.ExactArgs(1),
	RunE: runRevenueImport,
}

func init() {
	revenueAddCmd.Flags().StringVarP(&revenueFlagPlatform, "platform", "p", "", "Platform that paid (required)")
	revenueAddCmd.Flags().StringVarP(&revenueFlagDate, "date", "d", "today", "Payment date")
	revenueAddCmd.Flags().StringVarP(&revenueFlagVideo, "video", "v", "", "Title of the video this payment is for")
	revenueAddCmd.Flags().StringVarP(&revenueFlagNotes, "notes", "n", "", "Free-form notes")
	revenueAddCmd.MarkFlagRequired("platform")
	revenueAddCmd.RegisterFlagCompletionFunc("platform", completePlatforms)

	revenueListCmd.Flags().StringVar(&revenueFlagFrom, "from", "", "Only entries on or after this date")
	revenueListCmd.Flags().StringVar(&revenueFlagTo, "to", "", "Only entries on or before this date")
	revenueListCmd.Flags().StringVarP(&revenueListFlagPlatform, "platform", "p", "", "Only entries from this platform")
	revenueListCmd.Flags().IntVarP(&revenueFlagLimit, "limit", "n", 0, "Show at most this many entries")
	revenueListCmd.RegisterFlagCompletionFunc("platform", completePlatforms)

	revenueUpdateCmd.Flags().StringVar(&revenueFlagAmount, "amount", "", "New amount")
	revenueUpdateCmd.Flags().StringVarP(&revenueUpdateFlagPlatform, "platform", "p", "", "New platform")
	revenueUpdateCmd.Flags().StringVarP(&revenueUpdateFlagDate, "date", "d", "", "New date")
	revenueUpdateCmd.Flags().StringVarP(&revenueUpdateFlagVideo, "video", "v", "", "New video title")
	revenueUpdateCmd.Flags().StringVarP(&revenueUpdateFlagNotes, "notes", "n", "", "New notes")

	revenueDeleteCmd.Flags().BoolVarP(&revenueFlagYes, "yes", "y", false, "Skip confirmation prompt")

	revenueTrendsCmd.Flags().IntVarP(&revenueFlagMonths, "months", "m", 12, "Number of months to show (0 for all)")

	revenueImportCmd.Flags().BoolVar(&revenueFlagReplace, "replace", false, "Discard existing entries before importing")

	revenueCmd.AddCommand(revenueAddCmd, revenueListCmd, revenueUpdateCmd, revenueDeleteCmd,
		revenueStatsCmd, revenueThresholdCmd, revenueGoalCmd, revenueTrendsCmd,
		revenueExportCmd, revenueImportCmd)
	rootCmd.AddCommand(revenueCmd)
}

func runRevenueAdd(cmd *cobra.Command, args []string) error {
	amount, err := validate.Amount("amount", args[0])
	if err != nil {
		return err
	}
	date, err := parseDay("date", revenueFlagDate)
	if err != nil {
		return err
	}

	entry, err := ctx.Revenue.Add(model.NewRevenueEntry(date, revenueFlagPlatform, amount, revenueFlagVideo, revenueFlagNotes))
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintStatus("created", entry.ID, entry)
	}
	cli := ctx.CLIFormatter()
	cli.PrintRevenueAdded("Recorded", entry)
	if status := ctx.Revenue.CheckThresholdStatus(); status.NeedsRegistration {
		cli.Warning(fmt.Sprintf("Year-to-date revenue %s has reached the registration threshold.", cli.Money(status.CurrentRevenue)))
	}
	return nil
}

func runRevenueList(cmd *cobra.Command, args []string) error {
	var entries []*model.RevenueEntry
	if revenueFlagFrom != "" || revenueFlagTo != "" {
		from, to := "0000-01-01", "9999-12-31"
		var err error
		if revenueFlagFrom != "" {
			if from, err = parseDay("from", revenueFlagFrom); err != nil {
				return err
			}
		}
		if revenueFlagTo != "" {
			if to, err = parseDay("to", revenueFlagTo); err != nil {
				return err
			}
		}
		if entries, err = ctx.Revenue.ListByDateRange(from, to); err != nil {
			return err
		}
	} else {
		entries = ctx.Revenue.List()
	}

	entries = storage.SortByDateDesc(entries)
	if revenueListFlagPlatform != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if strings.EqualFold(e.Platform, revenueListFlagPlatform) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if revenueFlagLimit > 0 && len(entries) > revenueFlagLimit {
		entries = entries[:revenueFlagLimit]
	}

	if ctx.IsJSON() {
		return output.PrintList(ctx.JSONFormatter(), entries)
	}
	ctx.CLIFormatter().PrintRevenueList(entries)
	return nil
}

func revenueIDs() []string {
	entries := ctx.Revenue.List()
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

func runRevenueUpdate(cmd *cobra.Command, args []string) error {
	id, err := resolveID(args[0], revenueIDs(), errors.ErrRevenueNotFound)
	if err != nil {
		return err
	}

	patch := model.RevenuePatch{
		Platform:   stringPtr(cmd, "platform", revenueUpdateFlagPlatform),
		VideoTitle: stringPtr(cmd, "video", revenueUpdateFlagVideo),
		Notes:      stringPtr(cmd, "notes", revenueUpdateFlagNotes),
	}
	if changed(cmd, "amount") {
		amount, err := validate.Amount("amount", revenueFlagAmount)
		if err != nil {
			return err
		}
		patch.Amount = &amount
	}
	if changed(cmd, "date") {
		date, err := parseDay("date", revenueUpdateFlagDate)
		if err != nil {
			return err
		}
		patch.Date = &date
	}

	entry, err := ctx.Revenue.Update(id, patch)
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintStatus("updated", entry.ID, entry)
	}
	ctx.CLIFormatter().PrintRevenueAdded("Updated", entry)
	return nil
}

func runRevenueDelete(cmd *cobra.Command, args []string) error {
	id, err := resolveID(args[0], revenueIDs(), errors.ErrRevenueNotFound)
	if err != nil {
		return err
	}
	entry, err := ctx.Revenue.Get(id)
	if err != nil {
		return err
	}

	if !ctx.IsJSON() {
		cli := ctx.CLIFormatter()
		cli.Printf("%s  %s  %s\n", entry.Date, entry.Platform, cli.Money(entry.Amount))
	}
	ok, err := promptConfirmation("Delete this entry? (y/N): ", revenueFlagYes)
	if err != nil {
		return err
	}
	if !ok {
		ctx.CLIFormatter().Muted("Cancelled")
		return nil
	}

	deleted, err := ctx.Revenue.Delete(id)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.NewNotFoundError(errors.ErrRevenueNotFound.Kind, id)
	}
	return printDeleted("Revenue entry", id)
}

func runRevenueStats(cmd *cobra.Command, args []string) error {
	stats := ctx.Revenue.Stats()
	if ctx.IsJSON() {
		return ctx.JSONFormatter().Print(stats)
	}
	cli := ctx.CLIFormatter()
	cli.PrintRevenueStats(stats)
	cli.Println()
	cli.PrintGoal(ctx.Revenue.CheckMonthlyGoal())
	return nil
}

func runRevenueExport(cmd *cobra.Command, args []string) error {
	data, err := ctx.Revenue.Export()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		_, err = ctx.Formatter.Writer.Write(append(data, '\n'))
		return err
	}
	if err := storage.SafeWrite(args[0], data, 0o600); err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintStatus("exported", "", map[string]any{"path": args[0], "bytes": len(data)})
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Exported %d entries to %s", len(ctx.Revenue.List()), args[0]))
	return nil
}

func runRevenueImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.NewUserErrorWithField("file", args[0], "cannot read import file", "Check the path and permissions.")
	}
	added, err := ctx.Revenue.Import(data, revenueFlagReplace)
	if err != nil {
		return err
	}
	if _, err := ctx.Videos.RecomputeMetrics(ctx.Revenue.List()); err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintStatus("imported", "", map[string]int{"added": added})
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Imported %d entries", added))
	return nil
}
