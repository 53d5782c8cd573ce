package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/logging"
	"github.com/manav03panchal/creatorbook/internal/mailer"
	"github.com/manav03panchal/creatorbook/internal/model"
	"github.com/manav03panchal/creatorbook/internal/output"
	"github.com/manav03panchal/creatorbook/internal/report"
	"github.com/manav03panchal/creatorbook/internal/scheduler"
)

// Schedule command flags.
var (
	scheduleFlagType      string
	scheduleFlagFrequency string
	scheduleFlagFormat    string
	scheduleFlagEmail     string
	scheduleFlagDisabled  bool
	scheduleFlagYes       bool
)

// scheduleCmd represents the schedule command.
var scheduleCmd = &cobra.Command{
	Use:     "schedule",
	Aliases: []string{"sched"},
	Short:   "Manage recurring reports",
	Long: `Manage reports that are generated on a recurring schedule and optionally
emailed. 'schedule due' runs every report that is due once; 'schedule watch'
keeps running and checks every minute.

Examples:
  creatorbook schedule add "Quarterly taxes" --type commercialista --frequency quarterly --email me@example.com
  creatorbook schedule list
  creatorbook schedule watch`,
}

var scheduleAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a scheduled report",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleAdd,
}

var scheduleListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List scheduled reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		reports := ctx.Schedules.List()
		if ctx.IsJSON() {
			return output.PrintList(ctx.JSONFormatter(), reports)
		}
		ctx.CLIFormatter().PrintSchedules(reports)
		return nil
	},
}

var scheduleDeleteCmd = &cobra.Command{
	Use:               "delete ID",
	Aliases:           []string{"rm"},
	Short:             "Delete a scheduled report",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeScheduleIDs,
	RunE:              runScheduleDelete,
}

var scheduleEnableCmd = &cobra.Command{
	Use:               "enable ID",
	Short:             "Enable a scheduled report",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeScheduleIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setScheduleEnabled(args[0], true)
	},
}

var scheduleDisableCmd = &cobra.Command{
	Use:               "disable ID",
	Short:             "Disable a scheduled report",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeScheduleIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setScheduleEnabled(args[0], false)
	},
}

var scheduleRunCmd = &cobra.Command{
	Use:               "run ID",
	Short:             "Run a scheduled report now",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeScheduleIDs,
	RunE:              runScheduleRun,
}

var scheduleDueCmd = &cobra.Command{
	Use:   "due",
	Short: "Run every scheduled report that is due",
	RunE:  runScheduleDue,
}

var scheduleWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep running and generate scheduled reports when they are due",
	Long: `Run in the foreground and check for due reports every minute. Reports
missed while the machine was asleep run on the first check after waking.
Stop with Ctrl+C.`,
	RunE: runScheduleWatch,
}

func init() {
	scheduleAddCmd.Flags().StringVarP(&scheduleFlagType, "type", "t", string(model.ReportCommercialista), "Report type: commercialista, performance, executive")
	scheduleAddCmd.Flags().StringVar(&scheduleFlagFrequency, "frequency", string(model.FrequencyMonthly), "Frequency: daily, weekly, monthly, quarterly, annual")
	scheduleAddCmd.Flags().StringVarP(&scheduleFlagFormat, "output", "o", string(model.FormatPDF), "File format: csv, json, html, pdf")
	scheduleAddCmd.Flags().StringVarP(&scheduleFlagEmail, "email", "e", "", "Email the report to this address")
	scheduleAddCmd.Flags().BoolVar(&scheduleFlagDisabled, "disabled", false, "Create the schedule disabled")
	scheduleAddCmd.RegisterFlagCompletionFunc("type", completeReportTypes)
	scheduleAddCmd.RegisterFlagCompletionFunc("frequency", completeFrequencies)
	scheduleAddCmd.RegisterFlagCompletionFunc("output", completeFormats)

	scheduleDeleteCmd.Flags().BoolVarP(&scheduleFlagYes, "yes", "y", false, "Skip confirmation prompt")

	scheduleCmd.AddCommand(scheduleAddCmd, scheduleListCmd, scheduleDeleteCmd, scheduleEnableCmd,
		scheduleDisableCmd, scheduleRunCmd, scheduleDueCmd, scheduleWatchCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func runScheduleAdd(cmd *cobra.Command, args []string) error {
	t, err := parseReportType(scheduleFlagType)
	if err != nil {
		return err
	}
	format, err := parseReportFormat(scheduleFlagFormat)
	if err != nil {
		return err
	}
	freq, err := model.ParseFrequency(scheduleFlagFrequency)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidFrequency, "%q", scheduleFlagFrequency)
	}

	s, err := ctx.Schedules.Add(&model.ScheduledReport{
		Name:      args[0],
		Type:      t,
		Frequency: freq,
		Format:    format,
		Email:     scheduleFlagEmail,
		Enabled:   !scheduleFlagDisabled,
	})
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintStatus("created", s.ID, s)
	}
	cli := ctx.CLIFormatter()
	cli.Success(fmt.Sprintf("Scheduled %s (%s, %s)", s.Name, s.Type, s.Frequency))
	cli.Printf("  Next run: %s\n", output.FormatTime(s.NextRun()))
	if s.Email != "" && !mailConfigured() {
		cli.Warning("Mail is not configured; the report will be written but not sent.")
	}
	return nil
}

func mailConfigured() bool {
	_, disabled := ctx.Mailer.(mailer.NopSender)
	return !disabled
}

func scheduleIDs() []string {
	reports := ctx.Schedules.List()
	ids := make([]string, len(reports))
	for i, s := range reports {
		ids[i] = s.ID
	}
	return ids
}

func runScheduleDelete(cmd *cobra.Command, args []string) error {
	id, err := resolveID(args[0], scheduleIDs(), errors.ErrScheduleNotFound)
	if err != nil {
		return err
	}
	ok, err := promptConfirmation("Delete this scheduled report? (y/N): ", scheduleFlagYes)
	if err != nil {
		return err
	}
	if !ok {
		ctx.CLIFormatter().Muted("Cancelled")
		return nil
	}
	deleted, err := ctx.Schedules.Delete(id)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.NewNotFoundError(errors.ErrScheduleNotFound.Kind, id)
	}
	return printDeleted("Scheduled report", id)
}

func setScheduleEnabled(input string, enabled bool) error {
	id, err := resolveID(input, scheduleIDs(), errors.ErrScheduleNotFound)
	if err != nil {
		return err
	}
	s, err := ctx.Schedules.SetEnabled(id, enabled)
	if err != nil {
		return err
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintStatus(state, s.ID, s)
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("%s %s", s.Name, state))
	return nil
}

func runScheduleRun(cmd *cobra.Command, args []string) error {
	id, err := resolveID(args[0], scheduleIDs(), errors.ErrScheduleNotFound)
	if err != nil {
		return err
	}
	res, err := ctx.Runner.RunScheduled(cmd.Context(), id)
	if res != nil {
		if ctx.IsJSON() {
			if perr := ctx.JSONFormatter().PrintReport(res); perr != nil {
				return perr
			}
		} else {
			ctx.CLIFormatter().PrintReportResult(res)
		}
	}
	return err
}

func printResults(results []*report.Result) error {
	if ctx.IsJSON() {
		return output.PrintList(ctx.JSONFormatter(), results)
	}
	cli := ctx.CLIFormatter()
	if len(results) == 0 {
		cli.Muted("No scheduled reports are due.")
		return nil
	}
	for _, res := range results {
		cli.PrintReportResult(res)
	}
	return nil
}

func runScheduleDue(cmd *cobra.Command, args []string) error {
	results, err := ctx.Runner.RunDue(cmd.Context())
	if perr := printResults(results); perr != nil {
		return perr
	}
	return err
}

func runScheduleWatch(cmd *cobra.Command, args []string) error {
	if !flagDebug {
		logCfg := logging.DefaultConfig()
		logCfg.Level = slog.LevelInfo
		logging.Init(logCfg)
	}

	lock := scheduler.NewLock(scheduler.DefaultLockPath())
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scheduler.NewScheduler(ctx.Runner)

	// Run once right away so reports missed while stopped are not delayed.
	if _, err := s.RunOnce(sigCtx); err != nil {
		logging.Error("report check failed", logging.KeyError, err)
	}
	if err := s.Start(sigCtx); err != nil {
		return err
	}

	cli := ctx.CLIFormatter()
	if !ctx.IsJSON() {
		cli.Printf("Watching %d scheduled reports. Next check %s. Press Ctrl+C to stop.\n",
			len(ctx.Schedules.List()), output.FormatTime(s.NextRun()))
	}

	<-sigCtx.Done()
	s.Stop()

	runs, failures, _ := s.Stats()
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintStatus("stopped", "", map[string]int{"runs": runs, "failures": failures})
	}
	cli.Printf("Stopped after %d report runs (%d failed checks).\n", runs, failures)
	return nil
}
