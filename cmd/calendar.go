package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/model"
	"github.com/manav03panchal/creatorbook/internal/output"
)

// Calendar command flags.
var (
	calendarFlagDate        string
	calendarFlagTime        string
	calendarFlagType        string
	calendarFlagDescription string
	calendarFlagStatus      string
	calendarFlagMonth       string
	calendarFlagUpcoming    int
	calendarFlagYes         bool
)

var eventTypes = []string{
	string(model.EventVideo), string(model.EventTask), string(model.EventMeeting), string(model.EventDeadline),
}

var eventStatuses = []string{
	string(model.StatusScheduled), string(model.StatusPending), string(model.StatusConfirmed),
	string(model.StatusCompleted), string(model.StatusCancelled),
}

// calendarCmd represents the calendar command.
var calendarCmd = &cobra.Command{
	Use:     "calendar",
	Aliases: []string{"cal"},
	Short:   "Plan uploads, tasks and deadlines",
	Long: `Keep a content calendar of video uploads, tasks, meetings and deadlines.

Examples:
  creatorbook calendar add "Upload lofi mix" --date friday --time 18:00 --type video
  creatorbook calendar list --upcoming 5
  creatorbook calendar month 2024-03
  creatorbook calendar status 3f2a completed`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCalendarMonth(cmd, nil)
	},
}

var calendarAddCmd = &cobra.Command{
	Use:   "add TITLE",
	Short: "Add a calendar event",
	Args:  cobra.ExactArgs(1),
	RunE:  runCalendarAdd,
}

var calendarListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List calendar events",
	RunE:    runCalendarList,
}

var calendarMonthCmd = &cobra.Command{
	Use:   "month [YYYY-MM]",
	Short: "Show a month grid",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCalendarMonth,
}

var calendarStatusCmd = &cobra.Command{
	Use:               "status ID STATUS",
	Short:             "Change the status of an event",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeEventIDs,
	RunE:              runCalendarStatus,
}

var calendarDeleteCmd = &cobra.Command{
	Use:               "delete ID",
	Aliases:           []string{"rm"},
	Short:             "Delete a calendar event",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeEventIDs,
	RunE:              runCalendarDelete,
}

func init() {
	calendarAddCmd.Flags().StringVarP(&calendarFlagDate, "date", "d", "today", "Event date (e.g., 2024-03-01, tomorrow, friday)")
	calendarAddCmd.Flags().StringVar(&calendarFlagTime, "time", "", "Event time (HH:MM)")
	calendarAddCmd.Flags().StringVarP(&calendarFlagType, "type", "t", string(model.EventVideo), "Event type: "+strings.Join(eventTypes, ", "))
	calendarAddCmd.Flags().StringVar(&calendarFlagDescription, "description", "", "Event description")
	calendarAddCmd.Flags().StringVar(&calendarFlagStatus, "status", string(model.StatusScheduled), "Initial status")
	calendarAddCmd.RegisterFlagCompletionFunc("type", completeFixed(eventTypes))
	calendarAddCmd.RegisterFlagCompletionFunc("status", completeFixed(eventStatuses))

	calendarListCmd.Flags().StringVarP(&calendarFlagMonth, "month", "m", "", "Only events in this month (YYYY-MM)")
	calendarListCmd.Flags().IntVarP(&calendarFlagUpcoming, "upcoming", "u", 0, "Only the next N open events")

	calendarDeleteCmd.Flags().BoolVarP(&calendarFlagYes, "yes", "y", false, "Skip confirmation prompt")

	calendarCmd.AddCommand(calendarAddCmd, calendarListCmd, calendarMonthCmd, calendarStatusCmd, calendarDeleteCmd)
	rootCmd.AddCommand(calendarCmd)
}

// completeFixed completes from a fixed list of values.
func completeFixed(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return filterPrefix(values, toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

// parseMonth parses YYYY-MM, defaulting to the current month.
func parseMonth(s string) (int, time.Month, error) {
	if s == "" {
		now := nowFunc()
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, errors.NewUserErrorWithField("month", s, "invalid month",
			"Use YYYY-MM, for example 2024-03.")
	}
	return t.Year(), t.Month(), nil
}

func parseEventTime(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return "", errors.NewUserErrorWithField("time", s, "invalid time", "Use HH:MM, for example 18:30.")
	}
	return t.Format("15:04"), nil
}

func runCalendarAdd(cmd *cobra.Command, args []string) error {
	date, err := parseDay("date", calendarFlagDate)
	if err != nil {
		return err
	}
	at, err := parseEventTime(calendarFlagTime)
	if err != nil {
		return err
	}

	e, err := ctx.Calendar.Add(&model.CalendarEvent{
		Title:       args[0],
		Type:        model.EventType(strings.ToLower(calendarFlagType)),
		Date:        date,
		Time:        at,
		Description: calendarFlagDescription,
		Status:      model.EventStatus(strings.ToLower(calendarFlagStatus)),
	})
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintStatus("created", e.ID, e)
	}
	when := e.Date
	if e.Time != "" {
		when += " " + e.Time
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Added %s %q on %s", e.Type, e.Title, when))
	return nil
}

func runCalendarList(cmd *cobra.Command, args []string) error {
	var events []*model.CalendarEvent
	switch {
	case calendarFlagUpcoming > 0:
		events = ctx.Calendar.Upcoming(calendarFlagUpcoming)
	case calendarFlagMonth != "":
		year, month, err := parseMonth(calendarFlagMonth)
		if err != nil {
			return err
		}
		events = ctx.Calendar.ListByMonth(year, month)
	default:
		events = ctx.Calendar.List()
	}
	if ctx.IsJSON() {
		return output.PrintList(ctx.JSONFormatter(), events)
	}
	ctx.CLIFormatter().PrintEvents(events)
	return nil
}

func runCalendarMonth(cmd *cobra.Command, args []string) error {
	var arg string
	if len(args) > 0 {
		arg = args[0]
	}
	year, month, err := parseMonth(arg)
	if err != nil {
		return err
	}
	grid := ctx.Calendar.MonthGrid(year, month)
	if ctx.IsJSON() {
		return ctx.JSONFormatter().Print(grid)
	}
	cli := ctx.CLIFormatter()
	cli.PrintMonthGrid(grid)
	if events := ctx.Calendar.ListByMonth(year, month); len(events) > 0 {
		cli.Println()
		cli.PrintEvents(events)
	}
	return nil
}

func eventIDs() []string {
	events := ctx.Calendar.List()
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}

func runCalendarStatus(cmd *cobra.Command, args []string) error {
	id, err := resolveID(args[0], eventIDs(), errors.ErrEventNotFound)
	if err != nil {
		return err
	}
	e, err := ctx.Calendar.SetStatus(id, model.EventStatus(strings.ToLower(args[1])))
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintStatus("updated", e.ID, e)
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("%s is now %s", e.Title, e.Status))
	return nil
}

func runCalendarDelete(cmd *cobra.Command, args []string) error {
	id, err := resolveID(args[0], eventIDs(), errors.ErrEventNotFound)
	if err != nil {
		return err
	}
	ok, err := promptConfirmation("Delete this event? (y/N): ", calendarFlagYes)
	if err != nil {
		return err
	}
	if !ok {
		ctx.CLIFormatter().Muted("Cancelled")
		return nil
	}
	deleted, err := ctx.Calendar.Delete(id)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.NewNotFoundError(errors.ErrEventNotFound.Kind, id)
	}
	return printDeleted("Event", id)
}
