package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/model"
	"github.com/manav03panchal/creatorbook/internal/report"
)

// Report command flags.
var (
	reportFlagPeriod string
	reportFlagFrom   string
	reportFlagTo     string
	reportFlagFormat string
)

// reportCmd represents the report command.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate reports",
	Long: `Generate fiscal, performance and executive reports as CSV, JSON, HTML
or PDF. Files are written to the configured reports directory.

Examples:
  creatorbook report generate commercialista --period last_quarter --format pdf
  creatorbook report generate performance --period custom --from 2024-01-01 --to 2024-03-31
  creatorbook report templates`,
}

var reportGenerateCmd = &cobra.Command{
	Use:               "generate TYPE",
	Aliases:           []string{"gen"},
	Short:             "Generate a report now",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeReportTypes,
	RunE:              runReportGenerate,
}

var reportTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the report templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		if ctx.IsJSON() {
			return ctx.JSONFormatter().Print(report.Templates)
		}
		ctx.CLIFormatter().PrintTemplates(report.Templates)
		return nil
	},
}

func init() {
	reportGenerateCmd.Flags().StringVarP(&reportFlagPeriod, "period", "p", string(report.CurrentMonth), "Period: current_month, last_month, current_quarter, last_quarter, current_year, last_year, custom")
	reportGenerateCmd.Flags().StringVar(&reportFlagFrom, "from", "", "Start date for a custom period")
	reportGenerateCmd.Flags().StringVar(&reportFlagTo, "to", "", "End date for a custom period")
	reportGenerateCmd.Flags().StringVarP(&reportFlagFormat, "output", "o", string(model.FormatPDF), "File format: csv, json, html, pdf")
	reportGenerateCmd.RegisterFlagCompletionFunc("period", completePeriods)
	reportGenerateCmd.RegisterFlagCompletionFunc("output", completeFormats)

	reportCmd.AddCommand(reportGenerateCmd, reportTemplatesCmd)
	rootCmd.AddCommand(reportCmd)
}

// parseReportType maps a name to a report type.
func parseReportType(s string) (model.ReportType, error) {
	t, err := model.ParseReportType(s)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidReportType, "%q", s)
	}
	return t, nil
}

// parseReportFormat maps a name to a file format.
func parseReportFormat(s string) (model.ReportFormat, error) {
	f, err := model.ParseReportFormat(s)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidFormat, "%q", s)
	}
	return f, nil
}

func runReportGenerate(cmd *cobra.Command, args []string) error {
	t, err := parseReportType(args[0])
	if err != nil {
		return err
	}
	format, err := parseReportFormat(reportFlagFormat)
	if err != nil {
		return err
	}
	kind, err := report.ParsePeriodKind(reportFlagPeriod)
	if err != nil {
		return err
	}

	var from, to string
	if kind == report.Custom {
		if from, err = parseDay("from", reportFlagFrom); err != nil {
			return err
		}
		if to, err = parseDay("to", reportFlagTo); err != nil {
			return err
		}
	}
	period, err := report.ResolvePeriod(kind, nowFunc(), from, to)
	if err != nil {
		return err
	}

	res, err := ctx.Runner.Quick(context.Background(), t, period, format)
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintReport(res)
	}
	ctx.CLIFormatter().PrintReportResult(res)
	return nil
}
