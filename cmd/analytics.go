package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/creatorbook/internal/analytics"
)

var analyticsSections = []string{
	analytics.SectionOverview,
	analytics.SectionCategories,
	analytics.SectionPlatforms,
	analytics.SectionPerformance,
	analytics.SectionTrends,
	analytics.SectionROI,
	analytics.SectionBenchmarks,
	analytics.SectionInsights,
}

// analyticsCmd represents the analytics command.
var analyticsCmd = &cobra.Command{
	Use:     "analytics [SECTION]",
	Aliases: []string{"stats", "a"},
	Short:   "Show analytics computed from revenue and videos",
	Long: `Show the full analytics snapshot or one section of it.

Sections: overview, categories, platforms, performance, trends, roi,
benchmarks, insights

Examples:
  creatorbook analytics
  creatorbook analytics insights
  creatorbook analytics roi --format json`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: analyticsSections,
	RunE:      runAnalytics,
}

func init() {
	rootCmd.AddCommand(analyticsCmd)
}

func runAnalytics(cmd *cobra.Command, args []string) error {
	section := "all"
	if len(args) > 0 {
		section = args[0]
	}

	result, err := ctx.Analytics.Section(section)
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().Print(result)
	}
	ctx.CLIFormatter().PrintSection(result)
	return nil
}
