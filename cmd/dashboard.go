package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/creatorbook/internal/tui"
)

// dashboardCmd represents the dashboard command.
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash", "tui"},
	Short:   "Open the interactive dashboard",
	Long: `Open an interactive terminal dashboard with an overview, revenue,
videos, analytics and the content calendar. Sections refresh on their own;
a section that fails to load shows an error and the others keep working.

Keyboard Controls:
  1-5   - Jump to a section
  tab   - Next section
  r     - Reload the current section
  n     - How to add revenue
  b     - Write a backup
  q     - Quit dashboard

Examples:
  creatorbook dashboard
  creatorbook dash`,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	config := tui.DashboardConfig{
		Revenue:         ctx.Revenue,
		Videos:          ctx.Videos,
		Analytics:       ctx.Analytics,
		Calendar:        ctx.Calendar,
		Backups:         ctx.Backups,
		BackupsDir:      ctx.Config.BackupsDir,
		Currency:        ctx.Settings.Get().CurrencyCode(),
		RefreshInterval: ctx.Config.RefreshInterval,
	}

	return tui.Run(config)
}
