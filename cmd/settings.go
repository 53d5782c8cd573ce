package cmd

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/validate"
)

// Settings command flags.
var (
	settingsFlagThreshold      string
	settingsFlagTarget         string
	settingsFlagCurrency       string
	settingsFlagAddCategory    []string
	settingsFlagRemoveCategory []string
	settingsFlagYes            bool
)

// settingsCmd represents the settings command.
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change business settings",
	Long: `Business settings are stored with your data and included in backups:
the VAT registration threshold, the monthly revenue target, the currency
and any extra video categories.

Examples:
  creatorbook settings
  creatorbook settings set --threshold 5000 --target 200
  creatorbook settings set --add-category Podcast
  creatorbook settings reset --yes`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change settings",
	RunE:  runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	RunE:  runSettingsReset,
}

func init() {
	settingsSetCmd.Flags().StringVar(&settingsFlagThreshold, "threshold", "", "Annual VAT registration threshold")
	settingsSetCmd.Flags().StringVar(&settingsFlagTarget, "target", "", "Monthly revenue target")
	settingsSetCmd.Flags().StringVar(&settingsFlagCurrency, "currency", "", "Three-letter currency code (e.g., EUR)")
	settingsSetCmd.Flags().StringSliceVar(&settingsFlagAddCategory, "add-category", nil, "Add a video category")
	settingsSetCmd.Flags().StringSliceVar(&settingsFlagRemoveCategory, "remove-category", nil, "Remove an extra video category")
	settingsSetCmd.RegisterFlagCompletionFunc("remove-category", completeCategories)

	settingsResetCmd.Flags().BoolVarP(&settingsFlagYes, "yes", "y", false, "Skip confirmation prompt")

	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	s := ctx.Settings.Get()
	if ctx.IsJSON() {
		return ctx.JSONFormatter().Print(s)
	}
	ctx.CLIFormatter().PrintSettings(s)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	s := ctx.Settings.Get()
	updated := false

	if changed(cmd, "threshold") {
		d, err := validate.Amount("threshold", settingsFlagThreshold)
		if err != nil {
			return err
		}
		s.PivaThreshold = d
		updated = true
	}
	if changed(cmd, "target") {
		d, err := validate.Amount("target", settingsFlagTarget)
		if err != nil {
			return err
		}
		s.MonthlyTarget = d
		updated = true
	}
	if changed(cmd, "currency") {
		s.Currency = strings.ToUpper(strings.TrimSpace(settingsFlagCurrency))
		updated = true
	}
	for _, c := range settingsFlagAddCategory {
		c = strings.TrimSpace(c)
		if c != "" && !s.HasCategory(c) {
			s.ExtraCategories = append(s.ExtraCategories, c)
			updated = true
		}
	}
	for _, c := range settingsFlagRemoveCategory {
		i := slices.IndexFunc(s.ExtraCategories, func(e string) bool { return strings.EqualFold(e, c) })
		if i < 0 {
			return errors.NewUserErrorWithField("category", c, "not an extra category",
				"Only categories added with --add-category can be removed.")
		}
		s.ExtraCategories = slices.Delete(s.ExtraCategories, i, i+1)
		updated = true
	}

	if !updated {
		return errors.NewUserError("nothing to update",
			"Pass at least one of --threshold, --target, --currency, --add-category or --remove-category.")
	}
	if err := ctx.Settings.Update(s); err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintStatus("updated", "", s)
	}
	cli := ctx.CLIFormatter()
	cli.Success("Settings updated")
	cli.PrintSettings(s)
	return nil
}

func runSettingsReset(cmd *cobra.Command, args []string) error {
	ok, err := promptConfirmation("Reset all settings to their defaults? (y/N): ", settingsFlagYes)
	if err != nil {
		return err
	}
	if !ok {
		ctx.CLIFormatter().Muted("Cancelled")
		return nil
	}
	s, err := ctx.Settings.Reset()
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintStatus("reset", "", s)
	}
	cli := ctx.CLIFormatter()
	cli.Success("Settings reset")
	cli.PrintSettings(s)
	return nil
}
