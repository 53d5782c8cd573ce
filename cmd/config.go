package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/creatorbook/internal/config"
	"github.com/manav03panchal/creatorbook/internal/output"
)

// Config command flags.
var (
	configFlagForce bool
	configFlagPath  string
)

// configCmd represents the config command.
var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"cfg"},
	Short:   "Manage the configuration file",
	Long: `Manage the configuration file. Settings may also be given as
CREATORBOOK_* environment variables, for example
CREATORBOOK_MAIL_SENDGRID_API_KEY.

Examples:
  creatorbook config init
  creatorbook config show
  creatorbook config path`,
	Annotations: map[string]string{annotationNoRuntime: "true"},
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a config file with the default values",
	Annotations: map[string]string{annotationNoRuntime: "true"},
	RunE:        runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show the effective configuration",
	Annotations: map[string]string{annotationNoRuntime: "true"},
	RunE:        runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the config file path",
	Annotations: map[string]string{annotationNoRuntime: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(os.Stdout, configFilePath())
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configFlagForce, "force", false, "Overwrite an existing config file")
	configInitCmd.Flags().StringVar(&configFlagPath, "path", "", "Where to write the file (default: user config directory)")

	configCmd.AddCommand(configInitCmd, configShowCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func configFilePath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.DefaultPath()
}

func newFormatter() *output.Formatter {
	f := output.NewFormatter()
	f.Format = output.ParseFormat(flagFormat)
	f.ColorMode = output.ParseColorMode(flagColor)
	return f
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFlagPath
	if path == "" {
		path = configFilePath()
	}
	if err := config.Default().WriteFile(path, configFlagForce); err != nil {
		return err
	}
	f := newFormatter()
	if f.Format == output.FormatJSON {
		return output.NewJSONFormatter(f).PrintStatus("created", "", map[string]string{"path": path})
	}
	output.NewCLIFormatter(f).Success("Wrote " + path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	redacted := cfg.Redacted()
	f := newFormatter()
	if f.Format == output.FormatJSON {
		return output.NewJSONFormatter(f).Print(redacted)
	}
	data, err := redacted.YAML()
	if err != nil {
		return err
	}
	f.Print(string(data))
	return nil
}
