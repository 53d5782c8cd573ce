// Package cmd provides the CLI commands for creatorbook.
//
// This software is a derivative work based on Zeit (https://github.com/mrusme/zeit)
// Original work copyright (c) マリウス (mrusme)
// Modifications copyright (c) Manav Panchal
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/creatorbook/internal/config"
	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/logging"
	"github.com/manav03panchal/creatorbook/internal/output"
	"github.com/manav03panchal/creatorbook/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat string
	flagColor  string
	flagDebug  bool
	flagConfig string
)

// ctx is the shared runtime context.
var ctx *runtime.Context

// cfg is the loaded configuration.
var cfg *config.Config

// annotationNoRuntime marks commands that run without opening the database.
const annotationNoRuntime = "no-runtime"

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "creatorbook",
	Short: "Business dashboard for independent music creators",
	Long: `creatorbook records revenue, tracks video performance, computes
analytics and produces fiscal and performance reports.

Examples:
  creatorbook revenue add 120.50 --platform YouTube --video "Rainy Study Beats"
  creatorbook video add "Rainy Study Beats" --category Study --views 12000
  creatorbook analytics insights
  creatorbook report generate commercialista --period last_quarter --output pdf
  creatorbook dashboard`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for completion and help commands (but allow __complete for dynamic completions)
		if cmd.Name() == "completion" || cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		if flagDebug {
			logging.InitDebug()
		} else {
			logging.Init(logging.DefaultConfig())
		}

		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}
		if cmd.Annotations[annotationNoRuntime] == "true" {
			return nil
		}

		// Create runtime context
		opts := runtime.DefaultOptions()
		opts.Config = cfg
		opts.Format = output.ParseFormat(flagFormat)
		opts.ColorMode = output.ParseColorMode(flagColor)
		opts.Debug = flagDebug

		ctx, err = runtime.New(opts)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if ctx != nil {
			return ctx.Close()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: show the revenue overview
		return runRevenueStats(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Errors are printed with a suggestion before being returned.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
		if ctx != nil {
			ctx.Close()
		}
	}
	return err
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Config file (default ./config.yaml or "+config.DefaultPath()+")")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("creatorbook %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
		cmd.Println("")
		cmd.Println("Based on Zeit (https://github.com/mrusme/zeit)")
		cmd.Println("Licensed under SEGV License v1.0")
	},
}

func printError(err error) {
	if ctx != nil && ctx.IsJSON() {
		ctx.JSONFormatter().PrintError(err)
		return
	}
	if flagFormat == string(output.FormatJSON) {
		output.NewJSONFormatter(&output.Formatter{Writer: os.Stderr}).PrintError(err)
		return
	}
	os.Stderr.WriteString("Error: " + errors.FormatError(err) + "\n")
}

// Die prints an error and exits.
func Die(err error) {
	printError(err)
	os.Exit(1)
}
