package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/speclint/internal/config"
	"github.com/ShayCichocki/speclint/internal/logging"
)

var (
	rootVerbose bool
	rootLogFile string
)

// errValidationFailed makes the process exit 1 without printing anything more;
// the verdict has already been reported.
var errValidationFailed = errors.New("validation failed")

var (
	appConfig *config.Config
	appLog    *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "speclint",
	Short: "Validate that a spec builds and tests on every platform it declares",
	Long: `speclint validates a spec descriptor by installing it into a scratch
workspace and driving xcodebuild across the platform matrix.

Each platform is built in Release and Debug, for device and (where one exists)
simulator, and its test specs are run. Compiler output is classified into
deduplicated errors, warnings and notes, and a single verdict is reported.

Configuration is read from ~/.config/speclint/config.yaml, a .speclint.yaml in
the current directory or a parent, and SPECLINT_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		appConfig = cfg

		logFile := rootLogFile
		if logFile == "" {
			logFile = cfg.Output.LogFile
		}
		logger, err := logging.New(logging.Options{Verbose: rootVerbose, File: logFile})
		if err != nil {
			return err
		}
		logger.SetGlobal()
		appLog = logger
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLog != nil {
			appLog.Close()
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errValidationFailed) {
			fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		}
		if appLog != nil {
			appLog.Close()
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Show build commands and per-cell progress")
	rootCmd.PersistentFlags().StringVar(&rootLogFile, "log-file", "", "Append JSON debug logs to this file")

	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
