package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/speclint/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key]",
	Short: "Show the resolved configuration",
	Long: `Display the configuration speclint will use.

Without arguments, displays every key, its value and where it came from.
With one argument (key), displays the value for that key.

Configuration is stored at ~/.config/speclint/config.yaml
Project-specific overrides can be placed in .speclint.yaml
Any key can be overridden with SPECLINT_<SECTION>_<KEY>, e.g. SPECLINT_DRIVER_TIMEOUT.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return displayConfigKey(appConfig, args[0])
		}
		displayAllConfig(appConfig)
		return nil
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("user config:    %s\n", config.GetUserConfigPath())
	if project := config.GetProjectConfigPath(); project != "" {
		fmt.Printf("project config: %s\n", project)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, s := range config.Settings(cfg) {
		value := s.Value
		if value == "" {
			value = "(not set)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Key, value, color.New(color.Faint).Sprint(s.Source))
	}
	w.Flush()
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) error {
	key = strings.ToLower(key)
	for _, s := range config.Settings(cfg) {
		if s.Key == key {
			fmt.Println(s.Value)
			return nil
		}
	}
	return fmt.Errorf("unknown configuration key: %s", key)
}
