package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/speclint/internal/workspace"
)

var (
	cleanupForce  bool
	cleanupDryRun bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove workspaces left behind by earlier runs",
	Long: `Remove speclint workspaces left under the workspace base directory.

Workspaces are normally removed when a run ends. Runs with --no-clean, and runs
that were killed, leave them behind.

Examples:
  speclint cleanup              # Interactive cleanup with confirmation
  speclint cleanup --force      # Skip confirmation prompt
  speclint cleanup --dry-run    # Show what would be removed`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().BoolVarP(&cleanupForce, "force", "f", false, "Skip confirmation prompt")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Show what would be removed without removing")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	stale, err := workspace.Stale(appConfig.Workspace.BaseDir)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		fmt.Println("No leftover workspaces found.")
		return nil
	}

	fmt.Printf("Found %d leftover workspace(s):\n", len(stale))
	for _, path := range stale {
		fmt.Printf("  - %s\n", path)
	}
	fmt.Println()

	if cleanupDryRun {
		fmt.Println("Dry run mode - no workspaces were removed.")
		return nil
	}

	if !cleanupForce {
		fmt.Print("Remove these workspaces? [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read confirmation: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Cleanup cancelled.")
			return nil
		}
	}

	removed := 0
	for _, path := range stale {
		if err := os.RemoveAll(path); err != nil {
			appLog.Warn().Err(err).Str("path", path).Msg("remove workspace")
			continue
		}
		if rootVerbose {
			fmt.Printf("Removed: %s\n", path)
		}
		removed++
	}
	fmt.Printf("Successfully removed %d workspace(s).\n", removed)
	return nil
}
