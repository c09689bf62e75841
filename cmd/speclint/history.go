package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/speclint/internal/history"
	"github.com/ShayCichocki/speclint/pkg/models"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent validation runs",
	Long: `List the most recent lint runs recorded in the history database.

Only summaries are kept: the verdict, the failure reason and how many errors,
warnings and notes were reported. The database lives at
$XDG_DATA_HOME/speclint/history.db unless output.history_db is configured.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := appConfig.Output.HistoryDB
	if path == "" {
		path = history.DefaultPath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("No runs recorded yet. Run 'speclint lint' to start.")
		return nil
	}

	db, err := history.Open(path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer db.Close()

	runs, err := db.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet. Run 'speclint lint' to start.")
		return nil
	}

	now := time.Now()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tSPEC\tPLATFORMS\tRESULT\tE/W/N\tDURATION")
	for _, r := range runs {
		result := color.GreenString("passed")
		if !r.Success {
			result = color.RedString("failed")
		}
		spec := r.Spec
		if r.Version != "" {
			spec += " (" + r.Version + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d/%d\t%s\n",
			r.Age(now), spec, platformList(r.Platforms), result,
			r.Errors, r.Warnings, r.Notes, r.Duration.Round(time.Second))
	}
	return w.Flush()
}

func platformList(names []models.PlatformName) string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, n.DisplayName())
	}
	return strings.Join(out, ",")
}
