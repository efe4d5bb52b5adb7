package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/jfmyers9/albumlog/internal/config"
	"github.com/jfmyers9/albumlog/internal/runstate"
	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the outcome of the last run",
	Long: `Show the last run and the last successful run recorded by 'albumlog run'.

Useful to check a scheduled export: a failed last run names the stage
and kind of failure.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	state, err := runstate.Open(cfg.StatePath())
	if err != nil {
		return fmt.Errorf("failed to read run state: %w", err)
	}

	out := cmd.OutOrStdout()
	last, ok := state.LastRun()
	if !ok {
		fmt.Fprintln(out, "No runs recorded yet")
		return nil
	}

	runs, failures := state.Counts()
	fmt.Fprintf(out, "Runs: %d (%d failed)\n\n", runs, failures)
	printRun(out, "Last run", last)

	if last.Status != runstate.StatusOK {
		if success, ok := state.LastSuccess(); ok {
			fmt.Fprintln(out)
			printRun(out, "Last success", success)
		}
	}
	return nil
}

func printRun(w io.Writer, title string, r runstate.Run) {
	fmt.Fprintf(w, "%s: %s\n", title, r.Status)
	fmt.Fprintf(w, "  Project:  %s\n", r.ProjectID)
	fmt.Fprintf(w, "  Sink:     %s\n", r.Sink)
	fmt.Fprintf(w, "  Started:  %s\n", r.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(w, "  Duration: %s\n", r.Duration().Round(time.Millisecond))
	if r.Status == runstate.StatusOK {
		fmt.Fprintf(w, "  Albums:   %d loaded, %d unrated skipped\n", r.Loaded, r.Dropped)
		return
	}
	fmt.Fprintf(w, "  Failed:   %s (%s)\n", r.Stage, r.ErrorKind)
	fmt.Fprintf(w, "  Error:    %s\n", r.Error)
}
