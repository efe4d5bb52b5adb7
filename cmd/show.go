package cmd

import (
	"errors"
	"fmt"

	"github.com/jfmyers9/albumlog/internal/config"
	"github.com/jfmyers9/albumlog/internal/report"
	"github.com/jfmyers9/albumlog/internal/sink"
	"github.com/spf13/cobra"
)

var showWidth int

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the listening dashboard from the stored tables",
	Long: `Read the tables back from the configured sink and print the dashboard:
the current album with its playback links, rating and streak figures,
top and bottom albums, rating differences against the global rating,
genres, decades, artist origins and the latest reviews.

Works with the jsonl, sqlite, mysql and s3 sinks.`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().IntVar(&showWidth, "width", report.DefaultWidth, "Output width in columns")
	showCmd.Flags().String("sink", "", "Sink kind to read (default: configured sink)")
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if kind, _ := cmd.Flags().GetString("sink"); kind != "" {
		cfg.Sink.Kind = kind
	}
	if cfg.Sink.Kind == config.SinkMemory {
		return fmt.Errorf("the memory sink does not keep data between runs")
	}

	logger, closer := setupLogger(cfg.Log)
	defer closer.Close()

	ctx := cmd.Context()
	s, err := sink.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	r, ok := s.(sink.Reader)
	if !ok {
		return fmt.Errorf("sink %q cannot be read back", cfg.Sink.Kind)
	}

	current, rows, err := r.ReadAll(ctx)
	if errors.Is(err, sink.ErrNoData) {
		return fmt.Errorf("nothing loaded yet; run 'albumlog run' first")
	}
	if err != nil {
		return err
	}

	return report.Render(cmd.OutOrStdout(), report.Summarize(current, rows), showWidth)
}
