package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jfmyers9/albumlog/internal/album"
	"github.com/jfmyers9/albumlog/internal/config"
	"github.com/jfmyers9/albumlog/internal/extract"
	"github.com/jfmyers9/albumlog/internal/pipeline"
	"github.com/jfmyers9/albumlog/internal/report"
	"github.com/jfmyers9/albumlog/internal/runstate"
	"github.com/jfmyers9/albumlog/internal/sink"
	"github.com/jfmyers9/albumlog/pkg/albumsgen"
	"github.com/spf13/cobra"
)

// runFlags are the command-line overrides of the run command
type runFlags struct {
	name     string
	sink     string
	dir      string
	dryRun   bool
	logFile  string
	logLevel string
	width    int
}

var runOpts runFlags

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [project]",
	Short: "Fetch a project and replace the stored tables",
	Long: `Fetch a 1001 Albums Generator project, normalize it, and replace the
current_album and albums tables in the configured sink.

The project is taken from the argument, --name, or the configuration,
in that order. Both tables are fully replaced on every run.

With --dry-run nothing is written; the dashboard is printed instead.

Exit status is 0 on success and 1 on any failure.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runOpts.name, "name", "", "Project name, converted to its slug (\"My Project\" -> my-project)")
	runCmd.Flags().StringVar(&runOpts.sink, "sink", "", "Sink kind (sqlite, mysql, jsonl, s3, memory)")
	runCmd.Flags().StringVar(&runOpts.dir, "dir", "", "Output directory for the jsonl sink")
	runCmd.Flags().BoolVar(&runOpts.dryRun, "dry-run", false, "Run without writing; print the dashboard")
	runCmd.Flags().StringVar(&runOpts.logFile, "log-file", "", "Log file path, rotated by size (default: stderr)")
	runCmd.Flags().StringVar(&runOpts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	runCmd.Flags().IntVar(&runOpts.width, "width", report.DefaultWidth, "Dashboard width for --dry-run")
}

// applyRunFlags merges the argument and flags into cfg.
func applyRunFlags(cfg *config.Config, args []string, f runFlags) {
	switch {
	case len(args) > 0:
		cfg.Project = args[0]
	case f.name != "":
		cfg.Project = ""
		cfg.ProjectName = f.name
	}
	if f.sink != "" {
		cfg.Sink.Kind = f.sink
	}
	if f.dir != "" {
		cfg.Sink.Dir = f.dir
	}
	if f.dryRun {
		cfg.Sink.Kind = config.SinkMemory
	}
	if f.logFile != "" {
		cfg.Log.File = f.logFile
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
}

// newAPIClient creates the albums API client from configuration.
func newAPIClient(cfg *config.Config, debug albumsgen.Logger) (*albumsgen.Client, error) {
	return albumsgen.NewClient(albumsgen.Config{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: &http.Client{Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second},
		Logger:     debug,
	})
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	applyRunFlags(cfg, args, runOpts)

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer := setupLogger(cfg.Log)
	defer closer.Close()

	client, err := newAPIClient(cfg, extract.APILogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := pipeline.New(
		extract.New(client, logger),
		func(ctx context.Context) (sink.Sink, error) { return sink.Open(ctx, cfg, logger) },
		logger,
	)

	res, err := runner.Run(ctx, cfg.ProjectID())
	if !runOpts.dryRun {
		if rerr := recordRun(cfg, res, err); rerr != nil {
			logger.Warn().Err(rerr).Str("state_file", cfg.StatePath()).Msg("failed to record run")
		}
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if runOpts.dryRun {
		return report.Render(out, report.Summarize(res.Current, res.Rows), runOpts.width)
	}

	fmt.Fprintf(out, "Loaded %d albums for %s into %s (%d unrated skipped)\n",
		res.Loaded, res.ProjectID, describeSink(cfg), res.Dropped)
	fmt.Fprintf(out, "Now listening: %s - %s\n", res.Current.Name, res.Current.Artist)
	return nil
}

// recordRun stores the outcome of a run for 'albumlog status'.
func recordRun(cfg *config.Config, res pipeline.Result, runErr error) error {
	state, err := runstate.Open(cfg.StatePath())
	if err != nil {
		return err
	}
	return state.Record(runRecord(cfg, res, runErr))
}

func runRecord(cfg *config.Config, res pipeline.Result, runErr error) runstate.Run {
	run := runstate.Run{
		RunID:      res.RunID,
		ProjectID:  res.ProjectID,
		Sink:       describeSink(cfg),
		Status:     runstate.StatusOK,
		StartedAt:  res.Started,
		FinishedAt: res.Started.Add(res.Duration),
		Extracted:  res.Extracted,
		Loaded:     res.Loaded,
		Dropped:    res.Dropped,
	}
	if runErr != nil {
		run.Status = runstate.StatusFailed
		run.ErrorKind = album.KindOf(runErr).String()
		run.Error = runErr.Error()
		var stageErr *pipeline.StageError
		if errors.As(runErr, &stageErr) {
			run.Stage = string(stageErr.Stage)
		}
	}
	return run
}

// describeSink names the sink destination for humans.
func describeSink(cfg *config.Config) string {
	switch cfg.Sink.Kind {
	case config.SinkSQLite:
		return "sqlite " + cfg.Sink.SQLitePath
	case config.SinkMySQL:
		return fmt.Sprintf("mysql %s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	case config.SinkS3:
		return "s3://" + cfg.ObjectStore.Bucket + "/" + cfg.ObjectStore.Prefix
	case config.SinkMemory:
		return "memory"
	default:
		return cfg.Sink.Dir
	}
}
