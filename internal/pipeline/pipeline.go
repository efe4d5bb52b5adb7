// Package pipeline runs Extract, Transform and Load for one project.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jfmyers9/albumlog/internal/album"
	"github.com/jfmyers9/albumlog/internal/sink"
	"github.com/rs/zerolog"
)

// Stage names a pipeline step.
type Stage string

const (
	StageExtract   Stage = "extract"
	StageTransform Stage = "transform"
	StageLoad      Stage = "load"
)

// StageError reports which stage of which run failed.
type StageError struct {
	Stage     Stage
	ProjectID string
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.ProjectID, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Extractor fetches the raw tables of a project.
type Extractor interface {
	Extract(ctx context.Context, projectID string) (album.Current, []album.HistoryEntry, error)
}

// OpenFunc opens the sink a run loads into.
type OpenFunc func(ctx context.Context) (sink.Sink, error)

// Result describes a successful run.
type Result struct {
	RunID     string
	ProjectID string
	Extracted int // history entries returned by the API
	Loaded    int // rows written to the albums table
	Dropped   int // unrated entries left out
	Current   album.CurrentNormalized
	Rows      []album.HistoryRow
	Started   time.Time
	Duration  time.Duration
}

// Runner executes runs. A Runner holds no per-run state and may be
// reused.
type Runner struct {
	extractor Extractor
	open      OpenFunc
	logger    zerolog.Logger
	newID     func() string
	now       func() time.Time
}

// New creates a Runner.
func New(extractor Extractor, open OpenFunc, logger zerolog.Logger) *Runner {
	return &Runner{
		extractor: extractor,
		open:      open,
		logger:    logger.With().Str("component", "pipeline").Logger(),
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Run executes Extract, Transform and Load in order and stops at the
// first failure. The sink is opened only once the payload has been
// extracted and transformed, so a bad payload never touches the store.
//
// Errors are *StageError; the wrapped error keeps its album error kind.
func (r *Runner) Run(ctx context.Context, projectID string) (Result, error) {
	start := r.now()
	res := Result{RunID: r.newID(), ProjectID: projectID, Started: start}
	log := r.logger.With().Str("run_id", res.RunID).Str("project", projectID).Logger()

	fail := func(stage Stage, err error) (Result, error) {
		res.Duration = r.now().Sub(start)
		log.Error().Err(err).Str("stage", string(stage)).Msgf("failed: %v", err)
		return res, &StageError{Stage: stage, ProjectID: projectID, Err: err}
	}

	current, history, err := r.extractor.Extract(ctx, projectID)
	if err != nil {
		return fail(StageExtract, err)
	}
	res.Extracted = len(history)

	if err := ctx.Err(); err != nil {
		return fail(StageTransform, err)
	}
	normalized, rows := album.Transform(current, history)
	res.Current = normalized
	res.Rows = rows
	res.Dropped = len(history) - len(rows)
	log.Info().
		Str("stage", string(StageTransform)).
		Int("rows", len(rows)).
		Int("dropped", res.Dropped).
		Msg("transformed")

	if err := ctx.Err(); err != nil {
		return fail(StageLoad, err)
	}
	s, err := r.open(ctx)
	if err != nil {
		return fail(StageLoad, err)
	}
	if err := sink.Load(ctx, s, normalized, rows); err != nil {
		return fail(StageLoad, err)
	}
	res.Loaded = len(rows)
	res.Duration = r.now().Sub(start)

	log.Info().
		Str("stage", string(StageLoad)).
		Int("rows", res.Loaded).
		Dur("duration", res.Duration).
		Msg("loaded")

	return res, nil
}
