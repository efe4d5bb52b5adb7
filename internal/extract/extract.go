package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jfmyers9/albumlog/internal/album"
	"github.com/jfmyers9/albumlog/pkg/albumsgen"
	"github.com/rs/zerolog"
)

// ProjectGetter fetches a project from the API.
type ProjectGetter interface {
	Get(ctx context.Context, projectID string) (*albumsgen.Project, error)
}

// Extractor turns a project response into the raw current album and
// listening history.
type Extractor struct {
	projects ProjectGetter
	logger   zerolog.Logger
}

// New creates an Extractor backed by an API client.
func New(client *albumsgen.Client, logger zerolog.Logger) *Extractor {
	return NewWithGetter(client.Projects(), logger)
}

// NewWithGetter creates an Extractor with a custom project source.
func NewWithGetter(projects ProjectGetter, logger zerolog.Logger) *Extractor {
	return &Extractor{
		projects: projects,
		logger:   logger.With().Str("component", "extract").Logger(),
	}
}

// Extract fetches the project and projects it into the raw tables.
//
// Fetch failures are album.ErrTransportFailure and are not retried.
// Missing or mis-shaped required fields are album.ErrMalformedPayload.
func (e *Extractor) Extract(ctx context.Context, projectID string) (album.Current, []album.HistoryEntry, error) {
	log := e.logger.With().Str("project", projectID).Logger()

	if strings.TrimSpace(projectID) == "" {
		return album.Current{}, nil, fmt.Errorf("project id is required")
	}

	log.Info().Msg("requesting")

	project, err := e.projects.Get(ctx, projectID)
	if err != nil {
		err = classify(err)
		log.Error().Err(err).Msg("failed")
		return album.Current{}, nil, err
	}

	current, history, err := Project(project)
	if err != nil {
		log.Error().Err(err).Msg("failed")
		return album.Current{}, nil, err
	}

	log.Info().
		Int("history", len(history)).
		Str("artist", current.Artist).
		Str("album", current.Name).
		Msgf("extracted %d for %s/%s", len(history), current.Artist, current.Name)

	return current, history, nil
}

// classify maps API client errors onto the pipeline taxonomy.
func classify(err error) error {
	var decodeErr *albumsgen.DecodeError
	if errors.As(err, &decodeErr) {
		return &album.Error{Kind: album.KindMalformed, Op: "response body", Err: err}
	}
	return album.Transport("fetch project", err)
}

// Project validates a decoded project and converts it into the raw
// current album and history. It performs no I/O.
func Project(p *albumsgen.Project) (album.Current, []album.HistoryEntry, error) {
	if p == nil {
		return album.Current{}, nil, album.Malformed("payload", "empty response")
	}

	current, err := currentAlbum(p.CurrentAlbum)
	if err != nil {
		return album.Current{}, nil, err
	}

	if p.History == nil {
		return album.Current{}, nil, album.Malformed("history", "field is missing")
	}

	history := make([]album.HistoryEntry, 0, len(p.History))
	for i, item := range p.History {
		entry, err := historyEntry(i, item)
		if err != nil {
			return album.Current{}, nil, err
		}
		history = append(history, entry)
	}

	return current, history, nil
}

func currentAlbum(a *albumsgen.Album) (album.Current, error) {
	if a == nil {
		return album.Current{}, album.Malformed("currentAlbum", "field is missing")
	}
	if err := requireNames("currentAlbum", a); err != nil {
		return album.Current{}, err
	}

	image := a.Images.FirstURL()
	if image == "" {
		return album.Current{}, album.Malformed("currentAlbum.images", "no image url")
	}

	year, err := a.ReleaseDate.Year()
	if err != nil {
		return album.Current{}, album.Malformed("currentAlbum.releaseDate", "%v", err)
	}

	return album.Current{
		Artist:         a.Artist,
		ArtistOrigin:   a.ArtistOrigin,
		Images:         image,
		Genres:         tags(a.Genres),
		SubGenres:      tags(a.SubGenres),
		Name:           a.Name,
		ReleaseDate:    year,
		YouTubeMusicID: a.YouTubeMusicID,
		SpotifyID:      a.SpotifyID,
	}, nil
}

func historyEntry(i int, item albumsgen.HistoryItem) (album.HistoryEntry, error) {
	field := fmt.Sprintf("history[%d].album", i)
	a := item.Album
	if a == nil {
		return album.HistoryEntry{}, album.Malformed(field, "field is missing")
	}
	if err := requireNames(field, a); err != nil {
		return album.HistoryEntry{}, err
	}

	var image *string
	if u := a.Images.FirstURL(); u != "" {
		image = &u
	}

	return album.HistoryEntry{
		Artist:         a.Artist,
		Name:           a.Name,
		ArtistOrigin:   a.ArtistOrigin,
		ReleaseDate:    a.ReleaseDate.String(),
		Images:         image,
		Genres:         tags(a.Genres),
		SubGenres:      tags(a.SubGenres),
		Rating:         item.Rating,
		GlobalRating:   item.GlobalRating,
		Review:         item.Review,
		YouTubeMusicID: a.YouTubeMusicID,
	}, nil
}

func requireNames(field string, a *albumsgen.Album) error {
	if strings.TrimSpace(a.Artist) == "" {
		return album.Malformed(field+".artist", "field is missing")
	}
	if strings.TrimSpace(a.Name) == "" {
		return album.Malformed(field+".name", "field is missing")
	}
	return nil
}

// tags copies a decoded tag list, never returning nil.
func tags(in albumsgen.StringList) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// apiLogger adapts a zerolog logger to albumsgen.Logger.
type apiLogger struct {
	logger zerolog.Logger
}

func (l apiLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

// APILogger returns an albumsgen.Logger that writes debug events to logger.
func APILogger(logger zerolog.Logger) albumsgen.Logger {
	return apiLogger{logger: logger.With().Str("component", "albumsgen").Logger()}
}
