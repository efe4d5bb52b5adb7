// Package sink persists the normalized tables.
//
// Every sink fully replaces what it held before: there is no merge with
// previously stored history.
package sink

import (
	"context"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/jfmyers9/albumlog/internal/album"
)

// Table names of the persisted schema.
const (
	CurrentTable = "current_album"
	HistoryTable = "albums"
)

// Sink receives the two output tables. Each write replaces its table
// whole or not at all.
type Sink interface {
	WriteCurrent(ctx context.Context, current album.CurrentNormalized) error
	WriteHistory(ctx context.Context, rows []album.HistoryRow) error
	Close() error
}

// Replacer is implemented by sinks that can replace both tables in one
// atomic step. Load prefers it over two separate writes.
type Replacer interface {
	ReplaceAll(ctx context.Context, current album.CurrentNormalized, rows []album.HistoryRow) error
}

// Reader is implemented by sinks that can read their tables back.
type Reader interface {
	ReadAll(ctx context.Context) (album.CurrentNormalized, []album.HistoryRow, error)
}

// Load validates both tables against the schema and writes them to s.
// s is closed on every path.
//
// When the sink cannot replace both tables atomically and the history
// write fails after the current album was written, the error matches
// album.ErrPartialLoad.
func Load(ctx context.Context, s Sink, current album.CurrentNormalized, rows []album.HistoryRow) (err error) {
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = album.SinkUnavailable("close", cerr)
		}
	}()

	if err := Validate(current, rows); err != nil {
		return err
	}

	if r, ok := s.(Replacer); ok {
		return r.ReplaceAll(ctx, current, rows)
	}

	if err := s.WriteCurrent(ctx, current); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &album.Error{Kind: album.KindPartialLoad, Op: HistoryTable + " not written", Err: err}
	}
	if err := s.WriteHistory(ctx, rows); err != nil {
		return &album.Error{Kind: album.KindPartialLoad, Op: HistoryTable + " not written", Err: err}
	}
	return nil
}

// Column limits of the persisted schema.
const (
	maxVarchar   = 255
	maxTextBytes = 65535
	minYear      = 0
	maxYear      = 9999
)

// Validate checks that every value fits the persisted schema. The error
// matches album.ErrSchemaMismatch.
func Validate(current album.CurrentNormalized, rows []album.HistoryRow) error {
	cur := []struct {
		name  string
		value string
	}{
		{"artist", current.Artist},
		{"artistOrigin", current.ArtistOrigin},
		{"images", current.Images},
		{"genres", current.Genres},
		{"subGenres", current.SubGenres},
		{"name", current.Name},
		{"youtubeMusicId", current.YouTubeMusicID},
		{"spotifyId", current.SpotifyID},
	}
	for _, c := range cur {
		if err := checkVarchar(CurrentTable+"."+c.name, c.value); err != nil {
			return err
		}
	}
	if current.ReleaseDate < minYear || current.ReleaseDate > maxYear {
		return album.SchemaMismatch(CurrentTable+".releaseDate", "year %d out of range", current.ReleaseDate)
	}

	for i, r := range rows {
		prefix := fmt.Sprintf("%s[%d].", HistoryTable, i)
		fields := []struct {
			name  string
			value string
		}{
			{"artist", r.Artist},
			{"name", r.Name},
			{"artistOrigin", r.ArtistOrigin},
			{"releaseDate", r.ReleaseDate},
			{"images", deref(r.Images)},
			{"allGenres", r.AllGenres},
			{"youtubeMusicId", r.YouTubeMusicID},
		}
		for _, f := range fields {
			if err := checkVarchar(prefix+f.name, f.value); err != nil {
				return err
			}
		}
		if r.Review != nil && len(*r.Review) > maxTextBytes {
			return album.SchemaMismatch(prefix+"review", "%d bytes exceeds %d", len(*r.Review), maxTextBytes)
		}
		if r.Rating < math.MinInt32 || r.Rating > math.MaxInt32 {
			return album.SchemaMismatch(prefix+"rating", "%d does not fit INT", r.Rating)
		}
		if err := checkFloat(prefix+"streak", r.Streak); err != nil {
			return err
		}
		if err := checkFloat(prefix+"globalRating", r.GlobalRating); err != nil {
			return err
		}
	}

	return nil
}

func checkVarchar(field, value string) error {
	if n := utf8.RuneCountInString(value); n > maxVarchar {
		return album.SchemaMismatch(field, "%d characters exceeds VARCHAR(%d)", n, maxVarchar)
	}
	if !utf8.ValidString(value) {
		return album.SchemaMismatch(field, "invalid UTF-8")
	}
	return nil
}

func checkFloat(field string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return album.SchemaMismatch(field, "%v is not a storable float", *v)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ErrNoData is returned by Reader implementations when nothing has been
// loaded yet.
var ErrNoData = errors.New("sink: no data loaded")
