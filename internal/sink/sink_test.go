package sink

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/jfmyers9/albumlog/internal/album"
)

func ptr[T any](v T) *T { return &v }

func sampleCurrent() album.CurrentNormalized {
	return album.CurrentNormalized{
		Artist:         "The Velvet Underground",
		ArtistOrigin:   "us",
		Images:         "https://img/vu.jpg",
		Genres:         "Rock",
		SubGenres:      "Art Rock, Proto-Punk",
		Name:           "The Velvet Underground & Nico",
		ReleaseDate:    1967,
		YouTubeMusicID: "OLAK5uy_vu",
		SpotifyID:      "4xwx0x7k6c5VuThz5qVqmV",
	}
}

func sampleRows() []album.HistoryRow {
	return []album.HistoryRow{
		{
			Artist:         "Miles Davis",
			Name:           "Kind of Blue",
			ArtistOrigin:   "us",
			ReleaseDate:    "1959",
			Images:         ptr("https://img/kob.jpg"),
			AllGenres:      "Jazz, Modal",
			Rating:         5,
			GlobalRating:   ptr(4.2),
			Review:         ptr("timeless"),
			YouTubeMusicID: "OLAK5uy_kob",
		},
		{
			Artist:       "Nick Drake",
			Name:         "Pink Moon",
			ArtistOrigin: "uk",
			ReleaseDate:  "1972",
			AllGenres:    "Folk",
			Streak:       ptr(3.4),
			Rating:       4,
			GlobalRating: ptr(3.9),
		},
	}
}

// fakeSink records calls and fails on demand. It does not implement
// Replacer, so Load writes the tables one at a time.
type fakeSink struct {
	calls       []string
	currentErr  error
	historyErr  error
	closeErr    error
	beforeWrite func()
}

func (f *fakeSink) WriteCurrent(ctx context.Context, current album.CurrentNormalized) error {
	f.calls = append(f.calls, "current")
	if f.beforeWrite != nil {
		f.beforeWrite()
	}
	return f.currentErr
}

func (f *fakeSink) WriteHistory(ctx context.Context, rows []album.HistoryRow) error {
	f.calls = append(f.calls, "history")
	return f.historyErr
}

func (f *fakeSink) Close() error {
	f.calls = append(f.calls, "close")
	return f.closeErr
}

type fakeReplacer struct {
	fakeSink
	replaceErr error
}

func (f *fakeReplacer) ReplaceAll(ctx context.Context, current album.CurrentNormalized, rows []album.HistoryRow) error {
	f.calls = append(f.calls, "replace")
	return f.replaceErr
}

func TestLoad(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		sink      *fakeSink
		wantCalls []string
		wantKind  album.Kind
	}{
		{
			name:      "success",
			sink:      &fakeSink{},
			wantCalls: []string{"current", "history", "close"},
		},
		{
			name:      "current fails",
			sink:      &fakeSink{currentErr: album.SinkUnavailable("insert", boom)},
			wantCalls: []string{"current", "close"},
			wantKind:  album.KindSinkUnavailable,
		},
		{
			name:      "history fails after current",
			sink:      &fakeSink{historyErr: album.SinkUnavailable("insert", boom)},
			wantCalls: []string{"current", "history", "close"},
			wantKind:  album.KindPartialLoad,
		},
		{
			name:      "close error reported",
			sink:      &fakeSink{closeErr: boom},
			wantCalls: []string{"current", "history", "close"},
			wantKind:  album.KindSinkUnavailable,
		},
		{
			name:      "write error wins over close error",
			sink:      &fakeSink{currentErr: album.SinkUnavailable("insert", boom), closeErr: errors.New("close")},
			wantCalls: []string{"current", "close"},
			wantKind:  album.KindSinkUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Load(context.Background(), tt.sink, sampleCurrent(), sampleRows())

			if got := album.KindOf(err); got != tt.wantKind {
				t.Errorf("Load() kind = %v, want %v (err: %v)", got, tt.wantKind, err)
			}
			if tt.wantKind == album.KindUnknown && err != nil {
				t.Errorf("Load() unexpected error: %v", err)
			}
			if strings.Join(tt.sink.calls, ",") != strings.Join(tt.wantCalls, ",") {
				t.Errorf("calls = %v, want %v", tt.sink.calls, tt.wantCalls)
			}
		})
	}
}

func TestLoadPartialLoadMatchesSentinel(t *testing.T) {
	s := &fakeSink{historyErr: album.SinkUnavailable("insert", errors.New("disk full"))}

	err := Load(context.Background(), s, sampleCurrent(), sampleRows())
	if !errors.Is(err, album.ErrPartialLoad) {
		t.Fatalf("Load() error = %v, want ErrPartialLoad", err)
	}
	if got := album.KindOf(err); got != album.KindPartialLoad {
		t.Errorf("KindOf() = %v, want %v", got, album.KindPartialLoad)
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("error %q lost its cause", err)
	}
}

func TestLoadCancelledBetweenTables(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &fakeSink{beforeWrite: cancel}
	err := Load(ctx, s, sampleCurrent(), sampleRows())
	if !errors.Is(err, album.ErrPartialLoad) {
		t.Fatalf("Load() error = %v, want ErrPartialLoad", err)
	}
	if strings.Join(s.calls, ",") != "current,close" {
		t.Errorf("calls = %v", s.calls)
	}
}

func TestLoadPrefersReplacer(t *testing.T) {
	s := &fakeReplacer{}
	if err := Load(context.Background(), s, sampleCurrent(), sampleRows()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if strings.Join(s.calls, ",") != "replace,close" {
		t.Errorf("calls = %v, want [replace close]", s.calls)
	}

	s = &fakeReplacer{replaceErr: album.SinkUnavailable("commit", errors.New("locked"))}
	err := Load(context.Background(), s, sampleCurrent(), sampleRows())
	if !errors.Is(err, album.ErrSinkUnavailable) {
		t.Errorf("Load() error = %v, want ErrSinkUnavailable", err)
	}
	if s.calls[len(s.calls)-1] != "close" {
		t.Errorf("sink not closed: %v", s.calls)
	}
}

func TestLoadSchemaMismatchWritesNothing(t *testing.T) {
	rows := sampleRows()
	rows[1].AllGenres = strings.Repeat("x", 256)

	s := &fakeSink{}
	err := Load(context.Background(), s, sampleCurrent(), rows)
	if !errors.Is(err, album.ErrSchemaMismatch) {
		t.Fatalf("Load() error = %v, want ErrSchemaMismatch", err)
	}
	if !strings.Contains(err.Error(), "albums[1].allGenres") {
		t.Errorf("error %q does not name the field", err)
	}
	if strings.Join(s.calls, ",") != "close" {
		t.Errorf("calls = %v, want only close", s.calls)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *album.CurrentNormalized, rows []album.HistoryRow)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *album.CurrentNormalized, rows []album.HistoryRow) {},
		},
		{
			name: "255 multibyte characters fit",
			mutate: func(c *album.CurrentNormalized, rows []album.HistoryRow) {
				c.Name = strings.Repeat("é", 255)
			},
		},
		{
			name: "current varchar overflow",
			mutate: func(c *album.CurrentNormalized, rows []album.HistoryRow) {
				c.SubGenres = strings.Repeat("a", 256)
			},
			wantErr: "current_album.subGenres",
		},
		{
			name: "invalid utf8",
			mutate: func(c *album.CurrentNormalized, rows []album.HistoryRow) {
				rows[0].Artist = "\xff"
			},
			wantErr: "albums[0].artist",
		},
		{
			name: "year out of range",
			mutate: func(c *album.CurrentNormalized, rows []album.HistoryRow) {
				c.ReleaseDate = 10000
			},
			wantErr: "current_album.releaseDate",
		},
		{
			name: "nan streak",
			mutate: func(c *album.CurrentNormalized, rows []album.HistoryRow) {
				rows[1].Streak = ptr(math.NaN())
			},
			wantErr: "albums[1].streak",
		},
		{
			name: "infinite global rating",
			mutate: func(c *album.CurrentNormalized, rows []album.HistoryRow) {
				rows[0].GlobalRating = ptr(math.Inf(1))
			},
			wantErr: "albums[0].globalRating",
		},
		{
			name: "review too long",
			mutate: func(c *album.CurrentNormalized, rows []album.HistoryRow) {
				rows[0].Review = ptr(strings.Repeat("r", 65536))
			},
			wantErr: "albums[0].review",
		},
		{
			name: "rating does not fit int",
			mutate: func(c *album.CurrentNormalized, rows []album.HistoryRow) {
				rows[0].Rating = math.MaxInt32 + 1
			},
			wantErr: "albums[0].rating",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := sampleCurrent()
			rows := sampleRows()
			tt.mutate(&current, rows)

			err := Validate(current, rows)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, album.ErrSchemaMismatch) {
				t.Fatalf("Validate() error = %v, want ErrSchemaMismatch", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
