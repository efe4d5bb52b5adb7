package album

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
)

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCanonicalGenres(t *testing.T) {
	tests := []struct {
		name      string
		genres    []string
		subGenres []string
		expected  string
	}{
		{
			name:      "case sensitive dedupe across fields",
			genres:    []string{"Rock", "rock", "Pop"},
			subGenres: []string{"Pop", "Jazz"},
			expected:  "Jazz, Pop, Rock, rock",
		},
		{
			name:      "permuted input gives same output",
			genres:    []string{"Pop", "Rock", "rock"},
			subGenres: []string{"Jazz", "Pop"},
			expected:  "Jazz, Pop, Rock, rock",
		},
		{
			name:      "sub genres only",
			genres:    nil,
			subGenres: []string{"Trip Hop", "Downtempo"},
			expected:  "Downtempo, Trip Hop",
		},
		{
			name:      "genres only",
			genres:    []string{"Soul"},
			subGenres: []string{},
			expected:  "Soul",
		},
		{
			name:      "both empty",
			genres:    nil,
			subGenres: nil,
			expected:  "",
		},
		{
			name:      "tokens are trimmed before dedupe",
			genres:    []string{" Folk", "Folk "},
			subGenres: []string{"Folk"},
			expected:  "Folk",
		},
		{
			name:      "embedded commas split into tags",
			genres:    []string{"Rock, Blues"},
			subGenres: []string{"Blues Rock"},
			expected:  "Blues, Blues Rock, Rock",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanonicalGenres(JoinGenres(tt.genres), JoinGenres(tt.subGenres))
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCanonicalGenresAllPermutations(t *testing.T) {
	genres := []string{"Rock", "rock", "Pop"}
	subGenres := []string{"Pop", "Jazz"}
	const expected = "Jazz, Pop, Rock, rock"

	for _, g := range permutations(genres) {
		for _, s := range permutations(subGenres) {
			if got := CanonicalGenres(JoinGenres(g), JoinGenres(s)); got != expected {
				t.Errorf("genres=%v subGenres=%v: expected %q, got %q", g, s, expected, got)
			}
		}
	}
}

func permutations(in []string) [][]string {
	if len(in) <= 1 {
		return [][]string{append([]string(nil), in...)}
	}
	var out [][]string
	for i := range in {
		rest := make([]string, 0, len(in)-1)
		rest = append(rest, in[:i]...)
		rest = append(rest, in[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]string{in[i]}, p...))
		}
	}
	return out
}

func TestStreak(t *testing.T) {
	got := Streak([]float64{3, 4, 5, 2, 1, 5}, StreakWindow)

	for i := 0; i < 4; i++ {
		if got[i] != nil {
			t.Errorf("streak[%d]: expected undefined, got %v", i, *got[i])
		}
	}
	if got[4] == nil || !approxEqual(*got[4], 3.0) {
		t.Errorf("streak[4]: expected 3.0, got %v", got[4])
	}
	if got[5] == nil || !approxEqual(*got[5], 3.4) {
		t.Errorf("streak[5]: expected 3.4, got %v", got[5])
	}
}

func TestStreakEdgeCases(t *testing.T) {
	t.Run("shorter than window", func(t *testing.T) {
		for i, s := range Streak([]float64{1, 2, 3}, 5) {
			if s != nil {
				t.Errorf("streak[%d]: expected undefined", i)
			}
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := Streak(nil, 5); len(got) != 0 {
			t.Errorf("expected empty result, got %d", len(got))
		}
	})

	t.Run("missing value poisons its windows", func(t *testing.T) {
		got := Streak([]float64{1, 1, math.NaN(), 1, 1, 1, 1, 1}, 5)
		for i := 4; i <= 6; i++ {
			if got[i] != nil {
				t.Errorf("streak[%d]: expected undefined, got %v", i, *got[i])
			}
		}
		if got[7] == nil || !approxEqual(*got[7], 1) {
			t.Errorf("streak[7]: expected 1, got %v", got[7])
		}
	})
}

func TestTransformCurrentAlbum(t *testing.T) {
	current := Current{
		Artist:         "Os Mutantes",
		ArtistOrigin:   "br",
		Images:         "https://img.example/mutantes.jpg",
		Genres:         []string{"Rock", "Psychedelic", "Rock"},
		SubGenres:      nil,
		Name:           "Os Mutantes",
		ReleaseDate:    1968,
		YouTubeMusicID: "OLAK5uy",
		SpotifyID:      "3L3W",
	}

	cur, _ := Transform(current, nil)

	// current album keeps the joined, not deduplicated, genre strings
	if cur.Genres != "Rock, Psychedelic, Rock" {
		t.Errorf("unexpected genres %q", cur.Genres)
	}
	if cur.SubGenres != "" {
		t.Errorf("expected empty sub genres, got %q", cur.SubGenres)
	}
	if cur.ReleaseDate != 1968 {
		t.Errorf("expected 1968, got %d", cur.ReleaseDate)
	}
	if cur.YouTubeURL() != "https://youtube.com/playlist?list=OLAK5uy" {
		t.Errorf("unexpected youtube url %q", cur.YouTubeURL())
	}
	if cur.SpotifyURL() != "https://open.spotify.com/album/3L3W" {
		t.Errorf("unexpected spotify url %q", cur.SpotifyURL())
	}
}

func TestTransformDropsUnratedAfterStreak(t *testing.T) {
	globals := []float64{3, 4, 5, 2, 1, 5}
	ratings := []*float64{f64(4), f64(3), nil, f64(5), f64(2), f64(4)}

	history := make([]HistoryEntry, len(globals))
	for i := range globals {
		history[i] = HistoryEntry{
			Artist:       fmt.Sprintf("Artist %d", i),
			Name:         fmt.Sprintf("Album %d", i),
			GlobalRating: f64(globals[i]),
			Rating:       ratings[i],
		}
	}

	_, rows := Transform(Current{}, history)

	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}

	wantNames := []string{"Album 0", "Album 1", "Album 3", "Album 4", "Album 5"}
	for i, row := range rows {
		if row.Name != wantNames[i] {
			t.Errorf("row %d: expected %s, got %s", i, wantNames[i], row.Name)
		}
	}

	// Album 4 sits at source index 4, so its window includes the unrated album.
	if rows[3].Streak == nil || !approxEqual(*rows[3].Streak, 3.0) {
		t.Errorf("expected streak 3.0 for Album 4, got %v", rows[3].Streak)
	}
	if rows[4].Streak == nil || !approxEqual(*rows[4].Streak, 3.4) {
		t.Errorf("expected streak 3.4 for Album 5, got %v", rows[4].Streak)
	}
	for i := 0; i < 3; i++ {
		if rows[i].Streak != nil {
			t.Errorf("row %d: expected undefined streak", i)
		}
	}
}

func TestTransformCoercesRating(t *testing.T) {
	history := []HistoryEntry{
		{Name: "a", Rating: f64(4.0), GlobalRating: f64(3.2)},
		{Name: "b", Rating: f64(math.NaN()), GlobalRating: f64(3.2)},
	}

	_, rows := Transform(Current{}, history)
	if len(rows) != 1 {
		t.Fatalf("expected NaN rating to be dropped, got %d rows", len(rows))
	}
	if rows[0].Rating != 4 {
		t.Errorf("expected rating 4, got %d", rows[0].Rating)
	}
	diff, ok := rows[0].RatingDiff()
	if !ok || !approxEqual(diff, 0.8) {
		t.Errorf("expected rating diff 0.8, got %v (%v)", diff, ok)
	}
}

func TestTransformIsIdempotent(t *testing.T) {
	current := Current{Artist: "A", Name: "N", Genres: []string{"x", "y"}, ReleaseDate: 2001}
	history := []HistoryEntry{
		{Artist: "B", Name: "M", Genres: []string{"Pop", "Rock"}, SubGenres: []string{"Rock"}, Rating: f64(3), GlobalRating: f64(3.3), Review: str("fine"), Images: str("img")},
		{Artist: "C", Name: "O", Rating: nil, GlobalRating: f64(2.9)},
		{Artist: "D", Name: "P", Rating: f64(5), GlobalRating: f64(4.4)},
	}

	cur1, rows1 := Transform(current, history)
	cur2, rows2 := Transform(current, history)

	if !reflect.DeepEqual(cur1, cur2) || !reflect.DeepEqual(rows1, rows2) {
		t.Fatal("transform is not deterministic")
	}

	b1, err := json.Marshal(struct {
		C CurrentNormalized
		R []HistoryRow
	}{cur1, rows1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b2, err := json.Marshal(struct {
		C CurrentNormalized
		R []HistoryRow
	}{cur2, rows2})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b1) != string(b2) {
		t.Errorf("serialized output differs:\n%s\n%s", b1, b2)
	}

	// inputs are left untouched
	if *history[0].Images != "img" || len(history) != 3 {
		t.Error("transform modified its input")
	}
	*rows1[0].Images = "changed"
	if *history[0].Images != "img" {
		t.Error("output aliases input pointers")
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Um ano e meio de musica", "um-ano-e-meio-de-musica"},
		{"already-a-slug", "already-a-slug"},
		{"  Padded Name ", "padded-name"},
	}

	for _, tt := range tests {
		if got := Slug(tt.input); got != tt.expected {
			t.Errorf("Slug(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("extract: %w", Malformed("history[2].album", "missing"))

	if !errors.Is(err, ErrMalformedPayload) {
		t.Error("expected errors.Is to match ErrMalformedPayload")
	}
	if errors.Is(err, ErrTransportFailure) {
		t.Error("did not expect a transport failure match")
	}
	if KindOf(err) != KindMalformed {
		t.Errorf("expected KindMalformed, got %v", KindOf(err))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("expected KindUnknown for plain errors")
	}
	if got := err.Error(); got != "extract: malformed payload: history[2].album: missing" {
		t.Errorf("unexpected message %q", got)
	}
}
