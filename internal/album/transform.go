package album

import (
	"math"
	"sort"
	"strings"
)

// StreakWindow is the number of consecutive albums averaged into a streak.
const StreakWindow = 5

const genreSeparator = ", "

// Transform normalizes an extracted project into the current_album record
// and the albums table. It never fails and does not modify its inputs.
//
// Streaks are computed over every history entry, rated or not, before the
// unrated entries are dropped; the surviving rows keep their source order.
func Transform(current Current, history []HistoryEntry) (CurrentNormalized, []HistoryRow) {
	cur := CurrentNormalized{
		Artist:         current.Artist,
		ArtistOrigin:   current.ArtistOrigin,
		Images:         current.Images,
		Genres:         JoinGenres(current.Genres),
		SubGenres:      JoinGenres(current.SubGenres),
		Name:           current.Name,
		ReleaseDate:    current.ReleaseDate,
		YouTubeMusicID: current.YouTubeMusicID,
		SpotifyID:      current.SpotifyID,
	}

	globals := make([]float64, len(history))
	for i, h := range history {
		globals[i] = math.NaN()
		if h.GlobalRating != nil {
			globals[i] = *h.GlobalRating
		}
	}
	streaks := Streak(globals, StreakWindow)

	rows := make([]HistoryRow, 0, len(history))
	for i, h := range history {
		if h.Rating == nil || math.IsNaN(*h.Rating) {
			continue
		}
		rows = append(rows, HistoryRow{
			Artist:         h.Artist,
			Name:           h.Name,
			ArtistOrigin:   h.ArtistOrigin,
			ReleaseDate:    h.ReleaseDate,
			Images:         copyString(h.Images),
			AllGenres:      CanonicalGenres(JoinGenres(h.Genres), JoinGenres(h.SubGenres)),
			Streak:         streaks[i],
			Rating:         int(*h.Rating),
			GlobalRating:   copyFloat(h.GlobalRating),
			Review:         copyString(h.Review),
			YouTubeMusicID: h.YouTubeMusicID,
		})
	}

	return cur, rows
}

// JoinGenres joins tags with ", " in the order given. An empty list joins
// to the empty string.
func JoinGenres(tags []string) string {
	return strings.Join(tags, genreSeparator)
}

// CanonicalGenres merges comma-separated genre strings into one tag list:
// empty inputs are skipped, each tag is trimmed, exact duplicates are
// removed and the result is sorted ascending.
//
// Deduplication is case sensitive, so "Rock" and "rock" both survive.
func CanonicalGenres(joined ...string) string {
	var parts []string
	for _, j := range joined {
		if j != "" {
			parts = append(parts, j)
		}
	}
	merged := strings.Join(parts, genreSeparator)

	seen := make(map[string]struct{})
	var tags []string
	for _, tok := range strings.Split(merged, ",") {
		tok = strings.TrimSpace(tok)
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		tags = append(tags, tok)
	}
	sort.Strings(tags)

	return strings.Join(tags, genreSeparator)
}

// Streak returns the trailing mean of each window of values ending at
// index i. Indexes before the first full window, and windows containing a
// NaN, have no streak (nil).
func Streak(values []float64, window int) []*float64 {
	out := make([]*float64, len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		valid := true
		for _, v := range values[i-window+1 : i+1] {
			if math.IsNaN(v) {
				valid = false
				break
			}
			sum += v
		}
		if !valid {
			continue
		}
		mean := sum / float64(window)
		out[i] = &mean
	}
	return out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
