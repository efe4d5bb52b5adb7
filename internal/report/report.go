// Package report computes the listening dashboard from the loaded tables.
package report

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jfmyers9/albumlog/internal/album"
)

const (
	topGenres = 10
	topPicks  = 3
	latestN   = 3
)

// Count is a label with its number of albums.
type Count struct {
	Label string
	N     int
}

// Pick is an album ranked by a value, such as its rating difference.
type Pick struct {
	Row   album.HistoryRow
	Value float64
}

// Summary holds the dashboard figures.
type Summary struct {
	Current        album.CurrentNormalized
	AlbumsListened int
	AverageRating  float64 // 0 when nothing was rated
	BestStreak     *float64
	WorstStreak    *float64

	TopRated    []album.HistoryRow
	LowestRated []album.HistoryRow

	// Overrated are the albums rated furthest above their global rating,
	// Underrated furthest below. Value is rating - globalRating.
	Overrated  []Pick
	Underrated []Pick

	TopGenres     []Count // by count, then name
	Decades       []Count // ascending by decade
	Origins       []Count // by count, then origin
	LatestReviews []album.HistoryRow
}

// Summarize computes the dashboard for the given tables.
func Summarize(current album.CurrentNormalized, rows []album.HistoryRow) Summary {
	s := Summary{
		Current:        current,
		AlbumsListened: len(rows),
	}
	if len(rows) == 0 {
		return s
	}

	total := 0
	for _, r := range rows {
		total += r.Rating
		if r.Streak != nil {
			v := *r.Streak
			if s.BestStreak == nil || v > *s.BestStreak {
				s.BestStreak = &v
			}
			if s.WorstStreak == nil || v < *s.WorstStreak {
				s.WorstStreak = &v
			}
		}
	}
	s.AverageRating = float64(total) / float64(len(rows))

	top := append([]album.HistoryRow{}, rows...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Rating > top[j].Rating })
	s.TopRated = head(top, topPicks)

	low := append([]album.HistoryRow{}, rows...)
	sort.SliceStable(low, func(i, j int) bool { return low[i].Rating < low[j].Rating })
	s.LowestRated = head(low, topPicks)

	s.Overrated, s.Underrated = ratingDiffs(rows)
	s.TopGenres = head(genreCounts(rows), topGenres)
	s.Decades = decadeCounts(rows)
	s.Origins = originCounts(rows)

	for i := len(rows) - 1; i >= 0 && len(s.LatestReviews) < latestN; i-- {
		s.LatestReviews = append(s.LatestReviews, rows[i])
	}

	return s
}

func ratingDiffs(rows []album.HistoryRow) (over, under []Pick) {
	var picks []Pick
	for _, r := range rows {
		if d, ok := r.RatingDiff(); ok {
			picks = append(picks, Pick{Row: r, Value: d})
		}
	}

	sort.SliceStable(picks, func(i, j int) bool { return picks[i].Value > picks[j].Value })
	over = append([]Pick{}, head(picks, topPicks)...)

	sort.SliceStable(picks, func(i, j int) bool { return picks[i].Value < picks[j].Value })
	under = append([]Pick{}, head(picks, topPicks)...)
	return over, under
}

func genreCounts(rows []album.HistoryRow) []Count {
	counts := make(map[string]int)
	for _, r := range rows {
		if r.AllGenres == "" {
			continue
		}
		for _, g := range strings.Split(r.AllGenres, ", ") {
			counts[g]++
		}
	}
	return byCount(counts)
}

func originCounts(rows []album.HistoryRow) []Count {
	counts := make(map[string]int)
	for _, r := range rows {
		if r.ArtistOrigin != "" {
			counts[r.ArtistOrigin]++
		}
	}
	return byCount(counts)
}

func decadeCounts(rows []album.HistoryRow) []Count {
	counts := make(map[int]int)
	for _, r := range rows {
		if y, ok := Year(r.ReleaseDate); ok {
			counts[y/10*10]++
		}
	}

	decades := make([]int, 0, len(counts))
	for d := range counts {
		decades = append(decades, d)
	}
	sort.Ints(decades)

	out := make([]Count, len(decades))
	for i, d := range decades {
		out[i] = Count{Label: strconv.Itoa(d) + "s", N: counts[d]}
	}
	return out
}

// Year parses the year of a release date such as "1967" or "1967-05-12".
func Year(releaseDate string) (int, bool) {
	s := strings.TrimSpace(releaseDate)
	if i := strings.IndexByte(s, '-'); i > 0 {
		s = s[:i]
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 0 {
		return 0, false
	}
	return y, true
}

func byCount(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for label, n := range counts {
		out = append(out, Count{Label: label, N: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
