package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jfmyers9/albumlog/internal/album"
	"github.com/mattn/go-runewidth"
)

// DefaultWidth is the line width used when the terminal width is unknown.
const DefaultWidth = 80

const (
	minWidth    = 40
	valueColumn = 8
	ellipsis    = "..."
)

// Render writes the summary as plain text, laid out to width display
// columns. Wide characters (CJK, emoji) are measured by their display
// width, not their byte or rune count.
func Render(w io.Writer, s Summary, width int) error {
	if width < minWidth {
		width = minWidth
	}
	p := &printer{w: w, width: width}

	c := s.Current
	p.section("Current album")
	p.line("  " + fit(fmt.Sprintf("%s - %s (%d)", c.Name, c.Artist, c.ReleaseDate), width-2))
	if c.Genres != "" {
		p.line("  " + fit(c.Genres, width-2))
	}
	if u := c.YouTubeURL(); u != "" {
		p.line("  YouTube  " + u)
	}
	if u := c.SpotifyURL(); u != "" {
		p.line("  Spotify  " + u)
	}

	p.section("Overview")
	p.kv("Average rating", fmt.Sprintf("%.2f stars", s.AverageRating))
	p.kv("Albums listened", fmt.Sprintf("%d", s.AlbumsListened))
	p.kv("Best streak", streak(s.BestStreak))
	p.kv("Worst streak", streak(s.WorstStreak))

	p.section("Top rated")
	p.albums(s.TopRated, func(r album.HistoryRow) string { return fmt.Sprintf("%d", r.Rating) })
	p.section("Lowest rated")
	p.albums(s.LowestRated, func(r album.HistoryRow) string { return fmt.Sprintf("%d", r.Rating) })

	p.section("Rated above global")
	p.picks(s.Overrated)
	p.section("Rated below global")
	p.picks(s.Underrated)

	p.section("Top genres")
	p.counts(s.TopGenres)
	p.section("Decades")
	p.counts(s.Decades)
	p.section("Artist origins")
	p.counts(s.Origins)

	p.section("Latest reviews")
	for _, r := range s.LatestReviews {
		p.line("  " + fit(fmt.Sprintf("%s - %s (%s)  %d stars", r.Name, r.Artist, r.ReleaseDate, r.Rating), width-2))
		if r.Review != nil && *r.Review != "" {
			for _, l := range strings.Split(*r.Review, "\n") {
				p.line("    " + fit(l, width-4))
			}
		}
	}

	return p.err
}

type printer struct {
	w     io.Writer
	width int
	err   error
	wrote bool
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, strings.TrimRight(s, " "))
	p.wrote = true
}

func (p *printer) section(title string) {
	if p.wrote {
		p.line("")
	}
	p.line(title)
	p.line(strings.Repeat("-", runewidth.StringWidth(title)))
}

func (p *printer) kv(key, value string) {
	p.line("  " + fit(key, 18) + value)
}

// row prints a two-column row followed by a right-aligned value.
func (p *printer) row(left, right, value string) {
	avail := p.width - 2 - valueColumn - 2
	lw := avail / 2
	rw := avail - lw
	p.line("  " + fit(left, lw) + " " + fit(right, rw-1) + " " + runewidth.FillLeft(value, valueColumn))
}

func (p *printer) albums(rows []album.HistoryRow, value func(album.HistoryRow) string) {
	if len(rows) == 0 {
		p.line("  (none)")
		return
	}
	for _, r := range rows {
		p.row(r.Name, r.Artist, value(r))
	}
}

func (p *printer) picks(picks []Pick) {
	if len(picks) == 0 {
		p.line("  (none)")
		return
	}
	for _, pk := range picks {
		p.row(pk.Row.Name, pk.Row.Artist, fmt.Sprintf("%+.2f", pk.Value))
	}
}

func (p *printer) counts(counts []Count) {
	if len(counts) == 0 {
		p.line("  (none)")
		return
	}
	labelWidth := p.width - 2 - valueColumn - 1
	for _, c := range counts {
		p.line("  " + fit(c.Label, labelWidth) + " " + runewidth.FillLeft(fmt.Sprintf("%d", c.N), valueColumn))
	}
}

func streak(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f stars", *v)
}

// fit pads text with spaces to exactly width display columns, or
// truncates it with "..." when it is wider.
func fit(text string, width int) string {
	if width <= 0 {
		return text
	}

	tw := runewidth.StringWidth(text)
	switch {
	case tw == width:
		return text
	case tw < width:
		return text + strings.Repeat(" ", width-tw)
	}

	ew := runewidth.StringWidth(ellipsis)
	if width <= ew {
		return runewidth.Truncate(ellipsis, width, "")
	}
	out := runewidth.Truncate(text, width-ew, "") + ellipsis

	// A wide rune at the cut can leave the result one column short
	if ow := runewidth.StringWidth(out); ow < width {
		out += strings.Repeat(" ", width-ow)
	}
	return out
}
