package albumsgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Project is the response of the project endpoint.
//
// CurrentAlbum is nil and History is nil when the fields are absent or
// null in the response; an empty history decodes to a non-nil empty slice.
type Project struct {
	Name              string        `json:"name"`
	CurrentAlbum      *Album        `json:"currentAlbum"`
	CurrentAlbumNotes string        `json:"currentAlbumNotes"`
	History           []HistoryItem `json:"history"`
}

// Album describes one album as the API returns it.
type Album struct {
	Artist         string      `json:"artist"`
	ArtistOrigin   string      `json:"artistOrigin"`
	Images         Images      `json:"images"`
	Genres         StringList  `json:"genres"`
	SubGenres      StringList  `json:"subGenres"`
	Name           string      `json:"name"`
	ReleaseDate    ReleaseDate `json:"releaseDate"`
	YouTubeMusicID string      `json:"youtubeMusicId"`
	SpotifyID      string      `json:"spotifyId"`
	Slug           string      `json:"slug"`
}

// HistoryItem is one past album in a project's listening history.
type HistoryItem struct {
	Album        *Album   `json:"album"`
	Rating       *float64 `json:"rating"`
	GlobalRating *float64 `json:"globalRating"`
	Review       *string  `json:"review"`
	GeneratedAt  string   `json:"generatedAt"`
}

// Image is a cover image reference.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Images is a list of cover images. Any JSON value that is not an array
// of objects decodes to an empty list.
type Images []Image

// UnmarshalJSON implements json.Unmarshaler.
func (im *Images) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*im = Images{}
		return nil
	}
	out := make(Images, 0, len(raw))
	for _, r := range raw {
		var img Image
		if err := json.Unmarshal(r, &img); err != nil {
			continue
		}
		out = append(out, img)
	}
	*im = out
	return nil
}

// FirstURL returns the URL of the first image, or "" if there is none.
func (im Images) FirstURL() string {
	if len(im) == 0 {
		return ""
	}
	return im[0].URL
}

// StringList is a list of tags. Any JSON value that is not an array
// decodes to an empty list, and non-string elements are skipped.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (sl *StringList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*sl = StringList{}
		return nil
	}
	out := make(StringList, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err != nil {
			continue
		}
		out = append(out, s)
	}
	*sl = out
	return nil
}

// ReleaseDate holds a release date that the API sends either as a number
// (1967) or as a string ("1967" or "1967-05-12").
type ReleaseDate string

// UnmarshalJSON implements json.Unmarshaler.
func (rd *ReleaseDate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*rd = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*rd = ReleaseDate(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("releaseDate: expected number or string, got %s", data)
	}
	if i, err := n.Int64(); err == nil {
		*rd = ReleaseDate(strconv.FormatInt(i, 10))
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("releaseDate: %w", err)
	}
	*rd = ReleaseDate(strconv.FormatInt(int64(f), 10))
	return nil
}

// String returns the release date as sent.
func (rd ReleaseDate) String() string {
	return string(rd)
}

// Year parses the leading year of the release date.
func (rd ReleaseDate) Year() (int, error) {
	s := string(rd)
	if s == "" {
		return 0, fmt.Errorf("releaseDate is empty")
	}
	if i := strings.IndexByte(s, '-'); i > 0 {
		s = s[:i]
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("releaseDate %q is not a year", string(rd))
	}
	return year, nil
}
