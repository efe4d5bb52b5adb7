package album

// Current is the album a project is listening to right now, as extracted.
type Current struct {
	Artist         string
	ArtistOrigin   string
	Images         string
	Genres         []string
	SubGenres      []string
	Name           string
	ReleaseDate    int
	YouTubeMusicID string
	SpotifyID      string
}

// HistoryEntry is one past album, as extracted, in source order.
type HistoryEntry struct {
	Artist         string
	Name           string
	ArtistOrigin   string
	ReleaseDate    string
	Images         *string // nil when the album has no cover image
	Genres         []string
	SubGenres      []string
	Rating         *float64 // nil when the album was not rated
	GlobalRating   *float64
	Review         *string
	YouTubeMusicID string
}

// CurrentNormalized is the current_album record. Genres and SubGenres are
// comma-joined in source order and, unlike history rows, not deduplicated.
type CurrentNormalized struct {
	Artist         string `json:"artist" db:"artist"`
	ArtistOrigin   string `json:"artistOrigin" db:"artistOrigin"`
	Images         string `json:"images" db:"images"`
	Genres         string `json:"genres" db:"genres"`
	SubGenres      string `json:"subGenres" db:"subGenres"`
	Name           string `json:"name" db:"name"`
	ReleaseDate    int    `json:"releaseDate" db:"releaseDate"`
	YouTubeMusicID string `json:"youtubeMusicId" db:"youtubeMusicId"`
	SpotifyID      string `json:"spotifyId" db:"spotifyId"`
}

const (
	youtubePlaylistURL = "https://youtube.com/playlist?list="
	spotifyAlbumURL    = "https://open.spotify.com/album/"
)

// YouTubeURL returns the YouTube Music playlist of the album.
func (c CurrentNormalized) YouTubeURL() string {
	if c.YouTubeMusicID == "" {
		return ""
	}
	return youtubePlaylistURL + c.YouTubeMusicID
}

// SpotifyURL returns the Spotify page of the album.
func (c CurrentNormalized) SpotifyURL() string {
	if c.SpotifyID == "" {
		return ""
	}
	return spotifyAlbumURL + c.SpotifyID
}

// HistoryRow is one row of the albums table.
type HistoryRow struct {
	Artist         string   `json:"artist" db:"artist"`
	Name           string   `json:"name" db:"name"`
	ArtistOrigin   string   `json:"artistOrigin" db:"artistOrigin"`
	ReleaseDate    string   `json:"releaseDate" db:"releaseDate"`
	Images         *string  `json:"images" db:"images"`
	AllGenres      string   `json:"allGenres" db:"allGenres"`
	Streak         *float64 `json:"streak" db:"streak"`
	Rating         int      `json:"rating" db:"rating"`
	GlobalRating   *float64 `json:"globalRating" db:"globalRating"`
	Review         *string  `json:"review" db:"review"`
	YouTubeMusicID string   `json:"youtubeMusicId" db:"youtubeMusicId"`
}

// RatingDiff is the member's rating minus the community rating. ok is
// false when the album has no global rating.
func (r HistoryRow) RatingDiff() (diff float64, ok bool) {
	if r.GlobalRating == nil {
		return 0, false
	}
	return float64(r.Rating) - *r.GlobalRating, true
}
