// Package albumsgen provides a client library for the 1001 Albums
// Generator API.
//
// # Overview
//
// A project on 1001 Albums Generator hands its member one album a day.
// The project endpoint returns the album currently assigned and every
// album listened to so far, each with the member's rating, the
// community's global rating and an optional review.
//
// # Quick Start
//
//	client, err := albumsgen.NewClient(albumsgen.Config{
//	    HTTPClient: &http.Client{Timeout: 30 * time.Second},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	project, err := client.Projects().Get(ctx, "um-ano-e-meio-de-musica")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, item := range project.History {
//	    fmt.Println(item.Album.Artist, "-", item.Album.Name)
//	}
//
// # Lenient decoding
//
// The API is loose about a few field shapes. The wire types normalize
// them once while decoding:
//
//   - ReleaseDate accepts a number or a string; Year parses the leading year.
//   - StringList (genres, subGenres) decodes anything that is not an
//     array to an empty list.
//   - Images decodes anything that is not an array to an empty list.
//
// Fields the caller needs are never invented: a missing currentAlbum or
// history decodes to nil and it is up to the caller to reject it.
//
// # Error Handling
//
// Non-2xx responses are returned as *Error:
//
//	project, err := client.Projects().Get(ctx, id)
//	if err != nil {
//	    var apiErr *albumsgen.Error
//	    if errors.As(err, &apiErr) && apiErr.NotFound() {
//	        // unknown project
//	    }
//	}
//
// A 2xx body that cannot be decoded is returned as *DecodeError. The
// client never retries.
package albumsgen
