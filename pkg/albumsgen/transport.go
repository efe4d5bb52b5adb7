package albumsgen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// maxBodySize caps how much of a response body is read. Large projects
// have a history of roughly a thousand albums, well below this.
const maxBodySize = 32 << 20

// get performs a GET request against a path relative to the base URL and
// decodes the JSON response into out.
//
// There is no retry loop: a failed fetch is returned to the caller, who
// decides whether the whole run is worth repeating.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("invalid request path %q: %w", path, err)
	}
	endpoint := c.baseURL.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logDebugf("albumsgen: GET %s", endpoint.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Err: err}
	}

	c.logDebugf("albumsgen: GET %s succeeded (%d bytes)", endpoint.String(), len(body))
	return nil
}
