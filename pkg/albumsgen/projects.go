package albumsgen

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// ProjectService provides access to project endpoints.
type ProjectService struct {
	client *Client
}

// Get fetches a project by its identifier (the URL slug of the project).
//
// Returns *Error for non-2xx responses and *DecodeError when the body
// does not match the project shape.
func (s *ProjectService) Get(ctx context.Context, projectID string) (*Project, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("albumsgen: project id is required")
	}

	var project Project
	if err := s.client.get(ctx, "projects/"+url.PathEscape(projectID), &project); err != nil {
		return nil, err
	}

	return &project, nil
}

// ProjectURL returns the public page of a project.
func ProjectURL(projectID string) string {
	return SiteURL + url.PathEscape(projectID)
}
