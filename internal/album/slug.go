package album

import "strings"

// Slug turns a project name into the identifier used in API URLs:
// lower-cased, with spaces replaced by hyphens.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}
