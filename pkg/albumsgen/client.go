package albumsgen

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Config holds client configuration.
type Config struct {
	HTTPClient *http.Client // Optional: HTTP client (defaults to http.DefaultClient)
	BaseURL    string       // Optional: Base URL for API (defaults to the public API, used for testing)
	UserAgent  string       // Optional: User-Agent header (defaults to "albumlog/1.0")
	Logger     Logger       // Optional: Logger interface for debug logging
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Client is the main entry point for API operations.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	userAgent  string
	logger     Logger

	projects *ProjectService
}

const (
	// DefaultBaseURL is the default API endpoint.
	DefaultBaseURL = "https://1001albumsgenerator.com/api/v1/"

	// SiteURL is the public website that hosts project pages.
	SiteURL = "https://1001albumsgenerator.com/"

	defaultUserAgent = "albumlog/1.0"
)

// NewClient creates a new API client.
//
// Returns an error if BaseURL is set but cannot be parsed.
func NewClient(cfg Config) (*Client, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	rawBase := cfg.BaseURL
	if rawBase == "" {
		rawBase = DefaultBaseURL
	}
	if !strings.HasSuffix(rawBase, "/") {
		rawBase += "/"
	}
	baseURL, err := url.Parse(rawBase)
	if err != nil {
		return nil, fmt.Errorf("albumsgen: invalid BaseURL %q: %w", cfg.BaseURL, err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("albumsgen: BaseURL %q must be absolute", cfg.BaseURL)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
		logger:     cfg.Logger,
	}

	c.projects = &ProjectService{client: c}

	return c, nil
}

// Projects returns the project service.
func (c *Client) Projects() *ProjectService {
	return c.projects
}

// BaseURL returns the API endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
