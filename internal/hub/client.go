package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const userAgent = "h5pmirror"

// ContentType is one entry of the hub's content-type list.
type ContentType struct {
	ID                   string      `json:"id"`
	Title                string      `json:"title,omitempty"`
	Summary              string      `json:"summary,omitempty"`
	Owner                string      `json:"owner,omitempty"`
	Version              Version     `json:"version"`
	CoreAPIVersionNeeded APIVersion  `json:"coreApiVersionNeeded"`
	Restricted           bool        `json:"restricted"`
	IsRecommended        bool        `json:"isRecommended"`
	Icon                 string      `json:"icon,omitempty"`
	Keywords             []string    `json:"keywords,omitempty"`
	Categories           []string    `json:"categories,omitempty"`
	Example              string      `json:"example,omitempty"`
	Tutorial             string      `json:"tutorial,omitempty"`
	Screenshots          []Reference `json:"screenshots,omitempty"`
}

// Version is a hub version triple.
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

// APIVersion is a hub major.minor pair.
type APIVersion struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
}

// Reference is a hub media link.
type Reference struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// Registration identifies this site to the hub when listing content types.
type Registration struct {
	UUID            string
	PlatformName    string
	PlatformVersion string
	CoreAPIVersion  string
}

type contentTypesResponse struct {
	ContentTypes []ContentType `json:"contentTypes"`
}

// Client is a minimal H5P Hub HTTP client.
type Client struct {
	contentTypesURL string
	httpClient      *http.Client
	logger          zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l zerolog.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// NewClient creates a client for the given content-types endpoint, e.g.
// https://api.h5p.org/v1/content-types/.
func NewClient(contentTypesURL string, opts ...Option) *Client {
	c := &Client{
		contentTypesURL: strings.TrimRight(contentTypesURL, "/") + "/",
		httpClient:      http.DefaultClient,
		logger:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ContentTypes fetches the full content-type list.
func (c *Client) ContentTypes(ctx context.Context, reg Registration) ([]ContentType, error) {
	form := url.Values{}
	form.Set("uuid", reg.UUID)
	form.Set("platform_name", reg.PlatformName)
	form.Set("platform_version", reg.PlatformVersion)
	form.Set("h5p_version", reg.CoreAPIVersion)
	form.Set("core_api_version", reg.CoreAPIVersion)
	form.Set("disabled", "0")
	form.Set("local_id", "0")
	form.Set("type", "local")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.contentTypesURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching content types: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hub returned status %d for content types", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var parsed contentTypesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing content types JSON: %w", err)
	}

	c.logger.Debug().Int("count", len(parsed.ContentTypes)).Msg("fetched hub content types")
	return parsed.ContentTypes, nil
}

// Download fetches the .h5p package of a content type into destDir and
// returns the archive path.
func (c *Client) Download(ctx context.Context, machineName, destDir string) (string, error) {
	downloadURL := c.contentTypesURL + url.PathEscape(machineName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating download request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", machineName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download of %s returned status %d", machineName, resp.StatusCode)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}

	f, err := os.CreateTemp(destDir, machineName+"-*.h5p")
	if err != nil {
		return "", fmt.Errorf("creating download file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("writing download: %w", err)
	}

	c.logger.Debug().
		Str("machine_name", machineName).
		Int64("bytes", n).
		Str("path", filepath.Base(f.Name())).
		Msg("downloaded hub package")
	return f.Name(), nil
}
