// Package fetch resolves GitHub releases to downloadable artifacts and
// retrieves them. Metadata failures and network failures carry distinct
// error codes so callers can report them separately.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/cavaliergopher/grab/v3"

	"balatro-setup/internal/version"
	"balatro-setup/pkg/errors"
	"balatro-setup/pkg/logging"
)

// DefaultBaseURL is the GitHub API endpoint.
const DefaultBaseURL = "https://api.github.com"

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// Release is the subset of the GitHub release payload this tool needs.
type Release struct {
	TagName    string  `json:"tag_name"`
	Name       string  `json:"name"`
	ZipballURL string  `json:"zipball_url"`
	Assets     []Asset `json:"assets"`
}

// Asset returns the first asset whose name matches the glob pattern.
func (r *Release) Asset(pattern string) (*Asset, error) {
	for i := range r.Assets {
		ok, err := path.Match(pattern, r.Assets[i].Name)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "bad asset pattern %q", pattern)
		}
		if ok {
			return &r.Assets[i], nil
		}
	}
	return nil, errors.Newf(errors.ErrNoAsset, "release %s has no asset matching %q", r.TagName, pattern)
}

// Client talks to the GitHub releases API.
type Client struct {
	// BaseURL overrides the API endpoint, for tests.
	BaseURL string

	// HTTPClient defaults to a client with a request timeout.
	HTTPClient *http.Client
}

// NewClient returns a Client with sane defaults.
func NewClient() *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// userAgent identifies this tool to the API.
func userAgent() string {
	return fmt.Sprintf("balatro-setup/%s", version.Version)
}

// LatestRelease fetches the latest release of repo ("owner/name").
func (c *Client) LatestRelease(ctx context.Context, repo string) (*Release, error) {
	logger := logging.GetLogger("fetch")

	url := fmt.Sprintf("%s/repos/%s/releases/latest", c.BaseURL, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrReleaseMeta, "bad release URL for %s", repo)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrReleaseMeta, "cannot reach release metadata for %s", repo)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Newf(errors.ErrReleaseMeta, "release metadata for %s returned %d: %s",
			repo, resp.StatusCode, string(body))
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, errors.Wrapf(err, errors.ErrReleaseMeta, "cannot decode release metadata for %s", repo)
	}

	logger.Info().Str("repo", repo).Str("tag", rel.TagName).Msg("Resolved latest release")
	return &rel, nil
}

// Download retrieves url into dst. dst may be a directory, in which case the
// filename is derived from the URL, or a full file path. The path of the
// downloaded file is returned.
func Download(ctx context.Context, url, dst string) (string, error) {
	logger := logging.GetLogger("fetch")

	req, err := grab.NewRequest(dst, url)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrDownload, "bad download URL %s", url)
	}
	req = req.WithContext(ctx)
	req.HTTPRequest.Header.Set("User-Agent", userAgent())

	client := grab.NewClient()
	client.UserAgent = userAgent()
	resp := client.Do(req)

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

poll:
	for {
		select {
		case <-ticker.C:
			logger.Debug().
				Str("url", url).
				Int64("bytes", resp.BytesComplete()).
				Float64("progress", resp.Progress()).
				Msg("Downloading")
		case <-resp.Done:
			break poll
		}
	}

	if err := resp.Err(); err != nil {
		return "", errors.Wrapf(err, errors.ErrDownload, "download of %s failed", url)
	}

	logger.Info().Str("file", resp.Filename).Int64("bytes", resp.BytesComplete()).Msg("Download complete")
	return resp.Filename, nil
}
