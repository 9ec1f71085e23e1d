package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balatro-setup/pkg/errors"
)

const releaseJSON = `{
	"tag_name": "v1.0.1",
	"name": "lovely 1.0.1",
	"zipball_url": "https://api.github.com/repos/x/y/zipball/v1.0.1",
	"assets": [
		{"name": "lovely-aarch64-apple-darwin.tar.gz", "browser_download_url": "https://example.com/darwin", "size": 100},
		{"name": "lovely-x86_64-pc-windows-msvc.zip", "browser_download_url": "https://example.com/windows", "size": 200}
	]
}`

func TestLatestRelease(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/ethangreen-dev/lovely-injector/releases/latest", r.URL.Path)
		fmt.Fprint(w, releaseJSON)
	}))
	defer srv.Close()

	c := NewClient()
	c.BaseURL = srv.URL

	rel, err := c.LatestRelease(context.Background(), "ethangreen-dev/lovely-injector")
	require.NoError(t, err)

	assert.Equal(t, "v1.0.1", rel.TagName)
	require.Len(t, rel.Assets, 2)
}

func TestLatestRelease_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient()
	c.BaseURL = srv.URL

	_, err := c.LatestRelease(context.Background(), "nobody/nothing")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrReleaseMeta))
}

func TestLatestRelease_Unreachable(t *testing.T) {
	c := NewClient()
	c.BaseURL = "http://127.0.0.1:1"

	_, err := c.LatestRelease(context.Background(), "a/b")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrReleaseMeta))
}

func TestRelease_Asset(t *testing.T) {
	rel := &Release{
		TagName: "v1.0.1",
		Assets: []Asset{
			{Name: "lovely-aarch64-apple-darwin.tar.gz"},
			{Name: "lovely-x86_64-pc-windows-msvc.zip"},
		},
	}

	asset, err := rel.Asset("lovely-x86_64-pc-windows-msvc.zip")
	require.NoError(t, err)
	assert.Equal(t, "lovely-x86_64-pc-windows-msvc.zip", asset.Name)

	asset, err = rel.Asset("*windows*.zip")
	require.NoError(t, err)
	assert.Equal(t, "lovely-x86_64-pc-windows-msvc.zip", asset.Name)

	_, err = rel.Asset("*.7z")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNoAsset))
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "9")
		fmt.Fprint(w, "MZ-lovely")
	}))
	defer srv.Close()

	dst := filepath.Join(t.TempDir(), "lovely.zip")
	got, err := Download(context.Background(), srv.URL+"/lovely.zip", dst)
	require.NoError(t, err)

	assert.Equal(t, dst, got)
	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "MZ-lovely", string(data))
}

func TestDownload_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := Download(context.Background(), srv.URL+"/gone.zip", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrDownload))
}
