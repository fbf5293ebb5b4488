// Package fetch downloads survey exports into the local data directory.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const defaultFilename = "survey.csv"

// Request describes one download.
type Request struct {
	URL      string
	Dir      string
	Filename string
	Force    bool
}

// Result describes a downloaded or cached export.
type Result struct {
	Path     string
	Filename string
	Bytes    int64
	Cached   bool
}

// Download fetches req.URL into req.Dir. An existing file is reused unless
// req.Force is set.
func Download(ctx context.Context, req Request) (Result, error) {
	if req.URL == "" {
		return Result{}, fmt.Errorf("download url is required")
	}
	if req.Dir == "" {
		return Result{}, fmt.Errorf("download directory is required")
	}
	filename := req.Filename
	if filename == "" {
		filename = FilenameFor(req.URL)
	}
	if err := os.MkdirAll(req.Dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create download dir: %w", err)
	}

	destPath := filepath.Join(req.Dir, filename)
	if !req.Force {
		if info, err := os.Stat(destPath); err == nil {
			return Result{Path: destPath, Filename: filename, Bytes: info.Size(), Cached: true}, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return Result{}, fmt.Errorf("failed to stat cached export: %w", err)
		}
	}

	tmpFile, err := os.CreateTemp(req.Dir, "salaryscope-*"+filepath.Ext(filename))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	resp, err := httpRequest(ctx, req.URL)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("unexpected download status: %s", resp.Status)
	}

	n, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to download export: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return Result{}, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return Result{}, fmt.Errorf("failed to move export into place: %w", err)
	}
	return Result{Path: destPath, Filename: filename, Bytes: n}, nil
}

// FilenameFor picks a local file name for a download URL. Spreadsheet export
// links without an extension use their format parameter.
func FilenameFor(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultFilename
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		base = "survey"
	}
	if path.Ext(base) != "" {
		return base
	}
	switch format := strings.ToLower(u.Query().Get("format")); format {
	case "csv", "tsv", "xlsx":
		return "survey." + format
	default:
		return defaultFilename
	}
}

func httpRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}
