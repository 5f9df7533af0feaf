// Package recording retrieves caller audio from the telephony provider.
package recording

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

// fallbackFilename is used when the recording URL path yields no basename.
const fallbackFilename = "recording.wav"

// Fetcher downloads provider recordings into caller-managed scratch space.
// Prior files are never cleaned up here.
type Fetcher struct {
	client     *http.Client
	accountSID string
	authToken  string
}

// NewFetcher builds a fetcher authenticating with the provider credential
// pair. An empty pair still works for unauthenticated URLs.
func NewFetcher(accountSID, authToken string) *Fetcher {
	return &Fetcher{
		client:     &http.Client{Timeout: 30 * time.Second},
		accountSID: accountSID,
		authToken:  authToken,
	}
}

// Fetch streams the remote recording into destDir and returns the local
// path. Any network failure or non-success status is fatal for the stage
// and propagates; there are no retries.
func (f *Fetcher) Fetch(ctx context.Context, recordingURL, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}

	localPath := filepath.Join(destDir, localFilename(recordingURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recordingURL, nil)
	if err != nil {
		return "", fmt.Errorf("build recording request: %w", err)
	}
	if f.accountSID != "" || f.authToken != "" {
		req.SetBasicAuth(f.accountSID, f.authToken)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch recording: unexpected status %d", resp.StatusCode)
	}

	out, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("create recording file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return "", fmt.Errorf("write recording file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close recording file: %w", err)
	}

	return localPath, nil
}

func localFilename(recordingURL string) string {
	u, err := url.Parse(recordingURL)
	if err != nil {
		return fallbackFilename
	}
	base := path.Base(u.Path)
	if base == "" || base == "." || base == "/" {
		return fallbackFilename
	}
	return base
}
