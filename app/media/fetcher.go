package media

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrFetch marks a failed media download. The caller degrades gracefully:
// the original reference stays in the body and the post import proceeds.
var ErrFetch = errors.New("media fetch failed")

const maxFetchAttempts = 3

// Fetcher downloads media bytes. Remote fetches carry a fixed per-request
// timeout and are retried with backoff; references rooted at "/" are read
// from the local media directory when present there, otherwise resolved
// against the base URL.
type Fetcher struct {
	client    *http.Client
	baseURL   string
	localDir  string
	userAgent string
}

func NewFetcher(baseURL, localDir, userAgent string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 5,
			},
		},
		baseURL:   baseURL,
		localDir:  localDir,
		userAgent: userAgent,
	}
}

// Run fetches one reference and returns its bytes and derived filename.
func (f *Fetcher) Run(ctx context.Context, ref string) ([]byte, string, error) {
	if strings.HasPrefix(ref, "data:") {
		return nil, "", fmt.Errorf("%w: data URL", ErrFetch)
	}

	if strings.HasPrefix(ref, "/") {
		if f.localDir != "" {
			localPath := filepath.Join(f.localDir, filepath.FromSlash(strings.TrimPrefix(ref, "/")))
			if data, err := os.ReadFile(localPath); err == nil {
				return data, filepath.Base(localPath), nil
			}
		}
		if f.baseURL == "" {
			return nil, "", fmt.Errorf("%w: relative reference %s and no base URL", ErrFetch, ref)
		}
		resolved, err := joinURL(f.baseURL, ref)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %s", ErrFetch, err)
		}
		ref = resolved
	}

	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		if attempt > 1 {
			delay := time.Duration(1<<uint(attempt-2)) * time.Second
			select {
			case <-ctx.Done():
				return nil, "", fmt.Errorf("%w: %s", ErrFetch, ctx.Err())
			case <-time.After(delay):
			}
			slog.Debug("Retrying media fetch", "url", ref, "attempt", attempt)
		}

		data, contentType, err := f.get(ctx, ref)
		if err != nil {
			lastErr = err
			continue
		}
		return data, filenameFor(ref, contentType), nil
	}

	return nil, "", fmt.Errorf("%w: %s: %s", ErrFetch, ref, lastErr)
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func joinURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}

// filenameFor derives a storage filename from the URL path, falling back to
// a hash-based name when the path carries none.
func filenameFor(rawURL, contentType string) string {
	if parsed, err := url.Parse(rawURL); err == nil {
		if name := path.Base(parsed.Path); name != "" && name != "." && name != "/" {
			return name
		}
	}

	sum := md5.Sum([]byte(rawURL))
	ext := "jpeg"
	if contentType != "" {
		if idx := strings.Index(contentType, "/"); idx >= 0 {
			ext = strings.TrimSpace(strings.Split(contentType[idx+1:], ";")[0])
		}
	}
	return fmt.Sprintf("image-%s.%s", hex.EncodeToString(sum[:])[:8], ext)
}

// FilenameFromURL returns the dedup key for a reference: the basename of its
// URL path, or "" when the URL carries none.
func FilenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return ""
	}
	return name
}
