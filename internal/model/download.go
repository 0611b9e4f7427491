// Package model fetches model and voice assets into a local cache. Fetches
// are idempotent: an asset already resident (and matching its pinned
// checksum, when one exists) is never re-downloaded, and failed transfers
// never leave a partial file registered as available.
package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ErrDownloadFailed is returned for any network or storage failure while
// fetching an asset. Recoverable by retrying the fetch.
var ErrDownloadFailed = errors.New("download failed")

var shaHexPattern = regexp.MustCompile(`(?i)^[a-f0-9]{64}$`)

// FetchOptions configures asset fetching.
type FetchOptions struct {
	// BaseURL is the storage endpoint; asset URLs are templated as
	// BaseURL/<name>.
	BaseURL string
	// CacheDir is the local cache root; cache paths are derived
	// deterministically from the asset name.
	CacheDir string
	// SHA256 optionally pins the expected checksum (lower-case hex).
	SHA256 string
	// Client overrides the HTTP client. Nil uses a default with no
	// overall timeout (transfers can be large).
	Client *http.Client
	// Stdout receives progress lines. Nil discards them.
	Stdout io.Writer
}

// CachePath returns the deterministic local path for an asset name.
func CachePath(cacheDir, name string) string {
	return filepath.Join(cacheDir, filepath.FromSlash(name))
}

// ResolveURL returns the download URL for an asset name. Slashes in the
// name are path separators on the remote side as well.
func ResolveURL(baseURL, name string) string {
	segments := strings.Split(name, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	return strings.TrimSuffix(baseURL, "/") + "/" + strings.Join(segments, "/")
}

// Fetch downloads the named asset into the cache and returns its local path.
// When the asset is already resident (and matches the pinned checksum, if
// any) the existing file is returned without a network call.
func Fetch(ctx context.Context, name string, opts FetchOptions) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: asset name is required", ErrDownloadFailed)
	}

	if opts.BaseURL == "" {
		return "", fmt.Errorf("%w: base URL is required", ErrDownloadFailed)
	}

	if opts.CacheDir == "" {
		return "", fmt.Errorf("%w: cache dir is required", ErrDownloadFailed)
	}

	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}

	if opts.SHA256 != "" && !shaHexPattern.MatchString(opts.SHA256) {
		return "", fmt.Errorf("%w: malformed pinned checksum %q", ErrDownloadFailed, opts.SHA256)
	}

	localPath := CachePath(opts.CacheDir, name)

	if ok, err := existingMatches(localPath, strings.ToLower(opts.SHA256)); err != nil {
		return "", err
	} else if ok {
		fmt.Fprintf(opts.Stdout, "skip %s (already present)\n", name)
		return localPath, nil
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", fmt.Errorf("%w: create cache dir: %v", ErrDownloadFailed, err)
	}

	fmt.Fprintf(opts.Stdout, "download %s -> %s\n", name, localPath)

	actual, err := downloadWithProgress(ctx, opts.Client, ResolveURL(opts.BaseURL, name), localPath, opts.Stdout)
	if err != nil {
		return "", err
	}

	if opts.SHA256 != "" && actual != strings.ToLower(opts.SHA256) {
		_ = os.Remove(localPath)
		return "", fmt.Errorf("%w: checksum mismatch for %s: expected %s got %s", ErrDownloadFailed, name, opts.SHA256, actual)
	}

	fmt.Fprintf(opts.Stdout, "verified %s (sha256=%s)\n", name, actual)

	return localPath, nil
}

// existingMatches reports whether path exists and, when expected is set,
// carries the expected checksum.
func existingMatches(path, expected string) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: stat existing file: %v", ErrDownloadFailed, err)
	}

	if fi.IsDir() {
		return false, fmt.Errorf("%w: expected file at %s, found directory", ErrDownloadFailed, path)
	}

	if expected == "" {
		return true, nil
	}

	actual, err := fileSHA256(path)
	if err != nil {
		return false, err
	}

	return actual == expected, nil
}

func downloadWithProgress(ctx context.Context, client *http.Client, assetURL, outPath string, stdout io.Writer) (string, error) {
	if client == nil {
		client = &http.Client{Timeout: 0}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrDownloadFailed, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned %s", ErrDownloadFailed, assetURL, resp.Status)
	}

	tmp := outPath + ".tmp"
	fh, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %v", ErrDownloadFailed, err)
	}

	h := sha256.New()
	mw := io.MultiWriter(fh, h)

	var written int64
	buf := make([]byte, 64*1024)
	total := resp.ContentLength
	lastPrint := time.Now()

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			wn, writeErr := mw.Write(buf[:n])
			if writeErr != nil {
				_ = fh.Close()
				_ = os.Remove(tmp)
				return "", fmt.Errorf("%w: write temp file: %v", ErrDownloadFailed, writeErr)
			}
			written += int64(wn)
			if time.Since(lastPrint) > 700*time.Millisecond {
				if total > 0 {
					pct := float64(written) * 100 / float64(total)
					fmt.Fprintf(stdout, "  progress: %.1f%% (%d/%d bytes)\n", pct, written, total)
				} else {
					fmt.Fprintf(stdout, "  progress: %d bytes\n", written)
				}
				lastPrint = time.Now()
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = fh.Close()
			_ = os.Remove(tmp)
			return "", fmt.Errorf("%w: read response: %v", ErrDownloadFailed, readErr)
		}
	}

	if err := fh.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("%w: close temp file: %v", ErrDownloadFailed, err)
	}

	if err := os.Rename(tmp, outPath); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("%w: move temp file into place: %v", ErrDownloadFailed, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open file for checksum: %v", ErrDownloadFailed, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("%w: read file for checksum: %v", ErrDownloadFailed, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
