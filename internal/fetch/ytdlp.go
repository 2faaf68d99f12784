// Package fetch downloads media from a URL into a local file via yt-dlp.
// yt-dlp handles site extraction and its own retries; this package only
// validates inputs, invokes the tool, and locates the produced file.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrYtDlpNotFound is returned when the tool is not installed.
var ErrYtDlpNotFound = errors.New("fetch: yt-dlp not found in PATH (install with: pip install yt-dlp)")

// Error wraps a fetch failure: bad URL, network error, or extraction error.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch: %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Result is the downloaded media file plus metadata yt-dlp reported.
type Result struct {
	Path     string
	Title    string
	Duration float64
}

type mediaInfo struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

// audioExts are the extensions the fallback file scan accepts.
var audioExts = map[string]bool{
	".wav": true, ".mp3": true, ".ogg": true, ".m4a": true, ".opus": true, ".flac": true,
}

// Download fetches the best audio from url into destDir as WAV.
// The URL must be http or https; yt-dlp runs with --no-exec so site metadata
// can never trigger post-processing commands.
func Download(ctx context.Context, url, destDir string) (Result, error) {
	if err := validateURL(url); err != nil {
		return Result{}, &Error{URL: url, Err: err}
	}
	if _, err := exec.LookPath("yt-dlp"); err != nil {
		return Result{}, ErrYtDlpNotFound
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return Result{}, &Error{URL: url, Err: err}
	}

	// Metadata probe first; failures here are non-fatal, the title is cosmetic.
	var info mediaInfo
	probe := exec.CommandContext(ctx, "yt-dlp", "--dump-json", "--no-download", "--no-exec", url)
	if out, err := probe.Output(); err == nil {
		_ = json.Unmarshal(out, &info)
	} else if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}

	template := filepath.Join(destDir, "%(id)s.%(ext)s")
	cmd := exec.CommandContext(ctx, "yt-dlp",
		"--extract-audio",
		"--audio-format", "wav",
		"--audio-quality", "0",
		"--no-playlist",
		"--no-exec",
		"--output", template,
		"--print", "after_move:filepath",
		url,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, &Error{URL: url, Err: fmt.Errorf("yt-dlp: %w: %s", err, truncate(stderr.String(), 1000))}
	}

	path := strings.TrimSpace(string(out))
	if path == "" {
		// Older yt-dlp versions don't support --print after_move; scan instead.
		path, err = newestAudioFile(destDir)
		if err != nil {
			return Result{}, &Error{URL: url, Err: err}
		}
	} else if err := validatePathInDir(path, destDir); err != nil {
		return Result{}, &Error{URL: url, Err: err}
	}

	if _, err := os.Stat(path); err != nil {
		return Result{}, &Error{URL: url, Err: fmt.Errorf("downloaded file not found at %s", path)}
	}

	return Result{Path: path, Title: info.Title, Duration: info.Duration}, nil
}

// validateURL rejects anything that is not plain http(s).
func validateURL(url string) error {
	u := strings.TrimSpace(url)
	if strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "http://") {
		return nil
	}
	return fmt.Errorf("invalid URL (must start with http:// or https://): %q", u)
}

// validatePathInDir guards against the tool reporting a path outside destDir.
func validatePathInDir(path, dir string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("downloaded file path %s is outside %s", path, dir)
	}
	return nil
}

// newestAudioFile returns the most recently modified audio file in dir.
func newestAudioFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var best string
	var bestTime time.Time
	for _, entry := range entries {
		if entry.IsDir() || !audioExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		if best == "" || fi.ModTime().After(bestTime) {
			best = filepath.Join(dir, entry.Name())
			bestTime = fi.ModTime()
		}
	}
	if best == "" {
		return "", errors.New("no audio file found after download")
	}
	return best, nil
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
