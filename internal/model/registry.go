package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Spec names the model a caller wants: a catalog ID, or a custom ggml file
// with an optional expected checksum.
type Spec struct {
	ID     string
	Path   string
	SHA256 string
}

// Key is the cache key the registry coalesces and indexes on.
func (s Spec) Key() string {
	switch {
	case s.ID != "":
		return s.ID
	case s.SHA256 != "":
		return "sha256:" + strings.ToLower(s.SHA256)
	default:
		return "file:" + s.Path
	}
}

// Resolved is a model spec resolved to a verified local file.
type Resolved struct {
	ID     string
	Path   string
	SHA256 string
}

// Info is one listable model: a catalog entry or a cached custom file.
type Info struct {
	ID        string
	Filename  string
	SizeLabel string
	Cached    bool
	Custom    bool
	Path      string // set when cached
}

// Registry owns the model cache directory. It is safe for concurrent use;
// at most one download per model key is in flight process-wide.
type Registry struct {
	dir     string
	log     *slog.Logger
	client  *http.Client
	baseURL string

	group singleflight.Group

	mu       sync.Mutex
	idx      *index
	verified map[string]bool // keys whose on-disk checksum was verified this process
}

// Open loads (or creates) the cache directory at dir. A nil logger falls back
// to slog.Default.
func Open(dir string, log *slog.Logger) (*Registry, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("model: creating cache dir %s: %w", dir, err)
	}
	idx, err := loadIndex(dir)
	if err != nil {
		return nil, err
	}
	return &Registry{
		dir:      dir,
		log:      log,
		client:   &http.Client{},
		baseURL:  defaultBaseURL,
		idx:      idx,
		verified: make(map[string]bool),
	}, nil
}

// Dir returns the cache directory the registry was opened on.
func (r *Registry) Dir() string { return r.dir }

// Resolve returns a verified local file for spec, downloading on first use.
// Concurrent calls for the same key share a single download and observe the
// same outcome; a caller whose context ends while waiting gets its context
// error without aborting the shared download for the others.
func (r *Registry) Resolve(ctx context.Context, spec Spec) (Resolved, error) {
	if spec.Path != "" {
		return r.resolveCustom(spec)
	}

	entry, ok := lookup(spec.ID)
	if !ok {
		return Resolved{}, &UnsupportedError{ID: spec.ID}
	}

	if res, ok := r.cachedCatalog(entry); ok {
		return res, nil
	}

	ch := r.group.DoChan(entry.ID, func() (any, error) {
		// Re-check under coalescing: a competing caller may have finished
		// the download between our fast-path miss and this closure running.
		if res, ok := r.cachedCatalog(entry); ok {
			return res, nil
		}
		return r.download(ctx, entry)
	})

	select {
	case out := <-ch:
		if out.Err != nil {
			return Resolved{}, out.Err
		}
		return out.Val.(Resolved), nil
	case <-ctx.Done():
		return Resolved{}, ctx.Err()
	}
}

// cachedCatalog is the fast path: index entry present, file present, checksum
// verified. Never touches the network.
func (r *Registry) cachedCatalog(entry CatalogEntry) (Resolved, bool) {
	r.mu.Lock()
	e, ok := r.idx.Entries[entry.ID]
	verified := r.verified[entry.ID]
	r.mu.Unlock()
	if !ok {
		return Resolved{}, false
	}

	path := filepath.Join(r.dir, e.File)
	if _, err := os.Stat(path); err != nil {
		return Resolved{}, false
	}

	if !verified {
		sum, err := sha256File(path)
		if err != nil || !strings.EqualFold(sum, e.SHA256) {
			r.log.Warn("cached model failed verification, re-downloading",
				"model", entry.ID, "path", path)
			return Resolved{}, false
		}
		r.mu.Lock()
		r.verified[entry.ID] = true
		r.mu.Unlock()
	}

	return Resolved{ID: entry.ID, Path: path, SHA256: e.SHA256}, true
}

// download fetches the artifact to a .part file, verifies its checksum, and
// atomically publishes it into the cache. Partial files never survive an
// error, so a later Resolve can retry cleanly.
func (r *Registry) download(ctx context.Context, entry CatalogEntry) (Resolved, error) {
	url := r.baseURL + "/" + entry.Filename
	dest := filepath.Join(r.dir, entry.Filename)
	tmp := dest + ".part"

	r.log.Info("downloading model", "model", entry.ID, "url", url)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Resolved{}, &DownloadError{URL: url, Err: err}
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return Resolved{}, &DownloadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Resolved{}, &DownloadError{URL: url, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	f, err := os.Create(tmp)
	if err != nil {
		return Resolved{}, &DownloadError{URL: url, Err: err}
	}

	h := sha256.New()
	pw := &progressWriter{log: r.log, label: entry.ID, total: resp.ContentLength}
	written, err := io.Copy(io.MultiWriter(f, h, pw), resp.Body)
	cerr := f.Close()
	if err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return Resolved{}, &DownloadError{URL: url, Err: err}
	}

	sum := hex.EncodeToString(h.Sum(nil))
	if entry.SHA256 != "" && !strings.EqualFold(sum, entry.SHA256) {
		os.Remove(tmp)
		return Resolved{}, &ChecksumError{ID: entry.ID, Expected: entry.SHA256, Actual: sum}
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return Resolved{}, &DownloadError{URL: url, Err: err}
	}

	r.mu.Lock()
	r.idx.Entries[entry.ID] = Entry{
		File:       entry.Filename,
		SHA256:     sum,
		Size:       written,
		VerifiedAt: time.Now().UTC(),
	}
	saveErr := r.idx.save(r.dir)
	r.verified[entry.ID] = true
	r.mu.Unlock()
	if saveErr != nil {
		return Resolved{}, saveErr
	}

	r.log.Info("model ready", "model", entry.ID,
		"size_mb", written/(1024*1024), "elapsed", time.Since(start).Round(time.Millisecond))

	return Resolved{ID: entry.ID, Path: dest, SHA256: sum}, nil
}

// resolveCustom verifies a user-provided ggml file and records it in the
// index so List reports it. The file stays where the user put it.
func (r *Registry) resolveCustom(spec Spec) (Resolved, error) {
	abs, err := filepath.Abs(spec.Path)
	if err != nil {
		abs = spec.Path
	}
	if _, err := os.Stat(abs); err != nil {
		return Resolved{}, &NotFoundError{Path: spec.Path}
	}

	sum, err := sha256File(abs)
	if err != nil {
		return Resolved{}, fmt.Errorf("model: hashing %s: %w", abs, err)
	}
	if spec.SHA256 != "" && !strings.EqualFold(sum, spec.SHA256) {
		return Resolved{}, &ChecksumError{ID: spec.Path, Expected: strings.ToLower(spec.SHA256), Actual: sum}
	}

	key := "sha256:" + sum
	r.mu.Lock()
	if _, ok := r.idx.Entries[key]; !ok {
		var size int64
		if fi, err := os.Stat(abs); err == nil {
			size = fi.Size()
		}
		r.idx.Entries[key] = Entry{
			File:       abs,
			SHA256:     sum,
			Size:       size,
			VerifiedAt: time.Now().UTC(),
			Custom:     true,
		}
		if err := r.idx.save(r.dir); err != nil {
			r.mu.Unlock()
			return Resolved{}, err
		}
	}
	r.verified[key] = true
	r.mu.Unlock()

	return Resolved{ID: "custom", Path: abs, SHA256: sum}, nil
}

// List returns the static catalog plus locally cached custom entries. It does
// no I/O beyond the index loaded at Open and a stat per cached file.
func (r *Registry) List() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Info, 0, len(catalog)+len(r.idx.Entries))
	for _, c := range catalog {
		info := Info{ID: c.ID, Filename: c.Filename, SizeLabel: c.SizeLabel}
		if e, ok := r.idx.Entries[c.ID]; ok {
			path := filepath.Join(r.dir, e.File)
			if _, err := os.Stat(path); err == nil {
				info.Cached = true
				info.Path = path
			}
		}
		out = append(out, info)
	}

	customs := make([]Info, 0)
	for key, e := range r.idx.Entries {
		if !e.Custom {
			continue
		}
		customs = append(customs, Info{
			ID:       key,
			Filename: filepath.Base(e.File),
			Cached:   true,
			Custom:   true,
			Path:     e.File,
		})
	}
	sort.Slice(customs, func(i, j int) bool { return customs[i].ID < customs[j].ID })
	return append(out, customs...)
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// progressWriter logs download progress at coarse intervals instead of
// spamming one line per chunk.
type progressWriter struct {
	log     *slog.Logger
	label   string
	total   int64
	written int64
	lastLog int64
}

const progressStep = 128 * 1024 * 1024

func (pw *progressWriter) Write(p []byte) (int, error) {
	pw.written += int64(len(p))
	if pw.written-pw.lastLog >= progressStep {
		pw.lastLog = pw.written
		if pw.total > 0 {
			pw.log.Info("download progress", "model", pw.label,
				"mb", pw.written/(1024*1024),
				"pct", 100*pw.written/pw.total)
		} else {
			pw.log.Info("download progress", "model", pw.label,
				"mb", pw.written/(1024*1024))
		}
	}
	return len(p), nil
}
