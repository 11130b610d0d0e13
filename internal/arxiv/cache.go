package arxiv

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// CacheEnvVar overrides the cache directory when Options.CacheDir is empty.
	CacheEnvVar        = "STUDYDESK_CACHE_DIR"
	cacheSubdir        = "studydesk/pdfs"
	cacheTTL           = 7 * 24 * time.Hour
	defaultHTTPTimeout = 90 * time.Second
)

var (
	pdfMagic = []byte("%PDF-")

	// ErrNotPDF is returned when a download does not start with a PDF header.
	ErrNotPDF = errors.New("downloaded file is not a PDF")
)

// pdfCache keeps downloaded papers on disk for the summarize panel. Stale
// files are revalidated with ETag or Last-Modified; an interrupted download
// resumes from its .part file.
type pdfCache struct {
	dir    string
	client *http.Client
}

// cacheEntry is the set of files kept for one paper.
type cacheEntry struct {
	url  string
	pdf  string
	meta string
	part string
}

type entryMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"lastModified,omitempty"`
	CachedAt     time.Time `json:"cachedAt"`
	Size         int64     `json:"size"`
}

func newPDFCache(dir string, client *http.Client) (*pdfCache, error) {
	if dir == "" {
		dir = os.Getenv(CacheEnvVar)
	}
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = os.TempDir()
		}
		dir = filepath.Join(base, cacheSubdir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create pdf cache: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &pdfCache{dir: dir, client: client}, nil
}

func (c *pdfCache) entry(pdfURL string) cacheEntry {
	base := filepath.Join(c.dir, cacheKey(pdfURL))
	return cacheEntry{url: pdfURL, pdf: base + ".pdf", meta: base + ".meta", part: base + ".part"}
}

// Fetch returns a local path for pdfURL. A stale copy is served when the
// refresh fails.
func (c *pdfCache) Fetch(ctx context.Context, pdfURL string) (string, error) {
	e := c.entry(pdfURL)
	cached, _ := os.Stat(e.pdf)
	if cached != nil && cached.Size() > 0 && time.Since(cached.ModTime()) < cacheTTL {
		return e.pdf, nil
	}

	err := c.refresh(ctx, e, cached != nil && cached.Size() > 0)
	switch {
	case err == nil:
		return e.pdf, nil
	case cached != nil && cached.Size() > 0:
		return e.pdf, nil
	default:
		return "", err
	}
}

func (c *pdfCache) refresh(ctx context.Context, e cacheEntry, haveCopy bool) error {
	meta, _ := readMeta(e.meta)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url, nil)
	if err != nil {
		return err
	}
	if haveCopy {
		setIfPresent(req.Header, "If-None-Match", meta.ETag)
		setIfPresent(req.Header, "If-Modified-Since", meta.LastModified)
	}
	resumeFrom := fileSize(e.part)
	if resumeFrom > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", resumeFrom))
		if validator := firstNonEmpty(meta.ETag, meta.LastModified); validator != "" {
			req.Header.Set("If-Range", validator)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", e.url, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		if !haveCopy {
			return fmt.Errorf("download %s: not modified but nothing cached", e.url)
		}
		meta.CachedAt = time.Now().UTC()
		_ = os.Chtimes(e.pdf, time.Now(), time.Now())
		return writeMeta(e.meta, meta)
	case http.StatusOK:
		return c.store(resp, e, false)
	case http.StatusPartialContent:
		return c.store(resp, e, resumeFrom > 0)
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("download %s: %s (%s)", e.url, resp.Status, strings.TrimSpace(string(snippet)))
	}
}

// store writes the body to the .part file, checks the PDF header and moves
// the result into place.
func (c *pdfCache) store(resp *http.Response, e cacheEntry, resume bool) error {
	mode := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if resume {
		mode = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	part, err := os.OpenFile(e.part, mode, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, resp.Body); err != nil {
		part.Close()
		return fmt.Errorf("download %s: %w", e.url, err)
	}
	if err := part.Close(); err != nil {
		return err
	}
	if err := checkMagic(e.part); err != nil {
		_ = os.Remove(e.part)
		return err
	}
	if err := os.Rename(e.part, e.pdf); err != nil {
		return err
	}
	return writeMeta(e.meta, entryMeta{
		URL:          resp.Request.URL.String(),
		ETag:         resp.Header.Get("Etag"),
		LastModified: resp.Header.Get("Last-Modified"),
		CachedAt:     time.Now().UTC(),
		Size:         fileSize(e.pdf),
	})
}

func checkMagic(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, pdfMagic) {
		return ErrNotPDF
	}
	return nil
}

func cacheKey(pdfURL string) string {
	if id := extractIdentifier(pdfURL); id != "" {
		return strings.NewReplacer("/", "-", ":", "-", "..", "-").Replace(strings.TrimSpace(id))
	}
	sum := sha1.Sum([]byte(pdfURL))
	return hex.EncodeToString(sum[:])
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func setIfPresent(h http.Header, key, value string) {
	if value != "" {
		h.Set(key, value)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func readMeta(path string) (entryMeta, error) {
	var meta entryMeta
	data, err := os.ReadFile(path)
	if err != nil {
		return meta, err
	}
	err = json.Unmarshal(data, &meta)
	return meta, err
}

func writeMeta(path string, meta entryMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
