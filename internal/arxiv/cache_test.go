package arxiv

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestCache(t *testing.T, handler http.HandlerFunc) (*pdfCache, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cache, err := newPDFCache(t.TempDir(), server.Client())
	if err != nil {
		t.Fatalf("newPDFCache: %v", err)
	}
	return cache, server.URL
}

func age(t *testing.T, path string) {
	t.Helper()
	old := time.Now().Add(-(cacheTTL + time.Hour))
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

func TestPDFCacheReusesFreshFile(t *testing.T) {
	var hits atomic.Int32
	cache, base := newTestCache(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Etag", `"v1"`)
		_, _ = w.Write([]byte("%PDF-1.4\nHello"))
	})
	ctx := context.Background()

	first, err := cache.Fetch(ctx, base+"/pdf/2101.00001.pdf")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.HasSuffix(first, ".pdf") {
		t.Fatalf("cached path should keep the .pdf extension: %s", first)
	}
	second, err := cache.Fetch(ctx, base+"/pdf/2101.00001.pdf")
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if first != second || hits.Load() != 1 {
		t.Fatalf("expected one download and one path, got %d hits, %s vs %s", hits.Load(), first, second)
	}
}

func TestPDFCacheRevalidatesStaleCopy(t *testing.T) {
	var notModified atomic.Int32
	cache, base := newTestCache(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v2"` {
			notModified.Add(1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Etag", `"v2"`)
		_, _ = w.Write([]byte("%PDF-1.4\nUpdated"))
	})
	ctx := context.Background()

	path, err := cache.Fetch(ctx, base+"/pdf/2201.00001.pdf")
	if err != nil {
		t.Fatalf("initial fetch: %v", err)
	}
	age(t, path)

	if _, err := cache.Fetch(ctx, base+"/pdf/2201.00001.pdf"); err != nil {
		t.Fatalf("conditional fetch: %v", err)
	}
	if notModified.Load() != 1 {
		t.Fatalf("expected one conditional request, got %d", notModified.Load())
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if time.Since(info.ModTime()) > time.Minute {
		t.Fatalf("revalidated copy should be fresh again")
	}
}

func TestPDFCacheResumesPartialDownload(t *testing.T) {
	var rangeHeader, ifRange string
	cache, base := newTestCache(t, func(w http.ResponseWriter, r *http.Request) {
		rangeHeader = r.Header.Get("Range")
		ifRange = r.Header.Get("If-Range")
		w.Header().Set("Etag", `"resume"`)
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte("world"))
	})
	url := base + "/pdf/2301.00001.pdf"
	e := cache.entry(url)
	head := "%PDF-1.4 hello "
	if err := os.WriteFile(e.part, []byte(head), 0o644); err != nil {
		t.Fatalf("write partial: %v", err)
	}
	if err := writeMeta(e.meta, entryMeta{ETag: `"resume"`}); err != nil {
		t.Fatalf("write meta: %v", err)
	}

	path, err := cache.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read cached pdf: %v", err)
	}
	if string(data) != head+"world" {
		t.Fatalf("resume failed, got %q", data)
	}
	if rangeHeader != fmt.Sprintf("bytes=%d-", len(head)) || ifRange != `"resume"` {
		t.Fatalf("unexpected range headers %q / %q", rangeHeader, ifRange)
	}
	if _, err := os.Stat(e.part); !os.IsNotExist(err) {
		t.Fatalf("partial file should be gone, err=%v", err)
	}
}

func TestPDFCacheRejectsNonPDF(t *testing.T) {
	cache, base := newTestCache(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>captcha</html>"))
	})
	url := base + "/pdf/2501.00001.pdf"
	_, err := cache.Fetch(context.Background(), url)
	if !errors.Is(err, ErrNotPDF) {
		t.Fatalf("expected ErrNotPDF, got %v", err)
	}
	e := cache.entry(url)
	for _, p := range []string{e.pdf, e.part} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("%s should not exist, err=%v", p, err)
		}
	}
}

func TestPDFCacheServesStaleCopyWhenOffline(t *testing.T) {
	var fail atomic.Bool
	cache, base := newTestCache(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("%PDF-1.4\nStale"))
	})
	ctx := context.Background()
	path, err := cache.Fetch(ctx, base+"/pdf/2401.00001.pdf")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	age(t, path)

	fail.Store(true)
	again, err := cache.Fetch(ctx, base+"/pdf/2401.00001.pdf")
	if err != nil {
		t.Fatalf("stale fetch should fall back to cached copy: %v", err)
	}
	if again != path {
		t.Fatalf("unexpected path %s", again)
	}
}

func TestPDFCacheUsesEnvDirWhenUnset(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(CacheEnvVar, dir)
	cache, err := newPDFCache("", nil)
	if err != nil {
		t.Fatalf("newPDFCache: %v", err)
	}
	if cache.dir != dir {
		t.Fatalf("cache dir = %s, want %s", cache.dir, dir)
	}
}

func TestCacheKey(t *testing.T) {
	t.Parallel()
	if got := cacheKey("https://arxiv.org/pdf/2401.01234v2"); strings.ContainsAny(got, "/:") || got == "" {
		t.Fatalf("arXiv key should be a sanitized id, got %q", got)
	}
	if got := cacheKey("https://example.com/foo.pdf"); len(got) != 40 {
		t.Fatalf("non-arXiv key should be a sha1 hex digest, got %q", got)
	}
}
