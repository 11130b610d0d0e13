package arxiv

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestExtractIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"abs url", "https://arxiv.org/abs/2101.00001", "2101.00001"},
		{"pdf url", "https://arxiv.org/pdf/2205.12345.pdf", "2205.12345"},
		{"prefixed", "arXiv:2101.00001", "2101.00001"},
		{"bare", "2308.01234v2", "2308.01234v2"},
		{"bare pdf suffix", "2308.01234v2.pdf", "2308.01234v2"},
		{"invalid", "https://example.com/foo", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := extractIdentifier(tt.in); got != tt.want {
				t.Fatalf("extractIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsReference(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"https://arxiv.org/abs/2101.00001": true,
		"arXiv:2101.00001":                 true,
		"2308.01234v2":                     true,
		"2308.01234.pdf":                   true,
		"notes.pdf":                        false,
		"/home/me/papers/attention.pdf":    false,
		"./2023.pdf":                       false,
		"":                                 false,
	}
	for in, want := range tests {
		if got := IsReference(in); got != want {
			t.Errorf("IsReference(%q) = %v, want %v", in, got, want)
		}
	}
}

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <title>Attention Is All
      You Need</title>
    <summary>  The dominant sequence transduction models are based on
      recurrent networks. </summary>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
    <category term="cs.CL"/>
    <category term="cs.LG"/>
  </entry>
</feed>`

func TestLookupDecodesFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/query" || r.URL.Query().Get("id_list") != "1706.03762" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sampleFeed))
	}))
	t.Cleanup(server.Close)

	f, err := NewFetcher(Options{CacheDir: t.TempDir(), HTTPClient: server.Client(), APIBase: server.URL, PDFBase: server.URL})
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	paper, err := f.Lookup(context.Background(), "https://arxiv.org/abs/1706.03762")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if paper.Title != "Attention Is All You Need" {
		t.Fatalf("title = %q", paper.Title)
	}
	if paper.Abstract != "The dominant sequence transduction models are based on recurrent networks." {
		t.Fatalf("abstract = %q", paper.Abstract)
	}
	if len(paper.Authors) != 2 || len(paper.Subjects) != 2 {
		t.Fatalf("authors %v subjects %v", paper.Authors, paper.Subjects)
	}
	if got := paper.Heading(); got != "Attention Is All You Need (Ashish Vaswani et al.)" {
		t.Fatalf("heading = %q", got)
	}
}

func TestLookupNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
	}))
	t.Cleanup(server.Close)

	f, err := NewFetcher(Options{CacheDir: t.TempDir(), HTTPClient: server.Client(), APIBase: server.URL})
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	if _, err := f.Lookup(context.Background(), "2101.00001"); err == nil {
		t.Fatal("expected error for empty feed")
	}
}

func TestDownloadPDFSharesConcurrentRequests(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte("%PDF-1.4\nshared"))
	}))
	t.Cleanup(server.Close)

	f, err := NewFetcher(Options{CacheDir: t.TempDir(), HTTPClient: server.Client(), PDFBase: server.URL})
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	const callers = 4
	var wg sync.WaitGroup
	paths := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths[i], errs[i] = f.DownloadPDF(context.Background(), "arXiv:2401.99999")
		}(i)
	}
	// Let every caller join the in-flight download before it completes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range paths {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if paths[i] != paths[0] {
			t.Fatalf("callers got different paths: %v", paths)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("expected one download, got %d", n)
	}
	data, err := os.ReadFile(paths[0])
	if err != nil || string(data) != "%PDF-1.4\nshared" {
		t.Fatalf("cached pdf = %q, %v", data, err)
	}
}

func TestDownloadPDFHonoursCallerCancel(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	f, err := NewFetcher(Options{CacheDir: t.TempDir(), HTTPClient: server.Client(), PDFBase: server.URL})
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := f.DownloadPDF(ctx, "2401.00002"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestDownloadPDFRejectsNonArxivInput(t *testing.T) {
	f, err := NewFetcher(Options{CacheDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	if _, err := f.DownloadPDF(context.Background(), "https://example.com/foo"); err == nil {
		t.Fatal("expected error")
	}
}
