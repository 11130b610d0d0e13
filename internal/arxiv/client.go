// Package arxiv resolves arXiv references typed into the PDF panel: it
// downloads the paper PDF into a local cache and looks up its metadata.
package arxiv

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultPDFBase = "https://arxiv.org"
	DefaultAPIBase = "https://export.arxiv.org"
)

// Paper is the subset of arXiv metadata shown next to a summary.
type Paper struct {
	ID       string
	Title    string
	Authors  []string
	Abstract string
	Subjects []string
	PDFURL   string
}

var (
	idRegexp             = regexp.MustCompile(`(?i)arxiv\.org/(?:abs|pdf)/([0-9a-z.\-]+)(?:\.pdf)?`)
	bareIDRegexp         = regexp.MustCompile(`^[0-9a-z.\-]+$`)
	newStyleIDRegexp     = regexp.MustCompile(`^\d{4}\.\d{4,5}(v\d+)?$`)
	extraneousWhitespace = regexp.MustCompile(`\s+`)
)

// Options configure a Fetcher. Zero values select the public arXiv hosts and
// the default cache directory.
type Options struct {
	CacheDir   string
	HTTPClient *http.Client
	PDFBase    string
	APIBase    string
	Logger     *zap.Logger
}

// Fetcher downloads arXiv PDFs. Concurrent downloads of the same paper share
// one request.
type Fetcher struct {
	cache   *pdfCache
	http    *http.Client
	pdfBase string
	apiBase string
	logger  *zap.Logger
	group   singleflight.Group
}

// NewFetcher creates the cache directory if needed.
func NewFetcher(opts Options) (*Fetcher, error) {
	cache, err := newPDFCache(opts.CacheDir, opts.HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("arxiv cache: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Fetcher{
		cache:   cache,
		http:    cache.client,
		pdfBase: strings.TrimRight(opts.PDFBase, "/"),
		apiBase: strings.TrimRight(opts.APIBase, "/"),
		logger:  logger.Named("arxiv"),
	}
	if f.pdfBase == "" {
		f.pdfBase = DefaultPDFBase
	}
	if f.apiBase == "" {
		f.apiBase = DefaultAPIBase
	}
	return f, nil
}

// IsReference reports whether input names an arXiv paper rather than a local
// file: an arxiv.org URL, an "arXiv:" prefixed id or a bare new-style id.
func IsReference(input string) bool {
	input = strings.TrimSpace(input)
	if idRegexp.MatchString(input) {
		return true
	}
	if len(input) > len("arxiv:") && strings.EqualFold(input[:len("arxiv:")], "arxiv:") {
		return extractIdentifier(input) != ""
	}
	return newStyleIDRegexp.MatchString(strings.TrimSuffix(input, ".pdf"))
}

// DownloadPDF returns the local path of the PDF for an arXiv URL or id.
func (f *Fetcher) DownloadPDF(ctx context.Context, input string) (string, error) {
	id := extractIdentifier(input)
	if id == "" {
		return "", fmt.Errorf("unable to extract arXiv identifier from %q", input)
	}
	pdfURL := fmt.Sprintf("%s/pdf/%s.pdf", f.pdfBase, id)

	ch := f.group.DoChan(id, func() (any, error) {
		started := time.Now()
		path, err := f.cache.Fetch(context.WithoutCancel(ctx), pdfURL)
		if err != nil {
			f.logger.Warn("pdf download failed", zap.String("id", id), zap.Error(err))
			return "", err
		}
		f.logger.Debug("pdf ready", zap.String("id", id), zap.String("path", path), zap.Duration("duration", time.Since(started)))
		return path, nil
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Lookup fetches title, authors and abstract for an arXiv URL or id.
func (f *Fetcher) Lookup(ctx context.Context, input string) (*Paper, error) {
	id := extractIdentifier(input)
	if id == "" {
		return nil, fmt.Errorf("unable to extract arXiv identifier from %q", input)
	}

	url := fmt.Sprintf("%s/api/query?id_list=%s", f.apiBase, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("arxiv API error: %s (%s)", resp.Status, string(body))
	}

	entry, err := decodeEntry(resp.Body)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errors.New("paper not found")
	}

	authors := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		authors = append(authors, strings.TrimSpace(a.Name))
	}
	subjects := make([]string, 0, len(entry.Categories))
	for _, cat := range entry.Categories {
		subjects = append(subjects, strings.TrimSpace(cat.Term))
	}

	return &Paper{
		ID:       id,
		Title:    normalizeWhitespace(entry.Title),
		Authors:  authors,
		Abstract: normalizeWhitespace(entry.Summary),
		Subjects: subjects,
		PDFURL:   fmt.Sprintf("%s/pdf/%s.pdf", f.pdfBase, id),
	}, nil
}

// Heading is a one-line "Title (Author et al.)" label.
func (p *Paper) Heading() string {
	if p == nil || p.Title == "" {
		return ""
	}
	switch len(p.Authors) {
	case 0:
		return p.Title
	case 1:
		return fmt.Sprintf("%s (%s)", p.Title, p.Authors[0])
	default:
		return fmt.Sprintf("%s (%s et al.)", p.Title, p.Authors[0])
	}
}

func extractIdentifier(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	if len(input) > 4 && strings.EqualFold(input[len(input)-4:], ".pdf") {
		input = input[:len(input)-4]
	}
	if matches := idRegexp.FindStringSubmatch(input); len(matches) > 1 {
		return matches[1]
	}
	if len(input) >= len("arxiv:") && strings.EqualFold(input[:len("arxiv:")], "arxiv:") {
		input = input[len("arxiv:"):]
	}
	input = strings.TrimSpace(input)
	if bareIDRegexp.MatchString(input) {
		return input
	}
	return ""
}

type apiFeed struct {
	Entries []apiEntry `xml:"entry"`
}

type apiEntry struct {
	ID         string        `xml:"id"`
	Title      string        `xml:"title"`
	Summary    string        `xml:"summary"`
	Authors    []apiAuthor   `xml:"author"`
	Categories []apiCategory `xml:"category"`
}

type apiAuthor struct {
	Name string `xml:"name"`
}

type apiCategory struct {
	Term string `xml:"term,attr"`
}

func decodeEntry(reader io.Reader) (*apiEntry, error) {
	var feed apiFeed
	if err := xml.NewDecoder(reader).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode arxiv response: %w", err)
	}
	if len(feed.Entries) == 0 {
		return nil, nil
	}
	return &feed.Entries[0], nil
}

func normalizeWhitespace(s string) string {
	return extraneousWhitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}
