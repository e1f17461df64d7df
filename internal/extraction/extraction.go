// Package extraction pulls garment image candidates and a product
// description out of arbitrary retailer pages.
//
// The engine never fails on markup it has not seen before; it returns
// whatever best-effort content survives filtering, and only zero surviving
// image candidates is an error.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoCandidates reports that a page contained no usable garment images.
// Callers must treat it as "nothing to try on here" and not start a job.
var ErrNoCandidates = errors.New("no usable garment images on page")

// Result is the structured output of one page extraction.
type Result struct {
	Images      []string `json:"images"`
	Description string   `json:"description"`
}

// Extract parses an HTML document and returns garment image candidates and
// an assembled description. base resolves relative image URLs and may be nil.
func Extract(r io.Reader, base *url.URL) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("parse page: %w", err)
	}
	return ExtractDocument(doc, base), nil
}

// ExtractDocument runs the engine against an already-parsed document.
func ExtractDocument(doc *goquery.Document, base *url.URL) Result {
	return Result{
		Images:      collectImages(doc, base),
		Description: assembleDescription(doc),
	}
}

// Fetcher retrieves pages over HTTP for extraction.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// NewFetcher builds a page fetcher. maxBody caps the response size in bytes;
// zero means a 20 MiB default.
func NewFetcher(client *http.Client, userAgent string, maxBody int64) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if maxBody <= 0 {
		maxBody = 20 << 20
	}
	return &Fetcher{client: client, userAgent: userAgent, maxBody: maxBody}
}

// FetchAndExtract downloads a page and runs extraction against it. The page
// URL doubles as the base for resolving relative image references.
func (f *Fetcher) FetchAndExtract(ctx context.Context, pageURL string) (Result, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return Result{}, fmt.Errorf("parse page url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Result{}, fmt.Errorf("unsupported page url scheme %q", parsed.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("build page request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return Result{}, fmt.Errorf("fetch page: server returned %d", resp.StatusCode)
	}

	result, err := Extract(io.LimitReader(resp.Body, f.maxBody), parsed)
	if err != nil {
		return Result{}, err
	}
	if len(result.Images) == 0 {
		return result, ErrNoCandidates
	}
	return result, nil
}

func stripQuery(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return raw[:i]
	}
	return raw
}
