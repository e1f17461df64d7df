package orchestrator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"tryon/internal/config"
	"tryon/internal/generation"
	"tryon/internal/imagedata"
	"tryon/internal/job"
)

// runJob performs the garment fetch and the generation call for one token.
// All failures are converted into a terminal record; nothing propagates.
func (o *Orchestrator) runJob(ctx context.Context, token string, req job.Request) {
	garment := req.GarmentData
	if garment == "" {
		data, mimeType, err := o.fetcher.fetch(ctx, req.GarmentURL)
		if err != nil {
			o.fail(ctx, token, fmt.Sprintf("garment fetch failed: %v", err))
			return
		}
		garment = imagedata.Encode(data, mimeType)
	}

	result, err := o.generator.Generate(ctx, generation.Request{
		GarmentPhoto: garment,
		ModelPhoto:   req.ModelPhoto,
		Description:  req.Description,
	})
	if err != nil {
		o.fail(ctx, token, err.Error())
		return
	}

	o.complete(ctx, token, imagedata.Encode(result, imagedata.DetectMIME(result)))
}

// garmentFetcher downloads garment images referenced by URL.
type garmentFetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

func newGarmentFetcher(cfg *config.Config) *garmentFetcher {
	return &garmentFetcher{
		client:    &http.Client{Timeout: cfg.FetchTimeout()},
		userAgent: cfg.Fetch.UserAgent,
		maxBody:   cfg.Fetch.MaxBodyBytes,
	}
}

func (f *garmentFetcher) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	if imagedata.IsDataURL(rawURL) {
		return nil, "", fmt.Errorf("inline data passed as garment url")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("parse garment url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, "", fmt.Errorf("unsupported garment url scheme %q", parsed.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build garment request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, "", fmt.Errorf("server returned %d", resp.StatusCode)
	}

	limit := f.maxBody
	if limit <= 0 {
		limit = 20 << 20
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, "", fmt.Errorf("read garment body: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty garment response")
	}

	mimeType := strings.TrimSpace(resp.Header.Get("Content-Type"))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = imagedata.DetectMIME(data)
	}
	return data, mimeType, nil
}
