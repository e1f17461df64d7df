// Package generation talks to the external try-on generation service.
//
// The service is a black box behind one endpoint: POST /api/tryon with
// inline-encoded garment and model photos plus a description, returning an
// inline-encoded result image. An error field in an otherwise-successful
// response is a failure.
package generation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const userAgent = "tryon/0.1"

// Options describes client construction parameters.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client is the HTTP client for the generation service.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds a generation service client.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 180 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
	}
}

// Request carries one generation call. Both photos are inline data URLs.
type Request struct {
	GarmentPhoto string `json:"garment_photo"`
	ModelPhoto   string `json:"model_photo"`
	Description  string `json:"description,omitempty"`
}

type tryonResponse struct {
	Success     bool   `json:"success"`
	ImageBase64 string `json:"image_base64"`
	Error       string `json:"error"`
	SessionID   string `json:"session_id"`
}

// Generate performs one try-on call and returns the decoded result image.
// A single attempt is made; retries are the caller's responsibility.
func (c *Client) Generate(ctx context.Context, req Request) ([]byte, error) {
	if c == nil {
		return nil, errors.New("generation client not configured")
	}
	if strings.TrimSpace(req.GarmentPhoto) == "" {
		return nil, errors.New("generation: garment photo is required")
	}
	if strings.TrimSpace(req.ModelPhoto) == "" {
		return nil, errors.New("generation: model photo is required")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal generation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/tryon", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build generation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call generation service: %w", err)
	}
	defer resp.Body.Close()

	var out tryonResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<20)).Decode(&out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("generation service returned %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("decode generation response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if out.Error != "" {
			return nil, fmt.Errorf("generation service error: %s", out.Error)
		}
		return nil, fmt.Errorf("generation service returned %d", resp.StatusCode)
	}
	if !out.Success || out.Error != "" {
		msg := strings.TrimSpace(out.Error)
		if msg == "" {
			msg = "service reported failure without a message"
		}
		return nil, fmt.Errorf("generation service error: %s", msg)
	}
	if strings.TrimSpace(out.ImageBase64) == "" {
		return nil, errors.New("generation service returned no image")
	}

	image, err := base64.StdEncoding.DecodeString(out.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("decode result image: %w", err)
	}
	return image, nil
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health probes the service health endpoint. The returned string is the
// service's own status label, e.g. "ok" or "degraded".
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return "", fmt.Errorf("build health request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call health endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("health endpoint returned %d", resp.StatusCode)
	}
	var out healthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("decode health response: %w", err)
	}
	if out.Status == "" {
		return "", errors.New("health endpoint returned no status")
	}
	return out.Status, nil
}
