package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tryon/internal/config"
)

const userAgent = "tryon/0.1"

// Service defines the notification surface exposed to the orchestrator.
type Service interface {
	NotifyGenerationComplete(ctx context.Context, description string) error
	NotifyGenerationFailed(ctx context.Context, message string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyGenerationComplete(ctx context.Context, description string) error {
	description = strings.TrimSpace(description)
	message := "Try-on result is ready"
	if description != "" {
		message = fmt.Sprintf("Try-on result is ready: %s", description)
	}
	data := payload{
		title:   "Tryon - Complete",
		message: message,
		tags:    []string{"tryon", "generation", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyGenerationFailed(ctx context.Context, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		message = "unknown"
	}
	data := payload{
		title:    "Tryon - Error",
		message:  fmt.Sprintf("Generation failed: %s", message),
		tags:     []string{"tryon", "generation", "error"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Tryon - Test",
		message:  "Notification system test",
		tags:     []string{"tryon", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyGenerationComplete(context.Context, string) error { return nil }
func (noopService) NotifyGenerationFailed(context.Context, string) error   { return nil }
func (noopService) TestNotification(context.Context) error                 { return nil }
