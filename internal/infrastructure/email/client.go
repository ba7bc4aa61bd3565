// Package email sends feedback emails through the external email service.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"ptv/internal/domain/feedback"
	"ptv/pkg/logger"
)

// Config configures the email service client.
type Config struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Client posts feedback emails as JSON with a bearer token.
type Client struct {
	url  string
	http *http.Client
}

var _ feedback.EmailSender = (*Client)(nil)

// NewClient creates a new email service client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{url: cfg.URL, http: &http.Client{Timeout: timeout}}
}

// Send implements feedback.EmailSender. A non-2xx answer is reported as an
// unsuccessful result, transport failures as errors.
func (c *Client) Send(ctx context.Context, token string, msg feedback.Email) (feedback.SendResult, error) {
	ctx, span := otel.Tracer("ptv/email").Start(ctx, "email.send")
	defer span.End()

	body, err := json.Marshal(msg)
	if err != nil {
		return feedback.SendResult{}, fmt.Errorf("encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return feedback.SendResult{}, fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return feedback.SendResult{}, fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return feedback.SendResult{}, fmt.Errorf("read email response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn(ctx, "email service rejected message", "status", resp.StatusCode)
		return feedback.SendResult{Success: false, Message: string(raw)}, nil
	}

	result := feedback.SendResult{Success: true}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return feedback.SendResult{}, fmt.Errorf("decode email response: %w", err)
		}
	}
	return result, nil
}
