// Package gemini wraps the Google generative AI client with the two calls the
// pipeline needs: a cheap connectivity probe and plain text generation.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	DefaultModel = "gemini-1.5-flash-latest"
	// minKeyLength filters out placeholder keys such as "changeme".
	minKeyLength = 20
)

var (
	ErrNotConfigured = errors.New("gemini API key not configured")
	ErrEmptyResponse = errors.New("no response from Gemini")
)

type Config struct {
	APIKey   string
	Model    string
	Endpoint string
}

// Enabled reports whether the key looks real enough to try.
func (c Config) Enabled() bool {
	return len(strings.TrimSpace(c.APIKey)) > minKeyLength
}

// GenerateOptions tunes a single generation call.
type GenerateOptions struct {
	MaxTokens   int32
	Temperature float32
}

type Client struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

func NewClient(ctx context.Context, cfg Config, log *slog.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	if log == nil {
		log = slog.Default()
	}

	opts := []option.ClientOption{option.WithAPIKey(strings.TrimSpace(cfg.APIKey))}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{client: client, model: model, log: log.With("component", "gemini")}, nil
}

func (c *Client) Close() {
	if c != nil && c.client != nil {
		c.client.Close()
	}
}

// Generate sends one prompt and returns the trimmed text of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if c == nil || c.client == nil {
		return "", ErrNotConfigured
	}

	model := c.client.GenerativeModel(c.model)
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(opts.MaxTokens)
	}
	model.SetTemperature(opts.Temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Ping issues a minimal generation to find out whether the service answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Generate(ctx, "Test connection", GenerateOptions{MaxTokens: 10, Temperature: 0.1})
	if err != nil {
		c.log.Debug("gemini probe failed", "error", err)
		return err
	}
	c.log.Debug("gemini probe ok", "model", c.model)
	return nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}

var quotaMarkers = []string{"quota", "resource_exhausted", "resourceexhausted", "rate limit"}

// IsQuotaError reports whether err is a quota or rate-limit rejection.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Code == http.StatusTooManyRequests {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, m := range quotaMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
