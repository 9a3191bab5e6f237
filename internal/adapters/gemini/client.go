package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"eventrio/internal/domain"
)

const DefaultModel = "gemini-2.0-flash"

// Option adjusts the client configuration before the Gemini client is created.
type Option func(*genai.ClientConfig)

// WithBaseURL points the client at another Gemini API host.
func WithBaseURL(url string) Option {
	return func(c *genai.ClientConfig) { c.HTTPOptions.BaseURL = url }
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *genai.ClientConfig) { c.HTTPClient = client }
}

// Assistant answers attendee questions with the Gemini generateContent API.
type Assistant struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewAssistant creates a Gemini-backed EventAssistant authenticated with apiKey.
func NewAssistant(ctx context.Context, apiKey, model string, logger *slog.Logger, opts ...Option) (*Assistant, error) {
	if model == "" {
		model = DefaultModel
	}
	cfg := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	for _, opt := range opts {
		opt(cfg)
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Assistant{client: client, model: model, logger: logger.With("component", "gemini")}, nil
}

// BuildPrompt joins the event context and the question into a single grounded prompt.
func BuildPrompt(eventContext, question string) string {
	return "Context about an event: " + eventContext +
		"\n\nUser question: " + question +
		"\n\nPlease answer based only on the event information provided."
}

func (a *Assistant) Answer(ctx context.Context, eventContext, question string) (string, error) {
	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(BuildPrompt(eventContext, question)), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	answer := strings.TrimSpace(resp.Text())
	if answer == "" {
		return "", errors.New("generate content: empty response")
	}
	a.logger.Debug("answered question", "model", a.model, "chars", len(answer))
	return answer, nil
}

var _ domain.EventAssistant = (*Assistant)(nil)
