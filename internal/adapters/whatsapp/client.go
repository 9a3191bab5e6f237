package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"eventrio/internal/domain"
)

// Config holds the Cloud API endpoint and credentials.
type Config struct {
	// APIURL is the messages endpoint, e.g. https://graph.facebook.com/v19.0/<phone-id>/messages.
	APIURL     string
	Token      string
	RatePerSec int
	Timeout    time.Duration
}

type textBody struct {
	Body string `json:"body"`
}

type messageRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

type client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient returns a MessageSender backed by the WhatsApp Cloud API.
// Sends are throttled to cfg.RatePerSec.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) domain.MessageSender {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 10
	}
	return &client{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		logger:  logger.With("component", "whatsapp"),
	}
}

func (c *client) SendMessage(ctx context.Context, to, body string) error {
	if err := c.send(ctx, to, body); err != nil {
		return &domain.DeliveryError{Channel: domain.ChannelWhatsApp, Recipient: to, Err: err}
	}
	return nil
}

func (c *client) send(ctx context.Context, to, body string) error {
	if c.cfg.APIURL == "" || c.cfg.Token == "" {
		return fmt.Errorf("whatsapp api is not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	payload, err := json.Marshal(messageRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("whatsapp api returned status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("whatsapp api returned status %d", resp.StatusCode)
	}
	c.logger.Debug("whatsapp message sent", "to", to)
	return nil
}
