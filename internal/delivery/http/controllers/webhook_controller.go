package controllers

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "eventrio/internal/delivery/http/helpers"
	"eventrio/internal/domain"
)

// IncomingMessageRequest is the request body for POST /webhooks/whatsapp.
type IncomingMessageRequest struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// Validate implements Validator.
func (m IncomingMessageRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(m.From) == "" {
		errs = append(errs, "from is required")
	}
	if strings.TrimSpace(m.Message) == "" {
		errs = append(errs, "message is required")
	}
	return errs
}

// WebhookResult is the data of a handled inbound message.
type WebhookResult struct {
	Success bool `json:"success"`
}

// WebhookController receives WhatsApp messages from attendees.
type WebhookController struct {
	Logger      *slog.Logger
	Chat        domain.ChatService
	VerifyToken string
}

func NewWebhookController(logger *slog.Logger, chat domain.ChatService, verifyToken string) *WebhookController {
	return &WebhookController{
		Logger:      logger,
		Chat:        chat,
		VerifyToken: verifyToken,
	}
}

// Verify godoc
// @Summary WhatsApp webhook verification
// @Description Echoes hub.challenge when hub.mode is "subscribe" and hub.verify_token matches.
// @Tags webhooks
// @Produce plain
// @Param hub.mode query string true "subscribe"
// @Param hub.verify_token query string true "Configured verify token"
// @Param hub.challenge query string true "Challenge to echo"
// @Success 200 {string} string "challenge"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /webhooks/whatsapp [get]
func (c *WebhookController) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	token := q.Get("hub.verify_token")
	if c.VerifyToken == "" || q.Get("hub.mode") != "subscribe" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(c.VerifyToken)) != 1 {
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "verification failed")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(q.Get("hub.challenge")))
}

// Receive godoc
// @Summary Receive a WhatsApp message
// @Description Answers the attendee's question about their most recent event and replies over WhatsApp.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param body body IncomingMessageRequest true "Inbound message"
// @Success 200 {object} helpers.APIResponse "data.success is true"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /webhooks/whatsapp [post]
func (c *WebhookController) Receive(w http.ResponseWriter, r *http.Request) {
	var req IncomingMessageRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	err := c.Chat.HandleIncoming(r.Context(), strings.TrimSpace(req.From), req.Message)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "Attendee not found")
			return
		}
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, WebhookResult{Success: true})
}
