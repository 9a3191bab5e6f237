package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventrio/internal/delivery/http/controllers"
	"eventrio/internal/domain"
)

type staticVerifier map[string]string

func (v staticVerifier) Verify(token string) (string, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return "", domain.ErrUnauthorized
}

type stubEvents struct {
	domain.EventService
	lastCaller string
}

func (s *stubEvents) ListMyEvents(_ context.Context, creatorID string) ([]*domain.Event, error) {
	s.lastCaller = creatorID
	return nil, nil
}

func (s *stubEvents) ListPublicEvents(context.Context, domain.PaginationParams) ([]*domain.Event, int, error) {
	return nil, 0, nil
}

type stubChat struct{}

func (stubChat) HandleIncoming(context.Context, string, string) error { return domain.ErrNotFound }

func newTestRouter(events *stubEvents) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(Controllers{
		Auth:         controllers.NewAuthController(logger, nil),
		Events:       controllers.NewEventController(logger, events),
		Registration: controllers.NewRegistrationController(logger, nil, events),
		Webhook:      controllers.NewWebhookController(logger, stubChat{}, "hub-secret"),
	}, staticVerifier{"good": "user-1"}, []string{"https://app.example.com"}, logger)
}

func TestRouter(t *testing.T) {
	events := &stubEvents{}
	router := newTestRouter(events)

	tests := []struct {
		name       string
		method     string
		target     string
		token      string
		body       string
		wantStatus int
	}{
		{name: "health", method: http.MethodGet, target: "/healthz", wantStatus: http.StatusOK},
		{name: "creator route needs token", method: http.MethodGet, target: "/events", wantStatus: http.StatusUnauthorized},
		{name: "creator route with token", method: http.MethodGet, target: "/events", token: "good", wantStatus: http.StatusOK},
		{name: "public events open", method: http.MethodGet, target: "/public-events", wantStatus: http.StatusOK},
		{name: "wrong method", method: http.MethodPut, target: "/public-events", wantStatus: http.StatusMethodNotAllowed},
		{
			name:       "webhook unknown phone",
			method:     http.MethodPost,
			target:     "/webhooks/whatsapp",
			body:       `{"from":"+1","message":"hi"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			require.Equal(t, tt.wantStatus, rr.Code)
		})
	}
	assert.Equal(t, "user-1", events.lastCaller)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(&stubEvents{})
	req := httptest.NewRequest(http.MethodOptions, "/events", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}
