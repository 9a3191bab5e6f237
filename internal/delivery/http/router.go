package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventrio/internal/delivery/http/controllers"
	h "eventrio/internal/delivery/http/helpers"
	"eventrio/internal/delivery/http/middleware"
	"eventrio/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth         *controllers.AuthController
	Events       *controllers.EventController
	Registration *controllers.RegistrationController
	Webhook      *controllers.WebhookController
}

// NewRouter registers all application routes and wraps them with recovery, CORS and request logging.
func NewRouter(c Controllers, verifier domain.TokenVerifier, corsOrigins []string, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth
	mux.HandleFunc("POST /auth/register", c.Auth.Register)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("GET /auth/google/login", c.Auth.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", c.Auth.GoogleCallback)
	mux.HandleFunc("GET /users/me", auth(c.Auth.Me))

	// Creator events
	mux.HandleFunc("POST /events", auth(c.Events.CreateEvent))
	mux.HandleFunc("GET /events", auth(c.Events.ListMyEvents))
	mux.HandleFunc("GET /events/{eventID}", auth(c.Events.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", auth(c.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Events.DeleteEvent))
	mux.HandleFunc("POST /events/{eventID}/flyer", auth(c.Events.UploadFlyer))
	mux.HandleFunc("GET /events/{eventID}/attendees", auth(c.Events.ListAttendees))
	mux.HandleFunc("GET /events/{eventID}/attendees/{attendeeID}/reminders", auth(c.Events.ListAttendeeReminders))

	// Public
	mux.HandleFunc("GET /public-events", c.Registration.ListPublicEvents)
	mux.HandleFunc("GET /register-event/{token}", c.Registration.GetEventByLink)
	mux.HandleFunc("POST /register-event/{token}", c.Registration.Register)

	// WhatsApp
	mux.HandleFunc("GET /webhooks/whatsapp", c.Webhook.Verify)
	mux.HandleFunc("POST /webhooks/whatsapp", c.Webhook.Receive)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = mux
	handler = middleware.CORS(corsOrigins, handler)
	handler = middleware.Recover(logger, handler)
	return middleware.LoggingMiddleware(logger, handler)
}
