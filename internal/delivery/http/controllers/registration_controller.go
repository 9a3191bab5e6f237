package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "eventrio/internal/delivery/http/helpers"
	"eventrio/internal/domain"
)

// RegisterAttendeeRequest is the request body for POST /register-event/{token}.
type RegisterAttendeeRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// Validate implements Validator.
func (r RegisterAttendeeRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		errs = append(errs, "email is required")
	}
	return errs
}

// PublicEventsResponse is the data of GET /public-events.
type PublicEventsResponse struct {
	Events     []*domain.Event  `json:"events"`
	Pagination h.PaginationMeta `json:"pagination"`
}

// RegistrationController serves the unauthenticated surface used by attendees.
type RegistrationController struct {
	Logger       *slog.Logger
	Registration domain.RegistrationService
	Events       domain.EventService
}

func NewRegistrationController(logger *slog.Logger, registration domain.RegistrationService, events domain.EventService) *RegistrationController {
	return &RegistrationController{
		Logger:       logger,
		Registration: registration,
		Events:       events,
	}
}

// GetEventByLink godoc
// @Summary Get an event by registration link
// @Tags public
// @Produce json
// @Param token path string true "Registration link token"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /register-event/{token} [get]
func (c *RegistrationController) GetEventByLink(w http.ResponseWriter, r *http.Request) {
	event, err := c.Registration.GetEventByLink(r.Context(), r.PathValue("token"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// Register godoc
// @Summary Register for an event
// @Description Creates an attendee for the event behind the registration link and emails a confirmation.
// @Tags public
// @Accept json
// @Produce json
// @Param token path string true "Registration link token"
// @Param body body RegisterAttendeeRequest true "Attendee data"
// @Success 201 {object} helpers.APIResponse "data contains the attendee"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /register-event/{token} [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterAttendeeRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	attendee, err := c.Registration.Register(r.Context(), r.PathValue("token"), domain.RegistrationInput{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, attendee)
}

// ListPublicEvents godoc
// @Summary List all events
// @Tags public
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains events and pagination"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /public-events [get]
func (c *RegistrationController) ListPublicEvents(w http.ResponseWriter, r *http.Request) {
	params := h.ParsePagination(r)
	events, total, err := c.Events.ListPublicEvents(r.Context(), params)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, PublicEventsResponse{
		Events:     events,
		Pagination: h.NewPaginationMeta(params, total),
	})
}
