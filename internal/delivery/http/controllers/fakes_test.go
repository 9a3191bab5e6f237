package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	h "eventrio/internal/delivery/http/helpers"
	"eventrio/internal/delivery/http/middleware"
	"eventrio/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// newJSONRequest builds a request with a JSON body and, when userID is set, an authenticated context.
func newJSONRequest(t *testing.T, method, target, userID string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	}
	return req
}

// decodeEnvelope decodes the response envelope, unmarshalling data into dest when dest is non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) *h.APIError {
	t.Helper()
	var env struct {
		Data  json.RawMessage `json:"data"`
		Error *h.APIError     `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	if dest != nil && env.Error == nil {
		require.NoError(t, json.Unmarshal(env.Data, dest))
	}
	return env.Error
}

type fakeAuthService struct {
	user      *domain.User
	token     string
	err       error
	authURL   string
	lastInput domain.RegisterUserInput
	lastState string
	lastCode  string
}

func (f *fakeAuthService) Register(_ context.Context, in domain.RegisterUserInput) (*domain.User, string, error) {
	f.lastInput = in
	if f.err != nil {
		return nil, "", f.err
	}
	return f.user, f.token, nil
}

func (f *fakeAuthService) Login(context.Context, string, string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

func (f *fakeAuthService) LoginWithGoogle(_ context.Context, code string) (*domain.User, string, error) {
	f.lastCode = code
	if f.err != nil {
		return nil, "", f.err
	}
	return f.user, f.token, nil
}

func (f *fakeAuthService) GoogleAuthURL(state string) (string, error) {
	f.lastState = state
	if f.err != nil {
		return "", f.err
	}
	return f.authURL + "?state=" + state, nil
}

func (f *fakeAuthService) GetByID(_ context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.user == nil || f.user.ID != id {
		return nil, domain.ErrNotFound
	}
	return f.user, nil
}

type fakeEventService struct {
	err          error
	event        *domain.Event
	events       []*domain.Event
	total        int
	attendees    []*domain.Attendee
	reminders    []*domain.Reminder
	lastCreated  *domain.Event
	lastEventID  string
	lastCaller   string
	lastUpdate   domain.EventUpdate
	lastParams   domain.PaginationParams
	lastFlyer    *domain.FlyerUpload
	lastAttendee string
}

func (f *fakeEventService) CreateEvent(_ context.Context, e *domain.Event) error {
	f.lastCreated = e
	if f.err != nil {
		return f.err
	}
	e.ID = "ev-1"
	e.RegistrationLink = "ev-1-abcd1234"
	return nil
}

func (f *fakeEventService) GetEvent(_ context.Context, eventID, callerID string) (*domain.Event, error) {
	f.lastEventID, f.lastCaller = eventID, callerID
	return f.event, f.err
}

func (f *fakeEventService) ListMyEvents(_ context.Context, creatorID string) ([]*domain.Event, error) {
	f.lastCaller = creatorID
	return f.events, f.err
}

func (f *fakeEventService) ListPublicEvents(_ context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastParams = params
	return f.events, f.total, f.err
}

func (f *fakeEventService) UpdateEvent(_ context.Context, eventID, callerID string, upd domain.EventUpdate) (*domain.Event, error) {
	f.lastEventID, f.lastCaller, f.lastUpdate = eventID, callerID, upd
	return f.event, f.err
}

func (f *fakeEventService) DeleteEvent(_ context.Context, eventID, callerID string) error {
	f.lastEventID, f.lastCaller = eventID, callerID
	return f.err
}

func (f *fakeEventService) UploadFlyer(_ context.Context, eventID, callerID string, flyer *domain.FlyerUpload) (*domain.Event, error) {
	f.lastEventID, f.lastCaller, f.lastFlyer = eventID, callerID, flyer
	return f.event, f.err
}

func (f *fakeEventService) ListAttendees(_ context.Context, eventID, callerID string) ([]*domain.Attendee, error) {
	f.lastEventID, f.lastCaller = eventID, callerID
	return f.attendees, f.err
}

func (f *fakeEventService) ListAttendeeReminders(_ context.Context, eventID, attendeeID, callerID string) ([]*domain.Reminder, error) {
	f.lastEventID, f.lastAttendee, f.lastCaller = eventID, attendeeID, callerID
	return f.reminders, f.err
}

type fakeRegistrationService struct {
	event     *domain.Event
	attendee  *domain.Attendee
	err       error
	lastLink  string
	lastInput domain.RegistrationInput
}

func (f *fakeRegistrationService) GetEventByLink(_ context.Context, link string) (*domain.Event, error) {
	f.lastLink = link
	return f.event, f.err
}

func (f *fakeRegistrationService) Register(_ context.Context, link string, in domain.RegistrationInput) (*domain.Attendee, error) {
	f.lastLink, f.lastInput = link, in
	return f.attendee, f.err
}

type fakeChatService struct {
	err          error
	lastPhone    string
	lastQuestion string
}

func (f *fakeChatService) HandleIncoming(_ context.Context, phone, question string) error {
	f.lastPhone, f.lastQuestion = phone, question
	return f.err
}
