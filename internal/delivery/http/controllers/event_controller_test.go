package controllers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	h "eventrio/internal/delivery/http/helpers"
	"eventrio/internal/delivery/http/middleware"
	"eventrio/internal/domain"
)

func sampleEvent() *domain.Event {
	return &domain.Event{
		ID:               "ev-1",
		CreatorID:        "user-1",
		Title:            "Go Meetup",
		Location:         "Main Hall",
		Date:             time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		Time:             "18:30",
		RegistrationLink: "ev-1-abcd1234",
	}
}

func TestEventController_CreateEvent(t *testing.T) {
	valid := CreateEventRequest{Title: "Go Meetup", Description: "Talks", Location: "Main Hall", Date: "2025-06-12", Time: "18:30"}

	tests := []struct {
		name       string
		userID     string
		body       any
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{name: "created", userID: "user-1", body: valid, wantStatus: http.StatusCreated},
		{name: "unauthenticated", body: valid, wantStatus: http.StatusUnauthorized, wantCode: h.ErrCodeUnauthorized},
		{
			name:       "bad date",
			userID:     "user-1",
			body:       CreateEventRequest{Title: "x", Location: "y", Date: "12/06/2025", Time: "18:30"},
			wantStatus: http.StatusBadRequest,
			wantCode:   h.ErrCodeBadRequest,
		},
		{
			name:       "bad time",
			userID:     "user-1",
			body:       CreateEventRequest{Title: "x", Location: "y", Date: "2025-06-12", Time: "6pm"},
			wantStatus: http.StatusBadRequest,
			wantCode:   h.ErrCodeBadRequest,
		},
		{
			name:       "storage failure is not leaked",
			userID:     "user-1",
			body:       valid,
			serviceErr: assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantCode:   h.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventService{err: tt.serviceErr}
			rr := httptest.NewRecorder()
			NewEventController(testLogger, svc).CreateEvent(rr, newJSONRequest(t, http.MethodPost, "/events", tt.userID, tt.body))

			require.Equal(t, tt.wantStatus, rr.Code)
			var got map[string]any
			apiErr := decodeEnvelope(t, rr, &got)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				assert.NotContains(t, apiErr.Message, assert.AnError.Error())
				return
			}
			require.Nil(t, apiErr)
			assert.Equal(t, "ev-1", got["id"])
			assert.Equal(t, "2025-06-12", got["date"])
			assert.Equal(t, "ev-1-abcd1234", got["registration_link"])
			assert.Equal(t, "user-1", svc.lastCreated.CreatorID)
		})
	}
}

func TestEventController_GetEvent(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "owner", wantStatus: http.StatusOK},
		{name: "not the creator", serviceErr: domain.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "missing", serviceErr: domain.ErrNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventService{event: sampleEvent(), err: tt.serviceErr}
			req := newJSONRequest(t, http.MethodGet, "/events/ev-1", "user-1", nil)
			req.SetPathValue("eventID", "ev-1")
			rr := httptest.NewRecorder()
			NewEventController(testLogger, svc).GetEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "ev-1", svc.lastEventID)
			assert.Equal(t, "user-1", svc.lastCaller)
		})
	}
}

func TestEventController_ListMyEvents_EmptyIsArray(t *testing.T) {
	svc := &fakeEventService{}
	rr := httptest.NewRecorder()
	NewEventController(testLogger, svc).ListMyEvents(rr, newJSONRequest(t, http.MethodGet, "/events", "user-1", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":[],"error":null}`, rr.Body.String())
}

func TestEventController_UpdateEvent(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		check      func(t *testing.T, upd domain.EventUpdate)
	}{
		{
			name:       "title and date",
			body:       `{"title":"Renamed","date":"2025-07-01"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, upd domain.EventUpdate) {
				require.NotNil(t, upd.Title)
				assert.Equal(t, "Renamed", *upd.Title)
				require.NotNil(t, upd.Date)
				assert.Equal(t, "2025-07-01", upd.Date.Format(domain.DateLayout))
				assert.Nil(t, upd.Location)
			},
		},
		{name: "empty body", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "registration link is immutable", body: `{"registration_link":"mine"}`, wantStatus: http.StatusBadRequest},
		{name: "bad date", body: `{"date":"tomorrow"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventService{event: sampleEvent()}
			req := newJSONRequest(t, http.MethodPatch, "/events/ev-1", "user-1", tt.body)
			req.SetPathValue("eventID", "ev-1")
			rr := httptest.NewRecorder()
			NewEventController(testLogger, svc).UpdateEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.check != nil {
				tt.check(t, svc.lastUpdate)
			}
		})
	}
}

func TestEventController_DeleteEvent(t *testing.T) {
	svc := &fakeEventService{}
	req := newJSONRequest(t, http.MethodDelete, "/events/ev-1", "user-1", nil)
	req.SetPathValue("eventID", "ev-1")
	rr := httptest.NewRecorder()
	NewEventController(testLogger, svc).DeleteEvent(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "ev-1", svc.lastEventID)

	svc.err = domain.ErrForbidden
	rr = httptest.NewRecorder()
	NewEventController(testLogger, svc).DeleteEvent(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestEventController_ListAttendeeReminders(t *testing.T) {
	sentAt := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	svc := &fakeEventService{reminders: []*domain.Reminder{
		{ID: "rem-1", AttendeeID: "att-1", SentAt: sentAt, Message: "hi", Channel: domain.ChannelWhatsApp},
	}}
	req := newJSONRequest(t, http.MethodGet, "/events/ev-1/attendees/att-1/reminders", "user-1", nil)
	req.SetPathValue("eventID", "ev-1")
	req.SetPathValue("attendeeID", "att-1")
	rr := httptest.NewRecorder()
	NewEventController(testLogger, svc).ListAttendeeReminders(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "att-1", svc.lastAttendee)
	var got []map[string]any
	require.Nil(t, decodeEnvelope(t, rr, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "WHATSAPP", got[0]["type"])
}

func multipartFlyer(t *testing.T, field string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, "flyer.png")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestEventController_UploadFlyer(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	tests := []struct {
		name       string
		field      string
		content    []byte
		serviceErr error
		wantStatus int
	}{
		{name: "uploaded", field: "flyer", content: png, wantStatus: http.StatusOK},
		{name: "missing file", field: "", wantStatus: http.StatusBadRequest},
		{name: "wrong field", field: "image", content: png, wantStatus: http.StatusBadRequest},
		{name: "too large", field: "flyer", content: bytes.Repeat([]byte{'a'}, flyerFormLimit+1), wantStatus: http.StatusBadRequest},
		{
			name:       "rejected type",
			field:      "flyer",
			content:    []byte("plain text"),
			serviceErr: domain.InvalidInputError("flyer must be a JPEG, PNG, GIF or WebP image"),
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventService{event: sampleEvent(), err: tt.serviceErr}
			body, contentType := multipartFlyer(t, tt.field, tt.content)
			req := httptest.NewRequest(http.MethodPost, "/events/ev-1/flyer", body)
			req.Header.Set("Content-Type", contentType)
			req = req.WithContext(middleware.SetUserID(req.Context(), "user-1"))
			req.SetPathValue("eventID", "ev-1")
			rr := httptest.NewRecorder()
			NewEventController(testLogger, svc).UploadFlyer(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, svc.lastFlyer)
				assert.Equal(t, png, svc.lastFlyer.Body)
				assert.Equal(t, "flyer.png", svc.lastFlyer.Filename)
			}
		})
	}
}
