package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
)

type fakeRegistry struct {
	list []models.AmbulanceDistance
}

func (f *fakeRegistry) List(ctx context.Context, loc models.Location, radiusKm float64) []models.AmbulanceDistance {
	return f.list
}

type fakeBookings struct {
	gotInput    models.BookingInput
	completedID string
	booking     *models.Booking
	err         error
}

func (f *fakeBookings) RequestBooking(ctx context.Context, in models.BookingInput) (*models.Booking, error) {
	f.gotInput = in
	return f.booking, f.err
}

func (f *fakeBookings) CancelBooking(ctx context.Context, id string) (*models.Booking, error) {
	return f.booking, f.err
}

func (f *fakeBookings) CompleteBooking(ctx context.Context, id string) (*models.Booking, error) {
	f.completedID = id
	return f.booking, f.err
}

func (f *fakeBookings) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return f.booking, f.err
}

type fakeSOS struct {
	event *models.SOSEvent
	err   error
}

func (f *fakeSOS) Trigger(ctx context.Context, in models.TriggerInput) (*models.SOSEvent, error) {
	return f.event, f.err
}
func (f *fakeSOS) Get(ctx context.Context, id string) (*models.SOSEvent, error) { return f.event, f.err }
func (f *fakeSOS) Resolve(ctx context.Context, id string) (*models.SOSEvent, error) {
	return f.event, f.err
}
func (f *fakeSOS) History(ctx context.Context, userID string) ([]models.SOSEvent, error) {
	if f.event == nil {
		return nil, f.err
	}
	return []models.SOSEvent{*f.event}, f.err
}

type fakeContacts struct {
	added int
}

func (f *fakeContacts) Add(ctx context.Context, ownerID string, c models.EmergencyContact) (*models.EmergencyContact, error) {
	f.added++
	c.ID = "c-1"
	c.OwnerID = ownerID
	return &c, nil
}
func (f *fakeContacts) List(ctx context.Context, ownerID string) ([]models.EmergencyContact, error) {
	return nil, nil
}
func (f *fakeContacts) Delete(ctx context.Context, ownerID, contactID string) error {
	return types.ErrContactNotFound
}

type errorBody struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func serve(t *testing.T, pattern string, h http.HandlerFunc, method, target, body string) (*httptest.ResponseRecorder, errorBody) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var eb errorBody
	if rec.Code >= 400 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eb), rec.Body.String())
	}
	return rec, eb
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{types.ErrNoAvailableResource, http.StatusServiceUnavailable},
		{types.ErrMatchTimeout, http.StatusGatewayTimeout},
		{types.Invalid("bad"), http.StatusBadRequest},
		{types.ErrBookingNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", types.ErrEventNotFound), http.StatusNotFound},
		{types.ErrBookingTerminal, http.StatusConflict},
		{types.ErrInvalidToken, http.StatusUnauthorized},
		{types.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, GetCode(tt.err))
		})
	}
}

func TestBookStatusMapping(t *testing.T) {
	body := `{"pickup":{"latitude":37.77,"longitude":-122.41,"address":"Market St"}}`

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"no ambulance", types.ErrNoAvailableResource, http.StatusServiceUnavailable, "NoAvailableResource"},
		{"timeout", fmt.Errorf("match: %w", types.ErrMatchTimeout), http.StatusGatewayTimeout, "MatchTimeout"},
		{"internal", fmt.Errorf("db down"), http.StatusInternalServerError, "Internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAmbulance(&fakeRegistry{}, &fakeBookings{err: tt.err}, logger.NewNop())

			rec, eb := serve(t, "POST /api/ambulances/book", h.Book, http.MethodPost, "/api/ambulances/book?user_id=u1", body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, eb.Error.Code)
		})
	}
}

func TestBookInternalErrorHidesMessage(t *testing.T) {
	h := NewAmbulance(&fakeRegistry{}, &fakeBookings{err: fmt.Errorf("pq: password authentication failed")}, logger.NewNop())

	body := `{"pickup":{"latitude":1,"longitude":2}}`
	_, eb := serve(t, "POST /api/ambulances/book", h.Book, http.MethodPost, "/api/ambulances/book?user_id=u1", body)
	assert.NotContains(t, eb.Error.Message, "password")
}

func TestBookReturnsOK(t *testing.T) {
	eta := time.Date(2026, 1, 1, 12, 6, 0, 0, time.UTC)
	bookings := &fakeBookings{booking: &models.Booking{
		ID:               "b-1",
		Status:           types.BookingConfirmed,
		AmbulanceID:      "amb-001",
		EstimatedArrival: &eta,
	}}
	h := NewAmbulance(&fakeRegistry{}, bookings, logger.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/ambulances/book", h.Book)
	req := httptest.NewRequest(http.MethodPost, "/api/ambulances/book?user_id=u1&ambulance_id=amb-001",
		strings.NewReader(`{"pickup":{"latitude":37.77,"longitude":-122.41}}`))
	req.Header.Set("Idempotency-Key", "k-1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "b-1", resp["booking_id"])
	assert.Equal(t, "Confirmed", resp["status"])
	assert.Equal(t, "amb-001", resp["ambulance_id"])
	assert.NotEmpty(t, resp["estimated_arrival"])

	assert.Equal(t, "u1", bookings.gotInput.RequesterID)
	assert.Equal(t, "amb-001", bookings.gotInput.PreferredAmbulanceID)
	assert.Equal(t, "k-1", bookings.gotInput.IdempotencyKey)
}

func TestBookUsesIdentityWhenUserIDMissing(t *testing.T) {
	bookings := &fakeBookings{booking: &models.Booking{ID: "b-1", Status: types.BookingConfirmed}}
	h := NewAmbulance(&fakeRegistry{}, bookings, logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/ambulances/book", strings.NewReader(`{"pickup":{"latitude":1,"longitude":2}}`))
	req = req.WithContext(models.WithIdentity(req.Context(), &models.Identity{UserID: "from-token", Role: types.RoleCitizen}))
	rec := httptest.NewRecorder()
	h.Book(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "from-token", bookings.gotInput.RequesterID)
}

func TestBookValidation(t *testing.T) {
	h := NewAmbulance(&fakeRegistry{}, &fakeBookings{}, logger.NewNop())

	t.Run("missing fields", func(t *testing.T) {
		rec, eb := serve(t, "POST /api/ambulances/book", h.Book, http.MethodPost, "/api/ambulances/book", `{"pickup":{"latitude":95}}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "InvalidRequest", eb.Error.Code)
		assert.Contains(t, eb.Error.Fields, "user_id")
		assert.Contains(t, eb.Error.Fields, "pickup.longitude")
	})

	t.Run("malformed body", func(t *testing.T) {
		rec, eb := serve(t, "POST /api/ambulances/book", h.Book, http.MethodPost, "/api/ambulances/book?user_id=u1", `{"pickup":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "InvalidRequest", eb.Error.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		rec, _ := serve(t, "POST /api/ambulances/book", h.Book, http.MethodPost, "/api/ambulances/book?user_id=u1", `{"pickup":{"latitude":1,"longitude":2},"x":1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestNearbyFiltersUnavailable(t *testing.T) {
	reg := &fakeRegistry{list: []models.AmbulanceDistance{
		{Ambulance: models.Ambulance{ID: "a"}, DistanceKm: 1, Available: true},
		{Ambulance: models.Ambulance{ID: "b"}, DistanceKm: 2, Available: false},
	}}
	h := NewAmbulance(reg, &fakeBookings{}, logger.NewNop())

	rec, _ := serve(t, "GET /api/ambulances/nearby", h.Nearby, http.MethodGet, "/api/ambulances/nearby?lat=37.7&lng=-122.4", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)

	rec, eb := serve(t, "GET /api/ambulances/nearby", h.Nearby, http.MethodGet, "/api/ambulances/nearby?lat=abc", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, eb.Error.Fields, "lat")
	assert.Contains(t, eb.Error.Fields, "lng")
}

func TestCancelConflict(t *testing.T) {
	h := NewAmbulance(&fakeRegistry{}, &fakeBookings{err: types.ErrBookingTerminal}, logger.NewNop())

	rec, eb := serve(t, "POST /api/bookings/{id}/cancel", h.CancelBooking, http.MethodPost, "/api/bookings/b-1/cancel", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Conflict", eb.Error.Code)
}

func TestCompleteBooking(t *testing.T) {
	bookings := &fakeBookings{booking: &models.Booking{ID: "b-1", Status: types.BookingCompleted, AmbulanceID: "amb-1"}}
	h := NewAmbulance(&fakeRegistry{}, bookings, logger.NewNop())

	rec, _ := serve(t, "POST /api/bookings/{id}/complete", h.CompleteBooking, http.MethodPost, "/api/bookings/b-1/complete", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "b-1", bookings.completedID)

	var got models.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, types.BookingCompleted, got.Status)

	h = NewAmbulance(&fakeRegistry{}, &fakeBookings{err: types.ErrBookingNotActive}, logger.NewNop())
	rec, eb := serve(t, "POST /api/bookings/{id}/complete", h.CompleteBooking, http.MethodPost, "/api/bookings/b-2/complete", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Conflict", eb.Error.Code)
}

func TestTriggerSOSReturnsWarnings(t *testing.T) {
	svc := &fakeSOS{event: &models.SOSEvent{
		ID:       "e-1",
		Status:   types.SOSServicesDispatched,
		Warnings: []string{"contact c-2 could not be notified"},
	}}
	h := NewEmergency(svc, logger.NewNop())

	body := `{"user_id":"u1","emergency_type":"medical","location":{"latitude":37.77,"longitude":-122.41}}`
	rec, _ := serve(t, "POST /api/emergency/sos", h.TriggerSOS, http.MethodPost, "/api/emergency/sos", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Event    models.SOSEvent `json:"event"`
		Warnings []string        `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "e-1", resp.Event.ID)
	assert.Len(t, resp.Warnings, 1)
}

func TestTriggerSOSValidation(t *testing.T) {
	h := NewEmergency(&fakeSOS{}, logger.NewNop())

	rec, eb := serve(t, "POST /api/emergency/sos", h.TriggerSOS, http.MethodPost, "/api/emergency/sos", `{"emergency_type":"alien","location":{}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, eb.Error.Fields, "user_id")
	assert.Contains(t, eb.Error.Fields, "emergency_type")
	assert.Contains(t, eb.Error.Fields, "location.latitude")
}

func TestGetSOSNotFound(t *testing.T) {
	h := NewEmergency(&fakeSOS{err: types.ErrEventNotFound}, logger.NewNop())

	rec, eb := serve(t, "GET /api/emergency/{id}", h.GetSOS, http.MethodGet, "/api/emergency/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NotFound", eb.Error.Code)
}

func TestAddContact(t *testing.T) {
	svc := &fakeContacts{}
	h := NewContacts(svc, logger.NewNop())

	rec, _ := serve(t, "POST /api/users/{id}/emergency-contacts", h.Add, http.MethodPost,
		"/api/users/u1/emergency-contacts", `{"name":"Mom","phone":"+1 555 0100"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created models.EmergencyContact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, types.ContactFamily, created.Type)

	rec, eb := serve(t, "POST /api/users/{id}/emergency-contacts", h.Add, http.MethodPost,
		"/api/users/u1/emergency-contacts", `{"name":"","phone":"call me","type":"enemy"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, eb.Error.Fields, "name")
	assert.Contains(t, eb.Error.Fields, "phone")
	assert.Contains(t, eb.Error.Fields, "type")
	assert.Equal(t, 1, svc.added)
}

func TestDeleteContactNotFound(t *testing.T) {
	h := NewContacts(&fakeContacts{}, logger.NewNop())

	rec, eb := serve(t, "DELETE /api/users/{id}/emergency-contacts/{contact_id}", h.Delete, http.MethodDelete,
		"/api/users/u1/emergency-contacts/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NotFound", eb.Error.Code)
}
