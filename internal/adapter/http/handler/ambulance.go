package handler

import (
	"context"
	"net/http"

	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/http/handler/dto"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/validator"
)

const defaultNearbyRadiusKm = 10

type (
	AmbulanceLister interface {
		List(ctx context.Context, loc models.Location, radiusKm float64) []models.AmbulanceDistance
	}

	BookingService interface {
		RequestBooking(ctx context.Context, in models.BookingInput) (*models.Booking, error)
		CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error)
		CompleteBooking(ctx context.Context, bookingID string) (*models.Booking, error)
		GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	}
)

type Ambulance struct {
	registry AmbulanceLister
	bookings BookingService
	l        logger.Logger
}

func NewAmbulance(registry AmbulanceLister, bookings BookingService, l logger.Logger) *Ambulance {
	return &Ambulance{
		registry: registry,
		bookings: bookings,
		l:        l,
	}
}

// Nearby godoc
// @Summary      Nearby ambulances
// @Description  Available ambulances around a point, nearest first
// @Tags         Ambulances
// @Produce      json
// @Param        lat        query  number  true   "Latitude"
// @Param        lng        query  number  true   "Longitude"
// @Param        radius_km  query  number  false  "Search radius"
// @Success      200  {object}  map[string]any
// @Failure      422  {object}  map[string]any
// @Router       /api/ambulances/nearby [get]
func (h *Ambulance) Nearby(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_nearby_ambulances")

	v := validator.New()
	lat, lng := queryFloat(r, v, "lat"), queryFloat(r, v, "lng")
	radius := queryFloatOr(r, v, "radius_km", defaultNearbyRadiusKm)
	v.Check(validator.ValidCoordinates(lat, lng), "lat", "coordinates out of range")
	v.Check(radius > 0 && radius <= 200, "radius_km", "must be between 0 and 200")
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	list := h.registry.List(ctx, models.Location{Latitude: lat, Longitude: lng}, radius)
	available := make([]models.AmbulanceDistance, 0, len(list))
	for _, a := range list {
		if a.Available {
			available = append(available, a)
		}
	}

	if err := writeJSON(w, http.StatusOK, envelope{"ambulances": available, "count": len(available)}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// Book godoc
// @Summary      Book an ambulance
// @Description  Matches and reserves an ambulance for the pickup point
// @Tags         Ambulances
// @Accept       json
// @Produce      json
// @Param        user_id          query   string  true   "Requester"
// @Param        ambulance_id     query   string  false  "Preferred ambulance"
// @Param        Idempotency-Key  header  string  false  "Repeat-safe request key"
// @Param        request          body    dto.BookAmbulanceRequest  true  "Pickup"
// @Success      200  {object}  dto.BookingResponse
// @Failure      503  {object}  map[string]any
// @Failure      504  {object}  map[string]any
// @Router       /api/ambulances/book [post]
func (h *Ambulance) Book(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionRequestBooking)

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		if id := models.IdentityFromContext(ctx); !id.IsAnonymous() {
			userID = id.UserID
		}
	}
	ctx = wrap.WithUserID(ctx, userID)

	var req dto.BookAmbulanceRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Warn(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	v.Check(userID != "", "user_id", "must be provided")
	req.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	booking, err := h.bookings.RequestBooking(ctx, models.BookingInput{
		RequesterID:          userID,
		Pickup:               req.Pickup.ToModel(),
		PreferredAmbulanceID: r.URL.Query().Get("ambulance_id"),
		IdempotencyKey:       r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to book ambulance", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, dto.NewBookingResponse(booking), nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		return
	}

	h.l.Info(wrap.WithBookingID(ctx, booking.ID), "ambulance booked", "ambulance_id", booking.AmbulanceID, "status", booking.Status.String())
}

// GetBooking godoc
// @Summary      Booking detail
// @Tags         Bookings
// @Produce      json
// @Param        id   path  string  true  "Booking ID"
// @Success      200  {object}  models.Booking
// @Failure      404  {object}  map[string]any
// @Router       /api/bookings/{id} [get]
func (h *Ambulance) GetBooking(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithBookingID(wrap.WithAction(r.Context(), "get_booking"), r.PathValue("id"))

	booking, err := h.bookings.GetBooking(ctx, r.PathValue("id"))
	if err != nil {
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, booking, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// CancelBooking godoc
// @Summary      Cancel booking
// @Tags         Bookings
// @Produce      json
// @Param        id   path  string  true  "Booking ID"
// @Success      200  {object}  models.Booking
// @Failure      409  {object}  map[string]any
// @Router       /api/bookings/{id}/cancel [post]
func (h *Ambulance) CancelBooking(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithBookingID(wrap.WithAction(r.Context(), types.ActionCancelBooking), r.PathValue("id"))

	booking, err := h.bookings.CancelBooking(ctx, r.PathValue("id"))
	if err != nil {
		h.l.Warn(wrap.ErrorCtx(ctx, err), "cancel rejected", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, booking, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		return
	}

	h.l.Info(ctx, "booking cancelled")
}

// CompleteBooking godoc
// @Summary      Complete booking
// @Description  Closes a Confirmed booking and returns the ambulance to the pool
// @Tags         Bookings
// @Produce      json
// @Param        id   path  string  true  "Booking ID"
// @Success      200  {object}  models.Booking
// @Failure      404  {object}  map[string]any
// @Failure      409  {object}  map[string]any
// @Router       /api/bookings/{id}/complete [post]
func (h *Ambulance) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithBookingID(wrap.WithAction(r.Context(), types.ActionCompleteBooking), r.PathValue("id"))

	booking, err := h.bookings.CompleteBooking(ctx, r.PathValue("id"))
	if err != nil {
		h.l.Warn(wrap.ErrorCtx(ctx, err), "complete rejected", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, booking, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		return
	}

	h.l.Info(ctx, "booking completed", "ambulance_id", booking.AmbulanceID)
}
