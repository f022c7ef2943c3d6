package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/http/handler/dto"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/validator"
)

type AlertService interface {
	Publish(ctx context.Context, a models.DisasterAlert) (*models.DisasterAlert, error)
	ListActive(ctx context.Context, filter models.LocationFilter) ([]models.DisasterAlert, error)
	Get(ctx context.Context, id string) (*models.DisasterAlert, error)
}

type Alert struct {
	service AlertService
	l       logger.Logger
}

func NewAlert(service AlertService, l logger.Logger) *Alert {
	return &Alert{service: service, l: l}
}

// Active godoc
// @Summary      Active disaster alerts
// @Description  Alerts not yet expired, newest first, optionally filtered by point and area
// @Tags         Alerts
// @Produce      json
// @Param        lat        query  number  false  "Latitude"
// @Param        lng        query  number  false  "Longitude"
// @Param        radius_km  query  number  false  "Extra radius around the point"
// @Param        area       query  string  false  "Affected area substring"
// @Success      200  {object}  map[string]any
// @Router       /api/alerts/active [get]
func (h *Alert) Active(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionQueryAlerts)

	q := r.URL.Query()
	v := validator.New()
	filter := models.LocationFilter{Area: strings.TrimSpace(q.Get("area"))}

	if q.Get("lat") != "" || q.Get("lng") != "" {
		lat, lng := queryFloat(r, v, "lat"), queryFloat(r, v, "lng")
		v.Check(validator.ValidCoordinates(lat, lng), "lat", "coordinates out of range")
		filter.Point = &models.Location{Latitude: lat, Longitude: lng}
		filter.RadiusKm = queryFloatOr(r, v, "radius_km", 0)
		v.Check(filter.RadiusKm >= 0, "radius_km", "must not be negative")
	}
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	alerts, err := h.service.ListActive(ctx, filter)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to query alerts", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"alerts": alerts, "count": len(alerts)}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// Get godoc
// @Summary      Alert detail
// @Tags         Alerts
// @Produce      json
// @Param        id   path  string  true  "Alert ID"
// @Success      200  {object}  models.DisasterAlert
// @Failure      404  {object}  map[string]any
// @Router       /api/alerts/{id} [get]
func (h *Alert) Get(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_alert")

	alert, err := h.service.Get(ctx, r.PathValue("id"))
	if err != nil {
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, alert, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// Publish godoc
// @Summary      Publish alert
// @Description  Creates or replaces an alert. Requires dispatcher or admin role when auth is enabled
// @Tags         Alerts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  dto.PublishAlertRequest  true  "Alert"
// @Success      200  {object}  models.DisasterAlert
// @Failure      422  {object}  map[string]any
// @Router       /api/alerts [post]
func (h *Alert) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionPublishAlert)

	var req dto.PublishAlertRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Warn(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	alert, err := h.service.Publish(ctx, req.ToModel())
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to publish alert", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, alert, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}
