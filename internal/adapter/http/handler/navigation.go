package handler

import (
	"context"
	"net/http"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/validator"
)

type RoutePlanner interface {
	SafeRoute(ctx context.Context, from, to models.Location) (*models.SafeRoute, error)
}

type Navigation struct {
	planner RoutePlanner
	l       logger.Logger
}

func NewNavigation(planner RoutePlanner, l logger.Logger) *Navigation {
	return &Navigation{planner: planner, l: l}
}

// SafeRoute godoc
// @Summary      Safe route
// @Description  Straight-line route annotated with the active alert zones it crosses
// @Tags         Navigation
// @Produce      json
// @Param        start_lat  query  number  true  "Start latitude"
// @Param        start_lng  query  number  true  "Start longitude"
// @Param        end_lat    query  number  true  "End latitude"
// @Param        end_lng    query  number  true  "End longitude"
// @Success      200  {object}  models.SafeRoute
// @Router       /api/navigation/safe-route [get]
func (h *Navigation) SafeRoute(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "safe_route")

	v := validator.New()
	from := models.Location{Latitude: queryFloat(r, v, "start_lat"), Longitude: queryFloat(r, v, "start_lng")}
	to := models.Location{Latitude: queryFloat(r, v, "end_lat"), Longitude: queryFloat(r, v, "end_lng")}
	v.Check(from.Valid(), "start_lat", "coordinates out of range")
	v.Check(to.Valid(), "end_lat", "coordinates out of range")
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	route, err := h.planner.SafeRoute(ctx, from, to)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to plan route", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, route, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}
