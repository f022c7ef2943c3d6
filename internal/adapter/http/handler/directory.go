package handler

import (
	"context"
	"net/http"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/validator"
)

type DirectoryService interface {
	NearbyHospitals(ctx context.Context, point models.Location, limit int) ([]models.Hospital, error)
	Hospital(ctx context.Context, id string) (*models.Hospital, error)
	News(ctx context.Context, f models.NewsFilter) ([]models.NewsItem, error)
	NewsItem(ctx context.Context, id string) (*models.NewsItem, error)
	NewsCategories() []models.NewsCategory
}

type Directory struct {
	service DirectoryService
	l       logger.Logger
}

func NewDirectory(service DirectoryService, l logger.Logger) *Directory {
	return &Directory{service: service, l: l}
}

// NearbyHospitals godoc
// @Summary      Nearby hospitals
// @Tags         Hospitals
// @Produce      json
// @Param        lat    query  number   true   "Latitude"
// @Param        lng    query  number   true   "Longitude"
// @Param        limit  query  integer  false  "Max results"
// @Success      200  {object}  map[string]any
// @Router       /api/hospitals/nearby [get]
func (h *Directory) NearbyHospitals(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "nearby_hospitals")

	v := validator.New()
	lat, lng := queryFloat(r, v, "lat"), queryFloat(r, v, "lng")
	limit := queryInt(r, v, "limit")
	v.Check(validator.ValidCoordinates(lat, lng), "lat", "coordinates out of range")
	v.Check(limit >= 0, "limit", "must not be negative")
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	hospitals, err := h.service.NearbyHospitals(ctx, models.Location{Latitude: lat, Longitude: lng}, limit)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list hospitals", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"hospitals": hospitals, "count": len(hospitals)}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// Hospital godoc
// @Summary      Hospital detail
// @Tags         Hospitals
// @Produce      json
// @Param        id   path  string  true  "Hospital ID"
// @Success      200  {object}  models.Hospital
// @Failure      404  {object}  map[string]any
// @Router       /api/hospitals/{id} [get]
func (h *Directory) Hospital(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_hospital")

	hospital, err := h.service.Hospital(ctx, r.PathValue("id"))
	if err != nil {
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, hospital, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// News godoc
// @Summary      News feed
// @Description  Ordered by priority, then newest first
// @Tags         News
// @Produce      json
// @Param        limit     query  integer  false  "Max items (default 20)"
// @Param        category  query  string   false  "Category id"
// @Param        priority  query  string   false  "urgent, high, normal or low"
// @Success      200  {object}  map[string]any
// @Router       /api/news [get]
func (h *Directory) News(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_news")

	v := validator.New()
	filter := models.NewsFilter{
		Category: r.URL.Query().Get("category"),
		Priority: types.NewsPriority(r.URL.Query().Get("priority")),
		Limit:    queryInt(r, v, "limit"),
	}
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	news, err := h.service.News(ctx, filter)
	if err != nil {
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"news": news, "count": len(news)}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// NewsCategories godoc
// @Summary      News categories
// @Tags         News
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /api/news/categories [get]
func (h *Directory) NewsCategories(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, envelope{"categories": h.service.NewsCategories()}, nil); err != nil {
		h.l.Error(r.Context(), "failed to write response", err)
	}
}

// NewsItem godoc
// @Summary      News item
// @Tags         News
// @Produce      json
// @Param        id   path  string  true  "News ID"
// @Success      200  {object}  models.NewsItem
// @Failure      404  {object}  map[string]any
// @Router       /api/news/{id} [get]
func (h *Directory) NewsItem(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_news_item")

	item, err := h.service.NewsItem(ctx, r.PathValue("id"))
	if err != nil {
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, item, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}
