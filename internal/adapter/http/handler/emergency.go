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

type SOSService interface {
	Trigger(ctx context.Context, in models.TriggerInput) (*models.SOSEvent, error)
	Get(ctx context.Context, eventID string) (*models.SOSEvent, error)
	Resolve(ctx context.Context, eventID string) (*models.SOSEvent, error)
	History(ctx context.Context, requesterID string) ([]models.SOSEvent, error)
}

type Emergency struct {
	service SOSService
	l       logger.Logger
}

func NewEmergency(service SOSService, l logger.Logger) *Emergency {
	return &Emergency{service: service, l: l}
}

// TriggerSOS godoc
// @Summary      Trigger SOS
// @Description  Notifies the caller's emergency contacts and dispatches an ambulance for medical emergencies
// @Tags         Emergency
// @Accept       json
// @Produce      json
// @Param        request  body  dto.TriggerSOSRequest  true  "SOS"
// @Success      200  {object}  dto.SOSResponse
// @Failure      422  {object}  map[string]any
// @Router       /api/emergency/sos [post]
func (h *Emergency) TriggerSOS(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionTriggerSOS)

	var req dto.TriggerSOSRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Warn(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	if req.UserID == "" {
		if id := models.IdentityFromContext(ctx); !id.IsAnonymous() {
			req.UserID = id.UserID
		}
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}
	ctx = wrap.WithUserID(ctx, req.UserID)

	event, err := h.service.Trigger(ctx, req.ToModel())
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to trigger sos", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, dto.NewSOSResponse(event), nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		return
	}

	h.l.Info(wrap.WithEventID(ctx, event.ID), "sos handled", "status", event.Status.String(), "warnings", len(event.Warnings))
}

// GetSOS godoc
// @Summary      SOS detail
// @Tags         Emergency
// @Produce      json
// @Param        id   path  string  true  "Event ID"
// @Success      200  {object}  dto.SOSResponse
// @Failure      404  {object}  map[string]any
// @Router       /api/emergency/{id} [get]
func (h *Emergency) GetSOS(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithEventID(wrap.WithAction(r.Context(), "get_sos"), r.PathValue("id"))

	event, err := h.service.Get(ctx, r.PathValue("id"))
	if err != nil {
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, dto.NewSOSResponse(event), nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// ResolveSOS godoc
// @Summary      Resolve SOS
// @Description  Idempotent; resolving a resolved event returns it unchanged
// @Tags         Emergency
// @Produce      json
// @Param        id   path  string  true  "Event ID"
// @Success      200  {object}  dto.SOSResponse
// @Failure      409  {object}  map[string]any
// @Router       /api/emergency/{id}/resolve [post]
func (h *Emergency) ResolveSOS(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithEventID(wrap.WithAction(r.Context(), types.ActionResolveSOS), r.PathValue("id"))

	event, err := h.service.Resolve(ctx, r.PathValue("id"))
	if err != nil {
		h.l.Warn(wrap.ErrorCtx(ctx, err), "resolve rejected", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, dto.NewSOSResponse(event), nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// History godoc
// @Summary      SOS history
// @Tags         Emergency
// @Produce      json
// @Param        user_id  path  string  true  "User ID"
// @Success      200  {object}  map[string]any
// @Router       /api/emergency/history/{user_id} [get]
func (h *Emergency) History(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	ctx := wrap.WithUserID(wrap.WithAction(r.Context(), "sos_history"), userID)

	events, err := h.service.History(ctx, userID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to load sos history", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"events": events, "count": len(events)}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}
