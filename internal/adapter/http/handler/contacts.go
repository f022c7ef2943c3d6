package handler

import (
	"context"
	"net/http"

	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/http/handler/dto"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/internal/service/contacts"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/validator"
)

type ContactService interface {
	Add(ctx context.Context, ownerID string, c models.EmergencyContact) (*models.EmergencyContact, error)
	List(ctx context.Context, ownerID string) ([]models.EmergencyContact, error)
	Delete(ctx context.Context, ownerID, contactID string) error
}

type Contacts struct {
	service ContactService
	l       logger.Logger
}

func NewContacts(service ContactService, l logger.Logger) *Contacts {
	return &Contacts{service: service, l: l}
}

// List godoc
// @Summary      Emergency contacts
// @Tags         Contacts
// @Produce      json
// @Param        id   path  string  true  "User ID"
// @Success      200  {object}  map[string]any
// @Router       /api/users/{id}/emergency-contacts [get]
func (h *Contacts) List(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_contacts")

	list, err := h.service.List(ctx, r.PathValue("id"))
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list contacts", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"contacts": list, "count": len(list)}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// Add godoc
// @Summary      Add emergency contact
// @Tags         Contacts
// @Accept       json
// @Produce      json
// @Param        id       path  string                 true  "User ID"
// @Param        request  body  dto.AddContactRequest  true  "Contact"
// @Success      200  {object}  models.EmergencyContact
// @Failure      422  {object}  map[string]any
// @Router       /api/users/{id}/emergency-contacts [post]
func (h *Contacts) Add(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithUserID(wrap.WithAction(r.Context(), "add_contact"), r.PathValue("id"))

	var req dto.AddContactRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	contact := req.ToModel()
	if contact.Type == "" {
		contact.Type = types.ContactFamily
	}

	v := validator.New()
	if contacts.Validate(v, contact); !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	created, err := h.service.Add(ctx, r.PathValue("id"), contact)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to add contact", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, created, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// Delete godoc
// @Summary      Delete emergency contact
// @Tags         Contacts
// @Produce      json
// @Param        id          path  string  true  "User ID"
// @Param        contact_id  path  string  true  "Contact ID"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/users/{id}/emergency-contacts/{contact_id} [delete]
func (h *Contacts) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithUserID(wrap.WithAction(r.Context(), "delete_contact"), r.PathValue("id"))

	if err := h.service.Delete(ctx, r.PathValue("id"), r.PathValue("contact_id")); err != nil {
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"deleted": r.PathValue("contact_id")}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}
