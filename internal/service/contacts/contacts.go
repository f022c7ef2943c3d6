package contacts

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/validator"
)

type Repo interface {
	Create(ctx context.Context, c *models.EmergencyContact) error
	List(ctx context.Context, ownerID string) ([]models.EmergencyContact, error)
	Delete(ctx context.Context, ownerID, contactID string) error
}

type Service struct {
	repo Repo
	l    logger.Logger
}

func New(repo Repo, l logger.Logger) *Service {
	return &Service{repo: repo, l: l}
}

// Validate reports field errors for a contact about to be stored.
func Validate(v *validator.Validator, c models.EmergencyContact) {
	v.Check(strings.TrimSpace(c.Name) != "", "name", "must be provided")
	v.Check(len(c.Name) <= 100, "name", "must not be more than 100 bytes long")
	v.Check(c.Phone != "", "phone", "must be provided")
	v.Check(validator.Matches(c.Phone, validator.PhoneRX), "phone", "must be a valid phone number")
	v.Check(validator.PermittedValue(c.Type, types.ContactFamily, types.ContactFriend, types.ContactMedical), "type", "must be one of family, friend, medical")
}

func (s *Service) Add(ctx context.Context, ownerID string, c models.EmergencyContact) (*models.EmergencyContact, error) {
	ctx = wrap.WithUserID(ctx, ownerID)

	if strings.TrimSpace(ownerID) == "" {
		return nil, types.Invalid("user_id must be provided")
	}
	if c.Type == "" {
		c.Type = types.ContactFamily
	}

	v := validator.New()
	if Validate(v, c); !v.Valid() {
		problems := make([]string, 0, len(v.Errors))
		for _, field := range slices.Sorted(maps.Keys(v.Errors)) {
			problems = append(problems, field+" "+v.Errors[field])
		}
		return nil, types.Invalid(strings.Join(problems, "; "))
	}

	c.ID = uuid.NewString()
	c.OwnerID = ownerID
	c.Name = strings.TrimSpace(c.Name)
	c.CreatedAt = time.Now().UTC()

	if err := s.repo.Create(ctx, &c); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("create contact: %w", err))
	}

	s.l.Info(ctx, "emergency contact added", "contact_id", c.ID, "type", string(c.Type))
	return &c, nil
}

// List returns the owner's contacts in the order they were added.
func (s *Service) List(ctx context.Context, ownerID string) ([]models.EmergencyContact, error) {
	list, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, wrap.Error(wrap.WithUserID(ctx, ownerID), fmt.Errorf("list contacts: %w", err))
	}
	if list == nil {
		list = []models.EmergencyContact{}
	}
	return list, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, contactID string) error {
	ctx = wrap.WithUserID(ctx, ownerID)

	if err := s.repo.Delete(ctx, ownerID, contactID); err != nil {
		return wrap.Error(ctx, err)
	}

	s.l.Info(ctx, "emergency contact removed", "contact_id", contactID)
	return nil
}
