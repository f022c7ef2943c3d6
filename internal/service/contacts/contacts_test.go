package contacts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/memory"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/validator"
)

func TestAddListDelete(t *testing.T) {
	s := New(memory.NewContactRepo(), logger.NewNop())
	ctx := context.Background()

	mom, err := s.Add(ctx, "user-1", models.EmergencyContact{Name: "Mom", Phone: "+1 (555) 010-0100", Type: types.ContactFamily})
	require.NoError(t, err)
	assert.NotEmpty(t, mom.ID)
	assert.Equal(t, "user-1", mom.OwnerID)

	_, err = s.Add(ctx, "user-1", models.EmergencyContact{Name: "Dr. Lee", Phone: "5550100200", Type: types.ContactMedical})
	require.NoError(t, err)

	list, err := s.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Mom", list[0].Name)

	require.NoError(t, s.Delete(ctx, "user-1", mom.ID))
	list, err = s.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, s.Delete(ctx, "user-1", mom.ID), types.ErrNotFound)

	empty, err := s.List(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		contact models.EmergencyContact
		field   string
	}{
		{"missing name", models.EmergencyContact{Phone: "+15550100", Type: types.ContactFriend}, "name"},
		{"letters in phone", models.EmergencyContact{Name: "A", Phone: "call me", Type: types.ContactFriend}, "phone"},
		{"short phone", models.EmergencyContact{Name: "A", Phone: "123", Type: types.ContactFriend}, "phone"},
		{"unknown type", models.EmergencyContact{Name: "A", Phone: "+15550100", Type: "coworker"}, "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validator.New()
			Validate(v, tt.contact)
			assert.False(t, v.Valid())
			assert.Contains(t, v.Errors, tt.field)
		})
	}

	s := New(memory.NewContactRepo(), logger.NewNop())
	_, err := s.Add(context.Background(), "user-1", models.EmergencyContact{Name: "A", Phone: "nope"})
	assert.ErrorIs(t, err, types.ErrInvalidRequest)
}
