package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

func TestIssueValidate_RoundTrip(t *testing.T) {
	s := NewTokenService("secret", time.Hour)

	token, err := s.Issue(context.Background(), "user-1", types.RoleDispatcher)
	require.NoError(t, err)

	id, err := s.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.UserID)
	assert.Equal(t, types.RoleDispatcher, id.Role)
}

func TestValidate_Rejects(t *testing.T) {
	s := NewTokenService("secret", time.Hour)
	token, err := s.Issue(context.Background(), "user-1", types.RoleCitizen)
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		_, err := NewTokenService("other", time.Hour).Validate(context.Background(), token)
		assert.ErrorIs(t, err, types.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.Validate(context.Background(), "not.a.token")
		assert.ErrorIs(t, err, types.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewTokenService("secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Validate(context.Background(), token)
		assert.ErrorIs(t, err, types.ErrExpiredToken)
	})
}

func TestIssue_Validation(t *testing.T) {
	s := NewTokenService("secret", time.Hour)

	_, err := s.Issue(context.Background(), "", types.RoleCitizen)
	assert.ErrorIs(t, err, types.ErrInvalidRequest)

	_, err = s.Issue(context.Background(), "u", "root")
	assert.ErrorIs(t, err, types.ErrInvalidRequest)
}
