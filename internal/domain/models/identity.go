package models

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

// Identity is the caller resolved from a bearer token. Anonymous callers have an empty UserID.
type Identity struct {
	UserID string         `json:"user_id"`
	Role   types.UserRole `json:"role"`
}

func (i *Identity) IsAnonymous() bool {
	return i == nil || i.UserID == ""
}

type AccessClaims struct {
	Role types.UserRole `json:"role"`
	jwt.RegisteredClaims
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}

// FeedMessage is pushed to websocket clients.
type FeedMessage struct {
	Type types.FeedEvent `json:"type"`
	Data any             `json:"data"`
}
