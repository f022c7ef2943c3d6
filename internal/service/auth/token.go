package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
)

const issuer = "emergilink"

// TokenService issues and validates HS256 access tokens. There is no user store:
// tokens are minted by operators with the -issue-token flag.
type TokenService struct {
	secret    []byte
	AccessTTL time.Duration
	now       func() time.Time
}

func NewTokenService(secret string, accessTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	return &TokenService{
		secret:    []byte(secret),
		AccessTTL: accessTTL,
		now:       time.Now,
	}
}

func (s *TokenService) Issue(ctx context.Context, userID string, role types.UserRole) (string, error) {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: "issue_token", UserID: userID})

	if userID == "" {
		return "", wrap.Error(ctx, types.Invalid("user_id must be provided"))
	}
	switch role {
	case types.RoleCitizen, types.RoleDispatcher, types.RoleAdmin:
	default:
		return "", wrap.Error(ctx, types.Invalid("unknown role "+role.String()))
	}

	issuedAt := s.now().UTC()
	claims := models.AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.AccessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", wrap.Error(ctx, err)
	}
	return signed, nil
}

// Validate parses token and returns the caller identity it carries.
func (s *TokenService) Validate(ctx context.Context, token string) (*models.Identity, error) {
	ctx = wrap.WithAction(ctx, "validate_token")

	claims := &models.AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, types.ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, wrap.Error(ctx, types.ErrExpiredToken)
		}
		return nil, wrap.Error(ctx, types.ErrInvalidToken)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, wrap.Error(ctx, types.ErrInvalidToken)
	}

	return &models.Identity{UserID: claims.Subject, Role: claims.Role}, nil
}
