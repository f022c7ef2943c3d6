package middleware

import (
	"context"

	"github.com/ulule/limiter/v3"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
)

type (
	TokenValidator interface {
		Validate(ctx context.Context, token string) (*models.Identity, error)
	}

	Middleware struct {
		auth        TokenValidator
		authEnabled bool
		limiter     *limiter.Limiter
		log         logger.Logger
	}
)

type Option func(*Middleware)

// WithRateLimiter enables the per-IP limiter.
func WithRateLimiter(l *limiter.Limiter) Option {
	return func(m *Middleware) { m.limiter = l }
}

// WithAuthRequired makes RequireRoles enforce roles. Without it role checks are skipped.
func WithAuthRequired(enabled bool) Option {
	return func(m *Middleware) { m.authEnabled = enabled }
}

func NewMiddleware(auth TokenValidator, log logger.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		auth: auth,
		log:  log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
