package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

// NewRateLimiter builds an in-memory limiter from a formatted rate such as "100-M".
func NewRateLimiter(formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	return limiter.New(memory.NewStore(), rate, limiter.WithTrustForwardHeader(true)), nil
}

// RateLimit throttles /api/ requests per client IP. Health, metrics and docs are never limited.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil || !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := m.limiter.GetIPKey(r)
		res, err := m.limiter.Get(ctx, key)
		if err != nil {
			m.log.Warn(ctx, "rate limiter unavailable", "error", err.Error())
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.Reset, 10))

		if res.Reached {
			errorResponse(w, http.StatusTooManyRequests, types.KindRateLimited, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
