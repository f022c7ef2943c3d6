package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
)

type staticValidator map[string]*models.Identity

func (v staticValidator) Validate(ctx context.Context, token string) (*models.Identity, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return nil, types.ErrInvalidToken
}

var tokens = staticValidator{
	"citizen":    {UserID: "u1", Role: types.RoleCitizen},
	"dispatcher": {UserID: "d1", Role: types.RoleDispatcher},
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func identityEcho(w http.ResponseWriter, r *http.Request) {
	id := models.IdentityFromContext(r.Context())
	if id.IsAnonymous() {
		w.Write([]byte("anonymous"))
		return
	}
	w.Write([]byte(id.UserID))
}

func TestAuth(t *testing.T) {
	m := NewMiddleware(tokens, logger.NewNop())
	h := m.Auth(http.HandlerFunc(identityEcho))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"no header is anonymous", "", http.StatusOK, "anonymous"},
		{"valid token", "Bearer citizen", http.StatusOK, "u1"},
		{"scheme is case insensitive", "bearer dispatcher", http.StatusOK, "d1"},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, ""},
		{"malformed header", "Token citizen", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/alerts/active", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			} else {
				assert.Equal(t, "Unauthorized", errorCode(t, rec))
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusCreated) }

	enforced := NewMiddleware(tokens, logger.NewNop(), WithAuthRequired(true))
	h := enforced.Auth(enforced.RequireRoles(ok, types.RoleDispatcher, types.RoleAdmin))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"wrong role", "Bearer citizen", http.StatusForbidden},
		{"allowed role", "Bearer dispatcher", http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/alerts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	t.Run("auth disabled passes through", func(t *testing.T) {
		open := NewMiddleware(tokens, logger.NewNop())
		rec := httptest.NewRecorder()
		open.Auth(open.RequireRoles(ok, types.RoleDispatcher)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/alerts", nil))
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

func TestRateLimit(t *testing.T) {
	limiter, err := NewRateLimiter("2-M")
	require.NoError(t, err)

	m := NewMiddleware(nil, logger.NewNop(), WithRateLimiter(limiter))
	h := m.RateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	call := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("/api/news").Code)
	assert.Equal(t, http.StatusOK, call("/api/news").Code)

	rec := call("/api/news")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RateLimited", errorCode(t, rec))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, call("/health").Code, "health is never limited")

	_, err = NewRateLimiter("lots")
	assert.Error(t, err)
}

func TestRecover(t *testing.T) {
	m := NewMiddleware(nil, logger.NewNop())
	h := m.Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal", errorCode(t, rec))
}

func TestRequestID(t *testing.T) {
	m := NewMiddleware(nil, logger.NewNop())
	h := m.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}
