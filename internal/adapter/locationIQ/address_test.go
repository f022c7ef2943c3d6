package locationIQ

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/reverse", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		assert.Equal(t, "37.774900", r.URL.Query().Get("lat"))
		assert.Equal(t, "-122.419400", r.URL.Query().Get("lon"))
		_, _ = w.Write([]byte(`{"display_name":"Market St, San Francisco"}`))
	}))
	defer srv.Close()

	addr, err := New("k", srv.URL, time.Second).ReverseGeocode(context.Background(), 37.7749, -122.4194)
	require.NoError(t, err)
	assert.Equal(t, "Market St, San Francisco", addr)
}

func TestReverseGeocodeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New("k", srv.URL, time.Second).ReverseGeocode(context.Background(), 1, 1)
	require.Error(t, err)
}
