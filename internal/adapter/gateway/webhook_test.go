package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

func testJob() models.DeliveryJob {
	return models.DeliveryJob{
		DedupKey: "evt-1:c-1",
		Contact:  models.EmergencyContact{ID: "c-1", Name: "Ana", Phone: "+14155550101", Type: types.ContactFamily},
		Payload: models.NotificationPayload{
			EventID:  "evt-1",
			Message:  "SOS",
			Location: models.Location{Latitude: 37.77, Longitude: -122.41},
		},
	}
}

func TestWebhookDeliver(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "accepted", status: http.StatusAccepted},
		{name: "bad request is permanent", status: http.StatusBadRequest, wantErr: types.ErrDeliveryRejected},
		{name: "throttled is retryable", status: http.StatusTooManyRequests, wantErr: types.ErrDeliveryFailed},
		{name: "server error is retryable", status: http.StatusBadGateway, wantErr: types.ErrDeliveryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got webhookRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "evt-1:c-1", r.Header.Get("Idempotency-Key"))
				assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := NewWebhook(srv.URL, "secret", time.Second).Deliver(context.Background(), testJob())
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, "+14155550101", got.To)
			assert.Equal(t, "evt-1", got.EventID)
		})
	}
}

func TestWebhookUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewWebhook(url, "", 200*time.Millisecond).Deliver(context.Background(), testJob())
	require.ErrorIs(t, err, types.ErrDeliveryFailed)
}
