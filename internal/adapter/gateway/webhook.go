package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
)

// Webhook posts delivery jobs to an SMS/webhook gateway.
type Webhook struct {
	url    string
	token  string
	client *http.Client
}

func NewWebhook(url, token string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Webhook{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

type webhookRequest struct {
	DedupKey  string  `json:"dedup_key"`
	To        string  `json:"to"`
	Name      string  `json:"name"`
	Message   string  `json:"message"`
	EventID   string  `json:"event_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Deliver treats 4xx as a permanent rejection; 5xx and transport errors may be retried.
func (w *Webhook) Deliver(ctx context.Context, job models.DeliveryJob) error {
	const op = "Webhook.Deliver"
	ctx = wrap.WithAction(ctx, types.ActionGatewayDelivery)

	body, err := json.Marshal(webhookRequest{
		DedupKey:  job.DedupKey,
		To:        job.Contact.Phone,
		Name:      job.Contact.Name,
		Message:   job.Payload.Message,
		EventID:   job.Payload.EventID,
		Latitude:  job.Payload.Location.Latitude,
		Longitude: job.Payload.Location.Longitude,
	})
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w: marshal: %v", op, types.ErrDeliveryRejected, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w: build request: %v", op, types.ErrDeliveryRejected, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", job.DedupKey)
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w: %v", op, types.ErrDeliveryFailed, err))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return wrap.Error(ctx, fmt.Errorf("%s: %w: status %d", op, types.ErrDeliveryRejected, resp.StatusCode))
	default:
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w: status %d", op, types.ErrDeliveryFailed, resp.StatusCode))
	}
}
