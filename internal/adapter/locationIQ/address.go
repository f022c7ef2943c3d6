package locationIQ

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
)

const defaultBaseURL = "https://us1.locationiq.com"

type LocationIQClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func New(apiKey, baseURL string, timeout time.Duration) *LocationIQClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &LocationIQClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type addressPayload struct {
	Address string `json:"display_name"`
}

// ReverseGeocode resolves a coordinate to a display address.
func (c *LocationIQClient) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	const op = "LocationIQClient.ReverseGeocode"

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', 6, 64))
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", wrap.Error(ctx, fmt.Errorf("%s: build request: %w", op, err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return "", wrap.Error(ctx, fmt.Errorf("%s: failed to make request to LocationIQ: %w", op, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return "", wrap.Error(ctx, fmt.Errorf("%s: unexpected response status %d", op, resp.StatusCode))
	}

	var payload addressPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		ctx = wrap.WithAction(ctx, "decode_address_payload")
		return "", wrap.Error(ctx, fmt.Errorf("%s: failed to decode data from LocationIQ response: %w", op, err))
	}

	return payload.Address, nil
}
