package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dwikikusuma/shoe-store/internal/payment/app"
)

// HTTPGateway captures payments through an external provider:
// POST {baseURL}/captures. 2xx means captured, 402 means declined, anything
// else is a gateway failure.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type captureResponse struct {
	Reference string `json:"reference"`
}

func (g *HTTPGateway) Capture(ctx context.Context, req app.CaptureRequest) (app.CaptureResult, error) {
	var out captureResponse
	status, err := postJSON(ctx, g.client, g.baseURL+"/captures", captureKey(req), req, &out)
	if err != nil {
		return app.CaptureResult{}, err
	}

	switch {
	case status >= 200 && status < 300:
		return app.CaptureResult{Approved: true, Reference: out.Reference}, nil
	case status == http.StatusPaymentRequired:
		return app.CaptureResult{Approved: false, Reference: out.Reference}, nil
	default:
		return app.CaptureResult{}, fmt.Errorf("capture %s: status %d", req.OrderID, status)
	}
}

// captureKey scopes the provider's idempotency to one capture attempt.
func captureKey(req app.CaptureRequest) string {
	if req.AttemptID == "" {
		return "capture-" + req.OrderID
	}
	return "capture-" + req.OrderID + "-" + req.AttemptID
}

func postJSON(ctx context.Context, client *http.Client, url, idempotencyKey string, body, out any) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// providers may answer a decline with an empty body
	_ = json.NewDecoder(resp.Body).Decode(out)
	return resp.StatusCode, nil
}
