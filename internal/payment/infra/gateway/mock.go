package gateway

import (
	"context"

	"github.com/google/uuid"

	"github.com/dwikikusuma/shoe-store/internal/payment/app"
)

// Mock approves every capture unless Decline says otherwise. Used when
// MOCK_PAYMENTS is set.
type Mock struct {
	Decline func(req app.CaptureRequest) bool
}

func (m Mock) Capture(_ context.Context, req app.CaptureRequest) (app.CaptureResult, error) {
	ref := "mock_" + uuid.NewString()
	if m.Decline != nil && m.Decline(req) {
		return app.CaptureResult{Approved: false, Reference: ref}, nil
	}
	return app.CaptureResult{Approved: true, Reference: ref}, nil
}
