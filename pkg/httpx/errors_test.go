package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/shoe-store/pkg/apperr"
)

func TestStatusFromError(t *testing.T) {
	t.Run("InvalidArgument -> 400", func(t *testing.T) {
		err := status.Error(codes.InvalidArgument, "bad")
		gotStatus, gotCode, _ := StatusFromError(err)
		if gotStatus != http.StatusBadRequest || gotCode != "INVALID_ARGUMENT" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("NotFound -> 404", func(t *testing.T) {
		err := status.Error(codes.NotFound, "missing")
		gotStatus, gotCode, _ := StatusFromError(err)
		if gotStatus != http.StatusNotFound || gotCode != "NOT_FOUND" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("Unavailable -> 503", func(t *testing.T) {
		err := status.Error(codes.Unavailable, "down")
		gotStatus, gotCode, _ := StatusFromError(err)
		if gotStatus != http.StatusServiceUnavailable || gotCode != "UNAVAILABLE" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("DeadlineExceeded -> 503", func(t *testing.T) {
		err := status.Error(codes.DeadlineExceeded, "timeout")
		gotStatus, gotCode, _ := StatusFromError(err)
		if gotStatus != http.StatusServiceUnavailable || gotCode != "UNAVAILABLE" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("non-grpc error -> 500", func(t *testing.T) {
		err := errors.New("boom")
		gotStatus, gotCode, msg := StatusFromError(err)
		if gotStatus != http.StatusInternalServerError || gotCode != "INTERNAL" || msg != "internal error" {
			t.Fatalf("got (%d,%s,%s)", gotStatus, gotCode, msg)
		}
	})

	t.Run("validation -> 400 with reason", func(t *testing.T) {
		err := fmt.Errorf("place order: %w", apperr.Validation("shippingAddress.address", "too short"))
		gotStatus, gotCode, _ := StatusFromError(err)
		if gotStatus != http.StatusBadRequest || gotCode != "VALIDATION_FAILED" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("aborted app error -> 409", func(t *testing.T) {
		err := apperr.New(codes.Aborted, "STOCK_CHANGED", "stock changed")
		gotStatus, gotCode, _ := StatusFromError(err)
		if gotStatus != http.StatusConflict || gotCode != "STOCK_CHANGED" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("forbidden -> 403", func(t *testing.T) {
		gotStatus, gotCode, _ := StatusFromError(apperr.ErrForbidden)
		if gotStatus != http.StatusForbidden || gotCode != "FORBIDDEN" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})
}
