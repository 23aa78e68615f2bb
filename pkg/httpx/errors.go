package httpx

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/shoe-store/pkg/apperr"
)

// StatusFromError maps err to an HTTP status, a stable error code and a
// client-safe message. Application errors use their reason as the code; bare
// gRPC status errors use the upper-case code name.
func StatusFromError(err error) (int, string, string) {
	var coded apperr.Coded
	if errors.As(err, &coded) {
		st := httpStatus(coded.Code())
		if st == http.StatusInternalServerError {
			return st, "INTERNAL", "internal error"
		}
		return st, coded.Reason(), coded.Error()
	}

	s, ok := status.FromError(err)
	if !ok {
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}

	switch s.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return http.StatusServiceUnavailable, "UNAVAILABLE", s.Message()
	}

	st := httpStatus(s.Code())
	if st == http.StatusInternalServerError {
		return st, "INTERNAL", "internal error"
	}
	return st, codeName(s.Code()), s.Message()
}

func httpStatus(c codes.Code) int {
	switch c {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unavailable, codes.DeadlineExceeded:
		return http.StatusServiceUnavailable
	case codes.Unimplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// codeName turns codes.InvalidArgument into "INVALID_ARGUMENT".
func codeName(c codes.Code) string {
	name := c.String()
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}
