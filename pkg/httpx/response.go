// Package httpx holds the JSON response helpers and middleware shared by the
// REST handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dwikikusuma/shoe-store/pkg/apperr"
)

const maxBodyBytes = 1 << 20

type ErrorBody struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteOK writes {"success":true,"<key>":v}.
func WriteOK(w http.ResponseWriter, status int, key string, v any) {
	WriteJSON(w, status, map[string]any{"success": true, key: v})
}

// WriteList writes {"success":true,"count":n,"<key>":items}.
func WriteList[T any](w http.ResponseWriter, key string, items []T) {
	if items == nil {
		items = []T{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(items), key: items})
}

func WriteError(w http.ResponseWriter, log *slog.Logger, err error) {
	st, code, msg := StatusFromError(err)
	if st >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", slog.Any("err", err))
	}
	WriteJSON(w, st, errorEnvelope{Error: ErrorBody{
		Code:      code,
		Message:   msg,
		Retryable: apperr.IsRetryable(err),
		Details:   apperr.DetailsOf(err),
	}})
}

// DecodeJSON reads a single JSON object from the request body.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("body", "request body is required")
		}
		return apperr.Validation("body", "invalid JSON body")
	}
	return nil
}
