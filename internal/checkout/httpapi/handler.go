package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dwikikusuma/shoe-store/internal/checkout/app"
	"github.com/dwikikusuma/shoe-store/pkg/apperr"
	"github.com/dwikikusuma/shoe-store/pkg/httpx"
	"github.com/dwikikusuma/shoe-store/pkg/idempotency"
	"github.com/dwikikusuma/shoe-store/pkg/metrics"
)

type Handler struct {
	svc     *app.Service
	idem    idempotency.Store
	metrics *metrics.CheckoutMetrics
	log     *slog.Logger
}

// NewHandler wires the checkout endpoints. idem and m may be nil.
func NewHandler(svc *app.Service, idem idempotency.Store, m *metrics.CheckoutMetrics, log *slog.Logger) *Handler {
	return &Handler{svc: svc, idem: idem, metrics: m, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(httpx.RequireUser)
		r.Get("/checkout/quote", h.quote)
		r.Post("/orders", h.placeOrder)
	})
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Quote(r.Context(), httpx.IdentityFrom(r.Context()).UserID)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "quote", q)
}

// placeOrder honours an optional Idempotency-Key: a completed key replays the
// stored body with 200, a key still being processed gets 409, and a key reused
// with a different body gets 409 IDEMPOTENCY_KEY_REUSED.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := httpx.IdentityFrom(ctx).UserID

	var req app.PlaceOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.metrics.Observe("VALIDATION_FAILED")
		httpx.WriteError(w, h.log, err)
		return
	}

	key := idempotency.Key(r)
	var fingerprint string
	if key != "" && h.idem != nil {
		key = idempotency.ScopedKey("checkout", userID, key)
		fp, err := idempotency.Fingerprint(req)
		if err != nil {
			httpx.WriteError(w, h.log, err)
			return
		}
		fingerprint = fp

		state, stored, err := h.idem.Begin(ctx, key, fingerprint)
		if err != nil {
			httpx.WriteError(w, h.log, err)
			return
		}
		switch state {
		case idempotency.StateInProgress:
			httpx.WriteError(w, h.log, idempotency.ErrInProgress)
			return
		case idempotency.StateDone:
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Idempotent-Replayed", "true")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(stored)
			return
		}
	} else {
		key = ""
	}

	order, err := h.svc.PlaceOrder(ctx, userID, req)
	if err != nil {
		_, reason := apperr.CodeOf(err)
		h.metrics.Observe(reason)
		if key != "" {
			if rerr := h.idem.Release(context.WithoutCancel(ctx), key); rerr != nil {
				h.log.Warn("release idempotency key", slog.Any("err", rerr))
			}
		}
		httpx.WriteError(w, h.log, err)
		return
	}
	h.metrics.Observe("placed")

	body, err := json.Marshal(map[string]any{"success": true, "order": order})
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	if key != "" {
		if err := h.idem.Complete(context.WithoutCancel(ctx), key, fingerprint, body); err != nil {
			h.log.Warn("store idempotent response", slog.String("order_id", order.ID), slog.Any("err", err))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}
