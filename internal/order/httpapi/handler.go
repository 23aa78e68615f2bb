package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dwikikusuma/shoe-store/internal/order/app"
	paymentapp "github.com/dwikikusuma/shoe-store/internal/payment/app"
	"github.com/dwikikusuma/shoe-store/pkg/httpx"
)

type Handler struct {
	orders   *app.Service
	payments *paymentapp.Service
	log      *slog.Logger
}

func NewHandler(orders *app.Service, payments *paymentapp.Service, log *slog.Logger) *Handler {
	return &Handler{orders: orders, payments: payments, log: log}
}

// Routes registers the order endpoints. POST /orders belongs to checkout.
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(httpx.RequireUser)
		r.Get("/orders/my", h.listMine)
		r.Get("/orders/{id}", h.get)
		r.Post("/orders/{id}/pay", h.pay)
	})

	r.Group(func(r chi.Router) {
		r.Use(httpx.RequireAdmin)
		r.Get("/orders", h.listAll)
		r.Patch("/orders/{id}/status", h.updateStatus)
	})
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListMyOrders(r.Context(), httpx.IdentityFrom(r.Context()).UserID)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteList(w, "orders", orders)
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteList(w, "orders", orders)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := httpx.IdentityFrom(r.Context())
	o, err := h.orders.GetOrder(r.Context(), id.UserID, id.IsAdmin(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "order", o)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	h.log.Info("order status updated",
		slog.String("order_id", o.ID),
		slog.String("status", string(o.Status)),
		slog.String("admin_id", httpx.IdentityFrom(r.Context()).UserID),
	)
	httpx.WriteOK(w, http.StatusOK, "order", o)
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	o, err := h.payments.Capture(r.Context(), httpx.IdentityFrom(r.Context()).UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "order", o)
}
