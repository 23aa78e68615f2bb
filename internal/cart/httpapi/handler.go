package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dwikikusuma/shoe-store/internal/cart/app"
	"github.com/dwikikusuma/shoe-store/internal/cart/domain"
	"github.com/dwikikusuma/shoe-store/pkg/apperr"
	"github.com/dwikikusuma/shoe-store/pkg/httpx"
)

type Handler struct {
	svc *app.Service
	log *slog.Logger
}

func NewHandler(svc *app.Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// cartView is the cart as returned to clients, with its running total.
type cartView struct {
	domain.Cart
	TotalAmount int64 `json:"totalAmount"`
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int32 `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity *int32 `json:"quantity"`
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Use(httpx.RequireUser)
		r.Get("/", h.get)
		r.Delete("/", h.clear)
		r.Post("/items", h.addItem)
		r.Put("/items/{productId}", h.setQuantity)
		r.Patch("/items/{productId}/increment", h.lineOp(h.svc.IncrementItem))
		r.Patch("/items/{productId}/decrement", h.lineOp(h.svc.DecrementItem))
		r.Delete("/items/{productId}", h.lineOp(h.svc.RemoveItem))
	})
}

func (h *Handler) write(w http.ResponseWriter, status int, c domain.Cart, err error) {
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteOK(w, status, "cart", cartView{Cart: c, TotalAmount: c.Total()})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCart(r.Context(), httpx.IdentityFrom(r.Context()).UserID)
	h.write(w, http.StatusOK, c, err)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := httpx.IdentityFrom(ctx).UserID
	c, err := h.svc.Clear(ctx, userID)
	if apperr.IsNotFound(err) {
		c, err = h.svc.GetCart(ctx, userID)
	}
	h.write(w, http.StatusOK, c, err)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	qty := int32(1)
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	c, err := h.svc.AddItem(r.Context(), httpx.IdentityFrom(r.Context()).UserID, req.ProductID, qty)
	h.write(w, http.StatusCreated, c, err)
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	if req.Quantity == nil {
		httpx.WriteError(w, h.log, apperr.Validation("quantity", "is required"))
		return
	}
	c, err := h.svc.SetItemQuantity(r.Context(), httpx.IdentityFrom(r.Context()).UserID, chi.URLParam(r, "productId"), *req.Quantity)
	h.write(w, http.StatusOK, c, err)
}

func (h *Handler) lineOp(op func(ctx context.Context, userID, productID string) (domain.Cart, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := op(r.Context(), httpx.IdentityFrom(r.Context()).UserID, chi.URLParam(r, "productId"))
		h.write(w, http.StatusOK, c, err)
	}
}
