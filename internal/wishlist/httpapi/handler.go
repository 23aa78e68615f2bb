package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dwikikusuma/shoe-store/internal/wishlist/app"
	"github.com/dwikikusuma/shoe-store/internal/wishlist/domain"
	"github.com/dwikikusuma/shoe-store/pkg/httpx"
)

type Handler struct {
	svc *app.Service
	log *slog.Logger
}

func NewHandler(svc *app.Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/wishlist", func(r chi.Router) {
		r.Use(httpx.RequireUser)
		r.Get("/", h.get)
		r.Post("/", h.add)
		r.Delete("/{productId}", h.remove)
	})
}

func (h *Handler) write(w http.ResponseWriter, status int, wl domain.Wishlist, err error) {
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteOK(w, status, "wishlist", wl)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	wl, err := h.svc.Get(r.Context(), httpx.IdentityFrom(r.Context()).UserID)
	h.write(w, http.StatusOK, wl, err)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	wl, err := h.svc.Add(r.Context(), httpx.IdentityFrom(r.Context()).UserID, req.ProductID)
	h.write(w, http.StatusCreated, wl, err)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	wl, err := h.svc.Remove(r.Context(), httpx.IdentityFrom(r.Context()).UserID, chi.URLParam(r, "productId"))
	h.write(w, http.StatusOK, wl, err)
}
