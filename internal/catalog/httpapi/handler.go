package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dwikikusuma/shoe-store/internal/catalog/app"
	"github.com/dwikikusuma/shoe-store/internal/catalog/domain"
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

// Routes mounts the catalog under /products. Reads are public; writes need
// the admin role.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{id}", h.get)

		r.Group(func(r chi.Router) {
			r.Use(httpx.RequireAdmin)
			r.Post("/", h.create)
			r.Put("/{id}", h.update)
			r.Delete("/{id}", h.delete)
		})
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.ListFilter{
		Query:  q.Get("q"),
		Cursor: q.Get("cursor"),
	}

	if c := q.Get("category"); c != "" {
		category, ok := domain.ParseCategory(c)
		if !ok {
			httpx.WriteError(w, h.log, apperr.Validation("category", "unknown category"))
			return
		}
		f.Category = category
	}
	if v := q.Get("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			httpx.WriteError(w, h.log, apperr.Validation("featured", "must be a boolean"))
			return
		}
		f.Featured = featured
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			httpx.WriteError(w, h.log, apperr.Validation("limit", "must be a positive integer"))
			return
		}
		f.Limit = limit
	}

	products, next, err := h.svc.ListProducts(r.Context(), f)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"count":      len(products),
		"products":   products,
		"nextCursor": next,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "product", p)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in app.ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	p, err := h.svc.CreateProduct(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteOK(w, http.StatusCreated, "product", p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in app.ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	p, err := h.svc.UpdateProduct(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "product", p)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "message": "product deleted"})
}
