package app_test

import (
	"context"
	"testing"

	catalogapp "github.com/dwikikusuma/shoe-store/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/shoe-store/internal/catalog/domain"
	"github.com/dwikikusuma/shoe-store/internal/storage/memory"
	"github.com/dwikikusuma/shoe-store/internal/wishlist/app"
	"github.com/dwikikusuma/shoe-store/pkg/apperr"
)

func TestWishlist(t *testing.T) {
	ctx := context.Background()
	db := memory.NewDB()
	products := memory.NewProductRepo(db)
	svc := app.NewService(memory.NewWishlistRepo(db), catalogapp.NewService(products))

	if _, err := products.Create(ctx, catalogdomain.Product{ID: "p1", Name: "Runner", Price: 5000, Stock: 1, Category: catalogdomain.CategoryWomen}); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	t.Run("empty", func(t *testing.T) {
		w, err := svc.Get(ctx, "u1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if len(w.Items) != 0 {
			t.Fatalf("expected empty wishlist, got %+v", w.Items)
		}
	})

	t.Run("add twice keeps one entry", func(t *testing.T) {
		if _, err := svc.Add(ctx, "u1", "p1"); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		w, err := svc.Add(ctx, "u1", "p1")
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if len(w.Items) != 1 || w.Items[0].Name != "Runner" || w.Items[0].UnitAmount != 5000 {
			t.Fatalf("unexpected wishlist: %+v", w.Items)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		if _, err := svc.Add(ctx, "u1", "missing"); !apperr.IsNotFound(err) {
			t.Fatalf("expected NotFound, got %v", err)
		}
	})

	t.Run("remove", func(t *testing.T) {
		w, err := svc.Remove(ctx, "u1", "p1")
		if err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if len(w.Items) != 0 {
			t.Fatalf("expected empty wishlist, got %+v", w.Items)
		}
	})
}
