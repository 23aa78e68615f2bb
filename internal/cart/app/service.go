package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/dwikikusuma/shoe-store/internal/cart/domain"
	"github.com/dwikikusuma/shoe-store/pkg/apperr"
)

var errQuantityLimit = apperr.Validation("quantity", fmt.Sprintf("must not exceed %d", domain.MaxLineQuantity))

type Service struct {
	repo     CartRepo
	products ProductReader
}

func NewService(repo CartRepo, products ProductReader) *Service {
	return &Service{
		repo:     repo,
		products: products,
	}
}

// GetCart returns the user's cart, or an empty one when none exists yet.
func (s *Service) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if apperr.IsNotFound(err) {
		return domain.Cart{UserID: userID, Items: []domain.CartItem{}}, nil
	}
	return cart, err
}

func (s *Service) GetOrCreate(ctx context.Context, userID string) (domain.Cart, error) {
	return s.repo.GetOrCreate(ctx, userID)
}

// AddItem adds quantity to the line for productID, creating the cart and the
// line on demand. A new line snapshots the product's current name and price.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int32) (domain.Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Cart{}, apperr.Validation("productId", "is required")
	}
	if quantity <= 0 {
		return domain.Cart{}, apperr.Validation("quantity", "must be a positive integer")
	}
	if quantity > domain.MaxLineQuantity {
		return domain.Cart{}, errQuantityLimit
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return domain.Cart{}, err
	}

	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}

	err = s.repo.AddItem(ctx, cart.ID, domain.CartItem{
		ProductID:  product.ID,
		Name:       product.Name,
		UnitAmount: product.Price,
		Quantity:   quantity,
	})
	if err != nil {
		return domain.Cart{}, err
	}
	return s.repo.Get(ctx, userID)
}

// SetItemQuantity overwrites a line's quantity; zero removes the line.
func (s *Service) SetItemQuantity(ctx context.Context, userID, productID string, quantity int32) (domain.Cart, error) {
	if quantity < 0 {
		return domain.Cart{}, apperr.Validation("quantity", "must not be negative")
	}
	if quantity > domain.MaxLineQuantity {
		return domain.Cart{}, errQuantityLimit
	}
	return s.mutate(ctx, userID, productID, func(cartID string) (bool, error) {
		if quantity == 0 {
			return s.repo.RemoveItem(ctx, cartID, productID)
		}
		return s.repo.SetItemQuantity(ctx, cartID, productID, quantity)
	})
}

func (s *Service) IncrementItem(ctx context.Context, userID, productID string) (domain.Cart, error) {
	return s.mutate(ctx, userID, productID, func(cartID string) (bool, error) {
		return s.repo.AdjustQuantity(ctx, cartID, productID, 1)
	})
}

// DecrementItem removes the line when its quantity is 1.
func (s *Service) DecrementItem(ctx context.Context, userID, productID string) (domain.Cart, error) {
	return s.mutate(ctx, userID, productID, func(cartID string) (bool, error) {
		return s.repo.AdjustQuantity(ctx, cartID, productID, -1)
	})
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (domain.Cart, error) {
	return s.mutate(ctx, userID, productID, func(cartID string) (bool, error) {
		return s.repo.RemoveItem(ctx, cartID, productID)
	})
}

func (s *Service) Clear(ctx context.Context, userID string) (domain.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	if err := s.repo.Clear(ctx, cart.ID); err != nil {
		return domain.Cart{}, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *Service) mutate(ctx context.Context, userID, productID string, fn func(cartID string) (bool, error)) (domain.Cart, error) {
	if strings.TrimSpace(productID) == "" {
		return domain.Cart{}, apperr.Validation("productId", "is required")
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}

	found, err := fn(cart.ID)
	if err != nil {
		return domain.Cart{}, err
	}
	if !found {
		return domain.Cart{}, apperr.NotFound("cart item", productID)
	}
	return s.repo.Get(ctx, userID)
}
