package app

import (
	"context"
	"strings"

	"github.com/dwikikusuma/shoe-store/internal/wishlist/domain"
	"github.com/dwikikusuma/shoe-store/pkg/apperr"
)

type Service struct {
	repo     WishlistRepo
	products ProductReader
}

func NewService(repo WishlistRepo, products ProductReader) *Service {
	return &Service{repo: repo, products: products}
}

func (s *Service) Get(ctx context.Context, userID string) (domain.Wishlist, error) {
	return s.repo.Get(ctx, userID)
}

func (s *Service) Add(ctx context.Context, userID, productID string) (domain.Wishlist, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Wishlist{}, apperr.Validation("productId", "is required")
	}

	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return domain.Wishlist{}, err
	}

	if err := s.repo.Add(ctx, userID, domain.Item{ProductID: p.ID, Name: p.Name, UnitAmount: p.Price}); err != nil {
		return domain.Wishlist{}, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *Service) Remove(ctx context.Context, userID, productID string) (domain.Wishlist, error) {
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		return domain.Wishlist{}, err
	}
	return s.repo.Get(ctx, userID)
}
