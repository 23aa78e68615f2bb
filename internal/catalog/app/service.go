package app

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/dwikikusuma/shoe-store/internal/catalog/domain"
	"github.com/dwikikusuma/shoe-store/pkg/apperr"
)

type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Stock       int32    `json:"stock"`
	Category    string   `json:"category"`
	Brand       string   `json:"brand"`
	Tags        []string `json:"tags"`
	IsFeatured  bool     `json:"isFeatured"`
}

type Service struct {
	repo ProductRepo
}

func NewService(repo ProductRepo) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	p, err := productFromInput(in)
	if err != nil {
		return domain.Product{}, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, apperr.Validation("id", "is required")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, f domain.ListFilter) ([]domain.Product, string, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	f.Query = strings.TrimSpace(f.Query)
	f.Cursor = strings.TrimSpace(f.Cursor)
	return s.repo.List(ctx, f)
}

// UpdateProduct replaces every editable field. Stock may be set explicitly
// here; checkout and cancellation adjust it only through the inventory
// primitives.
func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, apperr.Validation("id", "is required")
	}
	p, err := productFromInput(in)
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = id
	return s.repo.Update(ctx, p)
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation("id", "is required")
	}
	return s.repo.Delete(ctx, id)
}

func productFromInput(in ProductInput) (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Product{}, apperr.Validation("name", "is required")
	}
	if in.Price < 0 {
		return domain.Product{}, apperr.Validation("price", "must not be negative")
	}
	if in.Stock < 0 {
		return domain.Product{}, apperr.Validation("stock", "must not be negative")
	}
	if utf8.RuneCountInString(in.Description) > domain.MaxDescriptionLength {
		return domain.Product{}, apperr.Validation("description", "must be at most 1000 characters")
	}
	category, ok := domain.ParseCategory(in.Category)
	if !ok {
		return domain.Product{}, apperr.Validation("category", "must be one of men, women, kids, sports, casual, formal")
	}

	brand := strings.TrimSpace(in.Brand)
	if brand == "" {
		brand = domain.DefaultBrand
	}

	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	return domain.Product{
		Name:        name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    category,
		Brand:       brand,
		Tags:        tags,
		IsFeatured:  in.IsFeatured,
	}, nil
}
