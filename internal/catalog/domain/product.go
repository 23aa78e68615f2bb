package domain

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryMen    Category = "men"
	CategoryWomen  Category = "women"
	CategoryKids   Category = "kids"
	CategorySports Category = "sports"
	CategoryCasual Category = "casual"
	CategoryFormal Category = "formal"
)

var categories = []Category{CategoryMen, CategoryWomen, CategoryKids, CategorySports, CategoryCasual, CategoryFormal}

func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

const (
	DefaultBrand         = "Generic"
	MaxDescriptionLength = 1000
)

// Product prices are minor currency units.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Stock       int32     `json:"stock"`
	Category    Category  `json:"category"`
	Brand       string    `json:"brand"`
	Tags        []string  `json:"tags"`
	IsFeatured  bool      `json:"isFeatured"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ListFilter struct {
	Query    string
	Category Category
	Featured bool
	Limit    int
	Cursor   string
}
