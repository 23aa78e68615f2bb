package domain

import "time"

type Item struct {
	ProductID  string    `json:"productId"`
	Name       string    `json:"name"`
	UnitAmount int64     `json:"price"`
	AddedAt    time.Time `json:"addedAt"`
}

type Wishlist struct {
	UserID string `json:"userId"`
	Items  []Item `json:"items"`
}
