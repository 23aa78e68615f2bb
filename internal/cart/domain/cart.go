package domain

import "time"

// MaxLineQuantity bounds the quantity of a single cart line.
const MaxLineQuantity int32 = 999

// CartItem keeps the product name and unit price as they were when the item
// was first added; that snapshot is what checkout charges.
type CartItem struct {
	ProductID  string    `json:"productId"`
	Name       string    `json:"name"`
	UnitAmount int64     `json:"price"`
	Quantity   int32     `json:"quantity"`
	AddedAt    time.Time `json:"addedAt"`
}

func (i CartItem) LineTotal() int64 {
	return i.UnitAmount * int64(i.Quantity)
}

type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (c Cart) Total() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.LineTotal()
	}
	return total
}

func (c Cart) Find(productID string) (CartItem, bool) {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return CartItem{}, false
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
