package app

import (
	"fmt"

	"google.golang.org/grpc/codes"

	"github.com/dwikikusuma/shoe-store/pkg/apperr"
)

var ErrEmptyCart = apperr.New(codes.FailedPrecondition, "EMPTY_CART", "cart is empty")

// ProductNotFoundError names the cart line whose product left the catalog,
// using the name captured in the cart.
type ProductNotFoundError struct {
	ProductID string
	Name      string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %q is no longer available", e.Name)
}

func (e *ProductNotFoundError) Code() codes.Code { return codes.NotFound }
func (e *ProductNotFoundError) Reason() string   { return "PRODUCT_NOT_FOUND" }

func (e *ProductNotFoundError) Details() map[string]any {
	return map[string]any{"productId": e.ProductID, "productName": e.Name}
}

type InsufficientStockError struct {
	ProductID string
	Name      string
	Available int32
	Requested int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: available %d, requested %d", e.Name, e.Available, e.Requested)
}

func (e *InsufficientStockError) Code() codes.Code { return codes.FailedPrecondition }
func (e *InsufficientStockError) Reason() string   { return "INSUFFICIENT_STOCK" }

func (e *InsufficientStockError) Details() map[string]any {
	return map[string]any{
		"productId":   e.ProductID,
		"productName": e.Name,
		"available":   e.Available,
		"requested":   e.Requested,
	}
}

// StockRaceError means the conditional decrement lost to a concurrent
// checkout after the stock check passed. The whole checkout may be retried.
type StockRaceError struct {
	ProductID string
	Name      string
}

func (e *StockRaceError) Error() string {
	return fmt.Sprintf("stock for %q may have changed, retry", e.Name)
}

func (e *StockRaceError) Code() codes.Code { return codes.Aborted }
func (e *StockRaceError) Reason() string   { return "STOCK_CHANGED" }
func (e *StockRaceError) Retryable() bool  { return true }

func (e *StockRaceError) Details() map[string]any {
	return map[string]any{"productId": e.ProductID, "productName": e.Name}
}
