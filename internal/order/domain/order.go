package domain

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus accepts the statuses an admin may set. Pending is only ever
// assigned at creation.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return st, true
	default:
		return "", false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusDelivered
}

type PaymentMethod string

const (
	PaymentStripe PaymentMethod = "stripe"
	PaymentPayPal PaymentMethod = "paypal"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country,omitempty"`
}

type OrderItem struct {
	ProductID       string `json:"productId"`
	Name            string `json:"name"`
	UnitAmount      int64  `json:"price"`
	Quantity        int32  `json:"quantity"`
	LineTotalAmount int64  `json:"lineTotal"`
}

func NewItem(productID, name string, unitAmount int64, quantity int32) OrderItem {
	return OrderItem{
		ProductID:       productID,
		Name:            name,
		UnitAmount:      unitAmount,
		Quantity:        quantity,
		LineTotalAmount: unitAmount * int64(quantity),
	}
}

// Order is immutable after creation apart from Status and the payment fields.
type Order struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId"`
	Items            []OrderItem     `json:"items"`
	ShippingAddress  ShippingAddress `json:"shippingAddress"`
	PaymentMethod    PaymentMethod   `json:"paymentMethod"`
	PaymentStatus    PaymentStatus   `json:"paymentStatus"`
	PaymentReference string          `json:"paymentReference,omitempty"`
	Status           Status          `json:"orderStatus"`
	Currency         string          `json:"currency"`
	TotalAmount      int64           `json:"totalAmount"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func SumItems(items []OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += it.LineTotalAmount
	}
	return total
}

type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Code() codes.Code { return codes.FailedPrecondition }
func (e *InvalidTransitionError) Reason() string   { return "INVALID_TRANSITION" }

func (e *InvalidTransitionError) Details() map[string]any {
	return map[string]any{"from": string(e.From), "to": string(e.To)}
}

// Transition reports whether moving to next changes anything. Re-applying the
// current status is a no-op; leaving a terminal status is rejected.
func (o Order) Transition(next Status) (bool, error) {
	if o.Status == next {
		return false, nil
	}
	if o.Status.IsTerminal() {
		return false, &InvalidTransitionError{From: o.Status, To: next}
	}
	return true, nil
}
