package app

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"

	orderapp "github.com/dwikikusuma/shoe-store/internal/order/app"
	orderdomain "github.com/dwikikusuma/shoe-store/internal/order/domain"
)

// ErrGatewayUnavailable is returned when the gateway could not be reached or
// answered with a server error. Nothing is recorded on the order.
var ErrGatewayUnavailable = &unavailableError{}

type unavailableError struct{}

func (*unavailableError) Error() string    { return "payment gateway unavailable" }
func (*unavailableError) Code() codes.Code { return codes.Unavailable }
func (*unavailableError) Reason() string   { return "PAYMENT_GATEWAY_UNAVAILABLE" }
func (*unavailableError) Retryable() bool  { return true }

// CaptureRequest is one capture attempt. AttemptID is fresh per call so a
// retry after a decline is not answered from the provider's idempotency cache.
type CaptureRequest struct {
	AttemptID string `json:"attemptId"`
	OrderID   string `json:"orderId"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Method    string `json:"method"`
}

type CaptureResult struct {
	Approved  bool
	Reference string
}

type Gateway interface {
	Capture(ctx context.Context, req CaptureRequest) (CaptureResult, error)
}

// Orders is satisfied by *orderapp.Service.
type Orders interface {
	GetOrder(ctx context.Context, userID string, isAdmin bool, id string) (orderdomain.Order, error)
	RecordPayment(ctx context.Context, id string, paid bool, reference string) (orderdomain.Order, error)
}

type Service struct {
	orders  Orders
	gateway Gateway
	log     *slog.Logger
}

func NewService(orders Orders, gateway Gateway, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{orders: orders, gateway: gateway, log: log}
}

// Capture charges the order total through the gateway and records the
// outcome. Only the order owner may pay.
func (s *Service) Capture(ctx context.Context, userID, orderID string) (orderdomain.Order, error) {
	o, err := s.orders.GetOrder(ctx, userID, false, orderID)
	if err != nil {
		return orderdomain.Order{}, err
	}
	if err := orderapp.CheckPayable(o); err != nil {
		return orderdomain.Order{}, err
	}

	req := CaptureRequest{
		AttemptID: uuid.NewString(),
		OrderID:   o.ID,
		Amount:    o.TotalAmount,
		Currency:  o.Currency,
		Method:    string(o.PaymentMethod),
	}
	res, err := s.gateway.Capture(ctx, req)
	if err != nil {
		s.log.Error("payment capture failed",
			slog.String("order_id", o.ID),
			slog.Any("err", err),
		)
		return orderdomain.Order{}, ErrGatewayUnavailable
	}

	if !res.Approved {
		s.log.Warn("payment declined", slog.String("order_id", o.ID))
	}

	recorded, err := s.orders.RecordPayment(ctx, o.ID, res.Approved, res.Reference)
	if err != nil && res.Approved {
		// the provider holds the money; needs manual reconciliation
		s.log.Error("captured payment not recorded",
			slog.String("order_id", o.ID),
			slog.String("attempt_id", req.AttemptID),
			slog.String("reference", res.Reference),
			slog.Int64("amount", o.TotalAmount),
			slog.Any("err", err),
		)
	}
	return recorded, err
}
