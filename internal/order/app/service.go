package app

import (
	"context"
	"log/slog"
	"strings"

	"google.golang.org/grpc/codes"

	"github.com/dwikikusuma/shoe-store/internal/order/domain"
	"github.com/dwikikusuma/shoe-store/pkg/apperr"
	"github.com/dwikikusuma/shoe-store/pkg/contracts"
)

var ErrPaymentSettled = apperr.New(codes.FailedPrecondition, "PAYMENT_SETTLED", "order payment is already settled")

var ErrOrderCancelled = apperr.New(codes.FailedPrecondition, "ORDER_CANCELLED", "order is cancelled")

type Service struct {
	uow    UnitOfWork
	orders OrderReader
	log    *slog.Logger
}

func NewService(uow UnitOfWork, orders OrderReader, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{uow: uow, orders: orders, log: log}
}

// GetOrder returns the order when the caller owns it or is an admin.
func (s *Service) GetOrder(ctx context.Context, userID string, isAdmin bool, id string) (domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Order{}, apperr.Validation("id", "is required")
	}
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !isAdmin && o.UserID != userID {
		return domain.Order{}, apperr.ErrForbidden
	}
	return o, nil
}

func (s *Service) ListMyOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

// UpdateStatus applies an admin status change. Cancelling restores the stock
// of every snapshot item in the same unit of work as the status write, and the
// same-status no-op guarantees a second cancel restores nothing.
func (s *Service) UpdateStatus(ctx context.Context, id, newStatus string) (domain.Order, error) {
	next, ok := domain.ParseStatus(newStatus)
	if !ok {
		return domain.Order{}, apperr.Validation("status", "must be one of processing, shipped, delivered, cancelled")
	}

	var out domain.Order
	err := s.uow.Do(ctx, func(ctx context.Context, st Stores) error {
		o, err := st.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		changed, err := o.Transition(next)
		if err != nil {
			return err
		}
		if !changed {
			out = o
			return nil
		}

		if next == domain.StatusCancelled {
			if err := s.restoreStock(ctx, st, o); err != nil {
				return err
			}
		}

		updated, err := st.Orders.UpdateStatus(ctx, id, next)
		if err != nil {
			return err
		}

		evtType := contracts.EventOrderStatusChanged
		if next == domain.StatusCancelled {
			evtType = contracts.EventOrderCancelled
		}
		evt := contracts.NewEvent(evtType, o.ID, o.UserID, map[string]any{
			"from": string(o.Status),
			"to":   string(next),
		})
		if err := st.Outbox.Append(ctx, evt); err != nil {
			return err
		}

		out = updated
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return out, nil
}

func (s *Service) restoreStock(ctx context.Context, st Stores, o domain.Order) error {
	for _, it := range o.Items {
		found, err := st.Inventory.Increment(ctx, it.ProductID, it.Quantity)
		if err != nil {
			return err
		}
		if !found {
			s.log.Warn("stock restore skipped, product no longer exists",
				slog.String("order_id", o.ID),
				slog.String("product_id", it.ProductID),
				slog.Int("quantity", int(it.Quantity)),
			)
			continue
		}
		s.log.Info("stock restored",
			slog.String("order_id", o.ID),
			slog.String("product_id", it.ProductID),
			slog.Int("quantity", int(it.Quantity)),
		)
	}
	return nil
}

// RecordPayment stores the gateway outcome of a capture. Paid orders and
// cancelled orders are never changed.
func (s *Service) RecordPayment(ctx context.Context, id string, paid bool, reference string) (domain.Order, error) {
	ps := domain.PaymentFailed
	evtType := contracts.EventPaymentFailed
	if paid {
		ps = domain.PaymentPaid
		evtType = contracts.EventPaymentCaptured
	}

	var out domain.Order
	err := s.uow.Do(ctx, func(ctx context.Context, st Stores) error {
		o, err := st.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := CheckPayable(o); err != nil {
			return err
		}

		updated, err := st.Orders.UpdatePayment(ctx, id, ps, reference)
		if err != nil {
			return err
		}

		evt := contracts.NewEvent(evtType, o.ID, o.UserID, map[string]any{
			"reference": reference,
			"amount":    o.TotalAmount,
			"currency":  o.Currency,
		})
		if err := st.Outbox.Append(ctx, evt); err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.log.Info("payment recorded",
		slog.String("order_id", out.ID),
		slog.String("payment_status", string(out.PaymentStatus)),
	)
	return out, nil
}

// CheckPayable reports whether a capture may be attempted for o.
func CheckPayable(o domain.Order) error {
	if o.Status == domain.StatusCancelled {
		return ErrOrderCancelled
	}
	if o.PaymentStatus == domain.PaymentPaid {
		return ErrPaymentSettled
	}
	return nil
}
