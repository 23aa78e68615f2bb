package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"

	"github.com/dwikikusuma/shoe-store/internal/checkout/domain"
	orderdomain "github.com/dwikikusuma/shoe-store/internal/order/domain"
	"github.com/dwikikusuma/shoe-store/pkg/apperr"
	"github.com/dwikikusuma/shoe-store/pkg/contracts"
)

type Options struct {
	Currency      string
	MaxConcurrent int
	Logger        *slog.Logger
}

type Service struct {
	uow     UnitOfWork
	Cart    CartReader
	Catalog CatalogReader

	currency      string
	maxConcurrent int
	log           *slog.Logger
}

func NewService(uow UnitOfWork, cart CartReader, catalog CatalogReader, opts Options) *Service {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 10
	}
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Service{
		uow:           uow,
		Cart:          cart,
		Catalog:       catalog,
		currency:      opts.Currency,
		maxConcurrent: opts.MaxConcurrent,
		log:           opts.Logger,
	}
}

// PlaceOrder turns the caller's cart into an order. Stock decrements, the
// order insert, the cart clear and the order.created event commit together or
// not at all. Input is validated before any store is touched.
func (s *Service) PlaceOrder(ctx context.Context, userID string, req PlaceOrderRequest) (orderdomain.Order, error) {
	req, err := req.Validate()
	if err != nil {
		s.reject(userID, err)
		return orderdomain.Order{}, err
	}

	var order orderdomain.Order
	err = s.uow.Do(ctx, func(ctx context.Context, st Stores) error {
		cart, err := st.Carts.GetForUpdate(ctx, userID)
		if apperr.IsNotFound(err) {
			return ErrEmptyCart
		}
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if cart.IsEmpty() {
			return ErrEmptyCart
		}

		ids := make([]string, 0, len(cart.Items))
		for _, it := range cart.Items {
			ids = append(ids, it.ProductID)
		}
		products, err := st.Inventory.GetMany(ctx, ids)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}

		for _, it := range cart.Items {
			if it.Quantity < 1 {
				return invalidLineQuantity(it.ProductID)
			}
			p, ok := products[it.ProductID]
			if !ok {
				return &ProductNotFoundError{ProductID: it.ProductID, Name: it.Name}
			}
			if p.Stock < it.Quantity {
				return &InsufficientStockError{ProductID: it.ProductID, Name: p.Name, Available: p.Stock, Requested: it.Quantity}
			}
		}

		// the read above only produces a friendly error; this guard is what
		// prevents overselling
		for _, it := range cart.Items {
			ok, err := st.Inventory.ConditionalDecrement(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &StockRaceError{ProductID: it.ProductID, Name: it.Name}
			}
		}

		items := make([]orderdomain.OrderItem, 0, len(cart.Items))
		for _, it := range cart.Items {
			items = append(items, orderdomain.NewItem(it.ProductID, it.Name, it.UnitAmount, it.Quantity))
		}

		created, err := st.Orders.Create(ctx, orderdomain.Order{
			UserID:          userID,
			Items:           items,
			ShippingAddress: req.shippingAddress(),
			PaymentMethod:   orderdomain.PaymentMethod(req.PaymentMethod),
			PaymentStatus:   orderdomain.PaymentPending,
			Status:          orderdomain.StatusPending,
			Currency:        s.currency,
			TotalAmount:     orderdomain.SumItems(items),
		})
		if err != nil {
			return err
		}

		if err := st.Carts.Clear(ctx, cart.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		evt := contracts.NewEvent(contracts.EventOrderCreated, created.ID, userID, map[string]any{
			"totalAmount":   created.TotalAmount,
			"currency":      created.Currency,
			"paymentMethod": string(created.PaymentMethod),
			"items":         len(created.Items),
		})
		if err := st.Outbox.Append(ctx, evt); err != nil {
			return fmt.Errorf("append outbox: %w", err)
		}

		order = created
		return nil
	})
	if err != nil {
		s.reject(userID, err)
		return orderdomain.Order{}, err
	}

	s.log.Info("order placed",
		slog.String("order_id", order.ID),
		slog.String("user_id", userID),
		slog.Int64("total_amount", order.TotalAmount),
		slog.Int("items", len(order.Items)),
	)
	return order, nil
}

func invalidLineQuantity(productID string) error {
	return apperr.Validation("quantity", "cart line for product "+productID+" has a non-positive quantity")
}

func (s *Service) reject(userID string, err error) {
	code, reason := apperr.CodeOf(err)
	if code == codes.Internal {
		s.log.Error("checkout failed", slog.String("user_id", userID), slog.Any("err", err))
		return
	}
	s.log.Warn("checkout rejected",
		slog.String("user_id", userID),
		slog.String("reason", reason),
		slog.String("err", err.Error()),
	)
}

// Quote prices the cart at its snapshot prices and checks each line against
// the catalog concurrently.
func (s *Service) Quote(ctx context.Context, userID string) (domain.Quote, error) {
	items, err := s.Cart.GetCart(ctx, userID)
	if err != nil {
		return domain.Quote{}, err
	}

	if len(items) == 0 {
		return domain.Quote{}, ErrEmptyCart
	}

	lines := make([]domain.QuoteLine, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range items {
		g.Go(func() error {
			it := items[idx]
			if it.Quantity < 1 {
				return invalidLineQuantity(it.ProductID)
			}

			var available int32
			product, err := s.Catalog.GetProduct(ctx, it.ProductID)
			switch {
			case apperr.IsNotFound(err):
				// removed from the catalog; reported as out of stock
			case err != nil:
				return fmt.Errorf("failed to get product %s: %w", it.ProductID, err)
			default:
				available = product.Stock
			}

			lines[idx] = domain.QuoteLine{
				ProductID: it.ProductID,
				Name:      it.Name,
				Quantity:  it.Quantity,
				UnitPrice: domain.Money{Currency: s.currency, Amount: it.UnitAmount},
				LineTotal: domain.Money{Currency: s.currency, Amount: it.UnitAmount * int64(it.Quantity)},
				Available: available,
				InStock:   available >= it.Quantity,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Quote{}, err
	}

	var totalAmount int64
	purchasable := true
	for _, line := range lines {
		totalAmount += line.LineTotal.Amount
		purchasable = purchasable && line.InStock
	}

	return domain.Quote{
		Lines:       lines,
		Total:       domain.Money{Currency: s.currency, Amount: totalAmount},
		Purchasable: purchasable,
	}, nil
}
