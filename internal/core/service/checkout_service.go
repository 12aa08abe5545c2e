package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketly/storefront/internal/core/attribution"
	"github.com/marketly/storefront/internal/core/cart"
	"github.com/marketly/storefront/internal/core/domain"
	"github.com/marketly/storefront/internal/core/ports"
	"github.com/marketly/storefront/internal/pkg/metrics"
)

// CheckoutBackend is the slice of the contract checkout needs.
type CheckoutBackend interface {
	GetProduct(ctx context.Context, id string) *domain.Product
	CreateOrder(ctx context.Context, in domain.NewOrder) (*domain.Order, error)
	Name() string
}

// CheckoutService turns the cart into an order.
type CheckoutService struct {
	backend CheckoutBackend
	cart    *cart.Cart
	events  ports.EventSink
	log     zerolog.Logger
}

func NewCheckoutService(backend CheckoutBackend, c *cart.Cart, events ports.EventSink, log zerolog.Logger) *CheckoutService {
	return &CheckoutService{backend: backend, cart: c, events: events, log: log}
}

// PlaceOrder snapshots every cart line, creates a pending order for customer
// and clears the cart. The cart is left untouched when anything fails.
func (s *CheckoutService) PlaceOrder(ctx context.Context, customer *domain.User, address domain.ShippingAddress) (*domain.Order, error) {
	if customer == nil {
		metrics.CheckoutFailuresTotal.WithLabelValues("no_session").Inc()
		return nil, fmt.Errorf("place order: %w", domain.ErrNoSession)
	}
	if err := checkStruct(address); err != nil {
		metrics.CheckoutFailuresTotal.WithLabelValues("invalid_address").Inc()
		return nil, fmt.Errorf("place order: %w", err)
	}

	entries := s.cart.Items()
	if len(entries) == 0 {
		metrics.CheckoutFailuresTotal.WithLabelValues("empty_cart").Inc()
		return nil, fmt.Errorf("place order: %w", domain.ErrEmptyCart)
	}

	items := make([]domain.LineItem, 0, len(entries))
	for _, e := range entries {
		if e.Product == nil {
			e.Product = s.backend.GetProduct(ctx, e.ProductID)
		}
		li, ok := attribution.Snapshot(e)
		if !ok {
			metrics.CheckoutFailuresTotal.WithLabelValues("unavailable_product").Inc()
			return nil, fmt.Errorf("place order: %w", &domain.ValidationError{Field: "cart", Reason: "product unavailable: " + e.ProductID})
		}
		items = append(items, li)
	}

	raw, err := attribution.EncodeItems(items)
	if err != nil {
		metrics.CheckoutFailuresTotal.WithLabelValues("encode").Inc()
		return nil, fmt.Errorf("place order: encode items: %w", err)
	}

	order, err := s.backend.CreateOrder(ctx, domain.NewOrder{
		CustomerID:      customer.ID,
		TotalAmount:     attribution.Total(items),
		Status:          domain.OrderPending,
		Items:           raw,
		ShippingAddress: address.String(),
	})
	if err != nil {
		metrics.CheckoutFailuresTotal.WithLabelValues("create_order").Inc()
		s.log.Error().Err(err).Str("customer_id", customer.ID).Msg("failed to create order")
		return nil, fmt.Errorf("place order: %w", err)
	}

	s.cart.Clear()
	metrics.OrdersPlacedTotal.WithLabelValues(s.backend.Name()).Inc()
	s.log.Info().
		Str("order_id", order.ID).
		Str("customer_id", customer.ID).
		Str("total", order.TotalAmount.String()).
		Int("lines", len(items)).
		Msg("order placed")

	if s.events != nil {
		s.events.Enqueue(domain.OrderEvent{
			Type:        domain.EventOrderPlaced,
			OrderID:     order.ID,
			CustomerID:  order.CustomerID,
			Status:      order.Status,
			TotalAmount: order.TotalAmount,
			SellerIDs:   attribution.SellerIDs(items),
			OccurredAt:  time.Now().UTC(),
		})
	}
	return order, nil
}
