package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketly/storefront/internal/core/attribution"
	"github.com/marketly/storefront/internal/core/domain"
	"github.com/marketly/storefront/internal/core/ports"
	"github.com/marketly/storefront/internal/pkg/metrics"
)

// orderBackend is the slice of the contract order views need: the orders and
// the sellers' current catalogs.
type orderBackend interface {
	ports.OrderAPI
	ListMyProducts(ctx context.Context, sellerID string) []domain.Product
}

// OrderService serves order history and applies status changes.
type OrderService struct {
	backend orderBackend
	events  ports.EventSink
	log     zerolog.Logger
}

func NewOrderService(backend orderBackend, events ports.EventSink, log zerolog.Logger) *OrderService {
	return &OrderService{backend: backend, events: events, log: log}
}

// CustomerOrders returns the customer's orders, newest first, with every line.
func (s *OrderService) CustomerOrders(ctx context.Context, customer *domain.User) ([]attribution.OrderView, error) {
	if customer == nil {
		return nil, domain.ErrNoSession
	}
	orders := s.backend.ListMyOrders(ctx, customer.ID)
	views := make([]attribution.OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, attribution.CustomerView(o))
	}
	return views, nil
}

// SellerOrders returns orders holding the seller's products, each restricted
// to the seller's lines.
func (s *OrderService) SellerOrders(ctx context.Context, seller *domain.User) ([]attribution.OrderView, error) {
	if err := requireSeller(seller); err != nil {
		return nil, err
	}
	orders := s.backend.ListSellerOrders(ctx, seller.ID)
	owners := s.ownedBy(ctx, seller.ID)
	views := make([]attribution.OrderView, 0, len(orders))
	for _, o := range orders {
		v := attribution.SellerView(o, seller.ID, owners)
		if len(v.Items) == 0 {
			s.log.Debug().Str("order_id", o.ID).Str("seller_id", seller.ID).Msg("no attributable lines, order skipped")
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

// ownedBy resolves lines without a seller id against sellerID's current
// catalog. Lines owned by anyone else never resolve.
func (s *OrderService) ownedBy(ctx context.Context, sellerID string) attribution.OwnerLookup {
	owned := make(map[string]struct{})
	for _, p := range s.backend.ListMyProducts(ctx, sellerID) {
		owned[p.ID] = struct{}{}
	}
	return func(productID string) (string, bool) {
		if _, ok := owned[productID]; ok {
			return sellerID, true
		}
		return "", false
	}
}

// ChangeStatus moves an order the seller takes part in to status. Only
// pending→shipped|cancelled and shipped→delivered|cancelled are accepted.
func (s *OrderService) ChangeStatus(ctx context.Context, seller *domain.User, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if err := requireSeller(seller); err != nil {
		return nil, fmt.Errorf("change status: %w", err)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("change status: %w", domain.ErrInvalidStatus)
	}

	current := s.findSellerOrder(ctx, seller.ID, orderID)
	if current == nil {
		return nil, fmt.Errorf("change status: %w: %s", domain.ErrOrderNotFound, orderID)
	}
	if !current.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("change status: %w (from %s to %s)", domain.ErrInvalidTransition, current.Status, status)
	}

	order, err := s.backend.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, fmt.Errorf("change status: %w", err)
	}

	metrics.OrderStatusChangesTotal.WithLabelValues(string(status)).Inc()
	s.log.Info().
		Str("order_id", orderID).
		Str("from", string(current.Status)).
		Str("to", string(status)).
		Str("seller_id", seller.ID).
		Msg("order status changed")

	if s.events != nil {
		s.events.Enqueue(domain.OrderEvent{
			Type:        domain.EventOrderStatusChanged,
			OrderID:     order.ID,
			CustomerID:  order.CustomerID,
			Status:      order.Status,
			TotalAmount: order.TotalAmount,
			SellerIDs:   attribution.SellerIDs(attribution.ParseItems(order.Items)),
			OccurredAt:  time.Now().UTC(),
		})
	}
	return order, nil
}

func (s *OrderService) findSellerOrder(ctx context.Context, sellerID, orderID string) *domain.Order {
	for _, o := range s.backend.ListSellerOrders(ctx, sellerID) {
		if o.ID == orderID {
			return &o
		}
	}
	return nil
}
