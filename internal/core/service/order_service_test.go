package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/marketly/storefront/internal/core/domain"
)

const mixedItems = `[{"productId":"P1","quantity":2,"price":10,"name":"Mug","sellerId":"A"},{"productId":"P3","quantity":1,"price":5,"name":"Pen","sellerId":"B"}]`

func seededOrders(t *testing.T) *stubBackend {
	t.Helper()
	backend := newStubBackend(catalogFixture()...)
	if _, err := backend.CreateOrder(context.Background(), domain.NewOrder{
		CustomerID: "c1", TotalAmount: dec("25"), Status: domain.OrderPending, Items: mixedItems,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return backend
}

func TestSellerOrders_OnlySellersLines(t *testing.T) {
	svc := NewOrderService(seededOrders(t), nil, zerolog.Nop())

	views, err := svc.SellerOrders(context.Background(), sellerA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected one order, got %d", len(views))
	}
	if len(views[0].Items) != 1 || views[0].Items[0].ProductID != "P1" {
		t.Errorf("expected only P1, got %+v", views[0].Items)
	}
	if !views[0].Subtotal.Equal(dec("20")) {
		t.Errorf("expected subtotal 20, got %s", views[0].Subtotal)
	}

	none, _ := svc.SellerOrders(context.Background(), &domain.User{ID: "C", Role: domain.RoleSeller})
	if len(none) != 0 {
		t.Errorf("seller C should see nothing, got %d", len(none))
	}

	if _, err := svc.SellerOrders(context.Background(), customer); !errors.Is(err, domain.ErrAuth) {
		t.Errorf("customers have no seller view, got %v", err)
	}
}

func TestSellerOrders_LegacyLinesResolvedByCurrentOwner(t *testing.T) {
	backend := newStubBackend(catalogFixture()...)
	// P1 carries no seller id; A owns it today. P3 is attributed to B.
	items := `[{"productId":"P1","quantity":1,"price":10,"name":"Mug"},{"productId":"P3","quantity":2,"price":5,"name":"Pen","sellerId":"B"}]`
	if _, err := backend.CreateOrder(context.Background(), domain.NewOrder{
		CustomerID: "c1", TotalAmount: dec("20"), Status: domain.OrderPending, Items: items,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := NewOrderService(backend, nil, zerolog.Nop())

	views, err := svc.SellerOrders(context.Background(), sellerA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected one order, got %d", len(views))
	}
	for _, it := range views[0].Items {
		if it.ProductID != "P1" {
			t.Errorf("seller A was shown line %s", it.ProductID)
		}
	}
	if len(views[0].Items) != 1 || !views[0].Subtotal.Equal(dec("10")) {
		t.Errorf("expected only P1 with subtotal 10, got %+v (subtotal %s)", views[0].Items, views[0].Subtotal)
	}

	viewsB, _ := svc.SellerOrders(context.Background(), &domain.User{ID: "B", Role: domain.RoleSeller})
	if len(viewsB) != 1 || len(viewsB[0].Items) != 1 || viewsB[0].Items[0].ProductID != "P3" {
		t.Errorf("seller B should see only P3, got %+v", viewsB)
	}
}

func TestCustomerOrders_AllLines(t *testing.T) {
	svc := NewOrderService(seededOrders(t), nil, zerolog.Nop())

	views, err := svc.CustomerOrders(context.Background(), customer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 || len(views[0].Items) != 2 {
		t.Fatalf("expected one order with two lines, got %+v", views)
	}
}

func TestChangeStatus_Transitions(t *testing.T) {
	backend := seededOrders(t)
	sink := &recordingSink{}
	svc := NewOrderService(backend, sink, zerolog.Nop())
	orderID := backend.orders[0].ID
	ctx := context.Background()

	if _, err := svc.ChangeStatus(ctx, sellerA, orderID, domain.OrderDelivered); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("pending→delivered must be rejected, got %v", err)
	}

	o, err := svc.ChangeStatus(ctx, sellerA, orderID, domain.OrderShipped)
	if err != nil {
		t.Fatalf("pending→shipped: %v", err)
	}
	if o.Status != domain.OrderShipped {
		t.Errorf("expected shipped, got %s", o.Status)
	}

	if _, err := svc.ChangeStatus(ctx, sellerB, orderID, domain.OrderPending); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("shipped→pending must be rejected, got %v", err)
	}
	if _, err := svc.ChangeStatus(ctx, sellerB, orderID, domain.OrderDelivered); err != nil {
		t.Fatalf("shipped→delivered: %v", err)
	}
	if _, err := svc.ChangeStatus(ctx, sellerA, orderID, domain.OrderCancelled); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("delivered is terminal, got %v", err)
	}

	if len(sink.events) != 2 || sink.events[1].Status != domain.OrderDelivered {
		t.Errorf("expected two status events, got %+v", sink.events)
	}
}

func TestChangeStatus_Rejections(t *testing.T) {
	backend := seededOrders(t)
	svc := NewOrderService(backend, nil, zerolog.Nop())
	orderID := backend.orders[0].ID
	ctx := context.Background()

	if _, err := svc.ChangeStatus(ctx, sellerA, orderID, "lost"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown status: expected validation error, got %v", err)
	}
	if _, err := svc.ChangeStatus(ctx, &domain.User{ID: "C", Role: domain.RoleSeller}, orderID, domain.OrderShipped); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unrelated seller: expected not found, got %v", err)
	}
	if _, err := svc.ChangeStatus(ctx, customer, orderID, domain.OrderShipped); !errors.Is(err, domain.ErrAuth) {
		t.Errorf("customer: expected auth error, got %v", err)
	}
}
