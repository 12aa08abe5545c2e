package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marketly/storefront/internal/core/attribution"
	"github.com/marketly/storefront/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub backend
// ---------------------------------------------------------------------------

type stubBackend struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	orders   []domain.Order // newest first
	files    []string
	seq      int

	createOrderErr error
	uploadErr      error
}

func newStubBackend(products ...domain.Product) *stubBackend {
	b := &stubBackend{products: make(map[string]*domain.Product)}
	for _, p := range products {
		p := p
		b.products[p.ID] = &p
	}
	return b
}

func (b *stubBackend) Name() string { return "stub" }

func (b *stubBackend) nextID(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s%d", prefix, b.seq)
}

func (b *stubBackend) Login(context.Context, string, string) (*domain.User, error) {
	return nil, domain.ErrInvalidCredentials
}

func (b *stubBackend) Register(context.Context, string, string, string, domain.Role) (*domain.User, error) {
	return nil, domain.ErrInvalidCredentials
}

func (b *stubBackend) Logout(context.Context) {}

func (b *stubBackend) CurrentUser(context.Context) *domain.User { return nil }

func (b *stubBackend) UpdateRole(context.Context, string, domain.Role) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (b *stubBackend) ListProducts(_ context.Context, f domain.ProductFilter) []domain.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []domain.Product{}
	for _, p := range b.products {
		if f.Matches(*p) {
			out = append(out, *p)
		}
	}
	return out
}

func (b *stubBackend) GetProduct(_ context.Context, id string) *domain.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.products[id]
	if !ok {
		return nil
	}
	clone := *p
	return &clone
}

func (b *stubBackend) CreateProduct(_ context.Context, in domain.NewProduct) (*domain.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := domain.Product{
		ID: b.nextID("p"), Name: in.Name, Description: in.Description, Price: in.Price,
		Category: in.Category, ImageURLs: in.ImageURLs, SellerID: in.SellerID, Stock: in.Stock,
	}
	b.products[p.ID] = &p
	clone := p
	return &clone, nil
}

func (b *stubBackend) UpdateProduct(_ context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	updated := patch.Apply(*p)
	b.products[id] = &updated
	clone := updated
	return &clone, nil
}

func (b *stubBackend) DeleteProduct(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.products, id)
	return nil
}

func (b *stubBackend) ListMyProducts(_ context.Context, sellerID string) []domain.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []domain.Product{}
	for _, p := range b.products {
		if p.SellerID == sellerID {
			out = append(out, *p)
		}
	}
	return out
}

func (b *stubBackend) CreateOrder(_ context.Context, in domain.NewOrder) (*domain.Order, error) {
	if b.createOrderErr != nil {
		return nil, b.createOrderErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now().UTC()
	o := domain.Order{
		ID: b.nextID("o"), CustomerID: in.CustomerID, TotalAmount: in.TotalAmount, Status: in.Status,
		Items: in.Items, ShippingAddress: in.ShippingAddress, CreatedAt: now, UpdatedAt: now,
	}
	b.orders = append([]domain.Order{o}, b.orders...)
	return &o, nil
}

func (b *stubBackend) ListMyOrders(_ context.Context, customerID string) []domain.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []domain.Order{}
	for _, o := range b.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out
}

func (b *stubBackend) ListSellerOrders(_ context.Context, sellerID string) []domain.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	lookup := func(productID string) (string, bool) {
		p, ok := b.products[productID]
		if !ok {
			return "", false
		}
		return p.SellerID, true
	}
	return attribution.FilterOrders(b.orders, sellerID, lookup)
}

func (b *stubBackend) UpdateOrderStatus(_ context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.orders {
		if b.orders[i].ID == orderID {
			b.orders[i].Status = status
			o := b.orders[i]
			return &o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (b *stubBackend) UploadFile(_ context.Context, _ []byte, _ string) (string, error) {
	if b.uploadErr != nil {
		return "", b.uploadErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	ref := b.nextID("f")
	b.files = append(b.files, ref)
	return ref, nil
}

func (b *stubBackend) PreviewURL(ref string) string { return "https://files.test/" + ref }

func (b *stubBackend) DeleteFile(context.Context, string) error { return nil }

// recordingSink collects enqueued events.
type recordingSink struct {
	mu     sync.Mutex
	events []domain.OrderEvent
}

func (s *recordingSink) Enqueue(e domain.OrderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}
