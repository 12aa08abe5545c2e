// Package cart holds the shopper's selected products until checkout.
package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/marketly/storefront/internal/core/domain"
)

// ProductGetter is the slice of the catalog Hydrate needs.
type ProductGetter interface {
	GetProduct(ctx context.Context, id string) *domain.Product
}

// Cart is a product-keyed collection of entries. Quantities are always >= 1.
// The zero value is an empty, ready to use cart.
type Cart struct {
	mu    sync.Mutex
	items []domain.CartItem
}

// New returns an empty cart.
func New() *Cart { return &Cart{} }

func clamp(qty int) int {
	if qty < 1 {
		return 1
	}
	return qty
}

// AddItem merges item into the cart: an existing entry for the same product
// grows by item.Quantity, otherwise the item is appended. A fresher product
// snapshot replaces the stored one.
func (c *Cart) AddItem(item domain.CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	qty := clamp(item.Quantity)
	for i := range c.items {
		if c.items[i].ProductID == item.ProductID {
			c.items[i].Quantity += qty
			if item.Product != nil {
				c.items[i].Product = item.Product
			}
			return
		}
	}
	item.Quantity = qty
	c.items = append(c.items, item)
}

// UpdateQuantity sets the quantity of productID, clamped to at least 1.
// Unknown products are ignored.
func (c *Cart) UpdateQuantity(productID string, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity = clamp(qty)
			return
		}
	}
}

// RemoveItem drops the entry for productID entirely.
func (c *Cart) RemoveItem(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.items[:0]
	for _, it := range c.items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.items = kept
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

// Items returns a copy of the entries in insertion order.
func (c *Cart) Items() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len is the number of distinct products.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Total is Σ snapshot price × quantity. Entries without a snapshot count as
// zero.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// Hydrate refreshes every entry's product snapshot from the catalog. Entries
// whose product no longer exists are dropped and their ids returned.
func (c *Cart) Hydrate(ctx context.Context, catalog ProductGetter) []string {
	ids := make([]string, 0)
	for _, it := range c.Items() {
		ids = append(ids, it.ProductID)
	}

	fresh := make(map[string]*domain.Product, len(ids))
	for _, id := range ids {
		fresh[id] = catalog.GetProduct(ctx, id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var gone []string
	kept := c.items[:0]
	for _, it := range c.items {
		p, looked := fresh[it.ProductID]
		if looked && p == nil {
			gone = append(gone, it.ProductID)
			continue
		}
		if p != nil {
			it.Product = p
		}
		kept = append(kept, it)
	}
	c.items = kept
	return gone
}
