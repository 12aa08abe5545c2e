// Package attribution decodes the serialized line-item list embedded in each
// order and answers which of those items belong to a given seller.
//
// The list is a versioned sub-schema. Version 1 is a bare JSON array of
//
//	{"productId": "...", "quantity": 2, "price": 10.5, "name": "...", "sellerId": "..."}
//
// Older orders may carry a nested "product" snapshot instead of, or in
// addition to, the flat fields. Decoding never fails: a document that is not
// a JSON array of item objects decodes to an empty item set, and an item that
// breaks the schema is dropped on its own.
package attribution

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/marketly/storefront/internal/core/domain"
)

// SchemaVersion is the version written by EncodeItems.
const SchemaVersion = 1

type wireProduct struct {
	SellerID  string      `json:"sellerId,omitempty"`
	Name      string      `json:"name,omitempty"`
	Price     json.Number `json:"price,omitempty"`
	ImageURLs []string    `json:"imageUrls,omitempty"`
}

type wireItem struct {
	ProductID string       `json:"productId"`
	Quantity  int          `json:"quantity"`
	Price     json.Number  `json:"price,omitempty"`
	Name      string       `json:"name,omitempty"`
	SellerID  string       `json:"sellerId,omitempty"`
	Product   *wireProduct `json:"product,omitempty"`
}

// ParseItems decodes raw into line items. Malformed JSON or a non-array
// document yields an empty set. Items without a product id, with a quantity
// below one or with a negative price are skipped; the rest are kept.
func ParseItems(raw string) []domain.LineItem {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw[0] != '[' {
		return nil
	}

	var wire []wireItem
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil
	}

	items := make([]domain.LineItem, 0, len(wire))
	for _, w := range wire {
		item, ok := fromWire(w)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items
}

func fromWire(w wireItem) (domain.LineItem, bool) {
	if strings.TrimSpace(w.ProductID) == "" || w.Quantity < 1 {
		return domain.LineItem{}, false
	}

	item := domain.LineItem{
		ProductID: w.ProductID,
		Quantity:  w.Quantity,
		Name:      w.Name,
		SellerID:  w.SellerID,
	}

	price, ok := parsePrice(w.Price)
	if !ok {
		return domain.LineItem{}, false
	}
	item.Price = price

	if w.Product != nil {
		snap := &domain.ProductSnapshot{
			SellerID:  w.Product.SellerID,
			Name:      w.Product.Name,
			ImageURLs: w.Product.ImageURLs,
		}
		if w.Product.Price != "" {
			nested, ok := parsePrice(w.Product.Price)
			if !ok {
				return domain.LineItem{}, false
			}
			snap.Price = &nested
			// The flat price wins; the nested one only fills a gap.
			if w.Price == "" {
				item.Price = nested
			}
		}
		if item.Name == "" {
			item.Name = snap.Name
		}
		item.Product = snap
	}

	return item, true
}

func parsePrice(n json.Number) (decimal.Decimal, bool) {
	if n == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// EncodeItems serializes items in the current schema version. Nested product
// snapshots are not written; the flat fields carry everything.
func EncodeItems(items []domain.LineItem) (string, error) {
	wire := make([]wireItem, 0, len(items))
	for _, it := range items {
		wire = append(wire, wireItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     json.Number(it.Price.String()),
			Name:      it.Name,
			SellerID:  Seller(it),
		})
	}
	b, err := json.Marshal(wire)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Snapshot freezes a hydrated cart entry into a line item. It reports false
// when the entry has no product snapshot to freeze.
func Snapshot(ci domain.CartItem) (domain.LineItem, bool) {
	if ci.Product == nil {
		return domain.LineItem{}, false
	}
	qty := ci.Quantity
	if qty < 1 {
		qty = 1
	}
	return domain.LineItem{
		ProductID: ci.ProductID,
		Quantity:  qty,
		Price:     ci.Product.Price,
		Name:      ci.Product.Name,
		SellerID:  ci.Product.SellerID,
	}, true
}
