package attribution

import (
	"github.com/shopspring/decimal"

	"github.com/marketly/storefront/internal/core/domain"
)

// OwnerLookup resolves the current owner of a product. It is only consulted
// for items whose snapshot carries no seller id at all.
type OwnerLookup func(productID string) (sellerID string, ok bool)

// Seller returns the seller an item is attributed to. Precedence:
//  1. the nested product snapshot's seller id
//  2. the top-level seller id
//
// An empty result means the item carries no attribution.
func Seller(item domain.LineItem) string {
	if item.Product != nil && item.Product.SellerID != "" {
		return item.Product.SellerID
	}
	return item.SellerID
}

func sellerOf(item domain.LineItem, owners OwnerLookup) string {
	if s := Seller(item); s != "" {
		return s
	}
	if owners == nil {
		return ""
	}
	if s, ok := owners(item.ProductID); ok {
		return s
	}
	return ""
}

// ForSeller keeps the items attributed to sellerID.
func ForSeller(items []domain.LineItem, sellerID string, owners OwnerLookup) []domain.LineItem {
	if sellerID == "" {
		return nil
	}
	var out []domain.LineItem
	for _, it := range items {
		if sellerOf(it, owners) == sellerID {
			out = append(out, it)
		}
	}
	return out
}

// ForCustomer returns every item of the order; customers see all of it.
func ForCustomer(items []domain.LineItem) []domain.LineItem {
	return items
}

// ContainsSeller reports whether the serialized list holds at least one item
// attributed to sellerID.
func ContainsSeller(raw, sellerID string, owners OwnerLookup) bool {
	if sellerID == "" {
		return false
	}
	for _, it := range ParseItems(raw) {
		if sellerOf(it, owners) == sellerID {
			return true
		}
	}
	return false
}

// FilterOrders keeps the orders that contain sellerID's items, preserving
// order. It is linear in the number of orders and their items.
func FilterOrders(orders []domain.Order, sellerID string, owners OwnerLookup) []domain.Order {
	out := make([]domain.Order, 0)
	for _, o := range orders {
		if ContainsSeller(o.Items, sellerID, owners) {
			out = append(out, o)
		}
	}
	return out
}

// SellerIDs lists the distinct sellers of items in first-seen order.
func SellerIDs(items []domain.LineItem) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, it := range items {
		s := Seller(it)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Total sums the line totals of items.
func Total(items []domain.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// SellerTotal is sellerID's share of the order stored in raw.
func SellerTotal(raw, sellerID string, owners OwnerLookup) decimal.Decimal {
	return Total(ForSeller(ParseItems(raw), sellerID, owners))
}

// OrderView pairs an order with the items a particular viewer may see.
type OrderView struct {
	Order    domain.Order      `json:"order"`
	Items    []domain.LineItem `json:"items"`
	Subtotal decimal.Decimal   `json:"subtotal"`
}

// SellerView is the slice of order that belongs to sellerID. Subtotal is the
// seller's share.
func SellerView(order domain.Order, sellerID string, owners OwnerLookup) OrderView {
	items := ForSeller(ParseItems(order.Items), sellerID, owners)
	return OrderView{Order: order, Items: items, Subtotal: Total(items)}
}

// CustomerView is the whole order as its customer sees it.
func CustomerView(order domain.Order) OrderView {
	items := ForCustomer(ParseItems(order.Items))
	return OrderView{Order: order, Items: items, Subtotal: Total(items)}
}
