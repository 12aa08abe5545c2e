package domain

import "github.com/shopspring/decimal"

// CartItem is one entry of the shopping cart. Product is an optional hydrated
// snapshot used for display and totals.
type CartItem struct {
	ProductID string   `json:"productId"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

// LineTotal is the snapshot price times quantity, or zero when the entry has
// not been hydrated.
func (ci CartItem) LineTotal() decimal.Decimal {
	if ci.Product == nil {
		return decimal.Zero
	}
	return ci.Product.Price.Mul(decimal.NewFromInt(int64(ci.Quantity)))
}
