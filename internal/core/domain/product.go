package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry owned by exactly one seller.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURLs   []string        `json:"imageUrls"`
	SellerID    string          `json:"sellerId"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// InStock reports whether at least one unit is available.
func (p *Product) InStock() bool { return p != nil && p.Stock > 0 }

// NewProduct carries the fields of a product about to be created. ImageURLs
// holds image references: file refs returned by UploadFile or resolved URLs.
type NewProduct struct {
	Name        string `validate:"required"`
	Description string
	Price       decimal.Decimal
	Category    string `validate:"required"`
	ImageURLs   []string
	SellerID    string `validate:"required"`
	Stock       int    `validate:"gte=0"`
}

// ProductPatch is a partial update. Nil fields are left untouched. The seller
// id is deliberately absent: ownership never changes after creation.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	ImageURLs   []string
	Stock       *int
}

// Apply returns a copy of p with the patch applied.
func (pp ProductPatch) Apply(p Product) Product {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.ImageURLs != nil {
		p.ImageURLs = append([]string(nil), pp.ImageURLs...)
	}
	if pp.Stock != nil {
		p.Stock = *pp.Stock
	}
	return p
}

// ProductFilter narrows ListProducts. Nil bounds are open.
type ProductFilter struct {
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// Matches reports whether p satisfies the filter. The "All" category is the
// storefront's catch-all and matches everything.
func (f ProductFilter) Matches(p Product) bool {
	if f.Category != "" && f.Category != AllCategories && p.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

const AllCategories = "All"
