package ephemeral

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/marketly/storefront/internal/core/domain"
)

func seedUsers() []domain.User {
	return []domain.User{
		{ID: "seller-1", Name: "Artisan Crafts", Email: "artisan@example.com", Role: domain.RoleSeller},
		{ID: "seller-2", Name: "Tech Haven", Email: "tech@example.com", Role: domain.RoleSeller},
		{ID: "customer-1", Name: "John Doe", Email: "john@example.com", Role: domain.RoleCustomer},
		{ID: "customer-2", Name: "Jane Smith", Email: "jane@example.com", Role: domain.RoleCustomer},
	}
}

func seedProducts(now time.Time) []domain.Product {
	p := func(id, name, desc, price, category, seller string, stock int, age time.Duration) domain.Product {
		ts := now.Add(-age)
		return domain.Product{
			ID:          id,
			Name:        name,
			Description: desc,
			Price:       decimal.RequireFromString(price),
			Category:    category,
			ImageURLs:   []string{"mock-file-" + id},
			SellerID:    seller,
			Stock:       stock,
			CreatedAt:   ts,
			UpdatedAt:   ts,
		}
	}
	// Newest first.
	return []domain.Product{
		p("prod-1", "Handwoven Basket", "Natural fibre basket, woven by hand.", "45.00", "Home", "seller-1", 12, 1*time.Hour),
		p("prod-2", "Ceramic Mug", "Stoneware mug with a speckled glaze.", "18.50", "Home", "seller-1", 40, 2*time.Hour),
		p("prod-3", "Leather Journal", "A5 journal bound in vegetable-tanned leather.", "32.00", "Accessories", "seller-1", 0, 3*time.Hour),
		p("prod-4", "Wireless Earbuds", "Noise-cancelling earbuds with charging case.", "89.99", "Electronics", "seller-2", 25, 4*time.Hour),
		p("prod-5", "Mechanical Keyboard", "Tenkeyless keyboard with hot-swappable switches.", "129.00", "Electronics", "seller-2", 8, 5*time.Hour),
		p("prod-6", "USB-C Hub", "Seven-port hub with power delivery.", "39.95", "Accessories", "seller-2", 60, 6*time.Hour),
	}
}
