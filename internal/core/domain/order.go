package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// validTransitions is the happy-path state machine. Delivered and cancelled
// are terminal.
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderShipped, OrderCancelled},
	OrderShipped: {OrderDelivered, OrderCancelled},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a transition from s to next is legal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a placed order. Items is the serialized line-item snapshot list
// exactly as stored; decode it with the attribution package.
type Order struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customerId"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          OrderStatus     `json:"status"`
	Items           string          `json:"items"`
	ShippingAddress string          `json:"shippingAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// NewOrder carries the fields of an order about to be created.
type NewOrder struct {
	CustomerID      string
	TotalAmount     decimal.Decimal
	Status          OrderStatus
	Items           string
	ShippingAddress string
}

// ProductSnapshot is the nested product copy some legacy line items carry.
type ProductSnapshot struct {
	SellerID  string           `json:"sellerId,omitempty"`
	Name      string           `json:"name,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	ImageURLs []string         `json:"imageUrls,omitempty"`
}

// LineItem is a frozen copy of one cart entry taken at order time.
type LineItem struct {
	ProductID string           `json:"productId"`
	Quantity  int              `json:"quantity"`
	Price     decimal.Decimal  `json:"price"`
	Name      string           `json:"name"`
	SellerID  string           `json:"sellerId,omitempty"`
	Product   *ProductSnapshot `json:"product,omitempty"`
}

// LineTotal is price times quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// ShippingAddress is the destination entered at checkout.
type ShippingAddress struct {
	Street string `json:"street" validate:"required"`
	City   string `json:"city"   validate:"required"`
	Zip    string `json:"zip"    validate:"required"`
}

// String renders the address the way it is stored on the order.
func (a ShippingAddress) String() string {
	return a.Street + ", " + a.City + ", " + a.Zip
}

// OrderEventType names an order lifecycle event.
type OrderEventType string

const (
	EventOrderPlaced        OrderEventType = "order.placed"
	EventOrderStatusChanged OrderEventType = "order.status_changed"
)

// OrderEvent is published after an order is placed or transitioned.
type OrderEvent struct {
	Type        OrderEventType  `json:"type"`
	OrderID     string          `json:"orderId"`
	CustomerID  string          `json:"customerId"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	SellerIDs   []string        `json:"sellerIds,omitempty"`
	OccurredAt  time.Time       `json:"occurredAt"`
}
