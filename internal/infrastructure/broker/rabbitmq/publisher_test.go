package rabbitmq

import (
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"

	"github.com/marketly/storefront/internal/core/domain"
)

func TestMessage(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	e := domain.OrderEvent{
		Type:        domain.EventOrderPlaced,
		OrderID:     "o1",
		CustomerID:  "c1",
		Status:      domain.OrderPending,
		TotalAmount: decimal.RequireFromString("25"),
		SellerIDs:   []string{"A", "B"},
		OccurredAt:  at,
	}

	msg, err := message(e)
	if err != nil {
		t.Fatalf("message: %v", err)
	}
	if msg.ContentType != "application/json" || msg.DeliveryMode != amqp.Persistent {
		t.Errorf("unexpected headers %+v", msg)
	}
	if msg.Type != "order.placed" || !msg.Timestamp.Equal(at) {
		t.Errorf("unexpected type/timestamp %q %s", msg.Type, msg.Timestamp)
	}

	var body map[string]any
	if err := json.Unmarshal(msg.Body, &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if body["orderId"] != "o1" || body["totalAmount"] != "25" {
		t.Errorf("unexpected body %s", msg.Body)
	}
}

func TestDial_BadURI(t *testing.T) {
	if _, err := Dial("not-a-uri", "orders"); err == nil {
		t.Fatal("expected dial error")
	}
}
