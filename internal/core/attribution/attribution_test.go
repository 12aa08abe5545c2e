package attribution

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/marketly/storefront/internal/core/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// decimalComparer lets cmp compare decimals by value.
var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestParseItems_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":            "",
		"not json":         "{{{",
		"object":           `{"productId":"p1","quantity":1}`,
		"truncated":        `[{"productId":"p1","quantity":1}`,
		"missing product":  `[{"quantity":1,"price":3}]`,
		"zero quantity":    `[{"productId":"p1","quantity":0,"price":3}]`,
		"negative price":   `[{"productId":"p1","quantity":1,"price":-3}]`,
		"fraction qty":     `[{"productId":"p1","quantity":1.5,"price":3}]`,
		"bad string price": `[{"productId":"p1","quantity":1,"price":"abc"}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if got := ParseItems(raw); len(got) != 0 {
				t.Fatalf("expected no items, got %+v", got)
			}
		})
	}
}

func TestParseItems_InvalidLineDoesNotHideOthers(t *testing.T) {
	raw := `[{"productId":"P1","quantity":1,"price":10,"sellerId":"A"},
	         {"productId":"P2","quantity":0,"price":4,"sellerId":"B"},
	         {"productId":"P3","quantity":1,"price":-2,"sellerId":"B"},
	         {"quantity":1,"price":3,"sellerId":"B"},
	         {"productId":"P4","quantity":2,"price":5,"sellerId":"B"}]`

	items := ParseItems(raw)
	if len(items) != 2 || items[0].ProductID != "P1" || items[1].ProductID != "P4" {
		t.Fatalf("expected P1 and P4 to survive, got %+v", items)
	}
	if !ContainsSeller(raw, "A", nil) {
		t.Error("seller A's valid line must keep the order attributed")
	}
	if got := SellerTotal(raw, "B", nil); !got.Equal(dec("10")) {
		t.Errorf("expected seller B total 10 from P4 only, got %s", got)
	}
}

func TestParseItems_FlatAndNestedShapes(t *testing.T) {
	raw := `[
		{"productId":"p1","quantity":2,"price":10,"name":"Mug","sellerId":"A"},
		{"productId":"p2","quantity":1,"product":{"sellerId":"B","name":"Lamp","price":"7.5"}},
		{"productId":"p3","quantity":3,"price":"1.25","name":"Pen"}
	]`

	got := ParseItems(raw)
	want := []domain.LineItem{
		{ProductID: "p1", Quantity: 2, Price: dec("10"), Name: "Mug", SellerID: "A"},
		{ProductID: "p2", Quantity: 1, Price: dec("7.5"), Name: "Lamp", Product: &domain.ProductSnapshot{SellerID: "B", Name: "Lamp", Price: ptr(dec("7.5"))}},
		{ProductID: "p3", Quantity: 3, Price: dec("1.25"), Name: "Pen"},
	}
	if diff := cmp.Diff(want, got, decimalComparer); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestSeller_NestedSnapshotTakesPrecedence(t *testing.T) {
	item := domain.LineItem{SellerID: "top", Product: &domain.ProductSnapshot{SellerID: "nested"}}
	if got := Seller(item); got != "nested" {
		t.Errorf("expected nested seller, got %q", got)
	}

	item.Product.SellerID = ""
	if got := Seller(item); got != "top" {
		t.Errorf("expected fallback to top-level seller, got %q", got)
	}
}

func TestForSeller_OnlySellersLines(t *testing.T) {
	raw := `[{"productId":"P1","quantity":1,"price":10,"name":"One","sellerId":"A"},
	         {"productId":"P3","quantity":1,"price":5,"name":"Three","sellerId":"B"}]`

	if !ContainsSeller(raw, "A", nil) {
		t.Fatal("order should be attributed to seller A")
	}

	items := ForSeller(ParseItems(raw), "A", nil)
	if len(items) != 1 || items[0].ProductID != "P1" {
		t.Fatalf("expected only the P1 line, got %+v", items)
	}

	if ContainsSeller(raw, "C", nil) {
		t.Error("seller C owns nothing in this order")
	}
}

func TestForSeller_OwnerFallbackOnlyForUnattributedItems(t *testing.T) {
	raw := `[{"productId":"legacy","quantity":1,"price":4},
	         {"productId":"moved","quantity":1,"price":4,"sellerId":"B"}]`
	owners := func(id string) (string, bool) {
		return map[string]string{"legacy": "A", "moved": "A"}[id], true
	}

	items := ForSeller(ParseItems(raw), "A", owners)
	if len(items) != 1 || items[0].ProductID != "legacy" {
		t.Fatalf("snapshot seller must win over current owner, got %+v", items)
	}
}

func TestForCustomer_NoFiltering(t *testing.T) {
	raw := `[{"productId":"P1","quantity":1,"price":10,"sellerId":"A"},
	         {"productId":"P3","quantity":1,"price":5,"sellerId":"B"}]`
	if got := ForCustomer(ParseItems(raw)); len(got) != 2 {
		t.Fatalf("expected both items, got %d", len(got))
	}
}

func TestEncodeItems_RoundTrip(t *testing.T) {
	in := []domain.LineItem{
		{ProductID: "p1", Quantity: 2, Price: dec("10"), Name: "Mug", SellerID: "A"},
		{ProductID: "p2", Quantity: 1, Price: dec("5"), Name: "Lamp", Product: &domain.ProductSnapshot{SellerID: "B"}},
	}

	raw, err := EncodeItems(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	out := ParseItems(raw)
	if len(out) != 2 {
		t.Fatalf("expected 2 items, got %d (%s)", len(out), raw)
	}
	if out[1].SellerID != "B" {
		t.Errorf("nested seller should be flattened on encode, got %q", out[1].SellerID)
	}
	if !Total(out).Equal(dec("25")) {
		t.Errorf("expected total 25, got %s", Total(out))
	}
}

func TestSellerView_Subtotal(t *testing.T) {
	order := domain.Order{ID: "o1", Items: `[{"productId":"P1","quantity":2,"price":10,"sellerId":"A"},{"productId":"P3","quantity":1,"price":5,"sellerId":"B"}]`}

	view := SellerView(order, "A", nil)
	if !view.Subtotal.Equal(dec("20")) {
		t.Errorf("expected seller subtotal 20, got %s", view.Subtotal)
	}

	if got := SellerTotal(order.Items, "B", nil); !got.Equal(dec("5")) {
		t.Errorf("expected seller B total 5, got %s", got)
	}

	all := CustomerView(order)
	if !all.Subtotal.Equal(dec("25")) {
		t.Errorf("expected customer subtotal 25, got %s", all.Subtotal)
	}
}

func TestFilterOrders_SkipsUnparsable(t *testing.T) {
	orders := []domain.Order{
		{ID: "bad", Items: "not json"},
		{ID: "good", Items: `[{"productId":"P1","quantity":1,"price":1,"sellerId":"A"}]`},
	}
	got := FilterOrders(orders, "A", nil)
	if len(got) != 1 || got[0].ID != "good" {
		t.Fatalf("expected only the parsable order, got %+v", got)
	}
}

func TestSellerIDs_Distinct(t *testing.T) {
	items := []domain.LineItem{{SellerID: "A"}, {SellerID: "B"}, {SellerID: "A"}, {}}
	if diff := cmp.Diff([]string{"A", "B"}, SellerIDs(items)); diff != "" {
		t.Fatalf("seller ids mismatch:\n%s", diff)
	}
}

func ptr[T any](v T) *T { return &v }
