package ephemeral

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/marketly/storefront/internal/core/attribution"
	"github.com/marketly/storefront/internal/core/domain"
	"github.com/marketly/storefront/internal/infrastructure/slot"
)

func newTestBackend(t *testing.T) (*Backend, *slot.MemorySlot) {
	t.Helper()
	s := slot.NewMemorySlot()
	return New(context.Background(), s, Latency{}, zerolog.Nop()), s
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestLogin_ByNameOrEmailIgnoringCase(t *testing.T) {
	b, s := newTestBackend(t)
	ctx := context.Background()

	u, err := b.Login(ctx, "JOHN DOE", "whatever")
	if err != nil {
		t.Fatalf("login by name: %v", err)
	}
	if u.ID != "customer-1" {
		t.Errorf("expected customer-1, got %s", u.ID)
	}
	if _, ok, _ := s.Get(ctx, SessionKey); !ok {
		t.Error("session should be persisted")
	}

	if _, err := b.Login(ctx, "tech@EXAMPLE.com", ""); err != nil {
		t.Errorf("login by email: %v", err)
	}
	if _, err := b.Login(ctx, "nobody", ""); !errors.Is(err, domain.ErrAuth) {
		t.Errorf("expected auth error, got %v", err)
	}
}

func TestSession_RestoredFromSlot(t *testing.T) {
	s := slot.NewMemorySlot()
	ctx := context.Background()
	first := New(ctx, s, Latency{}, zerolog.Nop())
	if _, err := first.Login(ctx, "Jane Smith", ""); err != nil {
		t.Fatalf("login: %v", err)
	}

	second := New(ctx, s, Latency{}, zerolog.Nop())
	if u := second.CurrentUser(ctx); u == nil || u.ID != "customer-2" {
		t.Fatalf("expected restored session, got %+v", u)
	}

	second.Logout(ctx)
	if second.CurrentUser(ctx) != nil {
		t.Error("logout should clear the user")
	}
	if _, ok, _ := s.Get(ctx, SessionKey); ok {
		t.Error("logout should clear the slot")
	}
}

func TestSession_CorruptSlotIsDiscarded(t *testing.T) {
	s := slot.NewMemorySlot()
	ctx := context.Background()
	_ = s.Set(ctx, SessionKey, "{not json")

	b := New(ctx, s, Latency{}, zerolog.Nop())
	if u := b.CurrentUser(ctx); u != nil {
		t.Fatalf("expected no session, got %+v", u)
	}
	if _, ok, _ := s.Get(ctx, SessionKey); ok {
		t.Error("corrupt value should be removed")
	}
}

func TestRegister(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	u, err := b.Register(ctx, "new@example.com", "pw", "Newbie", domain.RoleSeller)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if cur := b.CurrentUser(ctx); cur == nil || cur.ID != u.ID {
		t.Errorf("registration should open a session, got %+v", cur)
	}

	if _, err := b.Register(ctx, "NEW@example.com", "pw", "Again", domain.RoleCustomer); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("duplicate email: expected validation error, got %v", err)
	}
	if _, err := b.Register(ctx, "x@example.com", "pw", "X", "admin"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad role: expected validation error, got %v", err)
	}
}

func TestUpdateRole(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()
	if _, err := b.Login(ctx, "John Doe", ""); err != nil {
		t.Fatalf("login: %v", err)
	}

	u, err := b.UpdateRole(ctx, "customer-1", domain.RoleSeller)
	if err != nil {
		t.Fatalf("update role: %v", err)
	}
	if u.Role != domain.RoleSeller || b.CurrentUser(ctx).Role != domain.RoleSeller {
		t.Error("role change should reach the current user")
	}
	if _, err := b.UpdateRole(ctx, "ghost", domain.RoleSeller); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestProducts_CreateListFilter(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	p, err := b.CreateProduct(ctx, domain.NewProduct{Name: "Lamp", Category: "Home", Price: dec("20"), SellerID: "seller-1", Stock: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	all := b.ListProducts(ctx, domain.ProductFilter{})
	if len(all) == 0 || all[0].ID != p.ID {
		t.Fatalf("new product should be listed first")
	}

	home := b.ListProducts(ctx, domain.ProductFilter{Category: "Home"})
	for _, hp := range home {
		if hp.Category != "Home" {
			t.Errorf("category filter leaked %s", hp.Category)
		}
	}
	if got := b.ListProducts(ctx, domain.ProductFilter{Category: domain.AllCategories}); len(got) != len(all) {
		t.Errorf("All should match everything: %d vs %d", len(got), len(all))
	}

	lo, hi := dec("30"), dec("50")
	for _, rp := range b.ListProducts(ctx, domain.ProductFilter{MinPrice: &lo, MaxPrice: &hi}) {
		if rp.Price.LessThan(lo) || rp.Price.GreaterThan(hi) {
			t.Errorf("price filter leaked %s", rp.Price)
		}
	}

	mine := b.ListMyProducts(ctx, "seller-1")
	for _, mp := range mine {
		if mp.SellerID != "seller-1" {
			t.Errorf("foreign product in seller listing: %+v", mp)
		}
	}
}

func TestProducts_UpdateAndDelete(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	stock := 0
	p, err := b.UpdateProduct(ctx, "prod-2", domain.ProductPatch{Stock: &stock})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Stock != 0 || p.Name != "Ceramic Mug" {
		t.Errorf("unexpected update result %+v", p)
	}
	if _, err := b.UpdateProduct(ctx, "missing", domain.ProductPatch{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	if err := b.DeleteProduct(ctx, "prod-2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if b.GetProduct(ctx, "prod-2") != nil {
		t.Error("product still present")
	}
	if err := b.DeleteProduct(ctx, "prod-2"); err != nil {
		t.Errorf("deleting an absent product must succeed, got %v", err)
	}
}

func TestImages_RefsResolveToURLsAndBack(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	ref, err := b.UploadFile(ctx, []byte("png"), "image/png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	p, err := b.CreateProduct(ctx, domain.NewProduct{
		Name: "Print", Category: "Art", SellerID: "seller-1", ImageURLs: []string{ref, "https://cdn.test/x.png"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	want := b.PreviewURL(ref)
	if !strings.HasPrefix(want, "https://") || p.ImageURLs[0] != want || p.ImageURLs[1] != "https://cdn.test/x.png" {
		t.Fatalf("unexpected image urls %v", p.ImageURLs)
	}

	// Writing back what was read must not double-wrap.
	updated, err := b.UpdateProduct(ctx, p.ID, domain.ProductPatch{ImageURLs: p.ImageURLs})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ImageURLs[0] != want {
		t.Errorf("round trip changed url: %s", updated.ImageURLs[0])
	}

	if err := b.DeleteFile(ctx, ref); err != nil {
		t.Errorf("delete file: %v", err)
	}
}

func TestOrders_NewestFirstAndSellerAttribution(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	raw, _ := attribution.EncodeItems([]domain.LineItem{
		{ProductID: "prod-1", Quantity: 1, Price: dec("45"), Name: "Handwoven Basket", SellerID: "seller-1"},
		{ProductID: "prod-4", Quantity: 1, Price: dec("89.99"), Name: "Wireless Earbuds", SellerID: "seller-2"},
	})
	first, err := b.CreateOrder(ctx, domain.NewOrder{CustomerID: "customer-1", TotalAmount: dec("134.99"), Status: domain.OrderPending, Items: raw})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	// Legacy entry without a seller id, attributed through current ownership.
	legacy := `[{"productId":"prod-5","quantity":1,"price":129}]`
	second, _ := b.CreateOrder(ctx, domain.NewOrder{CustomerID: "customer-1", TotalAmount: dec("129"), Status: domain.OrderPending, Items: legacy})

	mine := b.ListMyOrders(ctx, "customer-1")
	if len(mine) != 2 || mine[0].ID != second.ID || mine[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", mine)
	}

	s1 := b.ListSellerOrders(ctx, "seller-1")
	if len(s1) != 1 || s1[0].ID != first.ID {
		t.Errorf("seller-1 should see only the first order, got %d", len(s1))
	}
	s2 := b.ListSellerOrders(ctx, "seller-2")
	if len(s2) != 2 {
		t.Errorf("seller-2 should see both orders, got %d", len(s2))
	}

	o, err := b.UpdateOrderStatus(ctx, first.ID, domain.OrderDelivered)
	if err != nil || o.Status != domain.OrderDelivered {
		t.Fatalf("update status: %+v %v", o, err)
	}
	if _, err := b.UpdateOrderStatus(ctx, "missing", domain.OrderShipped); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestLatency_HonoursCancellation(t *testing.T) {
	b := New(context.Background(), slot.NewMemorySlot(), Latency{Scale: 10}, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	if got := b.ListProducts(ctx, domain.ProductFilter{}); len(got) != 0 {
		t.Errorf("cancelled read should be empty, got %d", len(got))
	}
	if _, err := b.CreateOrder(ctx, domain.NewOrder{}); !errors.Is(err, domain.ErrBackend) {
		t.Errorf("expected backend error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("wait ignored cancellation: %s", elapsed)
	}
}

func TestLatency_Jitter(t *testing.T) {
	l := Latency{Scale: 1, Jitter: 50 * time.Millisecond}
	for i := 0; i < 50; i++ {
		d := l.duration("get_product")
		if d < 250*time.Millisecond || d > 350*time.Millisecond {
			t.Fatalf("duration %s out of range", d)
		}
	}
	if (Latency{}).duration("login") != 0 {
		t.Error("zero scale must disable delays")
	}
}
