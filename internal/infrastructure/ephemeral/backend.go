// Package ephemeral is an in-memory backend with simulated latency. It is
// meant for development and demos: passwords are not checked and nothing but
// the session survives a restart.
package ephemeral

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/marketly/storefront/internal/core/attribution"
	"github.com/marketly/storefront/internal/core/domain"
	"github.com/marketly/storefront/internal/infrastructure/slot"
)

// SessionKey is the slot key holding the JSON-encoded current user.
const SessionKey = "mock_session"

const (
	fileRefPrefix  = "mock-file-"
	placeholderURL = "https://via.placeholder.com/300?text=Mock+Image+"
)

// Backend implements ports.Backend in memory.
type Backend struct {
	mu       sync.Mutex
	users    []domain.User
	products []domain.Product // newest first
	orders   []domain.Order   // newest first
	files    map[string]string
	current  *domain.User

	slot    slot.Slot
	latency Latency
	log     zerolog.Logger
	now     func() time.Time
}

// New seeds the store from fixtures and restores a persisted session from s.
// A session value that does not decode is dropped from the slot.
func New(ctx context.Context, s slot.Slot, latency Latency, log zerolog.Logger) *Backend {
	b := &Backend{
		users:    seedUsers(),
		products: seedProducts(time.Now().UTC()),
		files:    make(map[string]string),
		slot:     s,
		latency:  latency,
		log:      log.With().Str("component", "ephemeral").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, p := range b.products {
		for _, ref := range p.ImageURLs {
			b.files[ref] = "image/jpeg"
		}
	}
	b.restoreSession(ctx)
	return b
}

func (b *Backend) Name() string { return "ephemeral" }

func (b *Backend) restoreSession(ctx context.Context) {
	raw, ok, err := b.slot.Get(ctx, SessionKey)
	if err != nil {
		b.log.Warn().Err(err).Msg("failed to read session slot")
		return
	}
	if !ok {
		return
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == "" {
		b.log.Warn().Err(err).Msg("discarding unreadable session")
		if err := b.slot.Remove(ctx, SessionKey); err != nil {
			b.log.Warn().Err(err).Msg("failed to clear session slot")
		}
		return
	}
	b.current = &u
}

func (b *Backend) persistSession(ctx context.Context, u *domain.User) {
	raw, err := json.Marshal(u)
	if err == nil {
		err = b.slot.Set(ctx, SessionKey, string(raw))
	}
	if err != nil {
		b.log.Warn().Err(err).Msg("failed to persist session")
	}
}

// ── Auth ─────────────────────────────────────────────────────────────────────

// Login matches identifier against user names and emails, ignoring case.
// The secret is not checked.
func (b *Backend) Login(ctx context.Context, identifier, _ string) (*domain.User, error) {
	if err := b.latency.wait(ctx, "login"); err != nil {
		return nil, domain.NewBackendError("login", err)
	}
	b.mu.Lock()
	var found *domain.User
	for i := range b.users {
		u := &b.users[i]
		if strings.EqualFold(u.Name, identifier) || strings.EqualFold(u.Email, identifier) {
			clone := *u
			found = &clone
			break
		}
	}
	if found != nil {
		b.current = found
	}
	b.mu.Unlock()

	if found == nil {
		return nil, domain.ErrInvalidCredentials
	}
	b.persistSession(ctx, found)
	return cloneUser(found), nil
}

func (b *Backend) Register(ctx context.Context, email, _, name string, role domain.Role) (*domain.User, error) {
	if err := b.latency.wait(ctx, "register"); err != nil {
		return nil, domain.NewBackendError("register", err)
	}
	switch {
	case strings.TrimSpace(email) == "":
		return nil, &domain.ValidationError{Field: "email", Reason: "is required"}
	case strings.TrimSpace(name) == "":
		return nil, &domain.ValidationError{Field: "name", Reason: "is required"}
	case !role.Valid():
		return nil, domain.ErrInvalidRole
	}

	b.mu.Lock()
	for _, u := range b.users {
		if strings.EqualFold(u.Email, email) {
			b.mu.Unlock()
			return nil, domain.ErrEmailTaken
		}
	}
	u := domain.User{ID: "user-" + uuid.NewString(), Name: name, Email: email, Role: role}
	b.users = append(b.users, u)
	b.current = cloneUser(&u)
	b.mu.Unlock()

	b.persistSession(ctx, &u)
	return cloneUser(&u), nil
}

// Logout clears the session even when the delay is cut short.
func (b *Backend) Logout(ctx context.Context) {
	_ = b.latency.wait(ctx, "logout")
	b.mu.Lock()
	b.current = nil
	b.mu.Unlock()
	if err := b.slot.Remove(context.WithoutCancel(ctx), SessionKey); err != nil {
		b.log.Warn().Err(err).Msg("failed to clear session slot")
	}
}

func (b *Backend) CurrentUser(ctx context.Context) *domain.User {
	if err := b.latency.wait(ctx, "current_user"); err != nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneUser(b.current)
}

func (b *Backend) UpdateRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error) {
	if err := b.latency.wait(ctx, "update_role"); err != nil {
		return nil, domain.NewBackendError("update role", err)
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	b.mu.Lock()
	var updated *domain.User
	for i := range b.users {
		if b.users[i].ID == userID {
			b.users[i].Role = role
			updated = cloneUser(&b.users[i])
			break
		}
	}
	var current *domain.User
	if updated != nil && b.current != nil && b.current.ID == userID {
		b.current.Role = role
		current = cloneUser(b.current)
	}
	b.mu.Unlock()

	if updated == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}
	if current != nil {
		b.persistSession(ctx, current)
	}
	return updated, nil
}

// ── Products ─────────────────────────────────────────────────────────────────

func (b *Backend) ListProducts(ctx context.Context, filter domain.ProductFilter) []domain.Product {
	if err := b.latency.wait(ctx, "list_products"); err != nil {
		return []domain.Product{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Product, 0, len(b.products))
	for _, p := range b.products {
		if filter.Matches(p) {
			out = append(out, b.present(p))
		}
	}
	return out
}

func (b *Backend) GetProduct(ctx context.Context, id string) *domain.Product {
	if err := b.latency.wait(ctx, "get_product"); err != nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.productIndex(id); i >= 0 {
		p := b.present(b.products[i])
		return &p
	}
	return nil
}

func (b *Backend) CreateProduct(ctx context.Context, in domain.NewProduct) (*domain.Product, error) {
	if err := b.latency.wait(ctx, "create_product"); err != nil {
		return nil, domain.NewBackendError("create product", err)
	}
	now := b.now()
	p := domain.Product{
		ID:          "prod-" + uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		ImageURLs:   toRefs(in.ImageURLs),
		SellerID:    in.SellerID,
		Stock:       in.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.products = append([]domain.Product{p}, b.products...)
	out := b.present(p)
	return &out, nil
}

func (b *Backend) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if err := b.latency.wait(ctx, "update_product"); err != nil {
		return nil, domain.NewBackendError("update product", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.productIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	if patch.ImageURLs != nil {
		patch.ImageURLs = toRefs(patch.ImageURLs)
	}
	p := patch.Apply(b.products[i])
	p.UpdatedAt = b.now()
	b.products[i] = p
	out := b.present(p)
	return &out, nil
}

// DeleteProduct is idempotent: deleting an absent product succeeds.
func (b *Backend) DeleteProduct(ctx context.Context, id string) error {
	if err := b.latency.wait(ctx, "delete_product"); err != nil {
		return domain.NewBackendError("delete product", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.productIndex(id); i >= 0 {
		b.products = append(b.products[:i], b.products[i+1:]...)
	}
	return nil
}

func (b *Backend) ListMyProducts(ctx context.Context, sellerID string) []domain.Product {
	if err := b.latency.wait(ctx, "list_my_products"); err != nil {
		return []domain.Product{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Product, 0)
	for _, p := range b.products {
		if p.SellerID == sellerID {
			out = append(out, b.present(p))
		}
	}
	return out
}

func (b *Backend) productIndex(id string) int {
	for i := range b.products {
		if b.products[i].ID == id {
			return i
		}
	}
	return -1
}

// present copies p and resolves file references to URLs.
func (b *Backend) present(p domain.Product) domain.Product {
	urls := make([]string, 0, len(p.ImageURLs))
	for _, ref := range p.ImageURLs {
		urls = append(urls, b.PreviewURL(ref))
	}
	p.ImageURLs = urls
	return p
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (b *Backend) CreateOrder(ctx context.Context, in domain.NewOrder) (*domain.Order, error) {
	if err := b.latency.wait(ctx, "create_order"); err != nil {
		return nil, domain.NewBackendError("create order", err)
	}
	now := b.now()
	o := domain.Order{
		ID:              "ord-" + uuid.NewString(),
		CustomerID:      in.CustomerID,
		TotalAmount:     in.TotalAmount,
		Status:          in.Status,
		Items:           in.Items,
		ShippingAddress: in.ShippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if o.Status == "" {
		o.Status = domain.OrderPending
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders = append([]domain.Order{o}, b.orders...)
	return &o, nil
}

func (b *Backend) ListMyOrders(ctx context.Context, customerID string) []domain.Order {
	if err := b.latency.wait(ctx, "list_my_orders"); err != nil {
		return []domain.Order{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Order, 0)
	for _, o := range b.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out
}

// ListSellerOrders attributes line items by their snapshot seller id. Items
// written without one fall back to the product's current owner.
func (b *Backend) ListSellerOrders(ctx context.Context, sellerID string) []domain.Order {
	if err := b.latency.wait(ctx, "list_seller_orders"); err != nil {
		return []domain.Order{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	owners := make(map[string]string, len(b.products))
	for _, p := range b.products {
		owners[p.ID] = p.SellerID
	}
	lookup := func(productID string) (string, bool) {
		s, ok := owners[productID]
		return s, ok
	}
	return attribution.FilterOrders(b.orders, sellerID, lookup)
}

// UpdateOrderStatus writes status unconditionally; transition rules live in
// the order service.
func (b *Backend) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if err := b.latency.wait(ctx, "update_order_status"); err != nil {
		return nil, domain.NewBackendError("update order status", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.orders {
		if b.orders[i].ID == orderID {
			b.orders[i].Status = status
			b.orders[i].UpdatedAt = b.now()
			o := b.orders[i]
			return &o, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
}

// ── Files ────────────────────────────────────────────────────────────────────

// UploadFile records the upload and returns a reference. The bytes are
// discarded.
func (b *Backend) UploadFile(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := b.latency.wait(ctx, "upload_file"); err != nil {
		return "", domain.NewBackendError("upload file", err)
	}
	if len(data) == 0 {
		return "", &domain.ValidationError{Field: "file", Reason: "is empty"}
	}
	ref := fileRefPrefix + uuid.NewString()
	b.mu.Lock()
	b.files[ref] = contentType
	b.mu.Unlock()
	b.log.Debug().Str("ref", ref).Int("bytes", len(data)).Msg("file uploaded")
	return ref, nil
}

// PreviewURL returns ref unchanged when it already is a URL.
func (b *Backend) PreviewURL(ref string) string {
	if ref == "" || isURL(ref) {
		return ref
	}
	return placeholderURL + ref
}

func (b *Backend) DeleteFile(ctx context.Context, ref string) error {
	if err := b.latency.wait(ctx, "delete_file"); err != nil {
		return domain.NewBackendError("delete file", err)
	}
	b.mu.Lock()
	delete(b.files, ref)
	b.mu.Unlock()
	b.log.Debug().Str("ref", ref).Msg("file deleted")
	return nil
}

// toRefs turns placeholder URLs produced by PreviewURL back into references.
func toRefs(urls []string) []string {
	refs := make([]string, 0, len(urls))
	for _, u := range urls {
		refs = append(refs, strings.TrimPrefix(u, placeholderURL))
	}
	return refs
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}
