// Package remote implements the backend contract on top of a hosted document
// database, a session store and an object storage bucket.
package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/marketly/storefront/internal/core/attribution"
	"github.com/marketly/storefront/internal/core/domain"
	"github.com/marketly/storefront/internal/infrastructure/slot"
	"github.com/marketly/storefront/internal/pkg/metrics"
)

// TokenKey is the slot key holding the signed session token.
const TokenKey = "remote_session"

const defaultSessionTTL = 7 * 24 * time.Hour

// Config holds the session settings.
type Config struct {
	Secret     string
	SessionTTL time.Duration
}

// Backend implements ports.Backend against Stores.
type Backend struct {
	stores Stores
	slot   slot.Slot
	tokens tokenSigner
	ttl    time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

func New(stores Stores, s slot.Slot, cfg Config, log zerolog.Logger) (*Backend, error) {
	if cfg.Secret == "" {
		return nil, errors.New("remote: session secret is required")
	}
	if stores.Accounts == nil || stores.Profiles == nil || stores.Products == nil ||
		stores.Orders == nil || stores.Files == nil || stores.Sessions == nil {
		return nil, errors.New("remote: every store must be configured")
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Backend{
		stores: stores,
		slot:   s,
		tokens: tokenSigner{secret: []byte(cfg.Secret)},
		ttl:    ttl,
		log:    log.With().Str("component", "remote").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (b *Backend) Name() string { return "remote" }

// ── Auth ─────────────────────────────────────────────────────────────────────

// Login authenticates by email.
func (b *Backend) Login(ctx context.Context, identifier, secret string) (*domain.User, error) {
	if secret == "" {
		return nil, domain.ErrSecretRequired
	}
	acct, err := b.stores.Accounts.AccountByEmail(ctx, normalizeEmail(identifier))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, domain.NewBackendError("login", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(secret)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := b.openSession(ctx, acct.ID); err != nil {
		return nil, domain.NewBackendError("login", err)
	}
	return b.resolveUser(ctx, acct), nil
}

func (b *Backend) Register(ctx context.Context, email, secret, name string, role domain.Role) (*domain.User, error) {
	email = normalizeEmail(email)
	switch {
	case email == "":
		return nil, &domain.ValidationError{Field: "email", Reason: "is required"}
	case secret == "":
		return nil, domain.ErrSecretRequired
	case strings.TrimSpace(name) == "":
		return nil, &domain.ValidationError{Field: "name", Reason: "is required"}
	case !role.Valid():
		return nil, domain.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewBackendError("register", err)
	}
	acct := Account{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Prefs:        map[string]string{PrefRole: string(role)},
		CreatedAt:    b.now(),
	}
	if err := b.stores.Accounts.CreateAccount(ctx, acct); err != nil {
		return nil, domain.NewBackendError("register", err)
	}
	if err := b.stores.Profiles.PutProfile(ctx, Profile{ID: acct.ID, Name: name, Email: email, Role: role}); err != nil {
		b.undoRegister(ctx, acct.ID, false, false)
		return nil, domain.NewBackendError("register", err)
	}
	if err := b.openSession(ctx, acct.ID); err != nil {
		b.undoRegister(ctx, acct.ID, true, false)
		return nil, domain.NewBackendError("register", err)
	}

	user := b.CurrentUser(ctx)
	if user == nil {
		b.undoRegister(ctx, acct.ID, true, true)
		return nil, domain.NewBackendError("register", errors.New("session not established"))
	}
	b.log.Info().Str("user_id", acct.ID).Str("role", string(role)).Msg("account registered")
	return user, nil
}

// undoRegister removes what a failed registration already wrote. Cleanup
// failures are logged.
func (b *Backend) undoRegister(ctx context.Context, accountID string, profileWritten, sessionOpened bool) {
	ctx = context.WithoutCancel(ctx)
	if sessionOpened {
		b.Logout(ctx)
	}
	if profileWritten {
		if err := b.stores.Profiles.DeleteProfile(ctx, accountID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			b.log.Warn().Err(err).Str("user_id", accountID).Msg("failed to remove profile of aborted registration")
		}
	}
	if err := b.stores.Accounts.DeleteAccount(ctx, accountID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		b.log.Error().Err(err).Str("user_id", accountID).Msg("failed to remove account of aborted registration")
	}
}

// Logout revokes the session and forgets the token. Failures are logged.
func (b *Backend) Logout(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	raw, ok, err := b.slot.Get(ctx, TokenKey)
	if err != nil {
		b.log.Warn().Err(err).Msg("failed to read session token")
	}
	if ok {
		if claims, err := b.tokens.parse(raw, false); err == nil {
			if err := b.stores.Sessions.Revoke(ctx, claims.SessionID); err != nil {
				b.log.Warn().Err(err).Str("session_id", claims.SessionID).Msg("failed to revoke session")
			}
		}
	}
	if err := b.slot.Remove(ctx, TokenKey); err != nil {
		b.log.Warn().Err(err).Msg("failed to clear session token")
	}
}

// CurrentUser returns nil whenever any step of resolving the session fails.
func (b *Backend) CurrentUser(ctx context.Context) *domain.User {
	raw, ok, err := b.slot.Get(ctx, TokenKey)
	if err != nil || !ok {
		return nil
	}
	claims, err := b.tokens.parse(raw, true)
	if err != nil {
		b.log.Debug().Err(err).Msg("session token rejected")
		return nil
	}
	userID, active, err := b.stores.Sessions.Lookup(ctx, claims.SessionID)
	if err != nil {
		b.log.Warn().Err(err).Msg("session lookup failed")
		return nil
	}
	if !active || userID != claims.UserID {
		return nil
	}
	acct, err := b.stores.Accounts.AccountByID(ctx, claims.UserID)
	if err != nil {
		b.log.Warn().Err(err).Str("user_id", claims.UserID).Msg("account lookup failed")
		return nil
	}
	return b.resolveUser(ctx, acct)
}

func (b *Backend) UpdateRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if err := b.stores.Profiles.SetRole(ctx, userID, role); err != nil {
		return nil, domain.NewBackendError("update role", err)
	}
	acct, err := b.stores.Accounts.AccountByID(ctx, userID)
	if err != nil {
		return nil, domain.NewBackendError("update role", err)
	}
	return b.resolveUser(ctx, acct), nil
}

func (b *Backend) openSession(ctx context.Context, userID string) error {
	sid := uuid.NewString()
	if err := b.stores.Sessions.Open(ctx, sid, userID, b.ttl); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	token, err := b.tokens.sign(sessionClaims{SessionID: sid, UserID: userID, ExpiresAt: b.now().Add(b.ttl)})
	if err == nil {
		err = b.slot.Set(ctx, TokenKey, token)
	}
	if err != nil {
		if rerr := b.stores.Sessions.Revoke(context.WithoutCancel(ctx), sid); rerr != nil {
			b.log.Warn().Err(rerr).Str("session_id", sid).Msg("failed to revoke unused session")
		}
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// resolveUser merges the account with its profile document. Without a
// usable profile the role comes from the account preferences and defaults to
// customer.
func (b *Backend) resolveUser(ctx context.Context, acct *Account) *domain.User {
	u := &domain.User{ID: acct.ID, Name: acct.Name, Email: acct.Email, Role: domain.RoleCustomer}
	if r := domain.Role(acct.Prefs[PrefRole]); r.Valid() {
		u.Role = r
	}

	prof, err := b.stores.Profiles.GetProfile(ctx, acct.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			b.log.Warn().Err(err).Str("user_id", acct.ID).Msg("profile lookup failed, using account preferences")
		}
		return u
	}
	if prof.Role.Valid() {
		u.Role = prof.Role
	}
	if prof.Name != "" {
		u.Name = prof.Name
	}
	if prof.AvatarID != "" {
		u.AvatarURL = b.PreviewURL(prof.AvatarID)
	}
	return u
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// ── Products ─────────────────────────────────────────────────────────────────

func (b *Backend) ListProducts(ctx context.Context, filter domain.ProductFilter) []domain.Product {
	recs, err := b.stores.Products.ListProducts(ctx, filter)
	if err != nil {
		b.log.Error().Err(err).Msg("failed to list products")
		return []domain.Product{}
	}
	return b.toProducts(recs)
}

func (b *Backend) GetProduct(ctx context.Context, id string) *domain.Product {
	rec, err := b.stores.Products.GetProduct(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			b.log.Error().Err(err).Str("product_id", id).Msg("failed to get product")
		}
		return nil
	}
	p := b.toProduct(*rec)
	return &p
}

func (b *Backend) CreateProduct(ctx context.Context, in domain.NewProduct) (*domain.Product, error) {
	now := b.now()
	rec := ProductRecord{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		ImageIDs:    b.toFileIDs(in.ImageURLs),
		SellerID:    in.SellerID,
		Stock:       in.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := b.stores.Products.InsertProduct(ctx, rec); err != nil {
		return nil, domain.NewBackendError("create product", err)
	}
	p := b.toProduct(rec)
	return &p, nil
}

func (b *Backend) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	u := ProductUpdate{
		Name:        patch.Name,
		Description: patch.Description,
		Price:       patch.Price,
		Category:    patch.Category,
		Stock:       patch.Stock,
		UpdatedAt:   b.now(),
	}
	if patch.ImageURLs != nil {
		u.ImageIDs = b.toFileIDs(patch.ImageURLs)
	}
	rec, err := b.stores.Products.UpdateProduct(ctx, id, u)
	if err != nil {
		return nil, domain.NewBackendError("update product", err)
	}
	p := b.toProduct(*rec)
	return &p, nil
}

func (b *Backend) DeleteProduct(ctx context.Context, id string) error {
	if err := b.stores.Products.DeleteProduct(ctx, id); err != nil {
		return domain.NewBackendError("delete product", err)
	}
	return nil
}

func (b *Backend) ListMyProducts(ctx context.Context, sellerID string) []domain.Product {
	recs, err := b.stores.Products.ListBySeller(ctx, sellerID)
	if err != nil {
		b.log.Error().Err(err).Str("seller_id", sellerID).Msg("failed to list seller products")
		return []domain.Product{}
	}
	return b.toProducts(recs)
}

func (b *Backend) toProducts(recs []ProductRecord) []domain.Product {
	out := make([]domain.Product, 0, len(recs))
	for _, r := range recs {
		out = append(out, b.toProduct(r))
	}
	return out
}

func (b *Backend) toProduct(r ProductRecord) domain.Product {
	urls := make([]string, 0, len(r.ImageIDs))
	for _, id := range r.ImageIDs {
		urls = append(urls, b.PreviewURL(id))
	}
	return domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		ImageURLs:   urls,
		SellerID:    r.SellerID,
		Stock:       r.Stock,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// toFileIDs converts preview URLs produced by this backend back to file
// ids. Anything else is kept as given.
func (b *Backend) toFileIDs(refs []string) []string {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if id, ok := b.stores.Files.IDFromURL(ref); ok {
			ref = id
		}
		ids = append(ids, ref)
	}
	return ids
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (b *Backend) CreateOrder(ctx context.Context, in domain.NewOrder) (*domain.Order, error) {
	now := b.now()
	o := domain.Order{
		ID:              uuid.NewString(),
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
	if err := b.stores.Orders.InsertOrder(ctx, o); err != nil {
		return nil, domain.NewBackendError("create order", err)
	}
	return &o, nil
}

func (b *Backend) ListMyOrders(ctx context.Context, customerID string) []domain.Order {
	orders, err := b.stores.Orders.ListByCustomer(ctx, customerID)
	if err != nil {
		b.log.Error().Err(err).Str("customer_id", customerID).Msg("failed to list orders")
		return []domain.Order{}
	}
	return orders
}

// ListSellerOrders scans every order and keeps those with a line item
// attributed to sellerID. Cost grows with the total order count.
func (b *Backend) ListSellerOrders(ctx context.Context, sellerID string) []domain.Order {
	all, err := b.stores.Orders.ListAll(ctx)
	if err != nil {
		b.log.Error().Err(err).Str("seller_id", sellerID).Msg("failed to scan orders")
		return []domain.Order{}
	}
	metrics.SellerOrderScanSize.Observe(float64(len(all)))
	return attribution.FilterOrders(all, sellerID, nil)
}

func (b *Backend) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	o, err := b.stores.Orders.SetStatus(ctx, orderID, status, b.now())
	if err != nil {
		return nil, domain.NewBackendError("update order status", err)
	}
	return o, nil
}

// ── Files ────────────────────────────────────────────────────────────────────

func (b *Backend) UploadFile(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", &domain.ValidationError{Field: "file", Reason: "is empty"}
	}
	id := uuid.NewString()
	if err := b.stores.Files.Put(ctx, id, data, contentType); err != nil {
		return "", domain.NewBackendError("upload file", err)
	}
	return id, nil
}

// PreviewURL returns ref unchanged when it already is a URL.
func (b *Backend) PreviewURL(ref string) string {
	if ref == "" || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://") {
		return ref
	}
	return b.stores.Files.URL(ref)
}

func (b *Backend) DeleteFile(ctx context.Context, ref string) error {
	id := ref
	if fid, ok := b.stores.Files.IDFromURL(ref); ok {
		id = fid
	}
	if err := b.stores.Files.Delete(ctx, id); err != nil {
		return domain.NewBackendError("delete file", err)
	}
	return nil
}
