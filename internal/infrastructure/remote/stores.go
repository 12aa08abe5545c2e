package remote

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marketly/storefront/internal/core/domain"
)

// Account is an identity record: credentials plus free-form preferences.
type Account struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Prefs        map[string]string
	CreatedAt    time.Time
}

// PrefRole is the preference key mirroring the user's role.
const PrefRole = "role"

// Profile is the public user document keyed by account id.
type Profile struct {
	ID       string
	Name     string
	Email    string
	Role     domain.Role
	AvatarID string
}

// ProductRecord is a stored product. Images are file ids, not URLs.
type ProductRecord struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	ImageIDs    []string
	SellerID    string
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductUpdate lists the fields to overwrite. Nil fields are kept.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	ImageIDs    []string
	Stock       *int
	UpdatedAt   time.Time
}

// AccountStore keeps accounts. CreateAccount reports domain.ErrEmailTaken
// for a duplicate email; lookups and DeleteAccount report
// domain.ErrUserNotFound.
type AccountStore interface {
	CreateAccount(ctx context.Context, a Account) error
	AccountByEmail(ctx context.Context, email string) (*Account, error)
	AccountByID(ctx context.Context, id string) (*Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

// ProfileStore keeps user profiles. SetRole and DeleteProfile report
// domain.ErrUserNotFound for an absent profile.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*Profile, error)
	PutProfile(ctx context.Context, p Profile) error
	SetRole(ctx context.Context, id string, role domain.Role) error
	DeleteProfile(ctx context.Context, id string) error
}

// ProductStore keeps products. Lists are newest first. Get, Update and
// Delete report domain.ErrProductNotFound for an absent id.
type ProductStore interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]ProductRecord, error)
	ListBySeller(ctx context.Context, sellerID string) ([]ProductRecord, error)
	GetProduct(ctx context.Context, id string) (*ProductRecord, error)
	InsertProduct(ctx context.Context, p ProductRecord) error
	UpdateProduct(ctx context.Context, id string, u ProductUpdate) (*ProductRecord, error)
	DeleteProduct(ctx context.Context, id string) error
}

// OrderStore keeps orders. Lists are newest first. SetStatus reports
// domain.ErrOrderNotFound for an absent id.
type OrderStore interface {
	InsertOrder(ctx context.Context, o domain.Order) error
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	SetStatus(ctx context.Context, id string, status domain.OrderStatus, at time.Time) (*domain.Order, error)
}

// FileStore keeps uploaded files in a bucket.
type FileStore interface {
	Put(ctx context.Context, id string, data []byte, contentType string) error
	URL(id string) string
	// IDFromURL inverts URL. It reports false for URLs it did not produce.
	IDFromURL(url string) (string, bool)
	Delete(ctx context.Context, id string) error
}

// SessionStore tracks open sessions so tokens can be revoked before they
// expire.
type SessionStore interface {
	Open(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	// Lookup returns the user id bound to an active session.
	Lookup(ctx context.Context, sessionID string) (string, bool, error)
	Revoke(ctx context.Context, sessionID string) error
}

// Stores bundles the persistence the remote backend runs on.
type Stores struct {
	Accounts AccountStore
	Profiles ProfileStore
	Products ProductStore
	Orders   OrderStore
	Files    FileStore
	Sessions SessionStore
}
