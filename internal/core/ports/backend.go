package ports

import (
	"context"

	"github.com/marketly/storefront/internal/core/domain"
)

// AuthAPI covers identity and session operations.
type AuthAPI interface {
	// Login opens a session. identifier is a name or an email depending on
	// the backend.
	Login(ctx context.Context, identifier, secret string) (*domain.User, error)
	// Register creates an account and opens a session for it.
	Register(ctx context.Context, email, secret, name string, role domain.Role) (*domain.User, error)
	// Logout ends the current session. It never fails observably.
	Logout(ctx context.Context)
	// CurrentUser returns the logged-in user, or nil when there is no
	// session or it cannot be resolved.
	CurrentUser(ctx context.Context) *domain.User
	UpdateRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error)
}

// CatalogAPI covers products. Listing reads degrade to an empty slice and
// single lookups to nil; writes return errors.
type CatalogAPI interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) []domain.Product
	GetProduct(ctx context.Context, id string) *domain.Product
	CreateProduct(ctx context.Context, in domain.NewProduct) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListMyProducts(ctx context.Context, sellerID string) []domain.Product
}

// OrderAPI covers orders. Lists are newest first.
type OrderAPI interface {
	CreateOrder(ctx context.Context, in domain.NewOrder) (*domain.Order, error)
	ListMyOrders(ctx context.Context, customerID string) []domain.Order
	// ListSellerOrders returns every order holding at least one line item
	// attributed to sellerID.
	ListSellerOrders(ctx context.Context, sellerID string) []domain.Order
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)
}

// StorageAPI covers uploaded files such as product images and avatars.
type StorageAPI interface {
	UploadFile(ctx context.Context, data []byte, contentType string) (string, error)
	PreviewURL(fileRef string) string
	DeleteFile(ctx context.Context, fileRef string) error
}

// Backend is the full service contract. Exactly one implementation is chosen
// at process start and injected everywhere.
type Backend interface {
	AuthAPI
	CatalogAPI
	OrderAPI
	StorageAPI

	// Name labels the backend in logs and metrics.
	Name() string
}
