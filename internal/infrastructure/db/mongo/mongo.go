package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// Collections names the collection behind each repository.
type Collections struct {
	Accounts string
	Users    string
	Products string
	Orders   string
}

// Repositories groups the document stores of one database.
type Repositories struct {
	Accounts *AccountRepository
	Profiles *ProfileRepository
	Products *ProductRepository
	Orders   *OrderRepository
}

func NewRepositories(db *mongo.Database, c Collections) Repositories {
	return Repositories{
		Accounts: NewAccountRepository(db, c.Accounts),
		Profiles: NewProfileRepository(db, c.Users),
		Products: NewProductRepository(db, c.Products),
		Orders:   NewOrderRepository(db, c.Orders),
	}
}

// EnsureIndexes creates the indexes of every repository that declares some.
func (r Repositories) EnsureIndexes(ctx context.Context) error {
	if err := r.Accounts.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("account indexes: %w", err)
	}
	if err := r.Products.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("product indexes: %w", err)
	}
	if err := r.Orders.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("order indexes: %w", err)
	}
	return nil
}
