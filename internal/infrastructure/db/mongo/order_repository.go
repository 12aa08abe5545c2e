package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketly/storefront/internal/core/domain"
)

// OrderRepository implements remote.OrderStore. Line items stay an opaque
// JSON string, exactly as checkout wrote them.
type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database, collection string) *OrderRepository {
	return &OrderRepository{col: db.Collection(collection)}
}

type orderDoc struct {
	ID              string               `bson:"_id"`
	CustomerID      string               `bson:"customerId"`
	TotalAmount     primitive.Decimal128 `bson:"totalAmount"`
	Status          string               `bson:"status"`
	Items           string               `bson:"items"`
	ShippingAddress string               `bson:"shippingAddress"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

func (r *OrderRepository) InsertOrder(ctx context.Context, o domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := orderDoc{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		TotalAmount:     toDecimal128(o.TotalAmount),
		Status:          string(o.Status),
		Items:           o.Items,
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return r.find(ctx, bson.M{"customerId": customerID})
}

// ListAll returns every order. Seller attribution needs the full set because
// sellers are only recorded inside the items string.
func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	out := make([]domain.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.order())
	}
	return out, nil
}

func (r *OrderRepository) SetStatus(ctx context.Context, id string, status domain.OrderStatus, at time.Time) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": string(status), "updatedAt": at}}
	var doc orderDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
		}
		return nil, fmt.Errorf("set order status: %w", err)
	}
	o := doc.order()
	return &o, nil
}

// EnsureIndexes creates the indexes order listing relies on.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (d orderDoc) order() domain.Order {
	return domain.Order{
		ID:              d.ID,
		CustomerID:      d.CustomerID,
		TotalAmount:     fromDecimal128(d.TotalAmount),
		Status:          domain.OrderStatus(d.Status),
		Items:           d.Items,
		ShippingAddress: d.ShippingAddress,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}
