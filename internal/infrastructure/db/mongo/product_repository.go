package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketly/storefront/internal/core/domain"
	"github.com/marketly/storefront/internal/infrastructure/remote"
)

// ProductRepository implements remote.ProductStore.
type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database, collection string) *ProductRepository {
	return &ProductRepository{col: db.Collection(collection)}
}

type productDoc struct {
	ID          string               `bson:"_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	Category    string               `bson:"category"`
	ImageIDs    []string             `bson:"imageIds"`
	SellerID    string               `bson:"sellerId"`
	Stock       int                  `bson:"stock"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

func (r *ProductRepository) ListProducts(ctx context.Context, f domain.ProductFilter) ([]remote.ProductRecord, error) {
	return r.find(ctx, productFilter(f))
}

// productFilter translates f into a query document.
func productFilter(f domain.ProductFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" && f.Category != domain.AllCategories {
		filter["category"] = f.Category
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = toDecimal128(*f.MinPrice)
	}
	if f.MaxPrice != nil {
		price["$lte"] = toDecimal128(*f.MaxPrice)
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	return filter
}

func (r *ProductRepository) ListBySeller(ctx context.Context, sellerID string) ([]remote.ProductRecord, error) {
	return r.find(ctx, bson.M{"sellerId": sellerID})
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M) ([]remote.ProductRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	out := make([]remote.ProductRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.record())
	}
	return out, nil
}

func (r *ProductRepository) GetProduct(ctx context.Context, id string) (*remote.ProductRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc productDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	rec := doc.record()
	return &rec, nil
}

func (r *ProductRepository) InsertProduct(ctx context.Context, p remote.ProductRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       toDecimal128(p.Price),
		Category:    p.Category,
		ImageIDs:    p.ImageIDs,
		SellerID:    p.SellerID,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if doc.ImageIDs == nil {
		doc.ImageIDs = []string{}
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// UpdateProduct sets the given fields and returns the updated document.
func (r *ProductRepository) UpdateProduct(ctx context.Context, id string, u remote.ProductUpdate) (*remote.ProductRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updatedAt": u.UpdatedAt}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Price != nil {
		set["price"] = toDecimal128(*u.Price)
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.ImageIDs != nil {
		set["imageIds"] = u.ImageIDs
	}
	if u.Stock != nil {
		set["stock"] = *u.Stock
	}

	var doc productDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	rec := doc.record()
	return &rec, nil
}

func (r *ProductRepository) DeleteProduct(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return nil
}

// EnsureIndexes creates the indexes listing queries rely on.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "sellerId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (d productDoc) record() remote.ProductRecord {
	return remote.ProductRecord{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       fromDecimal128(d.Price),
		Category:    d.Category,
		ImageIDs:    d.ImageIDs,
		SellerID:    d.SellerID,
		Stock:       d.Stock,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
