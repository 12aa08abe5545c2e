package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketly/storefront/internal/core/domain"
	"github.com/marketly/storefront/internal/infrastructure/remote"
)

// AccountRepository implements remote.AccountStore.
type AccountRepository struct {
	col *mongo.Collection
}

func NewAccountRepository(db *mongo.Database, collection string) *AccountRepository {
	return &AccountRepository{col: db.Collection(collection)}
}

type accountDoc struct {
	ID           string            `bson:"_id"`
	Email        string            `bson:"email"`
	Name         string            `bson:"name"`
	PasswordHash string            `bson:"passwordHash"`
	Prefs        map[string]string `bson:"prefs,omitempty"`
	CreatedAt    int64             `bson:"createdAt"`
}

func (r *AccountRepository) CreateAccount(ctx context.Context, a remote.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := accountDoc{
		ID:           a.ID,
		Email:        a.Email,
		Name:         a.Name,
		PasswordHash: a.PasswordHash,
		Prefs:        a.Prefs,
		CreatedAt:    a.CreatedAt.Unix(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *AccountRepository) AccountByEmail(ctx context.Context, email string) (*remote.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) AccountByID(ctx context.Context, id string) (*remote.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AccountRepository) DeleteAccount(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*remote.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &remote.Account{
		ID:           doc.ID,
		Email:        doc.Email,
		Name:         doc.Name,
		PasswordHash: doc.PasswordHash,
		Prefs:        doc.Prefs,
		CreatedAt:    unixToTime(doc.CreatedAt),
	}, nil
}

// EnsureIndexes makes email unique.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
