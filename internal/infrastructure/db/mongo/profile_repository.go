package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketly/storefront/internal/core/domain"
	"github.com/marketly/storefront/internal/infrastructure/remote"
)

// ProfileRepository implements remote.ProfileStore. Documents share the id
// of their account.
type ProfileRepository struct {
	col *mongo.Collection
}

func NewProfileRepository(db *mongo.Database, collection string) *ProfileRepository {
	return &ProfileRepository{col: db.Collection(collection)}
}

type profileDoc struct {
	ID       string `bson:"_id"`
	Name     string `bson:"name"`
	Email    string `bson:"email"`
	Role     string `bson:"role"`
	AvatarID string `bson:"avatarId,omitempty"`
}

func (r *ProfileRepository) GetProfile(ctx context.Context, id string) (*remote.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc profileDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &remote.Profile{
		ID:       doc.ID,
		Name:     doc.Name,
		Email:    doc.Email,
		Role:     domain.Role(doc.Role),
		AvatarID: doc.AvatarID,
	}, nil
}

// PutProfile creates or replaces the profile.
func (r *ProfileRepository) PutProfile(ctx context.Context, p remote.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := profileDoc{ID: p.ID, Name: p.Name, Email: p.Email, Role: string(p.Role), AvatarID: p.AvatarID}
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) SetRole(ctx context.Context, id string, role domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"role": string(role)}})
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *ProfileRepository) DeleteProfile(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
