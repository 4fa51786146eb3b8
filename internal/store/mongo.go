package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dkorolev/digital-home/backend/internal/models"
)

// MongoStore handles profile documents in MongoDB, one per user.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("profiles")}
}

// GetByUser returns the user's profile, or an empty default if none was saved yet.
func (s *MongoStore) GetByUser(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := s.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &models.Profile{UserID: userID, Links: []models.Link{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find profile: %w", err)
	}
	if p.Links == nil {
		p.Links = []models.Link{}
	}
	return &p, nil
}

// Upsert replaces the user's profile document, creating it on first save.
func (s *MongoStore) Upsert(ctx context.Context, p *models.Profile) error {
	p.UpdatedAt = time.Now()
	_, err := s.col.UpdateOne(ctx,
		bson.M{"user_id": p.UserID},
		bson.M{"$set": bson.M{
			"user_id":      p.UserID,
			"display_name": p.DisplayName,
			"bio":          p.Bio,
			"links":        p.Links,
			"updated_at":   p.UpdatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo upsert profile: %w", err)
	}
	return nil
}

// SetAvatarKey records the object key of the user's uploaded avatar.
func (s *MongoStore) SetAvatarKey(ctx context.Context, userID, key string) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"user_id": userID, "avatar_key": key, "updated_at": time.Now()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo set avatar key: %w", err)
	}
	return nil
}
