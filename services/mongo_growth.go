package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"outreach-tracker/models"
)

// GetGrowth fetches the growth record for a provider ID
func (s *MongoStore) GetGrowth(ctx context.Context, id string) (*models.InfluencerGrowth, error) {
	var growth models.InfluencerGrowth
	err := s.growth.FindOne(ctx, bson.M{"id": id}).Decode(&growth)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &growth, nil
}

// SaveGrowth overwrites the current snapshot and extends the history in one write
func (s *MongoStore) SaveGrowth(ctx context.Context, w GrowthWrite) (*models.InfluencerGrowth, error) {
	set := bson.M{
		"followers_count": w.FollowersCount,
		"following_count": w.FollowingCount,
		"is_verified":     w.IsVerified,
		"is_private":      w.IsPrivate,
		"updated_at":      w.Now,
	}
	if w.Username != "" {
		set["username"] = w.Username
	}

	setOnInsert := bson.M{"created_at": w.Now}
	update := bson.M{"$set": set, "$setOnInsert": setOnInsert}

	switch {
	case w.Append != nil:
		update["$push"] = bson.M{"growth_history": *w.Append}
	case w.Seed != nil:
		setOnInsert["growth_history"] = []models.GrowthPoint{*w.Seed}
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var growth models.InfluencerGrowth
	if err := s.growth.FindOneAndUpdate(ctx, bson.M{"id": w.ID}, update, opts).Decode(&growth); err != nil {
		return nil, err
	}
	return &growth, nil
}

// SetLatestGrowth caches the most recent growth computation
func (s *MongoStore) SetLatestGrowth(ctx context.Context, id string, growth models.Growth) error {
	_, err := s.growth.UpdateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{"latest_growth": growth},
	})
	return err
}

// ListGrowth returns every tracked account
func (s *MongoStore) ListGrowth(ctx context.Context) ([]models.InfluencerGrowth, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := s.growth.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tracked := []models.InfluencerGrowth{}
	if err := cursor.All(ctx, &tracked); err != nil {
		return nil, err
	}
	return tracked, nil
}
