package services

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	subjectsCollection       = "subjects"
	campaignsCollection      = "campaigns"
	onboardedUsersCollection = "onboarded_users"
	growthCollection         = "influencer_growth"
)

// InitMongoDB initializes MongoDB connection
func InitMongoDB(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	slog.Info("Connected to MongoDB")
	return client, nil
}

// MongoStore implements every repository on top of one database
type MongoStore struct {
	db             *mongo.Database
	subjects       *mongo.Collection
	campaigns      *mongo.Collection
	onboardedUsers *mongo.Collection
	growth         *mongo.Collection
}

// NewMongoStore binds the store to a database
func NewMongoStore(client *mongo.Client, databaseName string) *MongoStore {
	db := client.Database(databaseName)
	return &MongoStore{
		db:             db,
		subjects:       db.Collection(subjectsCollection),
		campaigns:      db.Collection(campaignsCollection),
		onboardedUsers: db.Collection(onboardedUsersCollection),
		growth:         db.Collection(growthCollection),
	}
}

// CreateIndexes creates necessary database indexes
func (s *MongoStore) CreateIndexes(ctx context.Context) error {
	if _, err := s.subjects.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "provider_id", Value: 1}}},
		{Keys: bson.D{{Key: "provider_messaging_id", Value: 1}}},
		{Keys: bson.D{{Key: "provider", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "campaign_ids", Value: 1}}},
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("subjects indexes: %w", err)
	}

	if _, err := s.onboardedUsers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("onboarded users indexes: %w", err)
	}

	if _, err := s.campaigns.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expires_at", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("campaigns indexes: %w", err)
	}

	if _, err := s.growth.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("influencer growth indexes: %w", err)
	}

	slog.Info("Successfully created indexes")
	return nil
}
