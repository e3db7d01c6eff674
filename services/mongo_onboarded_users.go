package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"outreach-tracker/models"
)

// UpsertOnboardedUser creates the user on first sight and refreshes contact identifiers afterwards
func (s *MongoStore) UpsertOnboardedUser(ctx context.Context, userID, name string, contacts models.OnboardedUserContacts, now time.Time) (*models.OnboardedUser, error) {
	set := bson.M{"updated_at": now}
	if v, ok := contacts.ProviderID.Get(); ok {
		set["provider_id"] = v
	}
	if v, ok := contacts.ProviderMessagingID.Get(); ok {
		set["provider_messaging_id"] = v
	}
	if v, ok := contacts.Email.Get(); ok {
		set["email"] = v
	}
	if v, ok := contacts.Phone.Get(); ok {
		set["phone"] = v
	}

	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"name":         name,
			"onboarded_at": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var user models.OnboardedUser
	if err := s.onboardedUsers.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistingUserIDs returns the subset of userIDs that belong to onboarded users
func (s *MongoStore) ExistingUserIDs(ctx context.Context, userIDs []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(userIDs))
	if len(userIDs) == 0 {
		return existing, nil
	}

	findOptions := options.Find().SetProjection(bson.M{"user_id": 1})
	cursor, err := s.onboardedUsers.Find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		UserID string `bson:"user_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		existing[row.UserID] = struct{}{}
	}
	return existing, nil
}

// ListOnboardedUsers returns onboarded users, most recent first
func (s *MongoStore) ListOnboardedUsers(ctx context.Context) ([]models.OnboardedUser, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "onboarded_at", Value: -1}})

	cursor, err := s.onboardedUsers.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.OnboardedUser{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
