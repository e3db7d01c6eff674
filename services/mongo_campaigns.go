package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"outreach-tracker/models"
)

// ExpireDueCampaigns marks every campaign past its deadline as expired
func (s *MongoStore) ExpireDueCampaigns(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"expires_at": bson.M{"$ne": nil, "$lte": now},
		"status":     bson.M{"$ne": models.CampaignStatusExpired},
	}
	update := bson.M{
		"$set": bson.M{
			"status":     models.CampaignStatusExpired,
			"updated_at": now,
		},
	}

	result, err := s.campaigns.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// ListCampaigns returns all campaigns, newest first
func (s *MongoStore) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.campaigns.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	campaigns := []models.Campaign{}
	if err := cursor.All(ctx, &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

// GetCampaign fetches a campaign by ID
func (s *MongoStore) GetCampaign(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	var campaign models.Campaign
	err := s.campaigns.FindOne(ctx, bson.M{"_id": id}).Decode(&campaign)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

// InsertCampaign stores a new campaign and assigns its ID
func (s *MongoStore) InsertCampaign(ctx context.Context, campaign *models.Campaign) error {
	if campaign.ID.IsZero() {
		campaign.ID = primitive.NewObjectID()
	}
	campaign.UserCount = len(campaign.UserIDs)
	_, err := s.campaigns.InsertOne(ctx, campaign)
	return err
}

// UpdateCampaign applies a partial edit; user_count follows user_ids
func (s *MongoStore) UpdateCampaign(ctx context.Context, id primitive.ObjectID, patch models.CampaignPatch, now time.Time) (*models.Campaign, error) {
	set := bson.M{"updated_at": now}
	unset := bson.M{}

	if v, ok := patch.Name.Get(); ok {
		set["name"] = v
	}
	if v, ok := patch.Description.Get(); ok {
		set["description"] = v
	}
	if v, ok := patch.Status.Get(); ok {
		set["status"] = v
	}
	if v, ok := patch.UserIDs.Get(); ok {
		set["user_ids"] = v
		set["user_count"] = len(v)
	}
	if v, ok := patch.ExpiresAt.Get(); ok {
		if v == nil {
			unset["expires_at"] = 1
		} else {
			set["expires_at"] = *v
		}
	}
	if v, ok := patch.Notes.Get(); ok {
		set["notes"] = v
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var campaign models.Campaign
	err := s.campaigns.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&campaign)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

// DeleteCampaign hard-deletes a campaign
func (s *MongoStore) DeleteCampaign(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := s.campaigns.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}
