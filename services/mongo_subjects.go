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

// subjectUpdate renders a patch as a Mongo update document
func subjectUpdate(patch models.SubjectPatch, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if v, ok := patch.UserID.Get(); ok {
		set["user_id"] = v
	}
	if v, ok := patch.ProviderID.Get(); ok {
		set["provider_id"] = v
	}
	if v, ok := patch.ProviderMessagingID.Get(); ok {
		set["provider_messaging_id"] = v
	}
	if v, ok := patch.Name.Get(); ok {
		set["name"] = v
	}
	if v, ok := patch.Username.Get(); ok {
		set["username"] = v
	}
	if v, ok := patch.ProfilePicture.Get(); ok {
		set["profile_picture"] = v
	}
	if v, ok := patch.FollowersCount.Get(); ok {
		set["followers_count"] = v
	}
	if v, ok := patch.FollowingCount.Get(); ok {
		set["following_count"] = v
	}
	if v, ok := patch.Provider.Get(); ok {
		set["provider"] = v
	}
	if v, ok := patch.Status.Get(); ok {
		set["status"] = v
	}
	if v, ok := patch.Source.Get(); ok {
		set["source"] = v
	}
	if v, ok := patch.LastContacted.Get(); ok {
		set["last_contacted"] = v
	}
	if v, ok := patch.LastMessageSent.Get(); ok {
		set["last_message_sent"] = v
	}

	setOnInsert := bson.M{"created_at": now}
	if !patch.Status.IsSet() {
		status := patch.InsertStatus
		if status == "" {
			status = models.SubjectStatusUnknown
		}
		setOnInsert["status"] = status
	}
	if !patch.Source.IsSet() && patch.InsertSource != "" {
		setOnInsert["source"] = patch.InsertSource
	}
	if !patch.FollowersCount.IsSet() {
		setOnInsert["followers_count"] = int64(0)
	}
	if !patch.FollowingCount.IsSet() {
		setOnInsert["following_count"] = int64(0)
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": setOnInsert,
	}
	if patch.IncMessageCount != 0 {
		update["$inc"] = bson.M{"message_count": patch.IncMessageCount}
	} else {
		setOnInsert["message_count"] = 0
	}
	if patch.AddCampaignID != "" {
		update["$addToSet"] = bson.M{"campaign_ids": patch.AddCampaignID}
	}
	return update
}

// FindSubject looks up a single subject by one identifying field
func (s *MongoStore) FindSubject(ctx context.Context, key SubjectKey, value string) (*models.Subject, error) {
	var subject models.Subject
	err := s.subjects.FindOne(ctx, bson.M{string(key): value}).Decode(&subject)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &subject, nil
}

// FindSubjectsByProvider returns the subjects of one channel in natural order
func (s *MongoStore) FindSubjectsByProvider(ctx context.Context, provider string) ([]models.Subject, error) {
	filter := bson.M{"name": bson.M{"$exists": true, "$ne": ""}}
	if provider != "" {
		filter["provider"] = provider
	}

	cursor, err := s.subjects.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subjects []models.Subject
	if err := cursor.All(ctx, &subjects); err != nil {
		return nil, err
	}
	return subjects, nil
}

// UpsertSubject applies the patch to the subject keyed by user_id, creating it if needed
func (s *MongoStore) UpsertSubject(ctx context.Context, userID string, patch models.SubjectPatch, now time.Time) (*models.Subject, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var subject models.Subject
	err := s.subjects.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, subjectUpdate(patch, now), opts).Decode(&subject)
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

// UpdateSubject applies the patch to an existing subject
func (s *MongoStore) UpdateSubject(ctx context.Context, id primitive.ObjectID, patch models.SubjectPatch, now time.Time) (*models.Subject, error) {
	update := subjectUpdate(patch, now)
	delete(update, "$setOnInsert")

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var subject models.Subject
	err := s.subjects.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&subject)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &subject, nil
}

// ListSubjects returns a page of subjects, most recently updated first, and the total match count
func (s *MongoStore) ListSubjects(ctx context.Context, f SubjectFilter) ([]models.Subject, int64, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Provider != "" {
		filter["provider"] = f.Provider
	}
	if f.CampaignID != "" {
		filter["campaign_ids"] = f.CampaignID
	}

	total, err := s.subjects.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(int64(f.Skip))
	if f.Limit > 0 {
		findOptions.SetLimit(int64(f.Limit))
	}

	cursor, err := s.subjects.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var subjects []models.Subject
	if err := cursor.All(ctx, &subjects); err != nil {
		return nil, 0, err
	}
	return subjects, total, nil
}

// CountSubjectsByStatus groups subjects by funnel status
func (s *MongoStore) CountSubjectsByStatus(ctx context.Context) (map[models.SubjectStatus]int64, error) {
	pipeline := []bson.M{
		{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
	}

	cursor, err := s.subjects.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[models.SubjectStatus]int64, len(rows))
	for _, row := range rows {
		counts[models.SubjectStatus(row.Status)] = row.Count
	}
	return counts, nil
}

// DeleteSubject removes a subject by canonical ID
func (s *MongoStore) DeleteSubject(ctx context.Context, userID string) (bool, error) {
	result, err := s.subjects.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}
