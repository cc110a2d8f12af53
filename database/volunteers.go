// path: database/volunteers.go
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/apperr"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/models"
)

// VolunteerStore keeps volunteer profiles, their role claims and the
// per-request action map.
type VolunteerStore struct {
	col *mongo.Collection
	now func() time.Time
}

func NewVolunteerStore(col *mongo.Collection) *VolunteerStore {
	return &VolunteerStore{col: col, now: func() time.Time { return time.Now().UTC() }}
}

func Volunteers() *VolunteerStore { return NewVolunteerStore(Col(VolunteersCollection)) }

// List returns volunteers, optionally narrowed by verification state.
func (s *VolunteerStore) List(ctx context.Context, verified *bool) ([]models.Volunteer, error) {
	filter := bson.M{}
	if verified != nil {
		if *verified {
			filter["is_verified"] = true
		} else {
			filter["is_verified"] = bson.M{"$ne": true}
		}
	}
	cur, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("volunteers find: %w", err)
	}
	out := []models.Volunteer{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("volunteers decode: %w", err)
	}
	return out, nil
}

func (s *VolunteerStore) ByID(ctx context.Context, id string) (models.Volunteer, error) {
	var v models.Volunteer
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Volunteer{}, apperr.New(apperr.NotFound, "volunteer %s not found", id)
	}
	if err != nil {
		return models.Volunteer{}, fmt.Errorf("volunteers find %s: %w", id, err)
	}
	return v, nil
}

// Verify marks the volunteer verified by adminID and returns the record.
func (s *VolunteerStore) Verify(ctx context.Context, id, adminID string) (models.Volunteer, error) {
	update := bson.M{"$set": bson.M{
		"is_verified":    true,
		"is_verified_by": adminID,
		"verified_at":    s.now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var v models.Volunteer
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Volunteer{}, apperr.New(apperr.NotFound, "volunteer %s not found", id)
	}
	if err != nil {
		return models.Volunteer{}, fmt.Errorf("volunteers verify %s: %w", id, err)
	}
	return v, nil
}

// Upsert writes the profile fields of v, creating the record if needed.
// Verification state and the action map are left untouched.
func (s *VolunteerStore) Upsert(ctx context.Context, v models.Volunteer) error {
	created := v.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	update := bson.M{
		"$set": bson.M{
			"email":        v.Email,
			"phone_number": v.PhoneNumber,
			"full_name":    v.FullName,
			"groups":       v.Groups,
		},
		"$setOnInsert": bson.M{
			"is_verified": false,
			"created_at":  created,
		},
	}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": v.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("volunteers upsert %s: %w", v.ID, err)
	}
	return nil
}

// RecordAction notes the latest action volunteerID took on requestID.
// requestID becomes part of a field path, so ids with '.' or '$' are refused.
func (s *VolunteerStore) RecordAction(ctx context.Context, volunteerID, requestID string, action models.ActionType) error {
	if requestID == "" || strings.ContainsAny(requestID, ".$") {
		return apperr.New(apperr.Validation, "request id %q cannot be used as a history key", requestID)
	}
	update := bson.M{"$set": bson.M{"history." + requestID: string(action)}}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": volunteerID}, update)
	if err != nil {
		return fmt.Errorf("volunteers record action %s: %w", volunteerID, err)
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "volunteer %s not found", volunteerID)
	}
	return nil
}
