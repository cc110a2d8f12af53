// path: database/history.go
package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/models"
)

// HistoryStore is the append-only transition log.
type HistoryStore struct {
	col *mongo.Collection
}

func NewHistoryStore(col *mongo.Collection) *HistoryStore { return &HistoryStore{col: col} }

func History() *HistoryStore { return NewHistoryStore(Col(HistoryCollection)) }

func (s *HistoryStore) Append(ctx context.Context, e models.HistoryEntry) error {
	if _, err := s.col.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("history insert: %w", err)
	}
	return nil
}

// ByVolunteer returns the volunteer's entries, newest first.
func (s *HistoryStore) ByVolunteer(ctx context.Context, volunteerID string) ([]models.HistoryEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{"volunteer_id": volunteerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("history find %s: %w", volunteerID, err)
	}
	out := []models.HistoryEntry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("history decode: %w", err)
	}
	return out, nil
}
