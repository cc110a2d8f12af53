// path: database/requests.go
package database

import (
	"context"
	"encoding/base64"
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

// RequestStore persists aid requests.
type RequestStore struct {
	col *mongo.Collection
}

func NewRequestStore(col *mongo.Collection) *RequestStore { return &RequestStore{col: col} }

// Requests returns the store over the connected database.
func Requests() *RequestStore { return NewRequestStore(Col(RequestsCollection)) }

// ListFilter narrows GET /api/requesters. Zero values mean "any".
type ListFilter struct {
	Status models.Status
	Type   models.SupplyType
	From   *time.Time
	To     *time.Time
	Limit  int
	Cursor string
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// All returns every request; the stats engine works on the full set.
func (s *RequestStore) All(ctx context.Context) ([]models.Request, error) {
	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("requests find: %w", err)
	}
	out := []models.Request{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("requests decode: %w", err)
	}
	return out, nil
}

// List returns one page, newest first, and the cursor of the next page.
func (s *RequestStore) List(ctx context.Context, f ListFilter) ([]models.Request, string, error) {
	limit := f.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	filter, err := listQuery(f)
	if err != nil {
		return nil, "", err
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit + 1))

	cur, err := s.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, "", fmt.Errorf("requests find: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]models.Request, 0, limit)
	var next string
	for cur.Next(ctx) {
		var doc models.Request
		if err := cur.Decode(&doc); err != nil {
			return nil, "", fmt.Errorf("requests decode: %w", err)
		}
		if len(items) == limit {
			last := items[len(items)-1]
			next = encodeCursor(last.CreatedAt, last.ID)
			break
		}
		items = append(items, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, "", fmt.Errorf("requests cursor: %w", err)
	}
	return items, next, nil
}

func listQuery(f ListFilter) (bson.M, error) {
	filter := bson.M{}
	if f.Status != "" {
		if f.Status == models.StatusPending {
			// records written before status existed count as pending
			filter["status"] = bson.M{"$in": bson.A{string(models.StatusPending), nil, ""}}
		} else {
			filter["status"] = string(f.Status)
		}
	}
	if f.Type != "" {
		filter["req_all_types"] = string(f.Type)
	}
	if f.From != nil {
		setRange(filter, "created_at", "$gte", *f.From)
	}
	if f.To != nil {
		setRange(filter, "created_at", "$lte", *f.To)
	}
	if f.Cursor != "" {
		at, id, err := decodeCursor(f.Cursor)
		if err != nil {
			return nil, apperr.New(apperr.Validation, "invalid cursor")
		}
		filter["$or"] = bson.A{
			bson.M{"created_at": bson.M{"$lt": at}},
			bson.M{"created_at": at, "_id": bson.M{"$lt": id}},
		}
	}
	return filter, nil
}

func setRange(m bson.M, key, op string, t time.Time) {
	if m[key] == nil {
		m[key] = bson.M{}
	}
	m[key].(bson.M)[op] = t
}

func encodeCursor(at time.Time, id string) string {
	raw := at.UTC().Format(time.RFC3339Nano) + "|" + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(s string) (time.Time, string, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return time.Time{}, "", err
	}
	ts, id, ok := strings.Cut(string(b), "|")
	if !ok || id == "" {
		return time.Time{}, "", errors.New("malformed cursor")
	}
	at, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, "", err
	}
	return at, id, nil
}

func (s *RequestStore) ByID(ctx context.Context, id string) (models.Request, error) {
	var r models.Request
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Request{}, apperr.New(apperr.NotFound, "request %s not found", id)
	}
	if err != nil {
		return models.Request{}, fmt.Errorf("requests find %s: %w", id, err)
	}
	return r, nil
}

// Put inserts a new request. A duplicate id is a Conflict.
func (s *RequestStore) Put(ctx context.Context, r models.Request) error {
	if _, err := s.col.InsertOne(ctx, r); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Wrap(err, apperr.Conflict, "request already exists")
		}
		return fmt.Errorf("requests insert: %w", err)
	}
	return nil
}

// Update sets fields (storage names) and returns the record as written.
func (s *RequestStore) Update(ctx context.Context, id string, fields map[string]any) (models.Request, error) {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var r models.Request
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Request{}, apperr.New(apperr.NotFound, "request %s not found", id)
	}
	if err != nil {
		return models.Request{}, fmt.Errorf("requests update %s: %w", id, err)
	}
	return r, nil
}

// Exists reports whether a request with the same phone and address is on file.
func (s *RequestStore) Exists(ctx context.Context, phone, address string) (bool, error) {
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	var doc bson.M
	err := s.col.FindOne(ctx, bson.M{"req_phone_number": phone, "req_address": address}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("requests lookup: %w", err)
	}
	return true, nil
}

// ActiveFor lists the requests assigned to volunteerID that are not done.
func (s *RequestStore) ActiveFor(ctx context.Context, volunteerID string) ([]models.Request, error) {
	filter := bson.M{
		"assigned_user": volunteerID,
		"status":        bson.M{"$ne": string(models.StatusDone)},
	}
	cur, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("requests active for %s: %w", volunteerID, err)
	}
	out := []models.Request{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("requests decode: %w", err)
	}
	return out, nil
}
