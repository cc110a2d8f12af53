package lifecycle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/apperr"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/identity"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/models"
)

type memRecords struct {
	mu        sync.Mutex
	recs      map[string]models.Request
	readFails int
	writeErr  error
	writes    int
	last      map[string]any
}

func newMemRecords(recs ...models.Request) *memRecords {
	m := &memRecords{recs: map[string]models.Request{}}
	for _, r := range recs {
		m.recs[r.ID] = r
	}
	return m
}

func (m *memRecords) ByID(_ context.Context, id string) (models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readFails > 0 {
		m.readFails--
		return models.Request{}, errors.New("connection reset")
	}
	r, ok := m.recs[id]
	if !ok {
		return models.Request{}, apperr.New(apperr.NotFound, "request not found")
	}
	return r, nil
}

func (m *memRecords) Update(_ context.Context, id string, f map[string]any) (models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.last = f
	if m.writeErr != nil {
		return models.Request{}, m.writeErr
	}
	r, ok := m.recs[id]
	if !ok {
		return models.Request{}, apperr.New(apperr.NotFound, "request not found")
	}
	for k, v := range f {
		switch k {
		case "status":
			r.Status = models.Status(v.(string))
		case "assigned_user":
			if v == nil {
				r.AssignedUser = nil
			} else {
				s := v.(string)
				r.AssignedUser = &s
			}
		case "comments":
			r.Comments = v.(string)
		case "updated_at":
			t := v.(time.Time)
			r.UpdatedAt = &t
		case "updated_by":
			r.UpdatedBy = v.(string)
		case "claimed_at":
			t := v.(time.Time)
			r.ClaimedAt = &t
		case "completed_at":
			if v == nil {
				r.CompletedAt = nil
			} else {
				t := v.(time.Time)
				r.CompletedAt = &t
			}
		case "completed_by":
			if v == nil {
				r.CompletedBy = ""
			} else {
				r.CompletedBy = v.(string)
			}
		}
	}
	m.recs[id] = r
	return r, nil
}

func (m *memRecords) get(id string) models.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recs[id]
}

type memAudit struct {
	mu      sync.Mutex
	entries []models.HistoryEntry
	err     error
}

func (a *memAudit) Append(_ context.Context, e models.HistoryEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, e)
	return nil
}

type staticRoles map[string]identity.Role

func (r staticRoles) Role(_ context.Context, id string) (identity.Role, error) {
	role, ok := r[id]
	if !ok {
		return "", identity.ErrUserNotFound
	}
	return role, nil
}

type slowRoles struct{}

func (slowRoles) Role(ctx context.Context, _ string) (identity.Role, error) {
	<-ctx.Done()
	return "", errors.Join(identity.ErrUnavailable, ctx.Err())
}

type trackerCall struct {
	volunteer, request string
	action             models.ActionType
}

type memTracker struct{ calls []trackerCall }

func (t *memTracker) RecordAction(_ context.Context, v, r string, a models.ActionType) error {
	t.calls = append(t.calls, trackerCall{v, r, a})
	return nil
}
