// path: lifecycle/service.go
package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/apperr"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/identity"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/metrics"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/models"
)

// RecordStore reads and patches request records. ByID returns a NotFound
// apperr when the record is absent. Update applies fields (storage names)
// and returns the record as written.
type RecordStore interface {
	ByID(ctx context.Context, id string) (models.Request, error)
	Update(ctx context.Context, id string, fields map[string]any) (models.Request, error)
}

// AuditLog appends history entries.
type AuditLog interface {
	Append(ctx context.Context, e models.HistoryEntry) error
}

// ActionTracker keeps the per-volunteer action map. Optional.
type ActionTracker interface {
	RecordAction(ctx context.Context, volunteerID, requestID string, action models.ActionType) error
}

type Service struct {
	Records     RecordStore
	Audit       AuditLog
	Roles       identity.RoleProvider
	Tracker     ActionTracker
	Log         *zap.Logger
	Retry       RetryPolicy
	RoleTimeout time.Duration
	Now         func() time.Time
	NewID       func() string
}

func NewService(records RecordStore, audit AuditLog, roles identity.RoleProvider, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		Records:     records,
		Audit:       audit,
		Roles:       roles,
		Log:         log,
		Retry:       DefaultRetry,
		RoleTimeout: 3 * time.Second,
		Now:         func() time.Time { return time.Now().UTC() },
		NewID:       uuid.NewString,
	}
}

// Result of Apply. History is nil when the status did not change.
type Result struct {
	Authorized bool
	Record     models.Request
	History    *models.HistoryEntry
}

// Apply runs one gated update: resolve the caller's role, check the rules,
// write the record, then log the transition. The record write is the
// authoritative step; a failed history write is logged and swallowed.
func (s *Service) Apply(ctx context.Context, id string, u Update, callerID string) (Result, error) {
	if callerID == "" {
		return Result{}, apperr.New(apperr.Authentication, "caller identity could not be resolved")
	}

	var current models.Request
	err := s.Retry.Do(ctx, func(ctx context.Context) error {
		var err error
		current, err = s.Records.ByID(ctx, id)
		return err
	})
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return Result{}, err
		}
		return Result{}, apperr.Wrap(err, apperr.Unknown, "could not load request")
	}

	caller, err := s.resolve(ctx, callerID)
	if err != nil {
		return Result{}, err
	}

	if err := validate(current, u); err != nil {
		return Result{}, err
	}
	if err := Authorize(current, u, caller); err != nil {
		metrics.DenialsTotal.WithLabelValues(string(apperr.KindOf(err))).Inc()
		s.Log.Info("update denied",
			zap.String("request_id", id),
			zap.String("caller", caller.ID),
			zap.String("role", string(caller.Role)),
			zap.String("status", string(current.EffectiveStatus())),
			zap.Error(err))
		return Result{}, err
	}

	now := s.Now()
	oldStatus := current.EffectiveStatus()
	newStatus, assignee := u.Next(current)
	claimed := u.SetAssignee && assignee != nil && current.Assignee() != *assignee
	action := ActionFor(oldStatus, newStatus, claimed)
	fields := s.fields(current, u, caller, now, oldStatus, newStatus, action)

	var updated models.Request
	err = s.Retry.Do(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.Records.Update(ctx, id, fields)
		return err
	})
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return Result{}, err
		}
		return Result{}, apperr.Wrap(err, apperr.Unknown, "could not update request")
	}

	res := Result{Authorized: true, Record: updated}
	if oldStatus == newStatus {
		return res, nil
	}

	entry := s.historyEntry(current, u, caller, now, oldStatus, newStatus, action, assignee)
	metrics.TransitionsTotal.WithLabelValues(string(action)).Inc()
	if err := s.Audit.Append(ctx, entry); err != nil {
		metrics.HistoryWriteFailuresTotal.Inc()
		s.Log.Error("failed to record history",
			zap.String("request_id", id),
			zap.String("action", string(action)),
			zap.Error(err))
		return res, nil
	}
	res.History = &entry

	if s.Tracker != nil && entry.VolunteerID != nil {
		if err := s.Tracker.RecordAction(ctx, *entry.VolunteerID, id, action); err != nil {
			s.Log.Warn("failed to update volunteer history",
				zap.String("volunteer_id", *entry.VolunteerID),
				zap.Error(err))
		}
	}
	return res, nil
}

// resolve looks the caller's role up under RoleTimeout. Any failure,
// including a timeout, is an authentication error.
func (s *Service) resolve(ctx context.Context, callerID string) (Caller, error) {
	timeout := s.RoleTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	role, err := s.Roles.Role(rctx, callerID)
	if err != nil {
		msg := "could not verify caller role"
		if errors.Is(err, identity.ErrUserNotFound) {
			msg = "caller is not a registered user"
		}
		s.Log.Warn("role lookup failed", zap.String("caller", callerID), zap.Error(err))
		return Caller{}, apperr.Wrap(err, apperr.Authentication, msg)
	}
	return Caller{ID: callerID, Role: role}, nil
}

func (s *Service) fields(current models.Request, u Update, caller Caller, now time.Time,
	oldStatus, newStatus models.Status, action models.ActionType) map[string]any {

	f := map[string]any{
		"updated_at": now,
		"updated_by": caller.ID,
	}
	if u.Status != nil {
		f["status"] = string(newStatus)
	}
	if u.SetAssignee {
		_, assignee := u.Next(current)
		if assignee == nil {
			f["assigned_user"] = nil
		} else {
			f["assigned_user"] = *assignee
		}
	}
	if u.Comments != nil {
		f["comments"] = *u.Comments
	}
	if u.MapLink != nil {
		f["req_location_link"] = *u.MapLink
	}
	if u.Address != nil {
		f["req_address"] = *u.Address
	}
	if u.PersonCount != nil {
		f["req_affected_individuals"] = int64(*u.PersonCount)
	}

	switch {
	case action == models.ActionClaim:
		f["claimed_at"] = now
	case newStatus == models.StatusDone && oldStatus != models.StatusDone:
		f["completed_at"] = now
		f["completed_by"] = caller.ID
	case action == models.ActionReopen:
		f["completed_at"] = nil
		f["completed_by"] = nil
	}
	return f
}

func (s *Service) historyEntry(current models.Request, u Update, caller Caller, now time.Time,
	oldStatus, newStatus models.Status, action models.ActionType, assignee *string) models.HistoryEntry {

	volunteer := assignee
	if volunteer == nil {
		volunteer = current.AssignedUser
	}
	meta := map[string]any{
		models.MetaRequestName:    current.FullName,
		models.MetaRequestAddress: current.Address,
	}
	if u.Comments != nil {
		meta[models.MetaComments] = *u.Comments
	}
	switch action {
	case models.ActionClaim:
		meta[models.MetaClaimTime] = now
	case models.ActionComplete:
		if current.ClaimedAt != nil {
			meta[models.MetaClaimTime] = *current.ClaimedAt
		}
		meta[models.MetaCompletionTime] = now
	}
	return models.HistoryEntry{
		ID:          s.NewID(),
		Timestamp:   now,
		RequestID:   current.ID,
		ChangeType:  string(models.ActionStatusChange),
		ActionType:  action,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		ChangedBy:   caller.ID,
		VolunteerID: volunteer,
		Metadata:    meta,
	}
}
