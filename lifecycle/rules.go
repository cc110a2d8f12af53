// path: lifecycle/rules.go

// Package lifecycle decides who may change an aid request and applies the
// change with its audit side effects.
package lifecycle

import (
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/apperr"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/identity"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/models"
)

// Caller is a resolved identity.
type Caller struct {
	ID   string
	Role identity.Role
}

func (c Caller) IsAdmin() bool { return c.Role == identity.RoleAdmin }

// Update is a partial change to a request. SetAssignee distinguishes
// "leave assignedUser alone" from "set it", where a nil Assignee clears it.
type Update struct {
	Status      *models.Status
	SetAssignee bool
	Assignee    *string
	Comments    *string
	MapLink     *string
	Address     *string
	PersonCount *models.Count
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u.Status == nil && !u.SetAssignee && u.Comments == nil &&
		u.MapLink == nil && u.Address == nil && u.PersonCount == nil
}

func (u Update) hasOtherFields() bool {
	return u.Comments != nil || u.MapLink != nil || u.Address != nil || u.PersonCount != nil
}

func (u Update) assignee() string {
	if u.Assignee == nil {
		return ""
	}
	return *u.Assignee
}

// Next returns the status and assignee current would have after u.
func (u Update) Next(current models.Request) (models.Status, *string) {
	status := current.EffectiveStatus()
	if u.Status != nil {
		status = *u.Status
	}
	assignee := current.AssignedUser
	if u.SetAssignee {
		assignee = u.Assignee
		if assignee != nil && *assignee == "" {
			assignee = nil
		}
	}
	return status, assignee
}

func deny(format string, args ...any) error {
	return apperr.New(apperr.Permission, format, args...)
}

// Authorize checks u against the status-keyed permission rules.
// Admins may change anything. Volunteers may claim an unassigned pending
// request for themselves, and the assignee may work on or complete an
// in-progress request. Everything else is denied.
func Authorize(current models.Request, u Update, caller Caller) error {
	if caller.IsAdmin() {
		return nil
	}
	if caller.Role != identity.RoleVolunteer {
		return deny("role %q may not update requests", caller.Role)
	}

	switch current.EffectiveStatus() {
	case models.StatusPending:
		if current.Assignee() != "" {
			return deny("request is already assigned")
		}
		claim := u.Status != nil && *u.Status == models.StatusInProgress &&
			u.SetAssignee && u.assignee() == caller.ID
		if !claim || u.hasOtherFields() {
			return deny("volunteers may only claim a pending request for themselves")
		}
		return nil

	case models.StatusInProgress:
		if current.Assignee() != caller.ID {
			return deny("only the assigned volunteer may update this request")
		}
		if u.SetAssignee && u.assignee() != caller.ID {
			return deny("volunteers may not reassign a request")
		}
		if u.Status != nil && *u.Status != models.StatusDone && *u.Status != models.StatusInProgress {
			return deny("volunteers may only mark an in-progress request as done")
		}
		return nil

	case models.StatusDone:
		return deny("completed requests can only be changed by an administrator")

	default:
		return deny("request has unknown status %q", current.Status)
	}
}

// ActionFor names a status transition for the history log.
func ActionFor(oldStatus, newStatus models.Status, claimed bool) models.ActionType {
	switch {
	case oldStatus == models.StatusPending && newStatus == models.StatusInProgress && claimed:
		return models.ActionClaim
	case newStatus == models.StatusDone:
		return models.ActionComplete
	case oldStatus == models.StatusDone && newStatus != models.StatusDone:
		return models.ActionReopen
	default:
		return models.ActionStatusChange
	}
}

// validate rejects updates that are malformed regardless of who sends them.
func validate(current models.Request, u Update) error {
	if u.Empty() {
		return apperr.New(apperr.Validation, "no fields to update")
	}
	if u.Status != nil && !u.Status.Known() {
		return apperr.New(apperr.Validation, "invalid status %q", *u.Status)
	}
	status, assignee := u.Next(current)
	if status == models.StatusPending && assignee != nil && (u.Status != nil || u.SetAssignee) {
		return apperr.New(apperr.Validation, "assignedUser must be cleared when status is PENDING")
	}
	return nil
}
