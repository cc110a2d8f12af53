// path: controllers/handler.go
package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/apperr"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/database"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/identity"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/lifecycle"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/models"
)

type RequestStore interface {
	All(ctx context.Context) ([]models.Request, error)
	List(ctx context.Context, f database.ListFilter) ([]models.Request, string, error)
	ByID(ctx context.Context, id string) (models.Request, error)
	Put(ctx context.Context, r models.Request) error
	Exists(ctx context.Context, phone, address string) (bool, error)
	ActiveFor(ctx context.Context, volunteerID string) ([]models.Request, error)
}

type HistoryReader interface {
	ByVolunteer(ctx context.Context, volunteerID string) ([]models.HistoryEntry, error)
}

type VolunteerStore interface {
	List(ctx context.Context, verified *bool) ([]models.Volunteer, error)
	ByID(ctx context.Context, id string) (models.Volunteer, error)
	Verify(ctx context.Context, id, adminID string) (models.Volunteer, error)
}

// Updater applies gated request updates.
type Updater interface {
	Apply(ctx context.Context, id string, u lifecycle.Update, callerID string) (lifecycle.Result, error)
}

// Handler carries the collaborators of every API endpoint.
type Handler struct {
	Requests   RequestStore
	History    HistoryReader
	Volunteers VolunteerStore
	Lifecycle  Updater
	Roles      identity.RoleProvider
	Log        *zap.Logger

	IdentityHeader string
	Timeout        time.Duration
	Location       *time.Location
	Now            func() time.Time
	NewID          func() string
}

// WithDefaults fills the optional fields.
func (h *Handler) WithDefaults() *Handler {
	if h.Log == nil {
		h.Log = zap.NewNop()
	}
	if h.IdentityHeader == "" {
		h.IdentityHeader = "X-User-Sub"
	}
	if h.Timeout <= 0 {
		h.Timeout = 8 * time.Second
	}
	if h.Location == nil {
		h.Location = time.UTC
	}
	if h.Now == nil {
		h.Now = func() time.Time { return time.Now().UTC() }
	}
	if h.NewID == nil {
		h.NewID = uuid.NewString
	}
	return h
}

func (h *Handler) ctx(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), h.Timeout)
}

// requireAdmin resolves the caller and rejects anyone but an administrator.
func (h *Handler) requireAdmin(ctx context.Context, c *fiber.Ctx) (string, error) {
	caller := identity.CallerID(c, h.IdentityHeader)
	if caller == "" {
		return "", apperr.New(apperr.Authentication, "caller identity could not be resolved")
	}
	role, err := h.Roles.Role(ctx, caller)
	if err != nil {
		return "", apperr.Wrap(err, apperr.Authentication, "could not verify caller role")
	}
	if role != identity.RoleAdmin {
		return "", apperr.New(apperr.Permission, "administrator role required")
	}
	return caller, nil
}
