// path: controllers/volunteers.go
package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/identity"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/models"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/stats"
)

type HistoryResp struct {
	Username string                 `json:"username"`
	History  []models.HistoryEntry  `json:"history"`
	Stats    stats.VolunteerSummary `json:"stats"`
}

type PerformanceResp struct {
	Volunteer   models.Volunteer  `json:"volunteer"`
	Performance stats.Performance `json:"performance"`
}

type ActiveResp struct {
	Username       string               `json:"username"`
	ActiveRequests []models.RequestView `json:"activeRequests"`
}

// ListVolunteers returns a handler for the verified or unverified roster.
// Administrators are never listed.
func (h *Handler) ListVolunteers(verified bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := h.ctx(c)
		defer cancel()

		if _, err := h.requireAdmin(ctx, c); err != nil {
			return fail(c, h.Log, err, "Could not list volunteers")
		}
		all, err := h.Volunteers.List(ctx, &verified)
		if err != nil {
			return fail(c, h.Log, err, "Could not list volunteers")
		}
		return sendOK(c, models.Roster(all))
	}
}

// Roster handles GET /api/volunteers with an optional ?verified filter.
func (h *Handler) Roster(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	if _, err := h.requireAdmin(ctx, c); err != nil {
		return fail(c, h.Log, err, "Could not list volunteers")
	}
	var verified *bool
	if q := c.Query("verified"); q != "" {
		v := parseBool(q)
		verified = &v
	}
	all, err := h.Volunteers.List(ctx, verified)
	if err != nil {
		return fail(c, h.Log, err, "Could not list volunteers")
	}
	return sendOK(c, models.Roster(all))
}

// VolunteerStats handles GET /api/volunteers/stats.
func (h *Handler) VolunteerStats(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	if _, err := h.requireAdmin(ctx, c); err != nil {
		return fail(c, h.Log, err, "Failed to generate overview")
	}
	all, err := h.Volunteers.List(ctx, nil)
	if err != nil {
		return fail(c, h.Log, err, "Failed to generate overview")
	}
	return sendOK(c, stats.VolunteerOverview(all, h.Now()))
}

// GetVolunteer handles GET /api/volunteers/:id. Volunteers may read their
// own profile; anyone else needs the admin role.
func (h *Handler) GetVolunteer(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	id := c.Params("id")
	if identity.CallerID(c, h.IdentityHeader) != id {
		if _, err := h.requireAdmin(ctx, c); err != nil {
			return fail(c, h.Log, err, "Failed to get volunteer")
		}
	}
	v, err := h.Volunteers.ByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, err, "Failed to get volunteer")
	}
	return sendOK(c, v)
}

// VerifyVolunteer handles PATCH /api/volunteers/:id/verify.
func (h *Handler) VerifyVolunteer(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	admin, err := h.requireAdmin(ctx, c)
	if err != nil {
		return fail(c, h.Log, err, "Could not verify volunteer")
	}
	v, err := h.Volunteers.Verify(ctx, c.Params("id"), admin)
	if err != nil {
		return fail(c, h.Log, err, "Could not verify volunteer")
	}
	h.Log.Info("volunteer verified", zap.String("volunteer_id", v.ID), zap.String("by", admin))
	return c.Status(fiber.StatusOK).JSON(models.VerifyResp{Success: true, Volunteer: v})
}

// VolunteerHistory handles GET /api/volunteers/:id/history.
func (h *Handler) VolunteerHistory(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	id := c.Params("id")
	if _, err := h.Volunteers.ByID(ctx, id); err != nil {
		return fail(c, h.Log, err, "Failed to get volunteer history")
	}
	history, err := h.History.ByVolunteer(ctx, id)
	if err != nil {
		return fail(c, h.Log, err, "Failed to get volunteer history")
	}
	return sendOK(c, HistoryResp{
		Username: id,
		History:  history,
		Stats:    stats.SummarizeVolunteer(history),
	})
}

// VolunteerPerformance handles GET /api/volunteers/:id/performance.
func (h *Handler) VolunteerPerformance(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	v, err := h.Volunteers.ByID(ctx, c.Params("id"))
	if err != nil {
		return fail(c, h.Log, err, "Failed to get performance metrics")
	}
	history, err := h.History.ByVolunteer(ctx, v.ID)
	if err != nil {
		return fail(c, h.Log, err, "Failed to get performance metrics")
	}
	return sendOK(c, PerformanceResp{
		Volunteer:   v,
		Performance: stats.VolunteerPerformance(history),
	})
}

// ActiveRequests handles GET /api/volunteers/:id/active-requests.
func (h *Handler) ActiveRequests(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	id := c.Params("id")
	if _, err := h.Volunteers.ByID(ctx, id); err != nil {
		return fail(c, h.Log, err, "Failed to get active requests")
	}
	recs, err := h.Requests.ActiveFor(ctx, id)
	if err != nil {
		return fail(c, h.Log, err, "Failed to get active requests")
	}
	views := make([]models.RequestView, 0, len(recs))
	for _, r := range recs {
		views = append(views, models.NewRequestView(r))
	}
	return sendOK(c, ActiveResp{Username: id, ActiveRequests: views})
}
