// path: controllers/requests.go
package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/apperr"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/database"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/identity"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/lifecycle"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/metrics"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/models"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/stats"
)

// ListRequests handles GET /api/requesters.
func (h *Handler) ListRequests(c *fiber.Ctx) error {
	f := database.ListFilter{
		Limit:  parseLimit(c.Query("limit"), 20),
		Cursor: c.Query("cursor"),
	}
	if s := c.Query("status"); s != "" {
		st := models.Status(strings.ToUpper(s))
		if !st.Known() {
			return badReq(c, "invalid status")
		}
		f.Status = st
	}
	if t := c.Query("type"); t != "" {
		f.Type = models.SupplyType(strings.ToUpper(t))
	}
	if sd := c.Query("start_date"); sd != "" {
		t, valid := stats.ParseDate(sd, h.Location)
		if !valid {
			return badReq(c, "invalid start_date")
		}
		f.From = &t
	}
	if ed := c.Query("end_date"); ed != "" {
		t, valid := stats.ParseDate(ed, h.Location)
		if !valid {
			return badReq(c, "invalid end_date")
		}
		t = stats.EndOfDay(t)
		f.To = &t
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	recs, next, err := h.Requests.List(ctx, f)
	if err != nil {
		return fail(c, h.Log, err, "Could not load items")
	}
	items := make([]models.RequestView, 0, len(recs))
	for _, r := range recs {
		items = append(items, models.NewRequestView(r))
	}
	return c.Status(fiber.StatusOK).JSON(models.RequestListResp{
		Success:    true,
		Data:       items,
		NextCursor: next,
	})
}

// GetRequest handles GET /api/requesters/:id.
func (h *Handler) GetRequest(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	r, err := h.Requests.ByID(ctx, c.Params("id"))
	if err != nil {
		return fail(c, h.Log, err, "Could not load item")
	}
	return sendOK(c, models.NewRequestView(r))
}

// CreateRequest handles PUT /api/requesters. JSON and form bodies are both
// accepted.
func (h *Handler) CreateRequest(c *fiber.Ctx) error {
	var s models.Submission
	if err := c.BodyParser(&s); err != nil {
		return badReq(c, "invalid request body")
	}
	if missing := s.MissingFields(); len(missing) > 0 {
		return badReq(c, "Missing required fields: "+strings.Join(missing, ", "))
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	rec := s.ToRequest(h.NewID(), h.Now())
	exists, err := h.Requests.Exists(ctx, rec.PhoneNumber, rec.Address)
	if err != nil {
		return fail(c, h.Log, err, "Could not create item")
	}
	if exists {
		return fail(c, h.Log,
			apperr.New(apperr.Conflict, "A request with this phone number and address already exists"),
			"Could not create item")
	}
	if err := h.Requests.Put(ctx, rec); err != nil {
		return fail(c, h.Log, err, "Could not create item")
	}

	metrics.RequestsCreatedTotal.Inc()
	h.Log.Info("request created",
		zap.String("request_id", rec.ID),
		zap.Strings("types", typeNames(rec.Types)))
	return c.Status(fiber.StatusOK).JSON(models.Envelope{
		Success: true,
		Message: "Item created successfully",
		Data:    models.NewRequestView(rec),
	})
}

// UpdateRequest handles PATCH /api/requesters/:id through the lifecycle gate.
func (h *Handler) UpdateRequest(c *fiber.Ctx) error {
	var p models.PatchRequest
	if err := c.BodyParser(&p); err != nil {
		return badReq(c, "invalid JSON")
	}
	u := lifecycle.Update{
		Status:      p.Status,
		SetAssignee: p.AssignedUser.Set,
		Assignee:    p.AssignedUser.Value,
		Comments:    p.Comments,
		MapLink:     p.MapLink,
		Address:     p.Address,
		PersonCount: p.PersonCount,
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.Lifecycle.Apply(ctx, c.Params("id"), u, identity.CallerID(c, h.IdentityHeader))
	if err != nil {
		return fail(c, h.Log, err, "Could not update request")
	}
	return sendOK(c, models.NewRequestView(res.Record))
}

func typeNames(ts models.SupplyTypes) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, string(t))
	}
	return out
}
