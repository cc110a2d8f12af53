// path: controllers/stats.go
package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/stats"
)

type CountResp struct {
	Success   bool        `json:"success"`
	Data      stats.Stats `json:"data"`
	Timestamp string      `json:"timestamp"`
}

type ReportResp struct {
	Success bool `json:"success"`
	stats.Report
}

// CountRequests handles GET /api/requesters/count.
func (h *Handler) CountRequests(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	recs, err := h.Requests.All(ctx)
	if err != nil {
		return fail(c, h.Log, err, "Could not retrieve request statistics")
	}
	return c.Status(fiber.StatusOK).JSON(CountResp{
		Success:   true,
		Data:      stats.Aggregate(recs),
		Timestamp: h.Now().UTC().Format(time.RFC3339Nano),
	})
}

// CountByDate handles GET /api/requesters/count-by-date. The end date runs
// to the end of its day and is compared with the same window a week earlier.
func (h *Handler) CountByDate(c *fiber.Ctx) error {
	startRaw, endRaw := c.Query("startDate"), c.Query("endDate")
	if startRaw == "" || endRaw == "" {
		return badReq(c, "Both startDate and endDate parameters are required (format: MM/DD/YYYY)")
	}
	start, valid := stats.ParseDate(startRaw, h.Location)
	if !valid {
		return badReq(c, "Invalid date format. Use MM/DD/YYYY format.")
	}
	end, valid := stats.ParseDate(endRaw, h.Location)
	if !valid {
		return badReq(c, "Invalid date format. Use MM/DD/YYYY format.")
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	recs, err := h.Requests.All(ctx)
	if err != nil {
		return fail(c, h.Log, err, "Could not retrieve date-filtered statistics")
	}
	return c.Status(fiber.StatusOK).JSON(ReportResp{
		Success: true,
		Report:  stats.WeekOverWeek(recs, start, end),
	})
}
