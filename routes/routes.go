// path: routes/routes.go
package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/controllers"
)

// Register attaches all API endpoints to the app.
func Register(app *fiber.App, h *controllers.Handler) {
	api := app.Group("/api")

	req := api.Group("/requesters")
	req.Get("/", h.ListRequests)
	req.Put("/", h.CreateRequest)
	// fixed paths before /:id
	req.Get("/count", h.CountRequests)
	req.Get("/count-by-date", h.CountByDate)
	req.Get("/:id", h.GetRequest)
	req.Patch("/:id", h.UpdateRequest)

	vol := api.Group("/volunteers")
	vol.Get("/", h.Roster)
	// fixed paths before /:id
	vol.Get("/verified", h.ListVolunteers(true))
	vol.Get("/unverified", h.ListVolunteers(false))
	vol.Get("/stats", h.VolunteerStats)
	vol.Get("/:id", h.GetVolunteer)
	vol.Patch("/:id/verify", h.VerifyVolunteer)
	vol.Get("/:id/history", h.VolunteerHistory)
	vol.Get("/:id/performance", h.VolunteerPerformance)
	vol.Get("/:id/active-requests", h.ActiveRequests)
}
