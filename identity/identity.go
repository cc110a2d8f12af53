// path: identity/identity.go

// Package identity resolves callers and their roles.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/apperr"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/models"
)

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleVolunteer Role = "VOLUNTEER"
)

var (
	ErrUserNotFound = errors.New("identity: user not found")
	ErrUnavailable  = errors.New("identity: role service unavailable")
)

// RoleProvider returns the role of an opaque user id. Implementations
// return ErrUserNotFound or ErrUnavailable (possibly wrapped).
type RoleProvider interface {
	Role(ctx context.Context, userID string) (Role, error)
}

// VolunteerLookup is the slice of the volunteer store the directory needs.
type VolunteerLookup interface {
	ByID(ctx context.Context, id string) (models.Volunteer, error)
}

// Directory derives roles from the group claims kept on volunteer records.
type Directory struct {
	Volunteers VolunteerLookup
}

func (d Directory) Role(ctx context.Context, userID string) (Role, error) {
	v, err := d.Volunteers.ByID(ctx, userID)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return "", fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if v.IsAdmin() {
		return RoleAdmin, nil
	}
	return RoleVolunteer, nil
}

// CallerID returns the user id forwarded in header, or "".
func CallerID(c *fiber.Ctx, header string) string {
	return strings.TrimSpace(c.Get(header))
}
