// path: models/volunteer.go
package models

import "time"

// AdminGroup is the role claim that marks an administrator.
const AdminGroup = "admin"

type Volunteer struct {
	ID           string                `bson:"_id" json:"id"`
	Email        string                `bson:"email" json:"email"`
	PhoneNumber  string                `bson:"phone_number,omitempty" json:"phoneNumber,omitempty"`
	FullName     string                `bson:"full_name" json:"fullName"`
	Groups       []string              `bson:"groups,omitempty" json:"groups,omitempty"`
	IsVerified   bool                  `bson:"is_verified" json:"isVerified"`
	IsVerifiedBy string                `bson:"is_verified_by,omitempty" json:"isVerifiedBy,omitempty"`
	VerifiedAt   *time.Time            `bson:"verified_at,omitempty" json:"verifiedAt,omitempty"`
	History      map[string]ActionType `bson:"history,omitempty" json:"history,omitempty"`
	CreatedAt    time.Time             `bson:"created_at" json:"createdAt"`
}

// IsAdmin reports whether the volunteer carries the admin role claim.
func (v Volunteer) IsAdmin() bool {
	for _, g := range v.Groups {
		if g == AdminGroup {
			return true
		}
	}
	return false
}

// Roster drops administrators from a volunteer list.
func Roster(all []Volunteer) []Volunteer {
	out := make([]Volunteer, 0, len(all))
	for _, v := range all {
		if v.IsAdmin() {
			continue
		}
		out = append(out, v)
	}
	return out
}
