// path: models/submission.go
package models

import (
	"strings"
	"time"
)

// Submission is the citizen-facing payload for PUT /api/requesters.
// Quantities accept numbers or numeric strings. Lifecycle fields (id,
// status, assignee) are not part of it: they are owned by the server.
type Submission struct {
	Name        string `json:"name" form:"name"`
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber"`
	Address     string `json:"address" form:"address"`
	MapLink     string `json:"mapLink" form:"mapLink"`
	PersonCount Count  `json:"personCount" form:"personCount"`
	Supply      Count  `json:"supply" form:"supply"`
	Bag         Count  `json:"bag" form:"bag"`
	Water       Count  `json:"water" form:"water"`
	Food        Count  `json:"food" form:"food"`
	Shelter     Count  `json:"shelter" form:"shelter"`
	BodyBag     Count  `json:"bodyBag" form:"bodyBag"`
	ImageKey    string `json:"imageKey" form:"imageKey"`
}

// MissingFields lists the required fields left blank.
func (s Submission) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(s.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(s.PhoneNumber) == "" {
		missing = append(missing, "phoneNumber")
	}
	if strings.TrimSpace(s.Address) == "" {
		missing = append(missing, "address")
	}
	return missing
}

// ToRequest maps the payload onto a new storage record: PENDING,
// unassigned, under the server-generated id.
func (s Submission) ToRequest(id string, now time.Time) Request {
	supplies := Supplies{
		MedicalSupplies: s.Supply,
		SleepingBags:    s.Bag,
		WaterLiters:     s.Water,
		FoodMeals:       s.Food,
		ShelterCapacity: s.Shelter,
		BodyBags:        s.BodyBag,
	}
	types := DeriveSupplyTypes(supplies)
	var primary SupplyType
	if len(types) > 0 {
		primary = types[0]
	}
	return Request{
		ID:                  id,
		FullName:            strings.TrimSpace(s.Name),
		PhoneNumber:         strings.TrimSpace(s.PhoneNumber),
		Address:             strings.TrimSpace(s.Address),
		MapLink:             strings.TrimSpace(s.MapLink),
		AffectedIndividuals: s.PersonCount,
		PrimaryType:         primary,
		Types:               types,
		Supplies:            supplies,
		ImageKey:            s.ImageKey,
		Status:              StatusPending,
		CreatedAt:           now.UTC(),
	}
}

// RequestView is the response shape of a request.
type RequestView struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	PhoneNumber  string      `json:"phoneNumber"`
	Address      string      `json:"address"`
	MapLink      string      `json:"mapLink"`
	PersonCount  int64       `json:"personCount"`
	Supply       int64       `json:"supply"`
	Bag          int64       `json:"bag"`
	Water        int64       `json:"water"`
	Food         int64       `json:"food"`
	Shelter      int64       `json:"shelter"`
	BodyBag      int64       `json:"bodyBag"`
	RequestTypes SupplyTypes `json:"requestTypes"`
	Status       Status      `json:"status"`
	CreatedAt    string      `json:"createdAt"`
	ImageKey     string      `json:"imageKey,omitempty"`
	AssignedUser *string     `json:"assignedUser"`
	Comments     string      `json:"comments,omitempty"`
	UpdatedAt    string      `json:"updatedAt,omitempty"`
	UpdatedBy    string      `json:"updatedBy,omitempty"`
	CompletedAt  string      `json:"completedAt,omitempty"`
	CompletedBy  string      `json:"completedBy,omitempty"`
}

func NewRequestView(r Request) RequestView {
	types := r.Types
	if types == nil {
		types = SupplyTypes{}
	}
	v := RequestView{
		ID:           r.ID,
		Name:         r.FullName,
		PhoneNumber:  r.PhoneNumber,
		Address:      r.Address,
		MapLink:      r.MapLink,
		PersonCount:  int64(r.AffectedIndividuals),
		Supply:       int64(r.MedicalSupplies),
		Bag:          int64(r.SleepingBags),
		Water:        int64(r.WaterLiters),
		Food:         int64(r.FoodMeals),
		Shelter:      int64(r.ShelterCapacity),
		BodyBag:      int64(r.BodyBags),
		RequestTypes: types,
		Status:       r.EffectiveStatus(),
		ImageKey:     r.ImageKey,
		AssignedUser: r.AssignedUser,
		Comments:     r.Comments,
		UpdatedBy:    r.UpdatedBy,
		CompletedBy:  r.CompletedBy,
	}
	if !r.CreatedAt.IsZero() {
		v.CreatedAt = r.CreatedAt.UTC().Format(time.RFC3339)
	}
	if r.UpdatedAt != nil {
		v.UpdatedAt = r.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if r.CompletedAt != nil {
		v.CompletedAt = r.CompletedAt.UTC().Format(time.RFC3339)
	}
	return v
}
