// path: models/request.go
package models

import (
	"time"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Known reports whether s is one of the three lifecycle states.
func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type SupplyType string

const (
	MedicalSupplies SupplyType = "MEDICAL_SUPPLIES"
	SleepingBags    SupplyType = "SLEEPING_BAGS"
	Water           SupplyType = "WATER"
	Food            SupplyType = "FOOD"
	Shelter         SupplyType = "SHELTER"
	BodyBags        SupplyType = "BODY_BAGS"
)

// Supply category keys, in the order they are reported.
const (
	CategoryMedicalSupplies = "medicalSupplies"
	CategorySleepingBags    = "sleepingBags"
	CategoryWaterLiters     = "waterLiters"
	CategoryFoodMeals       = "foodMeals"
	CategoryShelterCapacity = "shelterCapacity"
	CategoryBodyBags        = "bodyBags"
)

var SupplyCategories = []string{
	CategoryMedicalSupplies,
	CategorySleepingBags,
	CategoryWaterLiters,
	CategoryFoodMeals,
	CategoryShelterCapacity,
	CategoryBodyBags,
}

// Supplies holds the per-category quantities of a request.
type Supplies struct {
	MedicalSupplies Count `bson:"medical_supplies_quantity" json:"medicalSupplies"`
	SleepingBags    Count `bson:"sleeping_bags_quantity" json:"sleepingBags"`
	WaterLiters     Count `bson:"water_liters" json:"waterLiters"`
	FoodMeals       Count `bson:"food_meals_quantity" json:"foodMeals"`
	ShelterCapacity Count `bson:"shelter_people_quantity" json:"shelterCapacity"`
	BodyBags        Count `bson:"body_bags_quantity" json:"bodyBags"`
}

// Map returns the quantities keyed by category.
func (s Supplies) Map() map[string]int64 {
	return map[string]int64{
		CategoryMedicalSupplies: int64(s.MedicalSupplies),
		CategorySleepingBags:    int64(s.SleepingBags),
		CategoryWaterLiters:     int64(s.WaterLiters),
		CategoryFoodMeals:       int64(s.FoodMeals),
		CategoryShelterCapacity: int64(s.ShelterCapacity),
		CategoryBodyBags:        int64(s.BodyBags),
	}
}

// DeriveSupplyTypes returns the tags of every positive quantity.
// A request with no positive quantity has an empty tag set.
func DeriveSupplyTypes(s Supplies) SupplyTypes {
	types := SupplyTypes{}
	if s.MedicalSupplies > 0 {
		types = append(types, MedicalSupplies)
	}
	if s.SleepingBags > 0 {
		types = append(types, SleepingBags)
	}
	if s.WaterLiters > 0 {
		types = append(types, Water)
	}
	if s.FoodMeals > 0 {
		types = append(types, Food)
	}
	if s.ShelterCapacity > 0 {
		types = append(types, Shelter)
	}
	if s.BodyBags > 0 {
		types = append(types, BodyBags)
	}
	return types
}

// Request is one aid request as stored in the requests collection.
type Request struct {
	ID                  string      `bson:"_id" json:"id"`
	FullName            string      `bson:"req_full_name" json:"fullName"`
	PhoneNumber         string      `bson:"req_phone_number" json:"phoneNumber"`
	Address             string      `bson:"req_address" json:"address"`
	MapLink             string      `bson:"req_location_link" json:"mapLink"`
	AffectedIndividuals Count       `bson:"req_affected_individuals" json:"affectedIndividuals"`
	PrimaryType         SupplyType  `bson:"req_type,omitempty" json:"primaryType,omitempty"`
	Types               SupplyTypes `bson:"req_all_types" json:"requestedSupplyTypes"`
	Supplies            `bson:",inline" json:"supplies"`
	ImageKey            string `bson:"image_key,omitempty" json:"imageKey,omitempty"`
	Comments            string `bson:"comments,omitempty" json:"comments,omitempty"`

	Status       Status  `bson:"status" json:"status"`
	AssignedUser *string `bson:"assigned_user" json:"assignedUser"`

	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	ClaimedAt   *time.Time `bson:"claimed_at,omitempty" json:"claimedAt,omitempty"`
	UpdatedAt   *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
	UpdatedBy   string     `bson:"updated_by,omitempty" json:"updatedBy,omitempty"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
	CompletedBy string     `bson:"completed_by,omitempty" json:"completedBy,omitempty"`
}

// Assignee returns the assigned volunteer id or "".
func (r Request) Assignee() string {
	if r.AssignedUser == nil {
		return ""
	}
	return *r.AssignedUser
}

// EffectiveStatus treats a missing status as PENDING, the creation default.
func (r Request) EffectiveStatus() Status {
	if r.Status == "" {
		return StatusPending
	}
	return r.Status
}
