package model

import "time"

// Event is a scheduled donation drive. Read-only to this service; it is only
// consulted to resolve which hospital a booking belongs to.
type Event struct {
	ID                 string    `json:"id,omitempty" bson:"_id,omitempty"`
	Name               string    `json:"name" bson:"name"`
	AssignedHospitalID string    `json:"assigned_hospital_id" bson:"assigned_hospital_id"`
	Date               time.Time `json:"date" bson:"date"`
}
