package model

import "time"

const (
	StorageStored    = "stored"
	StorageUsed      = "used"
	StorageRejected  = "rejected"
	StorageCancelled = "cancelled"
	StorageNoShow    = "no-show"
)

type Unit struct {
	ID             string     `json:"id,omitempty" bson:"_id,omitempty"`
	DonorID        string     `json:"donor_id" bson:"donor_id"`
	BookingID      string     `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
	HospitalID     string     `json:"hospital_id,omitempty" bson:"hospital_id,omitempty"`
	BloodType      string     `json:"blood_type" bson:"blood_type"`
	SerialNumber   string     `json:"serial_number" bson:"serial_number"`
	AmountMl       int        `json:"amount_ml" bson:"amount_ml"`
	DonationDate   time.Time  `json:"donation_date" bson:"donation_date"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty" bson:"expiry_date,omitempty"`
	StorageStatus  string     `json:"storage_status" bson:"storage_status"`
	UsedAt         *time.Time `json:"used_at,omitempty" bson:"used_at,omitempty"`
	UsedHospitalID string     `json:"used_hospital_id,omitempty" bson:"used_hospital_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" bson:"updated_at"`
}

// IsExpired reports whether the unit's expiry lies strictly before now.
func (u *Unit) IsExpired(now time.Time) bool {
	return u.ExpiryDate != nil && u.ExpiryDate.Before(now)
}

// UnitUpdate carries the editable unit fields; nil means unchanged.
type UnitUpdate struct {
	BloodType    *string
	SerialNumber *string
	AmountMl     *int
	ExpiryDate   *time.Time
}

// IsEmpty reports whether the update changes nothing.
func (u UnitUpdate) IsEmpty() bool {
	return u.BloodType == nil && u.SerialNumber == nil && u.AmountMl == nil && u.ExpiryDate == nil
}
