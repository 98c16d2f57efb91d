package model

import "time"

// Action names a mutation accepted by the donation lifecycle.
type Action string

const (
	ActionRegister     Action = "register"
	ActionConfirm      Action = "confirm"
	ActionComplete     Action = "complete"
	ActionReject       Action = "reject"
	ActionCancel       Action = "cancel"
	ActionMarkNoShow   Action = "markNoShow"
	ActionEditMetadata Action = "editMetadata"
	ActionMarkUsed     Action = "markUsed"
	ActionDelete       Action = "delete"
)

// TransitionPayload carries the optional inputs of an action. Only the
// fields relevant to the action are read.
type TransitionPayload struct {
	// complete
	BloodType    string     `json:"blood_type,omitempty" validate:"omitempty,blood_type"`
	SerialNumber string     `json:"serial_number,omitempty" validate:"omitempty,min=3,max=64"`
	AmountMl     int        `json:"amount_ml,omitempty"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	DonationDate *time.Time `json:"donation_date,omitempty"`

	// editMetadata
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	HospitalName  *string    `json:"hospital_name,omitempty" validate:"omitempty,max=200"`
	Location      *string    `json:"location,omitempty" validate:"omitempty,max=200"`
}

type TransitionRequest struct {
	Action  Action            `json:"action" validate:"required"`
	Payload TransitionPayload `json:"payload"`
}

// CompleteInput is the validated payload of a complete action.
type CompleteInput struct {
	BloodType    string     `validate:"required,blood_type"`
	SerialNumber string     `validate:"required,min=3,max=64"`
	AmountMl     int        `validate:"gt=0"`
	ExpiryDate   *time.Time `validate:"required"`
	DonationDate time.Time
}

// StockRequest is an admin ledger adjustment.
type StockRequest struct {
	BloodType   string `json:"blood_type" validate:"required,blood_type"`
	ToBloodType string `json:"to_blood_type,omitempty" validate:"omitempty,blood_type"`
	Quantity    int    `json:"quantity" validate:"required,gt=0,lte=10000"`
}
