package events

import (
	"context"
	"time"

	"bloodbank/pkg/model"
)

const (
	TypeStockIssued      = "stock.issued"
	TypeStockConsumed    = "stock.consumed"
	TypeStockTransferred = "stock.transferred"

	TypeDonationTransitioned = "donation.transitioned"
	TypeDonationDeleted      = "donation.deleted"

	SchemaVersion = "1"
)

// StockEvent describes one committed ledger mutation.
type StockEvent struct {
	Type          string           `json:"type"`
	HospitalID    string           `json:"hospital_id"`
	BloodType     string           `json:"blood_type"`
	ToBloodType   string           `json:"to_blood_type,omitempty"`
	Quantity      int              `json:"quantity"`
	Balance       int              `json:"balance"`
	Level         model.StockLevel `json:"level"`
	CorrelationID string           `json:"-"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

// DonationEvent describes one committed lifecycle transition.
type DonationEvent struct {
	Type          string       `json:"type"`
	BookingID     string       `json:"booking_id"`
	Action        string       `json:"action"`
	From          model.Status `json:"from"`
	To            model.Status `json:"to"`
	HospitalID    string       `json:"hospital_id,omitempty"`
	UnitID        string       `json:"unit_id,omitempty"`
	CorrelationID string       `json:"-"`
	OccurredAt    time.Time    `json:"occurred_at"`
}

// Publisher emits domain events after their writes commit. Publication is
// best effort: implementations log failures and never fail the caller.
type Publisher interface {
	PublishStock(ctx context.Context, evt StockEvent)
	PublishDonation(ctx context.Context, evt DonationEvent)
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishStock(context.Context, StockEvent)       {}
func (NopPublisher) PublishDonation(context.Context, DonationEvent) {}
func (NopPublisher) Close() error                                   { return nil }
