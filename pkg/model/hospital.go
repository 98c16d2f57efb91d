package model

import "time"

// StockLevel buckets a stock quantity against its thresholds.
type StockLevel string

const (
	LevelLow    StockLevel = "LOW"
	LevelMedium StockLevel = "MEDIUM"
	LevelHigh   StockLevel = "HIGH"
)

type Thresholds struct {
	Low    int `json:"low" bson:"low"`
	Medium int `json:"medium" bson:"medium"`
	High   int `json:"high" bson:"high"`
}

// IsZero reports whether no threshold was ever stored.
func (t Thresholds) IsZero() bool {
	return t == Thresholds{}
}

// DefaultThresholds apply to stock entries that have never been written.
var DefaultThresholds = Thresholds{Low: 10, Medium: 30, High: 50}

type StockEntry struct {
	Quantity    int        `json:"quantity" bson:"quantity"`
	Thresholds  Thresholds `json:"thresholds" bson:"thresholds"`
	LastUpdated time.Time  `json:"last_updated" bson:"last_updated"`
}

type Hospital struct {
	ID        string                `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string                `json:"name" bson:"name"`
	Location  string                `json:"location,omitempty" bson:"location,omitempty"`
	Stock     map[string]StockEntry `json:"stock,omitempty" bson:"stock,omitempty"`
	CreatedAt time.Time             `json:"created_at" bson:"created_at"`
}

// Entry returns the stock entry for bloodType, or a zero-quantity entry with
// default thresholds when none has been materialized yet. Entries written
// without thresholds get the defaults too.
func (h *Hospital) Entry(bloodType string, defaults Thresholds) StockEntry {
	entry, ok := h.Stock[bloodType]
	if !ok {
		return StockEntry{Quantity: 0, Thresholds: defaults}
	}
	if entry.Thresholds.IsZero() {
		entry.Thresholds = defaults
	}
	return entry
}

// FillThresholds sets defaults on stored entries that carry no thresholds.
func (h *Hospital) FillThresholds(defaults Thresholds) {
	for bt, entry := range h.Stock {
		if entry.Thresholds.IsZero() {
			entry.Thresholds = defaults
			h.Stock[bt] = entry
		}
	}
}

// StockSummaryItem is one blood type's line in a hospital stock summary.
type StockSummaryItem struct {
	BloodType   string     `json:"blood_type"`
	Quantity    int        `json:"quantity"`
	Level       StockLevel `json:"level"`
	Thresholds  Thresholds `json:"thresholds"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}
