package lifecycle

import (
	"strings"
	"time"

	"bloodbank/pkg/model"
)

var rawStatuses = map[string]model.Status{
	model.RawPending:    model.StatusPending,
	model.RawRegistered: model.StatusRegistered,
	model.RawScheduled:  model.StatusRegistered,
	model.RawConfirmed:  model.StatusConfirmed,
	model.RawRejected:   model.StatusRejected,
	model.RawCancelled:  model.StatusCancelled,
	model.RawNoShow:     model.StatusNoShow,
	model.RawCompleted:  model.StatusCompleted,
}

// DeriveStatus computes the canonical status of a booking given its matched
// unit, which may be nil. An appointment booking with a physical donation is
// always Completed whatever its raw status says.
func DeriveStatus(b *model.Booking, matched *model.Unit) model.Status {
	if !b.FromEvent() && matched != nil {
		return model.StatusCompleted
	}
	return MapRawStatus(b.RawStatus)
}

// MapRawStatus maps a stored status string case-insensitively. Unknown values read as Pending.
func MapRawStatus(raw string) model.Status {
	if s, ok := rawStatuses[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return model.StatusPending
}

// Refine returns the status shown to callers. Completed records surface as
// Used or Expired depending on their unit; the canonical status is unchanged.
func Refine(status model.Status, unit *model.Unit, now time.Time) model.Status {
	if status != model.StatusCompleted || unit == nil {
		return status
	}
	switch unit.StorageStatus {
	case model.StorageUsed:
		return model.StatusUsed
	case model.StorageStored:
		if unit.IsExpired(now) {
			return model.StatusExpired
		}
	}
	return status
}

// RawStatusFor is the raw status written back to a booking entering s.
func RawStatusFor(s model.Status) string {
	switch s {
	case model.StatusRegistered:
		return model.RawRegistered
	case model.StatusConfirmed:
		return model.RawConfirmed
	case model.StatusRejected:
		return model.RawRejected
	case model.StatusCancelled:
		return model.RawCancelled
	case model.StatusNoShow:
		return model.RawNoShow
	case model.StatusCompleted:
		return model.RawCompleted
	default:
		return model.RawPending
	}
}
