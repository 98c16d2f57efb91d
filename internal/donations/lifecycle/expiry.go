package lifecycle

import (
	"time"

	"bloodbank/pkg/model"
)

const day = 24 * time.Hour

// DaysUntil returns the whole days from now until t, rounded up.
func DaysUntil(t, now time.Time) int {
	d := t.Sub(now)
	days := int(d / day)
	if d%day > 0 {
		days++
	}
	return days
}

// ClassifyExpiry buckets a unit's expiry relative to now. Boundary days 3, 7
// and 14 fall into the tighter category. A unit that expired less than a day
// ago rounds up to 0 days and stays Critical here, while Unit.IsExpired
// already reports it expired.
func ClassifyExpiry(expiry *time.Time, now time.Time) model.ExpiryCategory {
	if expiry == nil || expiry.IsZero() {
		return model.ExpiryUnknown
	}

	days := DaysUntil(*expiry, now)
	switch {
	case days < 0:
		return model.ExpiryExpired
	case days <= 3:
		return model.ExpiryCritical
	case days <= 7:
		return model.ExpiryUrgent
	case days <= 14:
		return model.ExpiryWarning
	default:
		return model.ExpiryGood
	}
}
