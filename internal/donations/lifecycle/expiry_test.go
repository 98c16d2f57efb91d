package lifecycle

import (
	"testing"
	"time"

	"bloodbank/pkg/model"
)

func TestClassifyExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		ts := now.Add(d)
		return &ts
	}

	tests := []struct {
		name   string
		expiry *time.Time
		want   model.ExpiryCategory
	}{
		{"no expiry", nil, model.ExpiryUnknown},
		{"zero expiry", &time.Time{}, model.ExpiryUnknown},
		{"one day ago", at(-24 * time.Hour), model.ExpiryExpired},
		{"ten days ago", at(-240 * time.Hour), model.ExpiryExpired},
		{"an hour ago", at(-time.Hour), model.ExpiryCritical},
		{"right now", at(0), model.ExpiryCritical},
		{"in one hour", at(time.Hour), model.ExpiryCritical},
		{"exactly three days", at(3 * day), model.ExpiryCritical},
		{"three days and a minute", at(3*day + time.Minute), model.ExpiryUrgent},
		{"exactly four days", at(4 * day), model.ExpiryUrgent},
		{"exactly seven days", at(7 * day), model.ExpiryUrgent},
		{"eight days", at(8 * day), model.ExpiryWarning},
		{"exactly fourteen days", at(14 * day), model.ExpiryWarning},
		{"fifteen days", at(15 * day), model.ExpiryGood},
		{"six weeks", at(42 * day), model.ExpiryGood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyExpiry(tt.expiry, now)
			if got != tt.want {
				t.Errorf("ClassifyExpiry() = %s, want %s", got, tt.want)
			}
			if again := ClassifyExpiry(tt.expiry, now); again != got {
				t.Errorf("ClassifyExpiry() not deterministic: %s then %s", got, again)
			}
		})
	}
}

func TestDaysUntil_RoundsUp(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	if got := DaysUntil(now.Add(25*time.Hour), now); got != 2 {
		t.Errorf("DaysUntil(25h) = %d, want 2", got)
	}
	if got := DaysUntil(now.Add(-25*time.Hour), now); got != -1 {
		t.Errorf("DaysUntil(-25h) = %d, want -1", got)
	}
	if got := DaysUntil(now, now); got != 0 {
		t.Errorf("DaysUntil(0) = %d, want 0", got)
	}
}
