package http

import (
	"net/http"
	"time"

	apperrors "bloodbank/pkg/errors"
)

const dateLayout = "2006-01-02"

// ParseTimeParam reads an optional RFC3339 or YYYY-MM-DD query parameter.
func ParseTimeParam(r *http.Request, name string) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return &t, nil
	}
	return nil, apperrors.InvalidInput("invalid " + name + " parameter: " + s)
}
