package errors

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")

	ErrUnitNotFound = errors.New("unit not found")

	// ErrUnitNotStored is returned when a conditional unit update finds the
	// unit no longer in storage, e.g. a concurrent markUsed won the race.
	ErrUnitNotStored = errors.New("unit is not in storage")

	ErrDuplicateSerial = errors.New("serial number already registered")

	// ErrBookingLocked is returned when a delete targets a completed booking.
	ErrBookingLocked = errors.New("booking is completed")
)
