package repository

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	mongotx "bloodbank/pkg/db/mongo"
	"bloodbank/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Documents written before the schema was settled spell the same field in
// several ways. Each list starts with the canonical name, which always wins.
var (
	bookingDonorFields    = []string{"donor_id", "donorId", "userId", "user_id"}
	bookingEventFields    = []string{"event_id", "eventId"}
	bookingHospitalFields = []string{"hospital_id", "hospitalId"}
	bookingNameFields     = []string{"hospital_name", "hospitalName", "hospital"}
	bookingLocationFields = []string{"location", "venue", "address"}
	bookingDateFields     = []string{"scheduled_date", "scheduledDate", "appointmentDate", "date"}
	bookingStatusFields   = []string{"status", "rawStatus", "bookingStatus"}
	bookingUnitFields     = []string{"unit_id", "unitId", "donation_id", "donationId"}

	unitDonorFields     = []string{"donor_id", "donorId", "userId", "user_id"}
	unitBookingFields   = []string{"booking_id", "bookingId", "appointmentId"}
	unitHospitalFields  = []string{"hospital_id", "hospitalId"}
	unitBloodFields     = []string{"blood_type", "bloodType", "bloodGroup"}
	unitSerialFields    = []string{"serial_number", "serialNumber", "serial"}
	unitAmountFields    = []string{"amount_ml", "amountMl", "amount", "volume"}
	unitDonationFields  = []string{"donation_date", "donationDate", "date"}
	unitExpiryFields    = []string{"expiry_date", "expiryDate", "expirationDate"}
	unitStorageFields   = []string{"storage_status", "storageStatus", "status"}
	unitUsedAtFields    = []string{"used_at", "usedAt"}
	unitUsedByFields    = []string{"used_hospital_id", "usedHospitalId", "usedBy"}
	unitCreatedAtFields = []string{"created_at", "createdAt"}
	unitUpdatedAtFields = []string{"updated_at", "updatedAt"}

	bookingCreatedAtFields = []string{"created_at", "createdAt"}
	bookingUpdatedAtFields = []string{"updated_at", "updatedAt"}
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeBooking maps a raw Bookings document onto model.Booking.
func NormalizeBooking(doc bson.M) *model.Booking {
	return &model.Booking{
		ID:            mongotx.IDString(doc["_id"]),
		DonorID:       pickString(doc, bookingDonorFields...),
		EventID:       pickString(doc, bookingEventFields...),
		HospitalID:    pickString(doc, bookingHospitalFields...),
		HospitalName:  pickString(doc, bookingNameFields...),
		Location:      pickString(doc, bookingLocationFields...),
		ScheduledDate: pickTimeOrZero(doc, bookingDateFields...),
		RawStatus:     strings.ToLower(pickString(doc, bookingStatusFields...)),
		UnitID:        pickString(doc, bookingUnitFields...),
		CreatedAt:     pickTimeOrZero(doc, bookingCreatedAtFields...),
		UpdatedAt:     pickTimeOrZero(doc, bookingUpdatedAtFields...),
	}
}

// NormalizeUnit maps a raw Units document onto model.Unit.
func NormalizeUnit(doc bson.M) *model.Unit {
	unit := &model.Unit{
		ID:             mongotx.IDString(doc["_id"]),
		DonorID:        pickString(doc, unitDonorFields...),
		BookingID:      pickString(doc, unitBookingFields...),
		HospitalID:     pickString(doc, unitHospitalFields...),
		SerialNumber:   pickString(doc, unitSerialFields...),
		AmountMl:       pickInt(doc, unitAmountFields...),
		DonationDate:   pickTimeOrZero(doc, unitDonationFields...),
		ExpiryDate:     pickTime(doc, unitExpiryFields...),
		StorageStatus:  normalizeStorageStatus(pickString(doc, unitStorageFields...)),
		UsedAt:         pickTime(doc, unitUsedAtFields...),
		UsedHospitalID: pickString(doc, unitUsedByFields...),
		CreatedAt:      pickTimeOrZero(doc, unitCreatedAtFields...),
		UpdatedAt:      pickTimeOrZero(doc, unitUpdatedAtFields...),
	}

	bt := pickString(doc, unitBloodFields...)
	if normalized, ok := model.NormalizeBloodType(bt); ok {
		bt = normalized
	}
	unit.BloodType = bt
	return unit
}

func normalizeStorageStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stored", "in storage", "available", "completed":
		return model.StorageStored
	case "used", "transfused", "issued":
		return model.StorageUsed
	case "rejected", "discarded":
		return model.StorageRejected
	case "cancelled", "canceled":
		return model.StorageCancelled
	case "no-show", "noshow", "no_show":
		return model.StorageNoShow
	default:
		return strings.ToLower(strings.TrimSpace(s))
	}
}

func pickString(doc bson.M, keys ...string) string {
	for _, key := range keys {
		switch v := doc[key].(type) {
		case nil:
			continue
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case primitive.ObjectID:
			return v.Hex()
		case int32, int64, float64:
			return fmt.Sprint(v)
		}
	}
	return ""
}

func pickInt(doc bson.M, keys ...string) int {
	for _, key := range keys {
		switch v := doc[key].(type) {
		case int32:
			return int(v)
		case int64:
			return int(v)
		case int:
			return v
		case float64:
			return int(math.Round(v))
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(strings.ToLower(v), "ml"))); err == nil {
				return n
			}
		}
	}
	return 0
}

func pickTime(doc bson.M, keys ...string) *time.Time {
	for _, key := range keys {
		if t, ok := toTime(doc[key]); ok {
			return &t
		}
	}
	return nil
}

func pickTimeOrZero(doc bson.M, keys ...string) time.Time {
	if t := pickTime(doc, keys...); t != nil {
		return *t
	}
	return time.Time{}
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC(), true
	case time.Time:
		return t.UTC(), true
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0).UTC(), true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), true
			}
		}
	case int64:
		return time.UnixMilli(t).UTC(), true
	}
	return time.Time{}, false
}

// anyOf builds an $or matching value under any of the field spellings.
func anyOf(fields []string, value any) bson.M {
	clauses := make(bson.A, 0, len(fields))
	for _, f := range fields {
		clauses = append(clauses, bson.M{f: value})
	}
	return bson.M{"$or": clauses}
}
