package mongo

import (
	"testing"

	"bloodbank/internal/migrations/mongo/validators"

	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections(t *testing.T) {
	specs := Collections()

	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
	}
	want := []string{"Bookings", "Events", "Hospitals", "Units"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("expected %v, got %v", want, names)
		}
	}
}

func TestUnitsSerialIndexIsUnique(t *testing.T) {
	for _, idx := range UnitsIndexes {
		keys := idx.Keys.(bson.D)
		if keys[0].Key != "serial_number" {
			continue
		}
		if idx.Options == nil || idx.Options.Unique == nil || !*idx.Options.Unique {
			t.Fatalf("expected serial_number index to be unique")
		}
		return
	}
	t.Fatalf("serial_number index missing")
}

func TestHospitalValidatorForbidsNegativeStock(t *testing.T) {
	root := validators.HospitalValidator["$jsonSchema"].(bson.M)
	stock := root["properties"].(bson.M)["stock"].(bson.M)
	entry := stock["additionalProperties"].(bson.M)
	schema := entry["properties"].(bson.M)["quantity"].(bson.M)
	if schema["minimum"] != 0 {
		t.Errorf("expected stock quantity minimum 0, got %v", schema["minimum"])
	}
}
