package resolver

import (
	"testing"

	"bloodbank/pkg/model"
)

func testResolver() *Resolver {
	hospitals := []*model.Hospital{
		{ID: "h2", Name: "St. Mary's General Hospital", Location: "Riverside"},
		{ID: "h1", Name: "City Blood Center", Location: "Downtown"},
		{ID: "h3", Name: "Royal Infirmary", Location: "Old Town"},
	}
	events := []*model.Event{
		{ID: "e1", AssignedHospitalID: "h1"},
		{ID: "e2", AssignedHospitalID: "h9"},
		{ID: "e3"},
	}
	return New(hospitals, events)
}

func TestResolve(t *testing.T) {
	r := testResolver()

	tests := []struct {
		name    string
		booking model.Booking
		wantID  string
		wantOK  bool
	}{
		{"explicit tracked hospital", model.Booking{HospitalID: "h3", EventID: "e1"}, "h3", true},
		{"explicit untracked hospital", model.Booking{HospitalID: "h9", HospitalName: "Royal Infirmary"}, "", false},
		{"event assigned hospital", model.Booking{EventID: "e1", HospitalName: "Royal Infirmary"}, "h1", true},
		{"event assigned untracked hospital", model.Booking{EventID: "e2"}, "", false},
		{"event without assignment falls to name", model.Booking{EventID: "e3", HospitalName: "royal infirmary"}, "h3", true},
		{"unknown event falls to name", model.Booking{EventID: "e404", HospitalName: "St Mary's"}, "h2", true},
		{"exact name", model.Booking{HospitalName: "City Blood Center"}, "h1", true},
		{"name contained in hint", model.Booking{HospitalName: "Royal Infirmary, Ward 4"}, "h3", true},
		{"token match", model.Booking{HospitalName: "Mary's"}, "h2", true},
		{"location hint", model.Booking{Location: "old town"}, "h3", true},
		{"no hints falls back to lowest id", model.Booking{}, "h1", true},
		{"unmatched hint falls back to lowest id", model.Booking{HospitalName: "Nowhere Clinic"}, "h1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, ok := r.Resolve(&tt.booking)
			if ok != tt.wantOK {
				t.Fatalf("Resolve() ok = %v, want %v", ok, tt.wantOK)
			}
			if ref.ID != tt.wantID {
				t.Errorf("Resolve() id = %q, want %q", ref.ID, tt.wantID)
			}
		})
	}
}

func TestResolve_NoHospitals(t *testing.T) {
	r := New(nil, nil)

	if _, ok := r.Resolve(&model.Booking{HospitalName: "City"}); ok {
		t.Errorf("expected no resolution without tracked hospitals")
	}
}

func TestResolve_Deterministic(t *testing.T) {
	r := testResolver()
	b := &model.Booking{HospitalName: "General"}

	first, _ := r.Resolve(b)
	for i := 0; i < 10; i++ {
		again, _ := r.Resolve(b)
		if again != first {
			t.Fatalf("Resolve() not deterministic: %v then %v", first, again)
		}
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		a, b []string
		want float64
	}{
		{[]string{"a", "b"}, []string{"a", "b"}, 1},
		{[]string{"a", "b"}, []string{"b", "c"}, 1.0 / 3.0},
		{nil, []string{"a"}, 0},
	}

	for _, tt := range tests {
		if got := jaccard(tt.a, tt.b); got != tt.want {
			t.Errorf("jaccard(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
