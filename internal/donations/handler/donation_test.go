package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bloodbank/internal/donations/repository"
	"bloodbank/internal/donations/service"
	"bloodbank/internal/donations/validator"
	"bloodbank/internal/events"
	inventoryrepository "bloodbank/internal/inventory/repository"
	inventoryservice "bloodbank/internal/inventory/service"
	"bloodbank/pkg/config"
	"bloodbank/pkg/logger"
	"bloodbank/pkg/model"

	"github.com/julienschmidt/httprouter"
)

func newTestRouter() (*httprouter.Router, *repository.MemoryStore) {
	log := logger.Discard()
	cfg := &config.Config{
		Log:                  log,
		StockLowThreshold:    10,
		StockMediumThreshold: 30,
		StockHighThreshold:   50,
		MaxUnitAmountMl:      600,
	}

	store := repository.NewMemoryStore()
	store.PutBooking(&model.Booking{ID: "b1", DonorID: "d1", HospitalID: "h1", RawStatus: "pending", ScheduledDate: time.Now().UTC()})
	store.PutBooking(&model.Booking{ID: "b2", DonorID: "d2", HospitalID: "h1", RawStatus: "confirmed", ScheduledDate: time.Now().UTC()})

	ledger := inventoryrepository.NewMemoryHospitalRepository(&model.Hospital{ID: "h1", Name: "Central Hospital"})
	svc := service.NewDonationService(
		store.Bookings(),
		store.Units(),
		store.Events(),
		ledger,
		inventoryservice.NewInventoryService(ledger, events.NopPublisher{}, cfg),
		validator.NewTransitionValidator(cfg),
		events.NopPublisher{},
		cfg,
	)

	router := httprouter.New()
	NewDonationHandler(svc, log).RegisterRoutes(router)
	return router, store
}

func TestDonationHandler(t *testing.T) {
	expiry := time.Now().UTC().Add(30 * 24 * time.Hour).Format(time.RFC3339)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantInBody string
	}{
		{"list", http.MethodGet, "/api/v1/donations", "", http.StatusOK, `"total_count":2`},
		{"list by status", http.MethodGet, "/api/v1/donations?status=Confirmed", "", http.StatusOK, `"total_count":1`},
		{"list unknown status", http.MethodGet, "/api/v1/donations?status=Lost", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"list unknown source", http.MethodGet, "/api/v1/donations?source=mail", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"list bad date", http.MethodGet, "/api/v1/donations?from=yesterday", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"list inverted range", http.MethodGet, "/api/v1/donations?from=2025-03-02&to=2025-03-01", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"get", http.MethodGet, "/api/v1/donations/b1", "", http.StatusOK, `"status":"Pending"`},
		{"get missing", http.MethodGet, "/api/v1/donations/nope", "", http.StatusNotFound, "NOT_FOUND"},
		{"confirm", http.MethodPost, "/api/v1/donations/b1/transitions", `{"action":"confirm"}`, http.StatusOK, `"status":"Confirmed"`},
		{"reject confirmed", http.MethodPost, "/api/v1/donations/b2/transitions", `{"action":"reject"}`, http.StatusConflict, "PRECONDITION_FAILED"},
		{"unknown action", http.MethodPost, "/api/v1/donations/b1/transitions", `{"action":"archive"}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"invalid body", http.MethodPost, "/api/v1/donations/b1/transitions", `{`, http.StatusBadRequest, "INVALID_INPUT"},
		{
			"complete", http.MethodPost, "/api/v1/donations/b2/transitions",
			`{"action":"complete","payload":{"blood_type":"AB+","serial_number":"SN-9","amount_ml":450,"expiry_date":"` + expiry + `"}}`,
			http.StatusOK, `"display_status":"Completed"`,
		},
		{"complete without payload", http.MethodPost, "/api/v1/donations/b2/transitions", `{"action":"complete"}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter()

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.wantInBody) {
				t.Errorf("expected body to contain %q, got %s", tt.wantInBody, rec.Body.String())
			}
		})
	}
}

func TestDonationHandler_DeleteReturnsNoContent(t *testing.T) {
	router, store := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/donations/b1/transitions", strings.NewReader(`{"action":"delete"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.Booking("b1") != nil {
		t.Errorf("expected booking to be deleted")
	}
}

func TestDonationHandler_ListShape(t *testing.T) {
	router, _ := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/donations?hospital_id=h1&source=appointment", nil))

	var body struct {
		Data       []model.DonationRecord `json:"data"`
		TotalCount int                    `json:"total_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.TotalCount != 2 || len(body.Data) != 2 {
		t.Fatalf("expected 2 records, got %d", body.TotalCount)
	}
	for _, r := range body.Data {
		if r.HospitalName != "Central Hospital" {
			t.Errorf("expected hospital name to be resolved, got %q", r.HospitalName)
		}
	}
}
