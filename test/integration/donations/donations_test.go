//go:build integration

package donations

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	donationhandler "bloodbank/internal/donations/handler"
	donationrepository "bloodbank/internal/donations/repository"
	donationservice "bloodbank/internal/donations/service"
	donationvalidator "bloodbank/internal/donations/validator"
	"bloodbank/internal/events"
	inventoryhandler "bloodbank/internal/inventory/handler"
	inventoryrepository "bloodbank/internal/inventory/repository"
	inventoryservice "bloodbank/internal/inventory/service"
	inventoryvalidator "bloodbank/internal/inventory/validator"
	mongoMigration "bloodbank/internal/migrations/mongo"
	"bloodbank/pkg/app"
	"bloodbank/pkg/contracts"
	"bloodbank/pkg/model"
	"bloodbank/test/integration/testutil"

	"go.mongodb.org/mongo-driver/bson"
)

func setup(t *testing.T) (*testutil.Client, *testutil.MongoHelper) {
	t.Helper()

	h := testutil.NewMongoHelper(t)
	cfg := h.Config()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := mongoMigration.RunMigration(ctx, h.Client, h.DBName, cfg.Log); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	hospitals := inventoryrepository.NewMongoHospitalRepository(cfg)
	inventory := inventoryservice.NewInventoryService(hospitals, events.NopPublisher{}, cfg)
	donations := donationservice.NewDonationService(
		donationrepository.NewMongoBookingRepository(cfg),
		donationrepository.NewMongoUnitRepository(cfg),
		donationrepository.NewMongoEventRepository(cfg),
		hospitals,
		inventory,
		donationvalidator.NewTransitionValidator(cfg),
		events.NopPublisher{},
		cfg,
	)

	application := app.NewApplication()
	application.SetApp(cfg, []contracts.Handler{
		donationhandler.NewDonationHandler(donations, cfg.Log),
		inventoryhandler.NewStockHandler(inventory, inventoryvalidator.NewStockValidator(cfg.Log), cfg.Log),
	})
	return testutil.StartServer(t, application.Handler()), h
}

func quantity(t *testing.T, c *testutil.Client, hospitalID, bloodType string) int {
	t.Helper()

	resp := c.GET(t, "/api/v1/hospitals/"+hospitalID+"/stock")
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var body struct {
		Data []model.StockSummaryItem `json:"data"`
	}
	if err := resp.DecodeJSON(&body); err != nil {
		t.Fatalf("failed to decode stock summary: %v", err)
	}
	for _, item := range body.Data {
		if item.BloodType == bloodType {
			return item.Quantity
		}
	}
	t.Fatalf("blood type %s missing from summary", bloodType)
	return 0
}

func TestDonationLifecycle(t *testing.T) {
	c, h := setup(t)

	hospital := testutil.NewHospitalBuilder("h1").
		WithName("Central Hospital").
		WithStock("A+", 5).
		WithStock("O-", 2).
		Build()
	h.Insert(t, inventoryrepository.CollectionName, hospital)

	// Legacy field spellings, as older clients wrote them.
	h.Insert(t, donationrepository.BookingsCollection, bson.M{
		"_id":             "b1",
		"donorId":         "d1",
		"hospitalId":      "h1",
		"appointmentDate": time.Now().UTC(),
		"status":          "Confirmed",
	})

	resp := c.GET(t, "/ready")
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = c.GET(t, "/api/v1/donations/b1")
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertContains(t, resp, `"status":"Confirmed"`)

	resp = c.POST(t, "/api/v1/donations/b1/transitions", map[string]any{
		"action": "complete",
		"payload": map[string]any{
			"blood_type":    "A+",
			"serial_number": "IT-0001",
			"amount_ml":     450,
			"expiry_date":   time.Now().UTC().Add(35 * 24 * time.Hour),
		},
	})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertContains(t, resp, `"display_status":"Completed"`)
	if got := quantity(t, c, "h1", "A+"); got != 6 {
		t.Fatalf("expected A+ at 6 after complete, got %d", got)
	}

	resp = c.POST(t, "/api/v1/donations/b1/transitions", map[string]any{
		"action":  "editMetadata",
		"payload": map[string]any{"blood_type": "O-"},
	})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	if a, o := quantity(t, c, "h1", "A+"), quantity(t, c, "h1", "O-"); a != 5 || o != 3 {
		t.Fatalf("expected A+ 5 and O- 3 after retype, got %d and %d", a, o)
	}

	resp = c.POST(t, "/api/v1/donations/b1/transitions", map[string]any{"action": "markUsed"})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertContains(t, resp, `"display_status":"Used"`)

	resp = c.POST(t, "/api/v1/donations/b1/transitions", map[string]any{"action": "markUsed"})
	testutil.AssertStatusCode(t, resp, http.StatusConflict)
	testutil.AssertContains(t, resp, "PRECONDITION_FAILED")
	if got := quantity(t, c, "h1", "O-"); got != 2 {
		t.Fatalf("expected O- at 2 after a single use, got %d", got)
	}

	resp = c.POST(t, "/api/v1/donations/b1/transitions", map[string]any{"action": "delete"})
	testutil.AssertStatusCode(t, resp, http.StatusConflict)
	if n := h.CountDocuments(t, donationrepository.BookingsCollection); n != 1 {
		t.Fatalf("expected completed booking to be kept, found %d bookings", n)
	}
}

func TestDuplicateSerialIsRejected(t *testing.T) {
	c, h := setup(t)

	h.Insert(t, inventoryrepository.CollectionName, testutil.NewHospitalBuilder("h1").Build())
	now := time.Now().UTC()
	h.Insert(t, donationrepository.BookingsCollection,
		bson.M{"_id": "b1", "donor_id": "d1", "hospital_id": "h1", "scheduled_date": now, "status": "confirmed"},
		bson.M{"_id": "b2", "donor_id": "d2", "hospital_id": "h1", "scheduled_date": now, "status": "confirmed"},
	)

	complete := func(bookingID string) *testutil.Response {
		return c.POST(t, "/api/v1/donations/"+bookingID+"/transitions", map[string]any{
			"action": "complete",
			"payload": map[string]any{
				"blood_type":    "B+",
				"serial_number": "IT-DUP",
				"amount_ml":     450,
				"expiry_date":   now.Add(30 * 24 * time.Hour),
			},
		})
	}

	testutil.AssertStatusCode(t, complete("b1"), http.StatusOK)

	resp := complete("b2")
	testutil.AssertStatusCode(t, resp, http.StatusConflict)
	testutil.AssertContains(t, resp, "CONFLICT")
	if got := quantity(t, c, "h1", "B+"); got != 1 {
		t.Fatalf("expected the rolled back issue to leave B+ at 1, got %d", got)
	}
}

func TestIdempotentTransition(t *testing.T) {
	c, h := setup(t)

	h.Insert(t, inventoryrepository.CollectionName, testutil.NewHospitalBuilder("h1").Build())
	h.Insert(t, donationrepository.BookingsCollection,
		bson.M{"_id": "b1", "donor_id": "d1", "hospital_id": "h1", "scheduled_date": time.Now().UTC(), "status": "pending"},
	)

	headers := map[string]string{app.IdempotencyHeader: "confirm-b1"}
	first := c.POSTWithHeaders(t, "/api/v1/donations/b1/transitions", map[string]any{"action": "confirm"}, headers)
	testutil.AssertStatusCode(t, first, http.StatusOK)

	second := c.POSTWithHeaders(t, "/api/v1/donations/b1/transitions", map[string]any{"action": "confirm"}, headers)
	testutil.AssertStatusCode(t, second, http.StatusOK)
	if string(first.Body) != string(second.Body) {
		t.Errorf("expected replayed response, got %s", second.Body)
	}
}

// fireConcurrently sends n copies of a POST at once and returns their
// responses in completion order.
func fireConcurrently(t *testing.T, c *testutil.Client, n int, path func(i int) string, body any) []*testutil.Response {
	t.Helper()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		start = make(chan struct{})
		out   []*testutil.Response
		errs  []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			resp, err := c.Send(http.MethodPost, path(i), body, nil)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			out = append(out, resp)
		}(i)
	}
	close(start)
	wg.Wait()

	for _, err := range errs {
		t.Errorf("concurrent request failed: %v", err)
	}
	return out
}

func countOutcomes(t *testing.T, responses []*testutil.Response) (ok, short int) {
	t.Helper()

	for _, resp := range responses {
		switch {
		case resp.StatusCode == http.StatusOK:
			ok++
		case resp.StatusCode == http.StatusConflict && strings.Contains(string(resp.Body), "INSUFFICIENT_STOCK"):
			short++
		default:
			t.Errorf("unexpected response %d: %s", resp.StatusCode, resp.Body)
		}
	}
	return ok, short
}

func TestConcurrentConsumeNeverOverdraws(t *testing.T) {
	c, h := setup(t)

	const stock, callers = 3, 12
	h.Insert(t, inventoryrepository.CollectionName, testutil.NewHospitalBuilder("h1").WithStock("O-", stock).Build())

	responses := fireConcurrently(t, c, callers,
		func(int) string { return "/api/v1/hospitals/h1/stock/consume" },
		map[string]any{"blood_type": "O-", "quantity": 1},
	)

	ok, short := countOutcomes(t, responses)
	if ok != stock || short != callers-stock {
		t.Fatalf("expected %d successes and %d shortages, got %d and %d", stock, callers-stock, ok, short)
	}
	if got := quantity(t, c, "h1", "O-"); got != 0 {
		t.Fatalf("expected O- at 0, got %d", got)
	}
}

func TestConcurrentMarkUsedSharesLastUnit(t *testing.T) {
	c, h := setup(t)

	h.Insert(t, inventoryrepository.CollectionName, testutil.NewHospitalBuilder("h1").Build())
	now := time.Now().UTC()
	h.Insert(t, donationrepository.BookingsCollection,
		bson.M{"_id": "b1", "donor_id": "d1", "hospital_id": "h1", "scheduled_date": now, "status": "confirmed"},
		bson.M{"_id": "b2", "donor_id": "d2", "hospital_id": "h1", "scheduled_date": now, "status": "confirmed"},
	)

	for _, id := range []string{"b1", "b2"} {
		resp := c.POST(t, "/api/v1/donations/"+id+"/transitions", map[string]any{
			"action": "complete",
			"payload": map[string]any{
				"blood_type":    "AB-",
				"serial_number": "IT-" + id,
				"amount_ml":     450,
				"expiry_date":   now.Add(30 * 24 * time.Hour),
			},
		})
		testutil.AssertStatusCode(t, resp, http.StatusOK)
	}

	// One of the two issued units leaves through a manual adjustment.
	resp := c.POST(t, "/api/v1/hospitals/h1/stock/consume", map[string]any{"blood_type": "AB-", "quantity": 1})
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	ids := []string{"b1", "b2"}
	responses := fireConcurrently(t, c, len(ids),
		func(i int) string { return "/api/v1/donations/" + ids[i] + "/transitions" },
		map[string]any{"action": "markUsed"},
	)

	ok, short := countOutcomes(t, responses)
	if ok != 1 || short != 1 {
		t.Fatalf("expected one use and one shortage, got %d and %d", ok, short)
	}
	if got := quantity(t, c, "h1", "AB-"); got != 0 {
		t.Fatalf("expected AB- at 0, got %d", got)
	}

	used := 0
	for _, id := range ids {
		resp := c.GET(t, "/api/v1/donations/"+id)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		if strings.Contains(string(resp.Body), `"display_status":"Used"`) {
			used++
		}
	}
	if used != 1 {
		t.Fatalf("expected exactly one used unit, got %d", used)
	}
}
