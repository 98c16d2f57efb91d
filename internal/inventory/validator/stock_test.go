package validator

import (
	"errors"
	"testing"

	"bloodbank/pkg/logger"
	"bloodbank/pkg/model"
	"bloodbank/pkg/validation"
)

func TestStockValidator_Validate(t *testing.T) {
	v := NewStockValidator(logger.Discard())

	tests := []struct {
		name      string
		req       model.StockRequest
		transfer  bool
		wantField string
	}{
		{"valid issue", model.StockRequest{BloodType: "O-", Quantity: 3}, false, ""},
		{"lower case type", model.StockRequest{BloodType: "ab+", Quantity: 1}, false, ""},
		{"missing type", model.StockRequest{Quantity: 1}, false, "BloodType"},
		{"unknown type", model.StockRequest{BloodType: "Z+", Quantity: 1}, false, "BloodType"},
		{"zero quantity", model.StockRequest{BloodType: "A+"}, false, "Quantity"},
		{"quantity too large", model.StockRequest{BloodType: "A+", Quantity: 10001}, false, "Quantity"},
		{"valid transfer", model.StockRequest{BloodType: "A+", ToBloodType: "O-", Quantity: 1}, true, ""},
		{"transfer without destination", model.StockRequest{BloodType: "A+", Quantity: 1}, true, "ToBloodType"},
		{"transfer to same type", model.StockRequest{BloodType: "A+", ToBloodType: "a+", Quantity: 1}, true, "ToBloodType"},
		{"transfer to unknown type", model.StockRequest{BloodType: "A+", ToBloodType: "X", Quantity: 1}, true, "ToBloodType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req, tt.transfer)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var errs validation.ValidationErrors
			if !errors.As(err, &errs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if _, ok := errs.Fields()[tt.wantField]; !ok {
				t.Errorf("expected error on %s, got %v", tt.wantField, errs)
			}
		})
	}
}
