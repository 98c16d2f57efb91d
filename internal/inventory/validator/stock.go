package validator

import (
	"bloodbank/pkg/logger"
	"bloodbank/pkg/model"
	"bloodbank/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type StockValidator struct {
	validate *validator.Validate
}

func NewStockValidator(log *logger.Logger) *StockValidator {
	return &StockValidator{
		validate: validation.New(log),
	}
}

// Validate checks a ledger adjustment. Transfers additionally need a
// distinct destination blood type.
func (v *StockValidator) Validate(req *model.StockRequest, transfer bool) error {
	if err := validation.Struct(v.validate, req); err != nil {
		return err
	}

	if !transfer {
		return nil
	}

	var errs validation.ValidationErrors
	from, _ := model.NormalizeBloodType(req.BloodType)
	to, _ := model.NormalizeBloodType(req.ToBloodType)
	switch {
	case req.ToBloodType == "":
		errs = append(errs, validation.ValidationError{
			Field:   "ToBloodType",
			Message: "ToBloodType is required for a transfer",
		})
	case from == to:
		errs = append(errs, validation.ValidationError{
			Field:   "ToBloodType",
			Message: "ToBloodType must differ from BloodType",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
