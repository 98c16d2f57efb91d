package validator

import (
	"fmt"
	"time"

	"bloodbank/pkg/config"
	"bloodbank/pkg/model"
	"bloodbank/pkg/sanitizer"
	"bloodbank/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type TransitionValidator struct {
	validate    *validator.Validate
	maxAmountMl int
}

func NewTransitionValidator(cfg *config.Config) *TransitionValidator {
	return &TransitionValidator{
		validate:    validation.New(cfg.Log),
		maxAmountMl: cfg.MaxUnitAmountMl,
	}
}

// ValidatePayload checks the tag rules shared by every action.
func (v *TransitionValidator) ValidatePayload(p *model.TransitionPayload) error {
	return validation.Struct(v.validate, p)
}

// CompleteInput builds and checks the input of a complete action. The
// donation date defaults to now.
func (v *TransitionValidator) CompleteInput(p *model.TransitionPayload, now time.Time) (*model.CompleteInput, error) {
	in := &model.CompleteInput{
		BloodType:    p.BloodType,
		SerialNumber: sanitizer.SanitizeSerial(p.SerialNumber),
		AmountMl:     p.AmountMl,
		ExpiryDate:   p.ExpiryDate,
		DonationDate: now.UTC(),
	}
	if p.DonationDate != nil {
		in.DonationDate = p.DonationDate.UTC()
	}

	if err := validation.Struct(v.validate, in); err != nil {
		return nil, err
	}

	var errs validation.ValidationErrors
	errs = append(errs, v.checkAmount(in.AmountMl)...)
	errs = append(errs, checkExpiry(*in.ExpiryDate, now)...)
	if !in.ExpiryDate.After(in.DonationDate) {
		errs = append(errs, validation.ValidationError{
			Field:   "ExpiryDate",
			Message: "ExpiryDate must be after DonationDate",
		})
	}
	if len(errs) > 0 {
		return nil, errs
	}

	bt, _ := model.NormalizeBloodType(in.BloodType)
	in.BloodType = bt
	return in, nil
}

// ValidateEdit checks the unit fields of an editMetadata payload. Fields
// that are absent are not checked.
func (v *TransitionValidator) ValidateEdit(p *model.TransitionPayload, now time.Time) error {
	var errs validation.ValidationErrors
	if p.AmountMl != 0 {
		errs = append(errs, v.checkAmount(p.AmountMl)...)
	}
	if p.ExpiryDate != nil {
		errs = append(errs, checkExpiry(*p.ExpiryDate, now)...)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *TransitionValidator) checkAmount(amount int) validation.ValidationErrors {
	if amount <= 0 || amount > v.maxAmountMl {
		return validation.ValidationErrors{{
			Field:   "AmountMl",
			Message: fmt.Sprintf("AmountMl must be greater than 0 and at most %d", v.maxAmountMl),
		}}
	}
	return nil
}

func checkExpiry(expiry, now time.Time) validation.ValidationErrors {
	if !expiry.After(now) {
		return validation.ValidationErrors{{
			Field:   "ExpiryDate",
			Message: "ExpiryDate must be in the future",
		}}
	}
	return nil
}
