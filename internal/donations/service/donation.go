package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	donationserrors "bloodbank/internal/donations/errors"
	"bloodbank/internal/donations/lifecycle"
	"bloodbank/internal/donations/repository"
	"bloodbank/internal/donations/resolver"
	"bloodbank/internal/donations/validator"
	"bloodbank/internal/events"
	inventoryrepository "bloodbank/internal/inventory/repository"
	inventoryservice "bloodbank/internal/inventory/service"
	"bloodbank/pkg/config"
	mongotx "bloodbank/pkg/db/mongo"
	apperrors "bloodbank/pkg/errors"
	"bloodbank/pkg/middleware"
	"bloodbank/pkg/model"
	"bloodbank/pkg/sanitizer"
	"bloodbank/pkg/validation"
)

// DonationService reconciles bookings and units into donation records and
// is the only way to mutate them.
type DonationService interface {
	ListRecords(ctx context.Context, filter model.RecordFilter) ([]model.DonationRecord, error)
	GetRecord(ctx context.Context, bookingID string) (*model.DonationRecord, error)
	Transition(ctx context.Context, bookingID string, req model.TransitionRequest) (*model.DonationRecord, error)
}

type donationService struct {
	bookings  repository.BookingRepository
	units     repository.UnitRepository
	events    repository.EventRepository
	hospitals inventoryrepository.HospitalRepository
	inventory inventoryservice.InventoryService
	validator *validator.TransitionValidator
	publisher events.Publisher
	cfg       *config.Config
	clock     func() time.Time
}

func NewDonationService(
	bookings repository.BookingRepository,
	units repository.UnitRepository,
	eventRepo repository.EventRepository,
	hospitals inventoryrepository.HospitalRepository,
	inventory inventoryservice.InventoryService,
	validator *validator.TransitionValidator,
	publisher events.Publisher,
	cfg *config.Config,
) DonationService {
	return &donationService{
		bookings:  bookings,
		units:     units,
		events:    eventRepo,
		hospitals: hospitals,
		inventory: inventory,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		clock:     time.Now,
	}
}

func (s *donationService) now() time.Time {
	return s.clock().UTC()
}

func (s *donationService) ListRecords(ctx context.Context, filter model.RecordFilter) ([]model.DonationRecord, error) {
	bookings, err := s.bookings.FindAll(ctx, model.BookingFilter{
		DonorID: filter.DonorID,
		From:    filter.From,
		To:      filter.To,
	})
	if err != nil {
		s.cfg.Log.Error("Failed to load bookings", "error", err)
		return nil, apperrors.Internal("Failed to list donation records", err)
	}

	res, idx, err := s.snapshot(ctx, bookings)
	if err != nil {
		return nil, err
	}

	now := s.now()
	records := make([]model.DonationRecord, 0, len(bookings))
	skipped := 0
	for _, b := range bookings {
		ref, ok := res.Resolve(b)
		if !ok {
			skipped++
			continue
		}
		rec := lifecycle.Project(b, idx.MatchUnit(b), ref, now)
		if matches(rec, filter) {
			records = append(records, rec)
		}
	}

	if skipped > 0 {
		s.cfg.Log.Debug("Bookings without a tracked hospital omitted", "count", skipped)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].EffectiveDate.Equal(records[j].EffectiveDate) {
			return records[i].EffectiveDate.After(records[j].EffectiveDate)
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

func matches(rec model.DonationRecord, f model.RecordFilter) bool {
	switch {
	case f.HospitalID != "" && rec.HospitalID != f.HospitalID:
		return false
	case f.Status != "" && rec.Status != f.Status:
		return false
	case f.DisplayStatus != "" && rec.DisplayStatus != f.DisplayStatus:
		return false
	case f.Source != "" && rec.Source != f.Source:
		return false
	}
	return true
}

func (s *donationService) GetRecord(ctx context.Context, bookingID string) (*model.DonationRecord, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	st, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !st.resolved {
		return nil, apperrors.NotFoundWithID("Donation record", bookingID)
	}
	return &st.record, nil
}

// snapshot loads everything needed to resolve and match bookings.
func (s *donationService) snapshot(ctx context.Context, bookings []*model.Booking) (*resolver.Resolver, *lifecycle.UnitIndex, error) {
	hospitals, err := s.hospitals.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load hospitals", "error", err)
		return nil, nil, apperrors.Internal("Failed to load hospitals", err)
	}

	var eventIDs, donorIDs, unitIDs []string
	for _, b := range bookings {
		if b.FromEvent() {
			eventIDs = append(eventIDs, b.EventID)
		}
		if !b.IsWalkIn() {
			donorIDs = append(donorIDs, b.DonorID)
		}
		if b.UnitID != "" {
			unitIDs = append(unitIDs, b.UnitID)
		}
	}

	evts, err := s.events.FindByIDs(ctx, sanitizer.NormalizeIDs(eventIDs))
	if err != nil {
		s.cfg.Log.Error("Failed to load events", "error", err)
		return nil, nil, apperrors.Internal("Failed to load events", err)
	}

	byDonor, err := s.units.FindByDonorIDs(ctx, sanitizer.NormalizeIDs(donorIDs))
	if err != nil {
		s.cfg.Log.Error("Failed to load units", "error", err)
		return nil, nil, apperrors.Internal("Failed to load donation units", err)
	}
	linked, err := s.units.FindByIDs(ctx, sanitizer.NormalizeIDs(unitIDs))
	if err != nil {
		s.cfg.Log.Error("Failed to load linked units", "error", err)
		return nil, nil, apperrors.Internal("Failed to load donation units", err)
	}

	return resolver.New(hospitals, evts), lifecycle.NewUnitIndex(append(byDonor, linked...)), nil
}

// recordState is one booking with everything a transition decides on.
type recordState struct {
	booking  *model.Booking
	unit     *model.Unit
	record   model.DonationRecord
	resolved bool
	tracked  func(id string) bool
}

func (s *donationService) load(ctx context.Context, bookingID string) (*recordState, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, s.translate(err, bookingID)
	}

	res, idx, err := s.snapshot(ctx, []*model.Booking{b})
	if err != nil {
		return nil, err
	}

	ref, resolved := res.Resolve(b)
	unit := idx.MatchUnit(b)
	return &recordState{
		booking:  b,
		unit:     unit,
		record:   lifecycle.Project(b, unit, ref, s.now()),
		resolved: resolved,
		tracked:  res.Tracked,
	}, nil
}

// ledgerHospital is where the unit's stock lives: the hospital it was issued
// to, or the record's hospital for units that predate that field.
func (st *recordState) ledgerHospital() string {
	if st.unit != nil && st.unit.HospitalID != "" && st.tracked(st.unit.HospitalID) {
		return st.unit.HospitalID
	}
	return st.record.HospitalID
}

func (s *donationService) Transition(ctx context.Context, bookingID string, req model.TransitionRequest) (*model.DonationRecord, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if !lifecycle.IsKnownAction(req.Action) {
		return nil, apperrors.Validation(fmt.Sprintf("Unknown action %q", req.Action), map[string]any{
			"action": req.Action,
		})
	}
	if err := s.validator.ValidatePayload(&req.Payload); err != nil {
		return nil, validationError(err)
	}

	var from, to model.Status
	var unitID, hospitalID string
	err := s.bookings.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		st, err := s.load(txCtx, bookingID)
		if err != nil {
			return err
		}
		from = st.record.Status
		hospitalID = st.record.HospitalID

		to, unitID, err = s.apply(txCtx, st, req)
		return err
	})
	if err != nil {
		s.cfg.Log.Warn("Donation transition rejected",
			"booking_id", bookingID,
			"action", req.Action,
			"error", err,
		)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to apply transition", err)
	}

	s.cfg.Log.Info("Donation transition applied",
		"booking_id", bookingID,
		"action", req.Action,
		"from", from,
		"to", to,
	)
	s.publishTransition(ctx, bookingID, req.Action, from, to, hospitalID, unitID)

	if req.Action == model.ActionDelete {
		return nil, nil
	}
	return s.GetRecord(ctx, bookingID)
}

// apply runs one action against a loaded record inside the caller's
// transaction. Ledger calls come before record writes so a ledger refusal
// leaves the record untouched.
func (s *donationService) apply(ctx context.Context, st *recordState, req model.TransitionRequest) (model.Status, string, error) {
	switch req.Action {
	case model.ActionComplete:
		return s.complete(ctx, st, &req.Payload)
	case model.ActionMarkUsed:
		return s.markUsed(ctx, st)
	case model.ActionEditMetadata:
		return s.editMetadata(ctx, st, &req.Payload)
	case model.ActionDelete:
		return s.delete(ctx, st)
	default:
		return s.moveStatus(ctx, st, req.Action)
	}
}

func (s *donationService) moveStatus(ctx context.Context, st *recordState, action model.Action) (model.Status, string, error) {
	target, _ := lifecycle.TargetStatus(action)
	if !lifecycle.CanMove(st.record.Status, target) {
		return "", "", notAllowed(action, st.record.Status)
	}

	if err := s.bookings.UpdateStatus(ctx, st.booking.ID, lifecycle.RawStatusFor(target)); err != nil {
		return "", "", s.translate(err, st.booking.ID)
	}
	return target, "", nil
}

func (s *donationService) complete(ctx context.Context, st *recordState, p *model.TransitionPayload) (model.Status, string, error) {
	if !lifecycle.CanMove(st.record.Status, model.StatusCompleted) {
		return "", "", notAllowed(model.ActionComplete, st.record.Status)
	}
	if st.unit != nil {
		return "", "", apperrors.Precondition("Record already has a donation unit", map[string]any{
			"unit_id": st.unit.ID,
		})
	}
	if !st.resolved {
		return "", "", apperrors.UnresolvedHospital(st.booking.ID)
	}

	in, err := s.validator.CompleteInput(p, s.now())
	if err != nil {
		return "", "", validationError(err)
	}

	hospitalID := st.record.HospitalID
	if _, err := s.inventory.Issue(ctx, hospitalID, in.BloodType, 1); err != nil {
		return "", "", err
	}

	expiry := in.ExpiryDate.UTC()
	unit := &model.Unit{
		DonorID:       st.booking.DonorID,
		BookingID:     st.booking.ID,
		HospitalID:    hospitalID,
		BloodType:     in.BloodType,
		SerialNumber:  in.SerialNumber,
		AmountMl:      in.AmountMl,
		DonationDate:  in.DonationDate,
		ExpiryDate:    &expiry,
		StorageStatus: model.StorageStored,
	}
	if err := s.units.Create(ctx, unit); err != nil {
		return "", "", s.translate(err, st.booking.ID)
	}
	if err := s.bookings.LinkUnit(ctx, st.booking.ID, unit.ID); err != nil {
		return "", "", s.translate(err, st.booking.ID)
	}
	return model.StatusCompleted, unit.ID, nil
}

func (s *donationService) markUsed(ctx context.Context, st *recordState) (model.Status, string, error) {
	if st.record.Status != model.StatusCompleted {
		return "", "", notAllowed(model.ActionMarkUsed, st.record.Status)
	}
	if st.unit == nil {
		return "", "", apperrors.Precondition("Record has no donation unit", nil)
	}

	now := s.now()
	details := map[string]any{"unit_id": st.unit.ID, "storage_status": st.unit.StorageStatus}
	switch {
	case st.unit.StorageStatus != model.StorageStored:
		return "", "", apperrors.Precondition("Unit is not in storage", details)
	case st.unit.IsExpired(now):
		return "", "", apperrors.Precondition("Unit has expired", details)
	}
	bloodType, known := model.NormalizeBloodType(st.unit.BloodType)
	if !known {
		return "", "", apperrors.Precondition("Unit blood type is unknown", map[string]any{
			"unit_id":    st.unit.ID,
			"blood_type": st.unit.BloodType,
		})
	}

	hospitalID := st.ledgerHospital()
	if hospitalID == "" {
		return "", "", apperrors.UnresolvedHospital(st.booking.ID)
	}

	if _, err := s.inventory.Consume(ctx, hospitalID, bloodType, 1); err != nil {
		return "", "", err
	}
	if err := s.units.MarkUsed(ctx, st.unit.ID, hospitalID, now); err != nil {
		return "", "", s.translate(err, st.booking.ID)
	}
	return model.StatusCompleted, st.unit.ID, nil
}

func (s *donationService) editMetadata(ctx context.Context, st *recordState, p *model.TransitionPayload) (model.Status, string, error) {
	bookingUpdate := model.BookingUpdate{
		ScheduledDate: p.ScheduledDate,
		HospitalName:  sanitizer.NormalizeOptional(p.HospitalName),
		Location:      sanitizer.NormalizeOptional(p.Location),
	}
	unitUpdate := model.UnitUpdate{ExpiryDate: p.ExpiryDate}
	if p.BloodType != "" {
		bt, _ := model.NormalizeBloodType(p.BloodType)
		unitUpdate.BloodType = &bt
	}
	if p.SerialNumber != "" {
		serial := sanitizer.SanitizeSerial(p.SerialNumber)
		unitUpdate.SerialNumber = &serial
	}
	if p.AmountMl != 0 {
		unitUpdate.AmountMl = &p.AmountMl
	}

	if bookingUpdate.IsEmpty() && unitUpdate.IsEmpty() {
		return "", "", apperrors.Validation("Nothing to edit", nil)
	}
	if !unitUpdate.IsEmpty() && st.unit == nil {
		return "", "", apperrors.Precondition("Record has no donation unit to edit", nil)
	}
	if err := s.validator.ValidateEdit(p, s.now()); err != nil {
		return "", "", validationError(err)
	}

	if unitUpdate.BloodType != nil && *unitUpdate.BloodType != st.unit.BloodType {
		if err := s.retype(ctx, st, *unitUpdate.BloodType); err != nil {
			return "", "", err
		}
	}

	if !unitUpdate.IsEmpty() {
		if err := s.units.Update(ctx, st.unit.ID, unitUpdate); err != nil {
			return "", "", s.translate(err, st.booking.ID)
		}
	}
	if !bookingUpdate.IsEmpty() {
		if err := s.bookings.UpdateMetadata(ctx, st.booking.ID, bookingUpdate); err != nil {
			return "", "", s.translate(err, st.booking.ID)
		}
	}

	unitID := ""
	if st.unit != nil {
		unitID = st.unit.ID
	}
	return st.record.Status, unitID, nil
}

// retype moves the unit's stock to its corrected blood type. Only a stored
// unit of a Completed record is counted in the ledger. A unit whose stored
// type is not a known blood type has no entry to draw from, so its unit is
// only issued under the corrected type.
func (s *donationService) retype(ctx context.Context, st *recordState, newType string) error {
	if st.record.Status != model.StatusCompleted {
		return nil
	}
	switch st.unit.StorageStatus {
	case model.StorageStored:
	case model.StorageUsed:
		return apperrors.Precondition("Cannot change the blood type of a used unit", map[string]any{
			"unit_id": st.unit.ID,
		})
	default:
		return nil
	}

	hospitalID := st.ledgerHospital()
	if hospitalID == "" {
		return apperrors.UnresolvedHospital(st.booking.ID)
	}

	oldType, known := model.NormalizeBloodType(st.unit.BloodType)
	if !known {
		_, err := s.inventory.Issue(ctx, hospitalID, newType, 1)
		return err
	}
	return s.inventory.Transfer(ctx, hospitalID, oldType, newType, 1)
}

func (s *donationService) delete(ctx context.Context, st *recordState) (model.Status, string, error) {
	if st.record.Status == model.StatusCompleted {
		return "", "", apperrors.Precondition("Completed donations cannot be deleted", nil)
	}
	if st.unit != nil {
		return "", "", apperrors.Precondition("Records with a donation unit cannot be deleted", map[string]any{
			"unit_id": st.unit.ID,
		})
	}

	if err := s.bookings.Delete(ctx, st.booking.ID); err != nil {
		return "", "", s.translate(err, st.booking.ID)
	}
	return st.record.Status, "", nil
}

func notAllowed(action model.Action, from model.Status) error {
	return apperrors.Precondition(fmt.Sprintf("Cannot %s a %s record", action, from), map[string]any{
		"action": action,
		"status": from,
	})
}

func validationError(err error) error {
	var errs validation.ValidationErrors
	if errors.As(err, &errs) {
		return apperrors.Validation("Transition payload validation failed", errs.Fields())
	}
	return apperrors.Validation(err.Error(), nil)
}

func (s *donationService) translate(err error, bookingID string) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, donationserrors.ErrBookingNotFound):
		return apperrors.NotFoundWithID("Booking", bookingID)
	case errors.Is(err, donationserrors.ErrUnitNotFound):
		return apperrors.NotFound("Donation unit")
	case errors.Is(err, donationserrors.ErrUnitNotStored):
		return apperrors.Precondition("Unit is not in storage", nil)
	case errors.Is(err, donationserrors.ErrBookingLocked):
		return apperrors.Precondition("Completed donations cannot be deleted", nil)
	case errors.Is(err, donationserrors.ErrDuplicateSerial):
		return apperrors.Conflict("Serial number is already registered")
	default:
		s.cfg.Log.Error("Donation store operation failed",
			"booking_id", bookingID,
			"error", err,
		)
		return apperrors.Internal("Failed to update donation record", err)
	}
}

func (s *donationService) publishTransition(ctx context.Context, bookingID string, action model.Action, from, to model.Status, hospitalID, unitID string) {
	if mongotx.InTransaction(ctx) {
		return
	}
	eventType := events.TypeDonationTransitioned
	if action == model.ActionDelete {
		eventType = events.TypeDonationDeleted
	}
	s.publisher.PublishDonation(ctx, events.DonationEvent{
		Type:          eventType,
		BookingID:     bookingID,
		Action:        string(action),
		From:          from,
		To:            to,
		HospitalID:    hospitalID,
		UnitID:        unitID,
		CorrelationID: middleware.RequestIDFromContext(ctx),
		OccurredAt:    time.Now().UTC(),
	})
}
