package service

import (
	"context"
	"errors"
	"time"

	"bloodbank/internal/events"
	inventoryerrors "bloodbank/internal/inventory/errors"
	"bloodbank/internal/inventory/repository"
	"bloodbank/pkg/config"
	mongotx "bloodbank/pkg/db/mongo"
	apperrors "bloodbank/pkg/errors"
	"bloodbank/pkg/middleware"
	"bloodbank/pkg/model"
)

// InventoryService is the stock ledger. Mutations called with a session
// context join the caller's transaction and leave event publication to it.
type InventoryService interface {
	Issue(ctx context.Context, hospitalID, bloodType string, n int) (*model.StockEntry, error)
	Consume(ctx context.Context, hospitalID, bloodType string, n int) (*model.StockEntry, error)
	Transfer(ctx context.Context, hospitalID, fromType, toType string, n int) error
	StockSummary(ctx context.Context, hospitalID string) ([]model.StockSummaryItem, error)
}

type inventoryService struct {
	repo      repository.HospitalRepository
	publisher events.Publisher
	cfg       *config.Config
	defaults  model.Thresholds
}

func NewInventoryService(repo repository.HospitalRepository, publisher events.Publisher, cfg *config.Config) InventoryService {
	return &inventoryService{
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
		defaults: model.Thresholds{
			Low:    cfg.StockLowThreshold,
			Medium: cfg.StockMediumThreshold,
			High:   cfg.StockHighThreshold,
		},
	}
}

// DeriveLevel buckets an entry's quantity against its own thresholds.
func DeriveLevel(entry model.StockEntry) model.StockLevel {
	switch {
	case entry.Quantity <= entry.Thresholds.Low:
		return model.LevelLow
	case entry.Quantity <= entry.Thresholds.Medium:
		return model.LevelMedium
	default:
		return model.LevelHigh
	}
}

func (s *inventoryService) Issue(ctx context.Context, hospitalID, bloodType string, n int) (*model.StockEntry, error) {
	bloodType, err := s.validate(hospitalID, bloodType, n)
	if err != nil {
		return nil, err
	}

	entry, err := s.issue(ctx, hospitalID, bloodType, n)
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Stock issued",
		"hospital_id", hospitalID,
		"blood_type", bloodType,
		"quantity", n,
		"balance", entry.Quantity,
	)
	s.publish(ctx, events.TypeStockIssued, hospitalID, bloodType, "", n, entry)
	return entry, nil
}

func (s *inventoryService) Consume(ctx context.Context, hospitalID, bloodType string, n int) (*model.StockEntry, error) {
	bloodType, err := s.validate(hospitalID, bloodType, n)
	if err != nil {
		return nil, err
	}

	entry, err := s.consume(ctx, hospitalID, bloodType, n)
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Stock consumed",
		"hospital_id", hospitalID,
		"blood_type", bloodType,
		"quantity", n,
		"balance", entry.Quantity,
	)
	s.publish(ctx, events.TypeStockConsumed, hospitalID, bloodType, "", n, entry)
	return entry, nil
}

// Transfer moves n units from one blood type to another within a hospital.
// The issue half never runs when the consume half fails.
func (s *inventoryService) Transfer(ctx context.Context, hospitalID, fromType, toType string, n int) error {
	fromType, err := s.validate(hospitalID, fromType, n)
	if err != nil {
		return err
	}
	toType, err = s.validate(hospitalID, toType, n)
	if err != nil {
		return err
	}
	if fromType == toType {
		return nil
	}

	var dest *model.StockEntry
	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.consume(txCtx, hospitalID, fromType, n); err != nil {
			return err
		}
		entry, err := s.issue(txCtx, hospitalID, toType, n)
		if err != nil {
			return err
		}
		dest = entry
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Stock transfer failed",
			"hospital_id", hospitalID,
			"from", fromType,
			"to", toType,
			"quantity", n,
			"error", err,
		)
		if apperrors.IsAppError(err) {
			return err
		}
		return apperrors.Internal("Failed to transfer stock", err)
	}

	s.cfg.Log.Info("Stock transferred",
		"hospital_id", hospitalID,
		"from", fromType,
		"to", toType,
		"quantity", n,
	)
	s.publish(ctx, events.TypeStockTransferred, hospitalID, fromType, toType, n, dest)
	return nil
}

func (s *inventoryService) StockSummary(ctx context.Context, hospitalID string) ([]model.StockSummaryItem, error) {
	if hospitalID == "" {
		return nil, apperrors.InvalidInput("Hospital ID cannot be empty")
	}

	hospital, err := s.repo.FindByID(ctx, hospitalID)
	if err != nil {
		return nil, s.translate(err, hospitalID, "", 0, nil)
	}

	items := make([]model.StockSummaryItem, 0, len(model.BloodTypes))
	for _, bt := range model.BloodTypes {
		entry := hospital.Entry(bt, s.defaults)
		item := model.StockSummaryItem{
			BloodType:  bt,
			Quantity:   entry.Quantity,
			Level:      DeriveLevel(entry),
			Thresholds: entry.Thresholds,
		}
		if !entry.LastUpdated.IsZero() {
			lastUpdated := entry.LastUpdated
			item.LastUpdated = &lastUpdated
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *inventoryService) issue(ctx context.Context, hospitalID, bloodType string, n int) (*model.StockEntry, error) {
	entry, err := s.repo.Increment(ctx, hospitalID, bloodType, n, s.defaults)
	if err != nil {
		return nil, s.translate(err, hospitalID, bloodType, n, entry)
	}
	return entry, nil
}

func (s *inventoryService) consume(ctx context.Context, hospitalID, bloodType string, n int) (*model.StockEntry, error) {
	entry, err := s.repo.Decrement(ctx, hospitalID, bloodType, n)
	if err != nil {
		return nil, s.translate(err, hospitalID, bloodType, n, entry)
	}
	return entry, nil
}

func (s *inventoryService) validate(hospitalID, bloodType string, n int) (string, error) {
	if hospitalID == "" {
		return "", apperrors.InvalidInput("Hospital ID cannot be empty")
	}
	normalized, ok := model.NormalizeBloodType(bloodType)
	if !ok {
		return "", apperrors.Validation(inventoryerrors.ErrUnknownBloodType.Error(), map[string]any{
			"blood_type": bloodType,
		})
	}
	if n <= 0 {
		return "", apperrors.Validation(inventoryerrors.ErrInvalidQuantity.Error(), map[string]any{
			"quantity": n,
		})
	}
	return normalized, nil
}

func (s *inventoryService) translate(err error, hospitalID, bloodType string, n int, current *model.StockEntry) error {
	switch {
	case errors.Is(err, inventoryerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Hospital", hospitalID)
	case errors.Is(err, inventoryerrors.ErrInsufficientStock):
		available := 0
		if current != nil {
			available = current.Quantity
		}
		return apperrors.InsufficientStock(hospitalID, bloodType, available, n)
	default:
		s.cfg.Log.Error("Stock ledger operation failed",
			"hospital_id", hospitalID,
			"blood_type", bloodType,
			"error", err,
		)
		return apperrors.Internal("Failed to update stock", err)
	}
}

// publish emits a stock event unless the mutation belongs to a caller's
// transaction, whose outcome is not known yet.
func (s *inventoryService) publish(ctx context.Context, eventType, hospitalID, bloodType, toType string, n int, entry *model.StockEntry) {
	if mongotx.InTransaction(ctx) || entry == nil {
		return
	}
	s.publisher.PublishStock(ctx, events.StockEvent{
		Type:          eventType,
		HospitalID:    hospitalID,
		BloodType:     bloodType,
		ToBloodType:   toType,
		Quantity:      n,
		Balance:       entry.Quantity,
		Level:         DeriveLevel(*entry),
		CorrelationID: middleware.RequestIDFromContext(ctx),
		OccurredAt:    time.Now().UTC(),
	})
}
