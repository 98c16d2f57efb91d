package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	donationserrors "bloodbank/internal/donations/errors"
	"bloodbank/pkg/config"
	mongotx "bloodbank/pkg/db/mongo"
	"bloodbank/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UnitsCollection = "Units"
)

type UnitRepository interface {
	FindByDonorIDs(ctx context.Context, donorIDs []string) ([]*model.Unit, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Unit, error)
	FindByID(ctx context.Context, id string) (*model.Unit, error)
	Create(ctx context.Context, unit *model.Unit) error
	MarkUsed(ctx context.Context, id string, hospitalID string, at time.Time) error
	Update(ctx context.Context, id string, update model.UnitUpdate) error
}

type mongoUnitRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoUnitRepository(cfg *config.Config) UnitRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoUnitRepository{
		cfg:        cfg,
		collection: db.Collection(UnitsCollection),
	}
}

func (r *mongoUnitRepository) FindByDonorIDs(ctx context.Context, donorIDs []string) ([]*model.Unit, error) {
	if len(donorIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, anyOf(unitDonorFields, bson.M{"$in": donorIDs}))
}

func (r *mongoUnitRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Unit, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, mongotx.IDsFilter(ids))
}

func (r *mongoUnitRepository) find(ctx context.Context, filter bson.M) ([]*model.Unit, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find units: %w", err)
	}
	defer cursor.Close(ctx)

	var units []*model.Unit
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode unit: %w", err)
		}
		units = append(units, NormalizeUnit(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate units: %w", err)
	}
	return units, nil
}

func (r *mongoUnitRepository) FindByID(ctx context.Context, id string) (*model.Unit, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var doc bson.M
	if err := r.collection.FindOne(ctx, mongotx.IDFilter(id)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, donationserrors.ErrUnitNotFound
		}
		return nil, fmt.Errorf("failed to find unit: %w", err)
	}
	return NormalizeUnit(doc), nil
}

func (r *mongoUnitRepository) Create(ctx context.Context, unit *model.Unit) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	unit.CreatedAt = now
	unit.UpdatedAt = now
	if unit.ID == "" {
		unit.ID = primitive.NewObjectID().Hex()
	}

	if _, err := r.collection.InsertOne(ctx, unit); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return donationserrors.ErrDuplicateSerial
		}
		return fmt.Errorf("failed to create unit: %w", err)
	}
	return nil
}

// MarkUsed flips a stored unit to used. The storage status guard makes the
// flip happen at most once per unit.
func (r *mongoUnitRepository) MarkUsed(ctx context.Context, id string, hospitalID string, at time.Time) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := mongotx.IDFilter(id)
	filter["$or"] = bson.A{
		bson.M{"storage_status": model.StorageStored},
		bson.M{"storage_status": bson.M{"$exists": false}},
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"storage_status":   model.StorageUsed,
		"used_at":          at.UTC(),
		"used_hospital_id": hospitalID,
		"updated_at":       time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("failed to mark unit used: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return donationserrors.ErrUnitNotStored
}

func (r *mongoUnitRepository) Update(ctx context.Context, id string, update model.UnitUpdate) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if update.BloodType != nil {
		set["blood_type"] = *update.BloodType
	}
	if update.SerialNumber != nil {
		set["serial_number"] = *update.SerialNumber
	}
	if update.AmountMl != nil {
		set["amount_ml"] = *update.AmountMl
	}
	if update.ExpiryDate != nil {
		set["expiry_date"] = update.ExpiryDate.UTC()
	}

	result, err := r.collection.UpdateOne(ctx, mongotx.IDFilter(id), bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return donationserrors.ErrDuplicateSerial
		}
		return fmt.Errorf("failed to update unit: %w", err)
	}
	if result.MatchedCount == 0 {
		return donationserrors.ErrUnitNotFound
	}
	return nil
}
