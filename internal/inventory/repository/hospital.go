package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	inventoryerrors "bloodbank/internal/inventory/errors"
	"bloodbank/pkg/config"
	mongotx "bloodbank/pkg/db/mongo"
	"bloodbank/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Hospitals"
)

// HospitalRepository owns the Hospitals collection and the stock entries
// nested in each hospital document. Every stock mutation is a single
// conditional update on one document, so concurrent writers never lose
// updates and quantities never drop below zero.
type HospitalRepository interface {
	FindAll(ctx context.Context) ([]*model.Hospital, error)
	FindByID(ctx context.Context, id string) (*model.Hospital, error)
	Increment(ctx context.Context, hospitalID, bloodType string, n int, defaults model.Thresholds) (*model.StockEntry, error)
	Decrement(ctx context.Context, hospitalID, bloodType string, n int) (*model.StockEntry, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoHospitalRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
	defaults   model.Thresholds
}

func NewMongoHospitalRepository(cfg *config.Config) HospitalRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoHospitalRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
		defaults: model.Thresholds{
			Low:    cfg.StockLowThreshold,
			Medium: cfg.StockMediumThreshold,
			High:   cfg.StockHighThreshold,
		},
	}
}

func stockField(bloodType string, field ...string) string {
	path := "stock." + bloodType
	for _, f := range field {
		path += "." + f
	}
	return path
}

func (r *mongoHospitalRepository) FindAll(ctx context.Context) ([]*model.Hospital, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find hospitals: %w", err)
	}
	defer cursor.Close(ctx)

	var hospitals []*model.Hospital
	if err = cursor.All(ctx, &hospitals); err != nil {
		return nil, fmt.Errorf("failed to decode hospitals: %w", err)
	}
	for _, h := range hospitals {
		h.FillThresholds(r.defaults)
	}
	return hospitals, nil
}

func (r *mongoHospitalRepository) FindByID(ctx context.Context, id string) (*model.Hospital, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var hospital model.Hospital
	err := r.collection.FindOne(ctx, mongotx.IDFilter(id)).Decode(&hospital)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, inventoryerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find hospital: %w", err)
	}
	hospital.FillThresholds(r.defaults)
	return &hospital, nil
}

// Increment adds n to the entry, materializing it with default thresholds
// when the hospital has never stocked bloodType.
func (r *mongoHospitalRepository) Increment(ctx context.Context, hospitalID, bloodType string, n int, defaults model.Thresholds) (*model.StockEntry, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)

	materialize := mongotx.IDFilter(hospitalID)
	materialize[stockField(bloodType)] = bson.M{"$exists": false}
	if _, err := r.collection.UpdateOne(ctx, materialize, bson.M{
		"$set": bson.M{stockField(bloodType): model.StockEntry{
			Quantity:    0,
			Thresholds:  defaults,
			LastUpdated: now,
		}},
	}); err != nil {
		return nil, fmt.Errorf("failed to materialize stock entry: %w", err)
	}

	repair := mongotx.IDFilter(hospitalID)
	repair[stockField(bloodType)] = bson.M{"$exists": true}
	repair[stockField(bloodType, "thresholds")] = bson.M{"$exists": false}
	if _, err := r.collection.UpdateOne(ctx, repair, bson.M{
		"$set": bson.M{stockField(bloodType, "thresholds"): defaults},
	}); err != nil {
		return nil, fmt.Errorf("failed to set stock thresholds: %w", err)
	}

	update := bson.M{
		"$inc": bson.M{stockField(bloodType, "quantity"): n},
		"$set": bson.M{stockField(bloodType, "last_updated"): now},
	}
	return r.applyStockUpdate(ctx, mongotx.IDFilter(hospitalID), update, bloodType)
}

// Decrement subtracts n only if the entry holds at least n. On shortage it
// returns the current entry together with ErrInsufficientStock.
func (r *mongoHospitalRepository) Decrement(ctx context.Context, hospitalID, bloodType string, n int) (*model.StockEntry, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := mongotx.IDFilter(hospitalID)
	filter[stockField(bloodType, "quantity")] = bson.M{"$gte": n}

	update := bson.M{
		"$inc": bson.M{stockField(bloodType, "quantity"): -n},
		"$set": bson.M{stockField(bloodType, "last_updated"): time.Now().UTC().Truncate(time.Millisecond)},
	}

	entry, err := r.applyStockUpdate(ctx, filter, update, bloodType)
	if !errors.Is(err, inventoryerrors.ErrNotFound) {
		return entry, err
	}

	hospital, findErr := r.FindByID(ctx, hospitalID)
	if findErr != nil {
		return nil, findErr
	}
	current := hospital.Entry(bloodType, r.defaults)
	return &current, inventoryerrors.ErrInsufficientStock
}

func (r *mongoHospitalRepository) applyStockUpdate(ctx context.Context, filter, update bson.M, bloodType string) (*model.StockEntry, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{stockField(bloodType): 1})

	var hospital model.Hospital
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&hospital)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, inventoryerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	entry := hospital.Entry(bloodType, r.defaults)
	return &entry, nil
}

func (r *mongoHospitalRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
