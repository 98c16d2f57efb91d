package mongo

import (
	"context"
	"fmt"
	"sort"

	donations "bloodbank/internal/donations/repository"
	inventory "bloodbank/internal/inventory/repository"
	"bloodbank/internal/migrations/mongo/validators"
	"bloodbank/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "donor_id", Value: 1}, {Key: "scheduled_date", Value: -1}}},
		{Keys: bson.D{{Key: "event_id", Value: 1}}},
		{
			Keys:    bson.D{{Key: "unit_id", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	UnitsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "serial_number", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"serial_number": bson.M{"$type": "string"}}),
		},
		{Keys: bson.D{{Key: "donor_id", Value: 1}, {Key: "donation_date", Value: -1}}},
		{Keys: bson.D{{Key: "booking_id", Value: 1}}},
	}

	HospitalsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}

	EventsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "assigned_hospital_id", Value: 1}}},
	}
)

// CollectionSpec is the schema validator and index set of one collection.
// Legacy collections use moderate validation so existing documents that
// predate the schema can still be updated.
type CollectionSpec struct {
	Name            string
	Indexes         []mongo.IndexModel
	Validator       bson.M
	ValidationLevel string
}

func Collections() []CollectionSpec {
	specs := []CollectionSpec{
		{Name: donations.BookingsCollection, Indexes: BookingsIndexes, Validator: validators.BookingValidator, ValidationLevel: "moderate"},
		{Name: donations.UnitsCollection, Indexes: UnitsIndexes, Validator: validators.UnitValidator, ValidationLevel: "moderate"},
		{Name: inventory.CollectionName, Indexes: HospitalsIndexes, Validator: validators.HospitalValidator, ValidationLevel: "strict"},
		{Name: donations.EventsCollection, Indexes: EventsIndexes, Validator: bson.M{}, ValidationLevel: "off"},
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for _, spec := range Collections() {
		if err := ensureCollection(ctx, db, spec, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", spec.Name, err)
		}
		if err := ensureIndexes(ctx, db, spec, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", spec.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, spec CollectionSpec, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: spec.Name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", spec.Name)
		opts := options.CreateCollection().
			SetValidator(spec.Validator).
			SetValidationLevel(spec.ValidationLevel)
		if err := db.CreateCollection(ctx, spec.Name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", spec.Name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", spec.Name)
	command := bson.D{
		{Key: "collMod", Value: spec.Name},
		{Key: "validator", Value: spec.Validator},
		{Key: "validationLevel", Value: spec.ValidationLevel},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", spec.Name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, spec CollectionSpec, log *logger.Logger) error {
	if len(spec.Indexes) == 0 {
		return nil
	}
	if _, err := db.Collection(spec.Name).Indexes().CreateMany(ctx, spec.Indexes); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", spec.Name, "count", len(spec.Indexes))
	return nil
}
