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
	BookingsCollection = "Bookings"
)

type BookingRepository interface {
	FindAll(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error)
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, rawStatus string) error
	LinkUnit(ctx context.Context, id string, unitID string) error
	UpdateMetadata(ctx context.Context, id string, update model.BookingUpdate) error
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(BookingsCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

// FindAll returns normalized bookings. The date range is applied after
// normalization because legacy documents keep the date under other names.
func (r *mongoBookingRepository) FindAll(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	query := bson.M{}
	if filter.DonorID != "" {
		query = anyOf(bookingDonorFields, filter.DonorID)
	}

	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		b := NormalizeBooking(doc)
		if !inRange(b.ScheduledDate, filter.From, filter.To) {
			continue
		}
		bookings = append(bookings, b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}

	return bookings, nil
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var doc bson.M
	if err := r.collection.FindOne(ctx, mongotx.IDFilter(id)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, donationserrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return NormalizeBooking(doc), nil
}

func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, rawStatus string) error {
	return r.update(ctx, id, bson.M{"status": rawStatus})
}

// LinkUnit stores the direct unit link and marks the booking completed.
func (r *mongoBookingRepository) LinkUnit(ctx context.Context, id string, unitID string) error {
	return r.update(ctx, id, bson.M{
		"unit_id": unitID,
		"status":  model.RawCompleted,
	})
}

func (r *mongoBookingRepository) UpdateMetadata(ctx context.Context, id string, update model.BookingUpdate) error {
	set := bson.M{}
	if update.ScheduledDate != nil {
		set["scheduled_date"] = update.ScheduledDate.UTC()
	}
	if update.HospitalName != nil {
		set["hospital_name"] = *update.HospitalName
	}
	if update.Location != nil {
		set["location"] = *update.Location
	}
	if len(set) == 0 {
		return nil
	}
	return r.update(ctx, id, set)
}

func (r *mongoBookingRepository) update(ctx context.Context, id string, set bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	set["updated_at"] = time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx, mongotx.IDFilter(id), bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return donationserrors.ErrBookingNotFound
	}
	return nil
}

// Delete removes a booking unless it is completed. The guard lives in the
// filter so a concurrent completion cannot slip between check and delete.
func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := mongotx.IDFilter(id)
	filter["status"] = bson.M{"$not": primitive.Regex{Pattern: "^" + model.RawCompleted + "$", Options: "i"}}
	filter["unit_id"] = bson.M{"$in": bson.A{nil, ""}}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if result.DeletedCount > 0 {
		return nil
	}

	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return donationserrors.ErrBookingLocked
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
