package repository

import (
	"context"
	"fmt"

	"bloodbank/pkg/config"
	mongotx "bloodbank/pkg/db/mongo"
	"bloodbank/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	EventsCollection = "Events"
)

var eventHospitalFields = []string{"assigned_hospital_id", "assignedHospitalId", "hospitalId", "hospital_id"}

// EventRepository reads donation drives. The service never writes events.
type EventRepository interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.Event, error)
}

type mongoEventRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoEventRepository(cfg *config.Config) EventRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoEventRepository{
		cfg:        cfg,
		collection: db.Collection(EventsCollection),
	}
}

func (r *mongoEventRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, mongotx.IDsFilter(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*model.Event
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		events = append(events, &model.Event{
			ID:                 mongotx.IDString(doc["_id"]),
			Name:               pickString(doc, "name", "title"),
			AssignedHospitalID: pickString(doc, eventHospitalFields...),
			Date:               pickTimeOrZero(doc, "date", "eventDate"),
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}
