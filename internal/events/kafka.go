package events

import (
	"context"
	"errors"

	"bloodbank/pkg/config"
	"bloodbank/pkg/kafka"
	kafka_config "bloodbank/pkg/kafka/config"
	kafka_middleware "bloodbank/pkg/kafka/middleware"
	"bloodbank/pkg/logger"
)

// messagePublisher is the slice of *kafka.Producer the publisher needs.
type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	source    string
	donations messagePublisher
	inventory messagePublisher
	log       *logger.Logger
}

// NewPublisher returns a Kafka-backed publisher when events are enabled and
// a NopPublisher otherwise.
func NewPublisher(cfg *config.Config, serviceName string) (Publisher, error) {
	if !cfg.EventsEnabled {
		return NopPublisher{}, nil
	}

	kcfg, err := kafka_config.Load()
	if err != nil {
		return nil, err
	}
	kcfg.LogConfiguration(cfg.Log.Info)

	log := cfg.Log.Component("events")

	donations, err := kafka.NewProducer(kcfg, log, cfg.DonationTopic, cfg.EventsDLQTopic)
	if err != nil {
		return nil, err
	}
	inventory, err := kafka.NewProducer(kcfg, log, cfg.InventoryTopic, cfg.EventsDLQTopic)
	if err != nil {
		_ = donations.Close()
		return nil, err
	}

	if kcfg.EnableMiddleware {
		donations.Use(kafka_middleware.LoggingProducerMiddleware(log))
		inventory.Use(kafka_middleware.LoggingProducerMiddleware(log))
	}

	return newKafkaPublisher(serviceName, donations, inventory, log), nil
}

func newKafkaPublisher(source string, donations, inventory messagePublisher, log *logger.Logger) *kafkaPublisher {
	return &kafkaPublisher{
		source:    source,
		donations: donations,
		inventory: inventory,
		log:       log,
	}
}

func (p *kafkaPublisher) PublishStock(ctx context.Context, evt StockEvent) {
	p.publish(ctx, p.inventory, evt.HospitalID, evt.Type, evt.CorrelationID, evt)
}

func (p *kafkaPublisher) PublishDonation(ctx context.Context, evt DonationEvent) {
	p.publish(ctx, p.donations, evt.BookingID, evt.Type, evt.CorrelationID, evt)
}

func (p *kafkaPublisher) publish(ctx context.Context, producer messagePublisher, key, eventType, correlationID string, payload any) {
	msg, err := kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithSource(p.source).
		WithSchemaVersion(SchemaVersion).
		WithCorrelationID(correlationID).
		Build()
	if err != nil {
		p.log.Error("failed to build event message", "event_type", eventType, "key", key, "error", err)
		return
	}

	if err := producer.Publish(ctx, msg); err != nil {
		p.log.Warn("failed to publish event", "event_type", eventType, "key", key, "error", err)
	}
}

func (p *kafkaPublisher) Close() error {
	return errors.Join(p.donations.Close(), p.inventory.Close())
}
