package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"bloodbank/pkg/client"
	"bloodbank/pkg/config"
	"bloodbank/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	EnvTestMongoURI     = "TEST_MONGO_URI"
	DefaultDatabaseName = "bloodbank_integration"
	ConnectionTimeout   = 10 * time.Second
)

// MongoHelper provides MongoDB test utilities. Transactions need a replica
// set, so TEST_MONGO_URI must point at one.
type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
}

// NewMongoHelper connects to TEST_MONGO_URI or skips the test when it is unset.
func NewMongoHelper(t *testing.T) *MongoHelper {
	t.Helper()

	mongoURI := os.Getenv(EnvTestMongoURI)
	if mongoURI == "" {
		t.Skipf("%s not set, skipping Mongo integration test", EnvTestMongoURI)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	h := &MongoHelper{
		Client:   mongoClient,
		Database: mongoClient.Database(DefaultDatabaseName),
		DBName:   DefaultDatabaseName,
	}
	h.CleanDatabase(t)
	t.Cleanup(func() { h.Close(t) })
	return h
}

// Config builds a service config on top of the helper's connection.
func (m *MongoHelper) Config() *config.Config {
	return &config.Config{
		MongoDatabaseName:    m.DBName,
		Port:                 "0",
		RequestTimeout:       10 * time.Second,
		IdempotencyTTL:       time.Minute,
		MaxRequestSize:       1 << 20,
		IdleTimeout:          time.Minute,
		ShutdownTimeout:      5 * time.Second,
		ReadTimeout:          5 * time.Second,
		WriteTimeout:         5 * time.Second,
		StockLowThreshold:    10,
		StockMediumThreshold: 30,
		StockHighThreshold:   50,
		MaxUnitAmountMl:      600,
		Log:                  logger.Discard(),
		Client:               &client.Client{Mongo: &client.MongoClient{Client: m.Client}},
	}
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

// CleanDatabase drops all collections to ensure clean state
func (m *MongoHelper) CleanDatabase(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collections, err := m.Database.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("failed to list collections: %v", err)
	}

	for _, collName := range collections {
		if err := m.Database.Collection(collName).Drop(ctx); err != nil {
			t.Fatalf("failed to drop collection %s: %v", collName, err)
		}
	}
}

// Insert writes raw documents, legacy field spellings included.
func (m *MongoHelper) Insert(t *testing.T, collectionName string, docs ...any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := m.Database.Collection(collectionName).InsertMany(ctx, docs); err != nil {
		t.Fatalf("failed to insert into %s: %v", collectionName, err)
	}
}

// CountDocuments returns the number of documents in a collection
func (m *MongoHelper) CountDocuments(t *testing.T, collectionName string) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := m.Database.Collection(collectionName).CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collectionName, err)
	}
	return count
}
