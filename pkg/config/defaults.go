package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "bloodbank"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultStockLowThreshold    = 10
	DefaultStockMediumThreshold = 30
	DefaultStockHighThreshold   = 50

	DefaultMaxUnitAmountMl = 1000

	DefaultEventsEnabled  = false
	DefaultDonationTopic  = "donations.lifecycle"
	DefaultInventoryTopic = "inventory.stock"
	DefaultEventsDLQTopic = ""
)
