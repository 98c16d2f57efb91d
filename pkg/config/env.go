package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvStockLowThreshold    = "STOCK_LOW_THRESHOLD"
	EnvStockMediumThreshold = "STOCK_MEDIUM_THRESHOLD"
	EnvStockHighThreshold   = "STOCK_HIGH_THRESHOLD"

	EnvMaxUnitAmountMl = "MAX_UNIT_AMOUNT_ML"

	EnvEventsEnabled  = "EVENTS_ENABLED"
	EnvDonationTopic  = "DONATION_EVENTS_TOPIC"
	EnvInventoryTopic = "INVENTORY_EVENTS_TOPIC"
	EnvEventsDLQTopic = "EVENTS_DLQ_TOPIC"
)
