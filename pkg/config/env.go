package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDefaultMinStayDays              = "DEFAULT_MIN_STAY_DAYS"
	EnvDefaultMaxStayDays              = "DEFAULT_MAX_STAY_DAYS"
	EnvDefaultCancellationDeadlineDays = "DEFAULT_CANCELLATION_DEADLINE_DAYS"
	EnvDefaultCheckinTime              = "DEFAULT_CHECKIN_TIME"
	EnvDefaultCheckoutTime             = "DEFAULT_CHECKOUT_TIME"
	EnvMaxGuestCount                   = "MAX_GUEST_COUNT"

	EnvLockTTL = "RESERVATION_LOCK_TTL"
)
