package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// OperationLogTTL bounds how long audit entries are kept
	OperationLogTTL time.Duration

	// OperationLogMax bounds how many audit entries are kept
	OperationLogMax int64
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:             "redis://localhost:6379",
		PoolSize:        10,
		MinIdleConns:    2,
		OperationLogTTL: 30 * 24 * time.Hour,
		OperationLogMax: 1000,
	}
}
