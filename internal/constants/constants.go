package constants

import "time"

const (
	DefaultKFactor     = 32
	DefaultRating      = 0
	LeaderboardLimit   = 10
	MaxLeaderboardSize = 100
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout       = 5 * time.Second
	QueueMetricsInterval  = 15 * time.Second
	RatingConflictRetries = 1
)
