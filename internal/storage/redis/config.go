package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings for different entity types
	GuestUserTTL time.Duration
	// RoomTTL is a safety net on top of the expiry sweep; Redis reaps a
	// room record even if the sweep never got to it. It must stay well
	// past the sweep's own room TTL: a key that lapses on its own
	// vanishes without the terminal room_deleted broadcast.
	RoomTTL time.Duration
}

// WithRoomTTLFloor raises RoomTTL so the key expiry stays comfortably
// behind an expiry sweep that deletes rooms at sweepTTL
func (c Config) WithRoomTTLFloor(sweepTTL time.Duration) Config {
	if c.RoomTTL < 2*sweepTTL {
		c.RoomTTL = 2 * sweepTTL
	}
	return c
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		GuestUserTTL: 24 * time.Hour,
		RoomTTL:      48 * time.Hour,
	}
}
