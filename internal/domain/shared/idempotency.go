package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which inbound events were already accepted
type IdempotencyStore interface {
	// MarkProcessed marks an event as processed with a TTL
	// Returns true if the event was newly marked, false if it was already processed
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed checks if an event has already been processed
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Release forgets an event so a redelivery is accepted again.
	// Used when an accepted event could not be handed to its subscribers.
	Release(ctx context.Context, eventID string) error

	// Close closes the store and releases resources
	Close() error
}

// DefaultIdempotencyTTL bounds how long a webhook event id is remembered.
// The upstream retries deliveries for at most 72 hours.
const DefaultIdempotencyTTL = 72 * time.Hour
