package playtomic

import (
	"context"
	"time"
)

// PlaytomicClient defines the interface for interacting with the Playtomic API.
// This allows for mock implementations to be used in tests.
type PlaytomicClient interface {
	GetBookings(ctx context.Context, from time.Time) ([]Booking, error)
	GetBooking(ctx context.Context, matchID string) (Booking, error)
}
