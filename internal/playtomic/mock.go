package playtomic

import (
	"context"
	"sync"
	"time"
)

// MockClient is a mock implementation of the PlaytomicClient interface for testing.
// It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// Spies for method calls
	GetBookingsFunc func(ctx context.Context, from time.Time) ([]Booking, error)
	GetBookingFunc  func(ctx context.Context, matchID string) (Booking, error)

	// Call records
	GetBookingsCalls []time.Time
	GetBookingCalls  []string
}

// NewMockClient creates a new mock instance.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Reset clears all call records.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetBookingsCalls = nil
	m.GetBookingCalls = nil
}

func (m *MockClient) GetBookings(ctx context.Context, from time.Time) ([]Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetBookingsCalls = append(m.GetBookingsCalls, from)
	if m.GetBookingsFunc != nil {
		return m.GetBookingsFunc(ctx, from)
	}
	return []Booking{}, nil
}

func (m *MockClient) GetBooking(ctx context.Context, matchID string) (Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetBookingCalls = append(m.GetBookingCalls, matchID)
	if m.GetBookingFunc != nil {
		return m.GetBookingFunc(ctx, matchID)
	}
	return Booking{ID: matchID}, nil
}
