package playtomic

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rafa-garcia/go-playtomic-api/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBooking(t *testing.T) {
	// Sample JSON response from the Playtomic API
	mockJSONResponse := `{
		"owner_id": "user-123",
		"start_date": "2025-07-09T18:00:00",
		"end_date": "2025-07-09T19:30:00",
		"status": "CONFIRMED",
		"game_status": "PENDING",
		"resource_name": "Court 1",
		"tenant": { "tenant_id": "tenant-abc", "tenant_name": "Padel Club" }
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/matches/match-abc", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, mockJSONResponse)
	}))
	defer server.Close()

	c := APIClient{
		httpClient: server.Client(),
		apiClient:  client.NewClient(), // Dummy client, not used in this specific test
		BaseURL:    server.URL,
	}

	booking, err := c.GetBooking(context.Background(), "match-abc")

	require.NoError(t, err)
	assert.Equal(t, "match-abc", booking.ID)
	assert.Equal(t, "Court 1", booking.ResourceName)
	assert.Equal(t, "tenant-abc", booking.TenantID)
	assert.Equal(t, GameStatusPending, booking.Status)
	assert.Equal(t, time.Date(2025, 7, 9, 18, 0, 0, 0, time.UTC), booking.Start)
	assert.Equal(t, 90*time.Minute, booking.End.Sub(booking.Start))
}

func TestGetBookingNonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := APIClient{httpClient: server.Client(), apiClient: client.NewClient(), BaseURL: server.URL}
	_, err := c.GetBooking(context.Background(), "missing")
	assert.Error(t, err)
}

func TestBookingOverlaps(t *testing.T) {
	base := time.Date(2025, 7, 9, 18, 0, 0, 0, time.UTC)
	b := Booking{Start: base, End: base.Add(90 * time.Minute)}

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"inside", base.Add(30 * time.Minute), base.Add(60 * time.Minute), true},
		{"straddles start", base.Add(-30 * time.Minute), base.Add(15 * time.Minute), true},
		{"ends at start", base.Add(-30 * time.Minute), base, false},
		{"starts at end", base.Add(90 * time.Minute), base.Add(120 * time.Minute), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Overlaps(tt.start, tt.end))
		})
	}
}
