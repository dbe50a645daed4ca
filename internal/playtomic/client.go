package playtomic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rafa-garcia/go-playtomic-api/client"
	"github.com/rafa-garcia/go-playtomic-api/models"
)

const layout = "2006-01-02T15:04:05"

// APIClient is a custom Playtomic API client that implements the PlaytomicClient interface.
type APIClient struct {
	httpClient *http.Client
	apiClient  *client.Client
	BaseURL    string
	TenantID   string
}

// NewClient creates a Playtomic client scoped to the club's tenant.
func NewClient(tenantID string) PlaytomicClient {
	return &APIClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiClient: client.NewClient(
			client.WithTimeout(10*time.Second),
			client.WithRetries(3),
		),
		BaseURL:  "https://api.playtomic.io",
		TenantID: tenantID,
	}
}

// Ensure APIClient implements the PlaytomicClient interface.
var _ PlaytomicClient = (*APIClient)(nil)

// GetBookings returns the tenant's padel bookings starting at or after from.
// Cancelled bookings are left out.
func (c *APIClient) GetBookings(ctx context.Context, from time.Time) ([]Booking, error) {
	const pageSize = 300
	var (
		bookings []Booking
		page     = 0
	)

	for {
		params := &models.SearchMatchesParams{
			SportID:       "PADEL",
			HasPlayers:    true,
			Sort:          "start_date,ASC",
			TenantIDs:     []string{c.TenantID},
			FromStartDate: from.UTC().Format(layout),
			Size:          pageSize,
			Page:          page,
		}

		log.Debug("Fetching matches from Playtomic API", "params", params)
		matches, err := c.apiClient.GetMatches(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("error fetching matches from playtomic api: %w", err)
		}

		for _, m := range matches {
			booking, err := c.GetBooking(ctx, m.MatchID)
			if err != nil {
				log.Error("Failed to fetch booking details", "error", err, "matchID", m.MatchID)
				continue
			}
			if booking.Status == GameStatusCanceled {
				continue
			}
			bookings = append(bookings, booking)
		}

		// If we got less than pageSize, we've reached the last page
		if len(matches) < pageSize {
			break
		}
		page++
	}
	log.Info("Fetched Playtomic bookings", "count", len(bookings), "tenantID", c.TenantID)
	return bookings, nil
}

// GetBooking fetches the court and time of a single match.
func (c *APIClient) GetBooking(ctx context.Context, matchID string) (Booking, error) {
	url := fmt.Sprintf("%s/v1/matches/%s", c.BaseURL, matchID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Booking{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "PlaytomicGoClient/1.0")

	log.Debug("Requesting specific match from Playtomic API", "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Booking{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error("Received non-OK HTTP status from Playtomic API", "status", resp.StatusCode, "body", string(body))
		return Booking{}, fmt.Errorf("received non-OK HTTP status: %d", resp.StatusCode)
	}

	var match playtomicMatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&match); err != nil {
		return Booking{}, fmt.Errorf("failed to decode response: %w", err)
	}

	start, err := time.Parse(layout, match.StartDate)
	if err != nil {
		return Booking{}, fmt.Errorf("failed to parse start time: %w", err)
	}
	end, err := time.Parse(layout, match.EndDate)
	if err != nil {
		return Booking{}, fmt.Errorf("failed to parse end time: %w", err)
	}

	status := GameStatus(match.GameStatus)
	if status == "" {
		status = GameStatusUnknown
	}
	return Booking{
		ID:           matchID,
		ResourceName: match.ResourceName,
		Start:        start,
		End:          end,
		Status:       status,
		TenantID:     match.Tenant.ID,
	}, nil
}
