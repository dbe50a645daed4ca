package playtomic

import "time"

// Booking is a court reservation made through Playtomic. ResourceName is
// the court name as the club configured it there.
type Booking struct {
	ID           string
	ResourceName string
	Start        time.Time
	End          time.Time
	Status       GameStatus
	TenantID     string
}

// Overlaps reports whether the booking intersects [start, end).
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && start.Before(b.End)
}

// GameStatus defines the status of a game.
type GameStatus string

const (
	GameStatusPending    GameStatus = "PENDING"
	GameStatusPlayed     GameStatus = "PLAYED"
	GameStatusUnknown    GameStatus = "UNKNOWN"
	GameStatusCanceled   GameStatus = "CANCELED"
	GameStatusWaitingFor GameStatus = "WAITING_FOR"
	GameStatusExpired    GameStatus = "EXPIRED"
	GameStatusInProgress GameStatus = "IN_PROGRESS"
)

// playtomicMatchResponse defines the structure for the JSON response from the Playtomic API for a single match.
type playtomicMatchResponse struct {
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Status       string          `json:"status"`
	GameStatus   string          `json:"game_status"`
	ResourceName string          `json:"resource_name"`
	Tenant       playtomicTenant `json:"tenant"`
}

// playtomicTenant defines the structure for the tenant information in the response.
type playtomicTenant struct {
	ID   string `json:"tenant_id"`
	Name string `json:"tenant_name"`
}
