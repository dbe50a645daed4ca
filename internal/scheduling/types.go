package scheduling

import (
	"database/sql"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/playtomic"
	"github.com/mauv0809/courtside/internal/pubsub"
)

// engine implements Engine on top of the SQL store.
type engine struct {
	db       *sql.DB
	clock    clockwork.Clock
	loc      *time.Location
	bookings playtomic.PlaytomicClient
	events   pubsub.PubSubClient
	metrics  metrics.Metrics
}

// SlotStatus is the state of a schedule slot.
type SlotStatus string

const (
	SlotAvailable  SlotStatus = "AVAILABLE"
	SlotScheduled  SlotStatus = "SCHEDULED"
	SlotInProgress SlotStatus = "IN_PROGRESS"
	SlotBlocked    SlotStatus = "BLOCKED"
)

// Slot is a fixed time window on one court. GameID is set exactly when the
// status is SCHEDULED or IN_PROGRESS.
type Slot struct {
	ID           string     `json:"id"`
	TournamentID string     `json:"tournament_id"`
	CourtID      string     `json:"court_id"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`
	Status       SlotStatus `json:"status"`
	GameID       string     `json:"game_id,omitempty"`
	Order        int        `json:"order"`
	CreatedAt    time.Time  `json:"created_at"`
}

// GenerateRequest describes a grid of slots. Dates are "2006-01-02" and
// times "15:04" in the engine's time zone. No CourtIDs means every court of
// the tournament.
type GenerateRequest struct {
	TournamentID        string   `json:"tournament_id"`
	CourtIDs            []string `json:"court_ids"`
	Dates               []string `json:"dates"`
	StartTime           string   `json:"start_time"`
	EndTime             string   `json:"end_time"`
	SlotDurationMinutes int      `json:"slot_duration_minutes"`
	BreakMinutes        int      `json:"break_minutes"`
}

// GenerateResult reports what a generation run created.
type GenerateResult struct {
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
	Slots   []Slot `json:"slots"`
}

// CreateSlotRequest describes a single manually created slot.
type CreateSlotRequest struct {
	TournamentID string    `json:"tournament_id"`
	CourtID      string    `json:"court_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

// SlotFilter narrows ListSlots. Date is "2006-01-02" in the engine's time zone.
type SlotFilter struct {
	TournamentID string
	CourtID      string
	Date         string
	Status       SlotStatus
}

// ScheduleRequest drives a bulk scheduling run. No DrawIDs means every draw
// of the tournament.
type ScheduleRequest struct {
	TournamentID   string       `json:"tournament_id"`
	DrawIDs        []string     `json:"draw_ids"`
	Strategy       StrategyName `json:"strategy"`
	MinRestMinutes int          `json:"min_rest_minutes"`
}

// ScheduleResult is the outcome of ScheduleGames.
type ScheduleResult struct {
	Scheduled int        `json:"scheduled"`
	Skipped   int        `json:"skipped"`
	Conflicts []Conflict `json:"conflicts"`
}

// Conflict names a player whose games could not be, or are not, kept apart.
type Conflict struct {
	PlayerID    string `json:"player_id"`
	GameID      string `json:"game_id"`
	OtherGameID string `json:"other_game_id,omitempty"`
	SlotID      string `json:"slot_id,omitempty"`
	OtherSlotID string `json:"other_slot_id,omitempty"`
	Message     string `json:"message"`
}

// SyncResult reports an external booking sync.
type SyncResult struct {
	Bookings int      `json:"bookings"`
	Blocked  int      `json:"blocked"`
	SlotIDs  []string `json:"slot_ids"`
}
