package club

import (
	"database/sql"
	"sync"
	"time"
)

// store handles all database operations for the club's reference data.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Phase is the lifecycle phase of a tournament.
type Phase string

const (
	PhaseDraft            Phase = "DRAFT"
	PhaseEnrollmentOpen   Phase = "ENROLLMENT_OPEN"
	PhaseEnrollmentClosed Phase = "ENROLLMENT_CLOSED"
	PhaseScheduling       Phase = "SCHEDULING"
	PhasePublished        Phase = "PUBLISHED"
	PhaseFinished         Phase = "FINISHED"
)

// GameType decides whether entries need a partner.
type GameType string

const (
	GameTypeSingles      GameType = "SINGLES"
	GameTypeDoubles      GameType = "DOUBLES"
	GameTypeMixedDoubles GameType = "MIXED_DOUBLES"
)

// IsDoubles reports whether the game type requires pairing.
func (g GameType) IsDoubles() bool {
	return g == GameTypeDoubles || g == GameTypeMixedDoubles
}

// Stage marks knockout games that strategies may prioritise.
type Stage string

const (
	StageNone         Stage = ""
	StageFinal        Stage = "FINAL"
	StageSemiFinal    Stage = "SEMI_FINAL"
	StageQuarterFinal Stage = "QUARTER_FINAL"
)

// Player is a registered club member.
type Player struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Level float64 `json:"level"`
}

// Tournament groups sub-events, courts and draws.
type Tournament struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Phase                Phase      `json:"phase"`
	EnrollmentOpensAt    *time.Time `json:"enrollment_opens_at,omitempty"`
	EnrollmentClosesAt   *time.Time `json:"enrollment_closes_at,omitempty"`
	AllowGuestEnrollment bool       `json:"allow_guest_enrollment"`
	SchedulePublishedAt  *time.Time `json:"schedule_published_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// EnrollmentOpen reports whether the tournament accepts enrollments at now.
// Unset window bounds are treated as open.
func (t *Tournament) EnrollmentOpen(now time.Time) bool {
	if t.Phase != PhaseEnrollmentOpen {
		return false
	}
	if t.EnrollmentOpensAt != nil && now.Before(*t.EnrollmentOpensAt) {
		return false
	}
	if t.EnrollmentClosesAt != nil && now.After(*t.EnrollmentClosesAt) {
		return false
	}
	return true
}

// SubEvent is one category of a tournament, with its capacity settings.
type SubEvent struct {
	ID                 string   `json:"id"`
	TournamentID       string   `json:"tournament_id"`
	Name               string   `json:"name"`
	GameType           GameType `json:"game_type"`
	MaxEntries         *int     `json:"max_entries,omitempty"`
	WaitingListEnabled bool     `json:"waiting_list_enabled"`
}

// Court is a playing surface used by a tournament. ExternalResourceName
// links it to the court name used by the booking system.
type Court struct {
	ID                   string `json:"id"`
	TournamentID         string `json:"tournament_id"`
	Name                 string `json:"name"`
	ExternalResourceName string `json:"external_resource_name,omitempty"`
}

// Draw is a bracket within a sub-event.
type Draw struct {
	ID           string `json:"id"`
	TournamentID string `json:"tournament_id"`
	SubEventID   string `json:"sub_event_id"`
	Name         string `json:"name"`
}

// GamePlayer tags a player to a side of a game.
type GamePlayer struct {
	PlayerID string `json:"player_id"`
	Team     int    `json:"team"`
}

// Game is a single match of a draw.
type Game struct {
	ID             string       `json:"id"`
	TournamentID   string       `json:"tournament_id"`
	DrawID         string       `json:"draw_id"`
	Round          int          `json:"round"`
	Stage          Stage        `json:"stage,omitempty"`
	Order          int          `json:"order"`
	ScheduledTime  *time.Time   `json:"scheduled_time,omitempty"`
	CourtID        string       `json:"court_id,omitempty"`
	ScheduleSlotID string       `json:"schedule_slot_id,omitempty"`
	Players        []GamePlayer `json:"players"`
}

// PlayerIDs returns the ids of everyone playing in the game.
func (g *Game) PlayerIDs() []string {
	ids := make([]string, 0, len(g.Players))
	for _, p := range g.Players {
		ids = append(ids, p.PlayerID)
	}
	return ids
}
