package enrollment

import (
	"database/sql"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/pubsub"
)

// registry implements Registry on top of the SQL store.
type registry struct {
	db      *sql.DB
	clock   clockwork.Clock
	events  pubsub.PubSubClient
	metrics metrics.Metrics
	locks   *keyedMutex
}

// Status is the admission state of an enrollment.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusConfirmed   Status = "CONFIRMED"
	StatusWaitingList Status = "WAITING_LIST"
	StatusCancelled   Status = "CANCELLED"
	StatusWithdrawn   Status = "WITHDRAWN"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusWithdrawn
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusWaitingList, StatusCancelled, StatusWithdrawn:
		return true
	}
	return false
}

// Enrollment is one entry of a player or guest into a sub-event.
type Enrollment struct {
	ID                  string    `json:"id"`
	SubEventID          string    `json:"sub_event_id"`
	TournamentID        string    `json:"tournament_id"`
	PlayerID            string    `json:"player_id,omitempty"`
	IsGuest             bool      `json:"is_guest"`
	GuestName           string    `json:"guest_name,omitempty"`
	GuestEmail          string    `json:"guest_email,omitempty"`
	GuestPhone          string    `json:"guest_phone,omitempty"`
	Status              Status    `json:"status"`
	PreferredPartnerID  string    `json:"preferred_partner_id,omitempty"`
	ConfirmedPartnerID  string    `json:"confirmed_partner_id,omitempty"`
	WaitingListPosition *int      `json:"waiting_list_position,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// GuestInfo identifies a non-member entrant.
type GuestInfo struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// UpdateRequest holds the editable fields of an enrollment. Nil fields are
// left unchanged; an empty PreferredPartnerID clears the preference.
type UpdateRequest struct {
	PreferredPartnerID *string `json:"preferred_partner_id,omitempty"`
	Notes              *string `json:"notes,omitempty"`
}

// Filter narrows List results. Empty fields match everything.
type Filter struct {
	SubEventID   string
	TournamentID string
	PlayerID     string
	Status       Status
}
