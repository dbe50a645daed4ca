package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// nopClient logs events instead of publishing them. It is used when no GCP
// project is configured.
type nopClient struct{}

// EventType represents the type of event/message sent via pubsub. It doubles
// as the topic name.
type EventType string

const (
	EventPartnersMatched   EventType = "enrollment-partners-matched"
	EventEnrollmentPromote EventType = "enrollment-promoted"
	EventEnrollmentCancel  EventType = "enrollment-cancelled"
	EventGamesScheduled    EventType = "schedule-games-scheduled"
	EventSchedulePublished EventType = "schedule-published"
)

// EnrollmentEvent is the payload of the enrollment-* events.
type EnrollmentEvent struct {
	EnrollmentID string `msgpack:"enrollment_id" json:"enrollment_id"`
	SubEventID   string `msgpack:"sub_event_id" json:"sub_event_id"`
	PlayerID     string `msgpack:"player_id,omitempty" json:"player_id,omitempty"`
	PartnerID    string `msgpack:"partner_id,omitempty" json:"partner_id,omitempty"`
	Status       string `msgpack:"status" json:"status"`
	OccurredAt   int64  `msgpack:"occurred_at" json:"occurred_at"`
}

// ScheduleEvent is the payload of the schedule-* events.
type ScheduleEvent struct {
	TournamentID string `msgpack:"tournament_id" json:"tournament_id"`
	Scheduled    int    `msgpack:"scheduled" json:"scheduled"`
	Skipped      int    `msgpack:"skipped" json:"skipped"`
	Conflicts    int    `msgpack:"conflicts" json:"conflicts"`
	OccurredAt   int64  `msgpack:"occurred_at" json:"occurred_at"`
}
