package publisher

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/courtside/internal/pubsub"
)

// Publisher makes a tournament's schedule public and tells players about it.
type Publisher struct {
	store     Store
	conflicts ConflictDetector
	notifier  Notifier
	pubsub    pubsub.PubSubClient
	clock     clockwork.Clock
}

// Result describes a publish run.
type Result struct {
	TournamentID string    `json:"tournament_id"`
	PublishedAt  time.Time `json:"published_at"`
	Games        int       `json:"games"`
	DryRun       bool      `json:"dry_run"`
}
