package publisher

import (
	"context"
	"time"

	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/scheduling"
)

// Store defines the club operations required by the publisher.
type Store interface {
	GetTournament(ctx context.Context, id string) (*club.Tournament, error)
	ListGames(ctx context.Context, tournamentID string) ([]club.Game, error)
	ListCourts(ctx context.Context, tournamentID string) ([]club.Court, error)
	ListDraws(ctx context.Context, tournamentID string) ([]club.Draw, error)
	ListPlayers(ctx context.Context) ([]club.Player, error)
	MarkSchedulePublished(ctx context.Context, id string, at time.Time) error
}

// ConflictDetector is the part of the scheduling engine the publisher needs.
type ConflictDetector interface {
	DetectScheduleConflicts(ctx context.Context, tournamentID string) ([]scheduling.Conflict, error)
}

// Notifier defines the notification operations required by the publisher.
type Notifier interface {
	notifier.Notifier
}
