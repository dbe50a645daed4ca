package notifier

import (
	"context"

	"github.com/charmbracelet/log"
)

type nop struct{}

// NewNop returns a Notifier that only logs. It is used when Slack is not
// configured.
func NewNop() Notifier {
	return nop{}
}

func (nop) SendSchedulePublished(_ context.Context, a ScheduleAnnouncement, _ bool) error {
	log.Info("Slack disabled, not announcing schedule", "tournamentID", a.TournamentID, "games", len(a.Games))
	return nil
}

func (nop) SendConflictReport(_ context.Context, r ConflictReport, _ bool) error {
	log.Info("Slack disabled, not reporting conflicts", "tournamentID", r.TournamentID, "conflicts", len(r.Conflicts))
	return nil
}
