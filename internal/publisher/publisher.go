package publisher

import (
	"cmp"
	"context"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/identity"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/scheduling"
)

// New creates a new Publisher.
func New(store Store, conflicts ConflictDetector, notifier Notifier, pubsub pubsub.PubSubClient, clock clockwork.Clock) *Publisher {
	return &Publisher{
		store:     store,
		conflicts: conflicts,
		notifier:  notifier,
		pubsub:    pubsub,
		clock:     clock,
	}
}

// PublishSchedule marks the schedule of a tournament as published, announces
// it on Slack and emits a schedule-published event. A schedule without games
// or with double bookings is refused. In a dry run nothing is stored or
// emitted and the announcement is only logged.
func (p *Publisher) PublishSchedule(ctx context.Context, actor identity.Actor, tournamentID string, dryRun bool) (*Result, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("organizer permission required")
	}
	t, err := p.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	games, err := p.store.ListGames(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	scheduled := slices.DeleteFunc(games, func(g club.Game) bool { return g.ScheduleSlotID == "" || g.ScheduledTime == nil })
	if len(scheduled) == 0 {
		return nil, apperr.Validation(apperr.CodeScheduleEmpty, "tournament %s has no scheduled games", tournamentID)
	}
	conflicts, err := p.conflicts.DetectScheduleConflicts(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, apperr.Validation(apperr.CodeScheduleHasConflicts, "tournament %s has %d schedule conflicts", tournamentID, len(conflicts))
	}

	now := p.clock.Now().UTC()
	if !dryRun {
		if err := p.store.MarkSchedulePublished(ctx, tournamentID, now); err != nil {
			return nil, err
		}
	}
	log.Info("Publishing schedule", "tournamentID", tournamentID, "games", len(scheduled), "dryRun", dryRun, "actor", actor.PlayerID)

	announcement, err := p.announcement(ctx, t, scheduled)
	if err != nil {
		log.Error("Failed to build schedule announcement", "error", err, "tournamentID", tournamentID)
	} else if err := p.notifier.SendSchedulePublished(ctx, announcement, dryRun); err != nil {
		log.Error("Failed to announce schedule", "error", err, "tournamentID", tournamentID)
	}

	if !dryRun {
		if err := p.pubsub.SendMessage(pubsub.EventSchedulePublished, pubsub.ScheduleEvent{
			TournamentID: tournamentID,
			Scheduled:    len(scheduled),
			OccurredAt:   now.Unix(),
		}); err != nil {
			log.Error("Failed to publish schedule event", "error", err, "tournamentID", tournamentID)
		}
	}

	return &Result{TournamentID: tournamentID, PublishedAt: now, Games: len(scheduled), DryRun: dryRun}, nil
}

// ReportConflicts runs conflict detection and posts the findings to Slack
// when there are any.
func (p *Publisher) ReportConflicts(ctx context.Context, tournamentID string, dryRun bool) ([]scheduling.Conflict, error) {
	t, err := p.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	conflicts, err := p.conflicts.DetectScheduleConflicts(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) == 0 {
		log.Debug("No schedule conflicts", "tournamentID", tournamentID)
		return conflicts, nil
	}

	names, err := p.playerNames(ctx)
	if err != nil {
		return nil, err
	}
	report := notifier.ConflictReport{TournamentID: t.ID, TournamentName: t.Name}
	for _, c := range conflicts {
		report.Conflicts = append(report.Conflicts, notifier.ConflictLine{Player: nameOr(names, c.PlayerID), Message: c.Message})
	}
	if err := p.notifier.SendConflictReport(ctx, report, dryRun); err != nil {
		log.Error("Failed to report schedule conflicts", "error", err, "tournamentID", tournamentID)
	}
	return conflicts, nil
}

func (p *Publisher) announcement(ctx context.Context, t *club.Tournament, games []club.Game) (notifier.ScheduleAnnouncement, error) {
	a := notifier.ScheduleAnnouncement{TournamentID: t.ID, TournamentName: t.Name}

	courts, err := p.store.ListCourts(ctx, t.ID)
	if err != nil {
		return a, err
	}
	courtNames := make(map[string]string, len(courts))
	for _, c := range courts {
		courtNames[c.ID] = c.Name
	}
	draws, err := p.store.ListDraws(ctx, t.ID)
	if err != nil {
		return a, err
	}
	drawNames := make(map[string]string, len(draws))
	for _, d := range draws {
		drawNames[d.ID] = d.Name
	}
	players, err := p.playerNames(ctx)
	if err != nil {
		return a, err
	}

	for _, g := range games {
		sg := notifier.ScheduledGame{
			Start: *g.ScheduledTime,
			Court: nameOr(courtNames, g.CourtID),
			Draw:  nameOr(drawNames, g.DrawID),
			Round: g.Round,
			Stage: string(g.Stage),
		}
		for _, id := range g.PlayerIDs() {
			sg.Players = append(sg.Players, nameOr(players, id))
		}
		a.Games = append(a.Games, sg)
	}
	slices.SortStableFunc(a.Games, func(x, y notifier.ScheduledGame) int {
		return cmp.Or(x.Start.Compare(y.Start), cmp.Compare(x.Court, y.Court))
	})
	return a, nil
}

func (p *Publisher) playerNames(ctx context.Context) (map[string]string, error) {
	players, err := p.store.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(players))
	for _, pl := range players {
		names[pl.ID] = pl.Name
	}
	return names, nil
}

func nameOr(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id
}
