package scheduling

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/identity"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/playtomic"
	"github.com/mauv0809/courtside/internal/pubsub"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// errSlotTaken means a concurrent writer filled the slot first.
var errSlotTaken = errors.New("schedule slot taken")

// New creates an Engine. Dates and wall-clock times in requests are read in
// loc. bookings may be nil, which disables SyncExternalBookings.
func New(db *sql.DB, clock clockwork.Clock, loc *time.Location, bookings playtomic.PlaytomicClient, events pubsub.PubSubClient, m metrics.Metrics) Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &engine{
		db:       db,
		clock:    clock,
		loc:      loc,
		bookings: bookings,
		events:   events,
		metrics:  m,
	}
}

func requireAdmin(actor identity.Actor) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("organizer permission required")
	}
	return nil
}

func (e *engine) GenerateTimeSlots(ctx context.Context, actor identity.Actor, req GenerateRequest) (GenerateResult, error) {
	if err := requireAdmin(actor); err != nil {
		return GenerateResult{}, err
	}
	if req.SlotDurationMinutes <= 0 {
		return GenerateResult{}, apperr.Validation(apperr.CodeInvalidArgument, "slot duration must be positive")
	}
	if req.BreakMinutes < 0 {
		return GenerateResult{}, apperr.Validation(apperr.CodeInvalidArgument, "break must not be negative")
	}
	if len(req.Dates) == 0 {
		return GenerateResult{}, apperr.Validation(apperr.CodeInvalidArgument, "at least one date is required")
	}
	startClock, err := time.Parse(timeLayout, req.StartTime)
	if err != nil {
		return GenerateResult{}, apperr.Validation(apperr.CodeInvalidArgument, "invalid start time %q", req.StartTime)
	}
	endClock, err := time.Parse(timeLayout, req.EndTime)
	if err != nil {
		return GenerateResult{}, apperr.Validation(apperr.CodeInvalidArgument, "invalid end time %q", req.EndTime)
	}
	if !endClock.After(startClock) {
		return GenerateResult{}, apperr.Validation(apperr.CodeInvalidArgument, "end time must be after start time")
	}
	days := make([]time.Time, 0, len(req.Dates))
	for _, d := range req.Dates {
		day, err := time.ParseInLocation(dateLayout, d, e.loc)
		if err != nil {
			return GenerateResult{}, apperr.Validation(apperr.CodeInvalidArgument, "invalid date %q", d)
		}
		days = append(days, day)
	}

	if _, err := club.FindTournament(ctx, e.db, req.TournamentID); err != nil {
		return GenerateResult{}, err
	}
	courtIDs, err := e.resolveCourts(ctx, req.TournamentID, req.CourtIDs)
	if err != nil {
		return GenerateResult{}, err
	}
	order, err := maxSlotOrder(ctx, e.db, req.TournamentID)
	if err != nil {
		return GenerateResult{}, err
	}

	duration := time.Duration(req.SlotDurationMinutes) * time.Minute
	step := duration + time.Duration(req.BreakMinutes)*time.Minute
	now := e.clock.Now()
	result := GenerateResult{Slots: []Slot{}}

	for _, day := range days {
		from := atClock(day, startClock, e.loc)
		until := atClock(day, endClock, e.loc)
		for _, courtID := range courtIDs {
			for start := from; start.Before(until); start = start.Add(step) {
				if err := ctx.Err(); err != nil {
					return result, err
				}
				slot := Slot{
					ID:           uuid.NewString(),
					TournamentID: req.TournamentID,
					CourtID:      courtID,
					StartTime:    start.UTC(),
					EndTime:      start.Add(duration).UTC(),
					Status:       SlotAvailable,
					Order:        order + 1,
					CreatedAt:    now.UTC(),
				}
				created, err := insertSlot(ctx, e.db, &slot)
				if err != nil {
					log.Error("Failed to create schedule slot", "error", err, "courtID", courtID, "start", slot.StartTime)
					result.Skipped++
					continue
				}
				if !created {
					result.Skipped++
					continue
				}
				order++
				result.Created++
				result.Slots = append(result.Slots, slot)
			}
		}
	}

	e.metrics.IncSlotsGenerated(result.Created)
	log.Info("Generated schedule slots", "tournamentID", req.TournamentID, "created", result.Created, "skipped", result.Skipped)
	return result, nil
}

func atClock(day, clock time.Time, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
}

// resolveCourts returns ids when given, checking each belongs to the
// tournament, and every court of the tournament otherwise.
func (e *engine) resolveCourts(ctx context.Context, tournamentID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		courts, err := club.FindCourts(ctx, e.db, tournamentID)
		if err != nil {
			return nil, err
		}
		for _, c := range courts {
			ids = append(ids, c.ID)
		}
		return ids, nil
	}
	for _, id := range ids {
		if _, err := e.courtOf(ctx, e.db, tournamentID, id); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (e *engine) courtOf(ctx context.Context, q database.Querier, tournamentID, courtID string) (*club.Court, error) {
	c, err := club.FindCourt(ctx, q, courtID)
	if err != nil {
		return nil, err
	}
	if c.TournamentID != tournamentID {
		return nil, apperr.Validation(apperr.CodeSlotOutsideTournament, "court %s does not belong to tournament %s", courtID, tournamentID)
	}
	return c, nil
}

func (e *engine) CreateScheduleSlot(ctx context.Context, actor identity.Actor, req CreateSlotRequest) (*Slot, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, apperr.Validation(apperr.CodeInvalidArgument, "end time must be after start time")
	}
	if _, err := club.FindTournament(ctx, e.db, req.TournamentID); err != nil {
		return nil, err
	}
	if _, err := e.courtOf(ctx, e.db, req.TournamentID, req.CourtID); err != nil {
		return nil, err
	}

	var slot Slot
	err := database.RunInTx(ctx, e.db, func(tx *sql.Tx) error {
		order, err := maxSlotOrder(ctx, tx, req.TournamentID)
		if err != nil {
			return err
		}
		slot = Slot{
			ID:           uuid.NewString(),
			TournamentID: req.TournamentID,
			CourtID:      req.CourtID,
			StartTime:    req.StartTime.UTC(),
			EndTime:      req.EndTime.UTC(),
			Status:       SlotAvailable,
			Order:        order + 1,
			CreatedAt:    e.clock.Now().UTC(),
		}
		created, err := insertSlot(ctx, tx, &slot)
		if err != nil {
			return err
		}
		if !created {
			return apperr.Validation(apperr.CodeInvalidArgument, "court %s already has a slot at %s", req.CourtID, slot.StartTime.Format(time.RFC3339))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.metrics.IncSlotsGenerated(1)
	return &slot, nil
}

// mutateSlot loads a slot inside a transaction and lets fn change it.
func (e *engine) mutateSlot(ctx context.Context, slotID string, fn func(tx *sql.Tx, s *Slot) error) (*Slot, error) {
	var slot *Slot
	err := database.RunInTx(ctx, e.db, func(tx *sql.Tx) error {
		s, err := findSlot(ctx, tx, slotID)
		if err != nil {
			return err
		}
		if err := fn(tx, s); err != nil {
			return err
		}
		slot = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func (e *engine) BlockScheduleSlot(ctx context.Context, actor identity.Actor, slotID string) (*Slot, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return e.mutateSlot(ctx, slotID, func(tx *sql.Tx, s *Slot) error {
		if s.GameID != "" {
			return apperr.Validation(apperr.CodeSlotOccupied, "slot %s holds game %s", s.ID, s.GameID)
		}
		if s.Status == SlotBlocked {
			return nil
		}
		s.Status = SlotBlocked
		return setSlotStatus(ctx, tx, s.ID, s.Status)
	})
}

func (e *engine) UnblockScheduleSlot(ctx context.Context, actor identity.Actor, slotID string) (*Slot, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return e.mutateSlot(ctx, slotID, func(tx *sql.Tx, s *Slot) error {
		if s.Status != SlotBlocked {
			return apperr.Validation(apperr.CodeSlotNotBlocked, "slot %s is not blocked", s.ID)
		}
		s.Status = SlotAvailable
		return setSlotStatus(ctx, tx, s.ID, s.Status)
	})
}

func (e *engine) DeleteScheduleSlot(ctx context.Context, actor identity.Actor, slotID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	_, err := e.mutateSlot(ctx, slotID, func(tx *sql.Tx, s *Slot) error {
		if s.GameID != "" {
			return apperr.Validation(apperr.CodeSlotOccupied, "slot %s holds game %s", s.ID, s.GameID)
		}
		return deleteSlot(ctx, tx, s.ID)
	})
	return err
}

func (e *engine) StartSlot(ctx context.Context, actor identity.Actor, slotID string) (*Slot, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return e.mutateSlot(ctx, slotID, func(tx *sql.Tx, s *Slot) error {
		if s.Status != SlotScheduled {
			return apperr.Validation(apperr.CodeSlotNotScheduled, "slot %s has no scheduled game", s.ID)
		}
		s.Status = SlotInProgress
		return setSlotStatus(ctx, tx, s.ID, s.Status)
	})
}

func (e *engine) AssignGameToSlot(ctx context.Context, actor identity.Actor, slotID, gameID string) (*Slot, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	slot, err := e.mutateSlot(ctx, slotID, func(tx *sql.Tx, s *Slot) error {
		if s.Status == SlotBlocked {
			return apperr.Validation(apperr.CodeSlotBlocked, "slot %s is blocked", s.ID)
		}
		if s.GameID != "" {
			return apperr.Validation(apperr.CodeSlotOccupied, "slot %s already holds game %s", s.ID, s.GameID)
		}
		return e.assign(ctx, tx, s, gameID, true)
	})
	if errors.Is(err, errSlotTaken) {
		return nil, apperr.Validation(apperr.CodeSlotOccupied, "slot %s was taken", slotID)
	}
	if err != nil {
		return nil, err
	}
	log.Info("Assigned game to slot", "slotID", slot.ID, "gameID", gameID, "actor", actor.PlayerID)
	return slot, nil
}

// assign puts the game into s. With move set, a game that already sits in
// another slot is taken out of it first; otherwise such a game is left alone
// and errGameScheduled is returned.
func (e *engine) assign(ctx context.Context, tx *sql.Tx, s *Slot, gameID string, move bool) error {
	game, err := club.FindGame(ctx, tx, gameID)
	if err != nil {
		return err
	}
	if game.TournamentID != s.TournamentID {
		return apperr.Validation(apperr.CodeSlotOutsideTournament, "game %s does not belong to tournament %s", gameID, s.TournamentID)
	}
	if game.ScheduleSlotID != "" {
		if !move {
			return errGameScheduled
		}
		old, err := findSlot(ctx, tx, game.ScheduleSlotID)
		switch {
		case errors.Is(err, apperr.ErrNotFound):
		case err != nil:
			return err
		case old.Status == SlotInProgress:
			return apperr.Validation(apperr.CodeSlotInProgress, "game %s is being played in slot %s", gameID, old.ID)
		case old.GameID == gameID:
			if err := releaseSlot(ctx, tx, old.ID); err != nil {
				return err
			}
		}
	}

	ok, err := occupySlot(ctx, tx, s.ID, gameID)
	if err != nil {
		return err
	}
	if !ok {
		return errSlotTaken
	}
	s.Status = SlotScheduled
	s.GameID = gameID
	return placeGame(ctx, tx, gameID, s)
}

// errGameScheduled means the game was placed elsewhere since it was listed.
var errGameScheduled = errors.New("game already scheduled")

func (e *engine) RemoveGameFromSlot(ctx context.Context, actor identity.Actor, slotID string) (*Slot, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return e.mutateSlot(ctx, slotID, func(tx *sql.Tx, s *Slot) error {
		if s.Status == SlotInProgress {
			return apperr.Validation(apperr.CodeSlotInProgress, "slot %s is in progress", s.ID)
		}
		if s.GameID == "" {
			return apperr.Validation(apperr.CodeSlotNotScheduled, "slot %s has no game", s.ID)
		}
		if err := releaseSlot(ctx, tx, s.ID); err != nil {
			return err
		}
		if err := unplaceGame(ctx, tx, s.GameID); err != nil {
			return err
		}
		s.Status = SlotAvailable
		s.GameID = ""
		return nil
	})
}

func (e *engine) ScheduleGames(ctx context.Context, actor identity.Actor, req ScheduleRequest) (ScheduleResult, error) {
	if err := requireAdmin(actor); err != nil {
		return ScheduleResult{}, err
	}
	strategy, err := StrategyFor(req.Strategy)
	if err != nil {
		return ScheduleResult{}, err
	}
	if req.MinRestMinutes < 0 {
		return ScheduleResult{}, apperr.Validation(apperr.CodeInvalidArgument, "minimum rest must not be negative")
	}
	started := e.clock.Now()

	games, err := e.UnscheduledGames(ctx, req.TournamentID, req.DrawIDs)
	if err != nil {
		return ScheduleResult{}, err
	}
	pool, err := e.AvailableSlots(ctx, req.TournamentID)
	if err != nil {
		return ScheduleResult{}, err
	}
	existing, err := occupiedBookings(ctx, e.db, req.TournamentID)
	if err != nil {
		return ScheduleResult{}, err
	}
	rest := newRestTracker(time.Duration(req.MinRestMinutes) * time.Minute)
	for _, b := range existing {
		rest.add([]string{b.playerID}, b.gameID, b.slot)
	}

	strategy.Sort(games)
	result := ScheduleResult{Conflicts: []Conflict{}}

	for _, game := range games {
		players := game.PlayerIDs()
		placed, failed := false, false
		var blocks []restBlock
		var blockedAt []string
		seen := make(map[string]bool)

	scan:
		for i := 0; i < len(pool); {
			slot := pool[i]
			if b := rest.blocking(players, slot); len(b) > 0 {
				for _, rb := range b {
					if !seen[rb.playerID] {
						seen[rb.playerID] = true
						blocks = append(blocks, rb)
						blockedAt = append(blockedAt, slot.ID)
					}
				}
				i++
				continue
			}

			err := database.RunInTx(ctx, e.db, func(tx *sql.Tx) error {
				return e.assign(ctx, tx, &slot, game.ID, false)
			})
			switch {
			case errors.Is(err, errSlotTaken):
				pool = slices.Delete(pool, i, i+1)
			case errors.Is(err, errGameScheduled):
				log.Warn("Game was scheduled concurrently", "gameID", game.ID)
				failed = true
				break scan
			case err != nil:
				log.Error("Failed to schedule game", "error", err, "gameID", game.ID, "slotID", slot.ID)
				failed = true
				break scan
			default:
				pool = slices.Delete(pool, i, i+1)
				rest.add(players, game.ID, slot)
				placed = true
				break scan
			}
		}

		if placed {
			result.Scheduled++
			continue
		}
		result.Skipped++
		for i, rb := range blocks {
			result.Conflicts = append(result.Conflicts, Conflict{
				PlayerID:    rb.playerID,
				GameID:      game.ID,
				OtherGameID: rb.other.gameID,
				SlotID:      blockedAt[i],
				OtherSlotID: rb.other.slotID,
				Message: fmt.Sprintf("player %s needs %d minutes rest around game %s",
					rb.playerID, req.MinRestMinutes, rb.other.gameID),
			})
		}
		if failed {
			continue
		}
		// The pool ran out: players already committed elsewhere are named too.
		for _, p := range players {
			if seen[p] {
				continue
			}
			last, ok := rest.latest(p)
			if !ok {
				continue
			}
			seen[p] = true
			result.Conflicts = append(result.Conflicts, Conflict{
				PlayerID:    p,
				GameID:      game.ID,
				OtherGameID: last.gameID,
				OtherSlotID: last.slotID,
				Message: fmt.Sprintf("no remaining slot for player %s after game %s",
					p, last.gameID),
			})
		}
	}

	e.metrics.IncGamesScheduled(result.Scheduled)
	e.metrics.IncGamesSkipped(result.Skipped)
	e.metrics.IncConflictsDetected(len(result.Conflicts))
	e.metrics.ObserveSchedulingDuration(e.clock.Since(started).Seconds())

	if err := e.events.SendMessage(pubsub.EventGamesScheduled, pubsub.ScheduleEvent{
		TournamentID: req.TournamentID,
		Scheduled:    result.Scheduled,
		Skipped:      result.Skipped,
		Conflicts:    len(result.Conflicts),
		OccurredAt:   e.clock.Now().Unix(),
	}); err != nil {
		log.Error("Failed to publish scheduling event", "error", err, "tournamentID", req.TournamentID)
	}
	log.Info("Scheduled games", "tournamentID", req.TournamentID, "strategy", strategy.Name(),
		"scheduled", result.Scheduled, "skipped", result.Skipped, "conflicts", len(result.Conflicts))
	return result, nil
}

func (e *engine) GetSlot(ctx context.Context, slotID string) (*Slot, error) {
	return findSlot(ctx, e.db, slotID)
}

func (e *engine) ListSlots(ctx context.Context, filter SlotFilter) ([]Slot, error) {
	var sq slotQuery
	if filter.TournamentID != "" {
		sq.add(`tournament_id = ?`, filter.TournamentID)
	}
	if filter.CourtID != "" {
		sq.add(`court_id = ?`, filter.CourtID)
	}
	if filter.Status != "" {
		sq.add(`status = ?`, filter.Status)
	}
	if filter.Date != "" {
		day, err := time.ParseInLocation(dateLayout, filter.Date, e.loc)
		if err != nil {
			return nil, apperr.Validation(apperr.CodeInvalidArgument, "invalid date %q", filter.Date)
		}
		sq.add(`start_time >= ? AND start_time < ?`, day.Unix(), day.AddDate(0, 0, 1).Unix())
	}
	return listSlots(ctx, e.db, sq)
}

func (e *engine) AvailableSlots(ctx context.Context, tournamentID string) ([]Slot, error) {
	if _, err := club.FindTournament(ctx, e.db, tournamentID); err != nil {
		return nil, err
	}
	return e.ListSlots(ctx, SlotFilter{TournamentID: tournamentID, Status: SlotAvailable})
}

func (e *engine) UnscheduledGames(ctx context.Context, tournamentID string, drawIDs []string) ([]club.Game, error) {
	if _, err := club.FindTournament(ctx, e.db, tournamentID); err != nil {
		return nil, err
	}
	for _, id := range drawIDs {
		d, err := club.FindDraw(ctx, e.db, id)
		if err != nil {
			return nil, err
		}
		if d.TournamentID != tournamentID {
			return nil, apperr.NotFound("draw", id)
		}
	}
	games, err := club.FindGames(ctx, e.db, tournamentID)
	if err != nil {
		return nil, err
	}
	out := []club.Game{}
	for _, g := range games {
		if g.ScheduleSlotID != "" {
			continue
		}
		if len(drawIDs) > 0 && !slices.Contains(drawIDs, g.DrawID) {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}
