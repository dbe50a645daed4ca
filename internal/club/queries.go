package club

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/database"
)

// The Find* helpers take a database.Querier so the enrollment and
// scheduling services can read reference data inside their transactions.

// FindPlayer loads a player or returns an apperr NotFound error.
func FindPlayer(ctx context.Context, q database.Querier, id string) (*Player, error) {
	var p Player
	err := q.QueryRowContext(ctx, `SELECT id, name, level FROM players WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Level)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("player", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}
	return &p, nil
}

// FindTournament loads a tournament or returns an apperr NotFound error.
func FindTournament(ctx context.Context, q database.Querier, id string) (*Tournament, error) {
	var (
		t                        Tournament
		opensAt, closesAt, pubAt sql.NullInt64
		createdAt                int64
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, name, phase, enrollment_opens_at, enrollment_closes_at, allow_guest_enrollment, schedule_published_at, created_at
		FROM tournaments WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Phase, &opensAt, &closesAt, &t.AllowGuestEnrollment, &pubAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("tournament", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	t.EnrollmentOpensAt = database.TimePtr(opensAt)
	t.EnrollmentClosesAt = database.TimePtr(closesAt)
	t.SchedulePublishedAt = database.TimePtr(pubAt)
	t.CreatedAt = database.Unix(createdAt)
	return &t, nil
}

const subEventColumns = `id, tournament_id, name, game_type, max_entries, waiting_list_enabled`

func scanSubEvent(scanner interface{ Scan(...any) error }) (*SubEvent, error) {
	var (
		se         SubEvent
		maxEntries sql.NullInt64
	)
	if err := scanner.Scan(&se.ID, &se.TournamentID, &se.Name, &se.GameType, &maxEntries, &se.WaitingListEnabled); err != nil {
		return nil, err
	}
	if maxEntries.Valid {
		n := int(maxEntries.Int64)
		se.MaxEntries = &n
	}
	return &se, nil
}

// FindSubEvent loads a sub-event or returns an apperr NotFound error.
func FindSubEvent(ctx context.Context, q database.Querier, id string) (*SubEvent, error) {
	se, err := scanSubEvent(q.QueryRowContext(ctx, `SELECT `+subEventColumns+` FROM sub_events WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("sub-event", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sub-event %s: %w", id, err)
	}
	return se, nil
}

// FindCourt loads a court or returns an apperr NotFound error.
func FindCourt(ctx context.Context, q database.Querier, id string) (*Court, error) {
	var (
		c        Court
		resource sql.NullString
	)
	err := q.QueryRowContext(ctx, `SELECT id, tournament_id, name, external_resource_name FROM courts WHERE id = ?`, id).
		Scan(&c.ID, &c.TournamentID, &c.Name, &resource)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("court", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get court %s: %w", id, err)
	}
	c.ExternalResourceName = resource.String
	return &c, nil
}

const gameColumns = `id, tournament_id, draw_id, round, stage, game_order, scheduled_time, court_id, schedule_slot_id`

func scanGame(scanner interface{ Scan(...any) error }) (*Game, error) {
	var (
		g               Game
		scheduled       sql.NullInt64
		courtID, slotID sql.NullString
	)
	err := scanner.Scan(&g.ID, &g.TournamentID, &g.DrawID, &g.Round, &g.Stage, &g.Order, &scheduled, &courtID, &slotID)
	if err != nil {
		return nil, err
	}
	g.ScheduledTime = database.TimePtr(scheduled)
	g.CourtID = courtID.String
	g.ScheduleSlotID = slotID.String
	g.Players = []GamePlayer{}
	return &g, nil
}

// FindGame loads a game with its players or returns an apperr NotFound error.
func FindGame(ctx context.Context, q database.Querier, id string) (*Game, error) {
	g, err := scanGame(q.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("game", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %s: %w", id, err)
	}

	rows, err := q.QueryContext(ctx, `SELECT player_id, team FROM game_players WHERE game_id = ? ORDER BY team, player_id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get players of game %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var gp GamePlayer
		if err := rows.Scan(&gp.PlayerID, &gp.Team); err != nil {
			return nil, fmt.Errorf("failed to scan game player: %w", err)
		}
		g.Players = append(g.Players, gp)
	}
	return g, rows.Err()
}

// FindGames loads every game of a tournament with its players, ordered by
// draw, round and order.
func FindGames(ctx context.Context, q database.Querier, tournamentID string) ([]Game, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+gameColumns+` FROM games WHERE tournament_id = ?
		ORDER BY draw_id, round, game_order, id`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	var games []Game
	index := make(map[string]int)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		index[g.ID] = len(games)
		games = append(games, *g)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = q.QueryContext(ctx, `
		SELECT gp.game_id, gp.player_id, gp.team
		FROM game_players gp
		JOIN games g ON g.id = gp.game_id
		WHERE g.tournament_id = ?
		ORDER BY gp.team, gp.player_id`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list game players: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			gameID string
			gp     GamePlayer
		)
		if err := rows.Scan(&gameID, &gp.PlayerID, &gp.Team); err != nil {
			return nil, fmt.Errorf("failed to scan game player: %w", err)
		}
		if i, ok := index[gameID]; ok {
			games[i].Players = append(games[i].Players, gp)
		}
	}
	return games, rows.Err()
}

// FindCourts lists the courts of a tournament ordered by name.
func FindCourts(ctx context.Context, q database.Querier, tournamentID string) ([]Court, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, tournament_id, name, external_resource_name FROM courts WHERE tournament_id = ? ORDER BY name, id`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts: %w", err)
	}
	defer rows.Close()

	courts := []Court{}
	for rows.Next() {
		var (
			c        Court
			resource sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.TournamentID, &c.Name, &resource); err != nil {
			return nil, fmt.Errorf("failed to scan court: %w", err)
		}
		c.ExternalResourceName = resource.String
		courts = append(courts, c)
	}
	return courts, rows.Err()
}

// FindDraw loads a draw or returns an apperr NotFound error.
func FindDraw(ctx context.Context, q database.Querier, id string) (*Draw, error) {
	var d Draw
	err := q.QueryRowContext(ctx, `SELECT id, tournament_id, sub_event_id, name FROM draws WHERE id = ?`, id).
		Scan(&d.ID, &d.TournamentID, &d.SubEventID, &d.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("draw", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draw %s: %w", id, err)
	}
	return &d, nil
}
