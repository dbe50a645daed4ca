package club

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/database"
)

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: db,
	}
}

func (s *store) CreatePlayer(ctx context.Context, p *Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (id, name, level) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, level = excluded.level`,
		p.ID, p.Name, p.Level)
	if err != nil {
		return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
	}
	log.Debug("Upserted player", "id", p.ID, "name", p.Name)
	return nil
}

func (s *store) GetPlayer(ctx context.Context, id string) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FindPlayer(ctx, s.db, id)
}

func (s *store) ListPlayers(ctx context.Context) ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, level FROM players ORDER BY level DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := []Player{}
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Level); err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *store) CreateTournament(ctx context.Context, t *Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Phase == "" {
		t.Phase = PhaseDraft
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tournaments (id, name, phase, enrollment_opens_at, enrollment_closes_at, allow_guest_enrollment, schedule_published_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Phase, database.NullTime(t.EnrollmentOpensAt), database.NullTime(t.EnrollmentClosesAt),
		t.AllowGuestEnrollment, database.NullTime(t.SchedulePublishedAt), t.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	log.Info("Created tournament", "id", t.ID, "name", t.Name, "phase", t.Phase)
	return nil
}

func (s *store) GetTournament(ctx context.Context, id string) (*Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FindTournament(ctx, s.db, id)
}

func (s *store) UpdateTournamentPhase(ctx context.Context, id string, phase Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE tournaments SET phase = ? WHERE id = ?`, phase, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament phase: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("tournament", id)
	}
	log.Info("Updated tournament phase", "id", id, "phase", phase)
	return nil
}

// MarkSchedulePublished records the publication time and moves the
// tournament to PUBLISHED.
func (s *store) MarkSchedulePublished(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE tournaments SET phase = ?, schedule_published_at = ? WHERE id = ?`,
		PhasePublished, at.Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to mark schedule published: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("tournament", id)
	}
	return nil
}

func (s *store) CreateSubEvent(ctx context.Context, se *SubEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := FindTournament(ctx, s.db, se.TournamentID); err != nil {
		return err
	}
	if se.ID == "" {
		se.ID = uuid.NewString()
	}
	var maxEntries sql.NullInt64
	if se.MaxEntries != nil {
		maxEntries = sql.NullInt64{Int64: int64(*se.MaxEntries), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sub_events (id, tournament_id, name, game_type, max_entries, waiting_list_enabled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		se.ID, se.TournamentID, se.Name, se.GameType, maxEntries, se.WaitingListEnabled, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to create sub-event: %w", err)
	}
	log.Info("Created sub-event", "id", se.ID, "tournamentID", se.TournamentID, "gameType", se.GameType)
	return nil
}

func (s *store) GetSubEvent(ctx context.Context, id string) (*SubEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FindSubEvent(ctx, s.db, id)
}

func (s *store) ListSubEvents(ctx context.Context, tournamentID string) ([]SubEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+subEventColumns+` FROM sub_events WHERE tournament_id = ? ORDER BY created_at, id`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-events: %w", err)
	}
	defer rows.Close()

	subEvents := []SubEvent{}
	for rows.Next() {
		se, err := scanSubEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sub-event: %w", err)
		}
		subEvents = append(subEvents, *se)
	}
	return subEvents, rows.Err()
}

func (s *store) CreateCourt(ctx context.Context, c *Court) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := FindTournament(ctx, s.db, c.TournamentID); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO courts (id, tournament_id, name, external_resource_name) VALUES (?, ?, ?, ?)`,
		c.ID, c.TournamentID, c.Name, database.NullString(c.ExternalResourceName))
	if err != nil {
		return fmt.Errorf("failed to create court: %w", err)
	}
	return nil
}

func (s *store) GetCourt(ctx context.Context, id string) (*Court, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FindCourt(ctx, s.db, id)
}

func (s *store) ListCourts(ctx context.Context, tournamentID string) ([]Court, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FindCourts(ctx, s.db, tournamentID)
}

func (s *store) CreateDraw(ctx context.Context, d *Draw) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	se, err := FindSubEvent(ctx, s.db, d.SubEventID)
	if err != nil {
		return err
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.TournamentID = se.TournamentID
	_, err = s.db.ExecContext(ctx, `INSERT INTO draws (id, tournament_id, sub_event_id, name) VALUES (?, ?, ?, ?)`,
		d.ID, d.TournamentID, d.SubEventID, d.Name)
	if err != nil {
		return fmt.Errorf("failed to create draw: %w", err)
	}
	return nil
}

func (s *store) ListDraws(ctx context.Context, tournamentID string) ([]Draw, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, tournament_id, sub_event_id, name FROM draws WHERE tournament_id = ? ORDER BY id`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draws: %w", err)
	}
	defer rows.Close()

	draws := []Draw{}
	for rows.Next() {
		var d Draw
		if err := rows.Scan(&d.ID, &d.TournamentID, &d.SubEventID, &d.Name); err != nil {
			return nil, fmt.Errorf("failed to scan draw: %w", err)
		}
		draws = append(draws, d)
	}
	return draws, rows.Err()
}

// CreateGame inserts an unscheduled game and its players in one transaction.
// The tournament is taken from the draw.
func (s *store) CreateGame(ctx context.Context, g *Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.Round == 0 {
		g.Round = 1
	}
	return database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		var tournamentID string
		err := tx.QueryRowContext(ctx, `SELECT tournament_id FROM draws WHERE id = ?`, g.DrawID).Scan(&tournamentID)
		if err == sql.ErrNoRows {
			return apperr.NotFound("draw", g.DrawID)
		}
		if err != nil {
			return fmt.Errorf("failed to get draw %s: %w", g.DrawID, err)
		}
		g.TournamentID = tournamentID

		_, err = tx.ExecContext(ctx, `
			INSERT INTO games (id, tournament_id, draw_id, round, stage, game_order)
			VALUES (?, ?, ?, ?, ?, ?)`,
			g.ID, g.TournamentID, g.DrawID, g.Round, g.Stage, g.Order)
		if err != nil {
			return fmt.Errorf("failed to create game: %w", err)
		}
		for _, gp := range g.Players {
			_, err := tx.ExecContext(ctx, `INSERT INTO game_players (game_id, player_id, team) VALUES (?, ?, ?)`,
				g.ID, gp.PlayerID, gp.Team)
			if err != nil {
				return fmt.Errorf("failed to add player %s to game: %w", gp.PlayerID, err)
			}
		}
		return nil
	})
}

func (s *store) GetGame(ctx context.Context, id string) (*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FindGame(ctx, s.db, id)
}

func (s *store) ListGames(ctx context.Context, tournamentID string) ([]Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FindGames(ctx, s.db, tournamentID)
}
