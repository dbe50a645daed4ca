package scheduling

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/database"
)

const slotColumns = `id, tournament_id, court_id, start_time, end_time, status, game_id, slot_order, created_at`

func scanSlot(scanner interface{ Scan(...any) error }) (*Slot, error) {
	var (
		s                     Slot
		start, end, createdAt int64
		gameID                sql.NullString
	)
	if err := scanner.Scan(&s.ID, &s.TournamentID, &s.CourtID, &start, &end, &s.Status, &gameID, &s.Order, &createdAt); err != nil {
		return nil, err
	}
	s.StartTime = database.Unix(start)
	s.EndTime = database.Unix(end)
	s.CreatedAt = database.Unix(createdAt)
	s.GameID = gameID.String
	return &s, nil
}

func findSlot(ctx context.Context, q database.Querier, id string) (*Slot, error) {
	s, err := scanSlot(q.QueryRowContext(ctx, `SELECT `+slotColumns+` FROM schedule_slots WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("schedule slot", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule slot %s: %w", id, err)
	}
	return s, nil
}

// slotQuery accumulates WHERE clauses for listSlots.
type slotQuery struct {
	where []string
	args  []any
}

func (q *slotQuery) add(clause string, args ...any) {
	q.where = append(q.where, clause)
	q.args = append(q.args, args...)
}

// listSlots returns matching slots ordered by start time then order.
func listSlots(ctx context.Context, q database.Querier, sq slotQuery) ([]Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM schedule_slots`
	if len(sq.where) > 0 {
		query += ` WHERE ` + strings.Join(sq.where, ` AND `)
	}
	query += ` ORDER BY start_time, slot_order, id`

	rows, err := q.QueryContext(ctx, query, sq.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule slots: %w", err)
	}
	defer rows.Close()

	slots := []Slot{}
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule slot: %w", err)
		}
		slots = append(slots, *s)
	}
	return slots, rows.Err()
}

// insertSlot creates s unless a slot already starts at the same time on the
// same court. It reports whether a row was written.
func insertSlot(ctx context.Context, q database.Querier, s *Slot) (bool, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO schedule_slots (id, tournament_id, court_id, start_time, end_time, status, game_id, slot_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?, ?)
		ON CONFLICT (tournament_id, court_id, start_time) DO NOTHING`,
		s.ID, s.TournamentID, s.CourtID, s.StartTime.Unix(), s.EndTime.Unix(), s.Status, s.Order, s.CreatedAt.Unix())
	if err != nil {
		return false, fmt.Errorf("failed to create schedule slot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to create schedule slot: %w", err)
	}
	return n > 0, nil
}

func maxSlotOrder(ctx context.Context, q database.Querier, tournamentID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(slot_order), 0) FROM schedule_slots WHERE tournament_id = ?`, tournamentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to get slot order: %w", err)
	}
	return n, nil
}

func setSlotStatus(ctx context.Context, q database.Querier, id string, status SlotStatus) error {
	if _, err := q.ExecContext(ctx, `UPDATE schedule_slots SET status = ? WHERE id = ?`, status, id); err != nil {
		return fmt.Errorf("failed to update schedule slot %s: %w", id, err)
	}
	return nil
}

// occupySlot puts gameID into the slot only if it is still free.
func occupySlot(ctx context.Context, q database.Querier, slotID, gameID string) (bool, error) {
	res, err := q.ExecContext(ctx, `
		UPDATE schedule_slots SET status = ?, game_id = ?
		WHERE id = ? AND game_id IS NULL AND status = ?`,
		SlotScheduled, gameID, slotID, SlotAvailable)
	if err != nil {
		return false, fmt.Errorf("failed to assign schedule slot %s: %w", slotID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to assign schedule slot %s: %w", slotID, err)
	}
	return n > 0, nil
}

// blockIfAvailable blocks the slot only if nothing has been put in it.
func blockIfAvailable(ctx context.Context, q database.Querier, slotID string) (bool, error) {
	res, err := q.ExecContext(ctx, `
		UPDATE schedule_slots SET status = ?
		WHERE id = ? AND game_id IS NULL AND status = ?`,
		SlotBlocked, slotID, SlotAvailable)
	if err != nil {
		return false, fmt.Errorf("failed to block schedule slot %s: %w", slotID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to block schedule slot %s: %w", slotID, err)
	}
	return n > 0, nil
}

func releaseSlot(ctx context.Context, q database.Querier, slotID string) error {
	_, err := q.ExecContext(ctx, `UPDATE schedule_slots SET status = ?, game_id = NULL WHERE id = ?`, SlotAvailable, slotID)
	if err != nil {
		return fmt.Errorf("failed to release schedule slot %s: %w", slotID, err)
	}
	return nil
}

func deleteSlot(ctx context.Context, q database.Querier, slotID string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM schedule_slots WHERE id = ?`, slotID); err != nil {
		return fmt.Errorf("failed to delete schedule slot %s: %w", slotID, err)
	}
	return nil
}

// placeGame mirrors the slot onto the game row.
func placeGame(ctx context.Context, q database.Querier, gameID string, s *Slot) error {
	_, err := q.ExecContext(ctx, `UPDATE games SET scheduled_time = ?, court_id = ?, schedule_slot_id = ? WHERE id = ?`,
		s.StartTime.Unix(), s.CourtID, s.ID, gameID)
	if err != nil {
		return fmt.Errorf("failed to schedule game %s: %w", gameID, err)
	}
	return nil
}

func unplaceGame(ctx context.Context, q database.Querier, gameID string) error {
	_, err := q.ExecContext(ctx, `UPDATE games SET scheduled_time = NULL, court_id = NULL, schedule_slot_id = NULL WHERE id = ?`, gameID)
	if err != nil {
		return fmt.Errorf("failed to unschedule game %s: %w", gameID, err)
	}
	return nil
}

// booking is one player's presence in an occupied slot.
type booking struct {
	playerID string
	gameID   string
	slot     Slot
}

// occupiedBookings lists, per player, the SCHEDULED and IN_PROGRESS slots of
// a tournament in chronological order.
func occupiedBookings(ctx context.Context, q database.Querier, tournamentID string) ([]booking, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT gp.player_id, s.id, s.tournament_id, s.court_id, s.start_time, s.end_time, s.status, s.game_id, s.slot_order, s.created_at
		FROM schedule_slots s
		JOIN game_players gp ON gp.game_id = s.game_id
		WHERE s.tournament_id = ? AND s.status IN (?, ?)
		ORDER BY gp.player_id, s.start_time, s.slot_order`,
		tournamentID, SlotScheduled, SlotInProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to list occupied slots: %w", err)
	}
	defer rows.Close()

	var out []booking
	for rows.Next() {
		var (
			b                     booking
			start, end, createdAt int64
			gameID                sql.NullString
		)
		err := rows.Scan(&b.playerID, &b.slot.ID, &b.slot.TournamentID, &b.slot.CourtID, &start, &end,
			&b.slot.Status, &gameID, &b.slot.Order, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan occupied slot: %w", err)
		}
		b.slot.StartTime = database.Unix(start)
		b.slot.EndTime = database.Unix(end)
		b.slot.CreatedAt = database.Unix(createdAt)
		b.slot.GameID = gameID.String
		b.gameID = gameID.String
		out = append(out, b)
	}
	return out, rows.Err()
}
