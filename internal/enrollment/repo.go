package enrollment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/database"
)

const enrollmentColumns = `id, sub_event_id, tournament_id, player_id, is_guest, guest_name, guest_email, guest_phone,
	status, preferred_partner_id, confirmed_partner_id, waiting_list_position, notes, created_at, updated_at`

func scanEnrollment(scanner interface{ Scan(...any) error }) (*Enrollment, error) {
	var (
		e                                Enrollment
		playerID, guestName, guestEmail  sql.NullString
		guestPhone, preferred, confirmed sql.NullString
		position                         sql.NullInt64
		createdAt, updatedAt             int64
	)
	err := scanner.Scan(&e.ID, &e.SubEventID, &e.TournamentID, &playerID, &e.IsGuest, &guestName, &guestEmail, &guestPhone,
		&e.Status, &preferred, &confirmed, &position, &e.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	e.PlayerID = playerID.String
	e.GuestName = guestName.String
	e.GuestEmail = guestEmail.String
	e.GuestPhone = guestPhone.String
	e.PreferredPartnerID = preferred.String
	e.ConfirmedPartnerID = confirmed.String
	if position.Valid {
		p := int(position.Int64)
		e.WaitingListPosition = &p
	}
	e.CreatedAt = database.Unix(createdAt)
	e.UpdatedAt = database.Unix(updatedAt)
	return &e, nil
}

func findEnrollment(ctx context.Context, q database.Querier, id string) (*Enrollment, error) {
	e, err := scanEnrollment(q.QueryRowContext(ctx, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("enrollment", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment %s: %w", id, err)
	}
	return e, nil
}

// findActiveByPlayer returns the player's non-terminal enrollment in the
// sub-event, or nil when there is none.
func findActiveByPlayer(ctx context.Context, q database.Querier, subEventID, playerID string) (*Enrollment, error) {
	e, err := scanEnrollment(q.QueryRowContext(ctx, `SELECT `+enrollmentColumns+` FROM enrollments
		WHERE sub_event_id = ? AND player_id = ? AND status NOT IN (?, ?)`,
		subEventID, playerID, StatusCancelled, StatusWithdrawn))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment of player %s: %w", playerID, err)
	}
	return e, nil
}

func listEnrollments(ctx context.Context, q database.Querier, filter Filter, orderBy string) ([]Enrollment, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.SubEventID != "" {
		clauses = append(clauses, "sub_event_id = ?")
		args = append(args, filter.SubEventID)
	}
	if filter.TournamentID != "" {
		clauses = append(clauses, "tournament_id = ?")
		args = append(args, filter.TournamentID)
	}
	if filter.PlayerID != "" {
		clauses = append(clauses, "player_id = ?")
		args = append(args, filter.PlayerID)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	if orderBy == "" {
		orderBy = "created_at, rowid"
	}
	query += " ORDER BY " + orderBy

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := []Enrollment{}
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, *e)
	}
	return enrollments, rows.Err()
}

func insertEnrollment(ctx context.Context, q database.Querier, e *Enrollment) error {
	_, err := q.ExecContext(ctx, `INSERT INTO enrollments (`+enrollmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SubEventID, e.TournamentID, database.NullString(e.PlayerID), e.IsGuest,
		database.NullString(e.GuestName), database.NullString(e.GuestEmail), database.NullString(e.GuestPhone),
		e.Status, database.NullString(e.PreferredPartnerID), database.NullString(e.ConfirmedPartnerID),
		nullPosition(e.WaitingListPosition), e.Notes, e.CreatedAt.Unix(), e.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert enrollment: %w", err)
	}
	return nil
}

// saveEnrollment writes every mutable field of e.
func saveEnrollment(ctx context.Context, q database.Querier, e *Enrollment) error {
	_, err := q.ExecContext(ctx, `UPDATE enrollments
		SET status = ?, preferred_partner_id = ?, confirmed_partner_id = ?, waiting_list_position = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		e.Status, database.NullString(e.PreferredPartnerID), database.NullString(e.ConfirmedPartnerID),
		nullPosition(e.WaitingListPosition), e.Notes, e.UpdatedAt.Unix(), e.ID)
	if err != nil {
		return fmt.Errorf("failed to update enrollment %s: %w", e.ID, err)
	}
	return nil
}

func countConfirmed(ctx context.Context, q database.Querier, subEventID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM enrollments WHERE sub_event_id = ? AND status = ?`,
		subEventID, StatusConfirmed).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count confirmed enrollments: %w", err)
	}
	return n, nil
}

func maxWaitingPosition(ctx context.Context, q database.Querier, subEventID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(waiting_list_position), 0) FROM enrollments
		WHERE sub_event_id = ? AND status = ?`, subEventID, StatusWaitingList).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to get waiting list length: %w", err)
	}
	return n, nil
}

// renumberWaitingList rewrites the positions of the sub-event's waiting
// list to 1..k, keeping their relative order.
func renumberWaitingList(ctx context.Context, q database.Querier, subEventID string) error {
	waiting, err := listEnrollments(ctx, q, Filter{SubEventID: subEventID, Status: StatusWaitingList},
		"waiting_list_position, created_at, rowid")
	if err != nil {
		return err
	}
	for i, e := range waiting {
		want := i + 1
		if e.WaitingListPosition != nil && *e.WaitingListPosition == want {
			continue
		}
		_, err := q.ExecContext(ctx, `UPDATE enrollments SET waiting_list_position = ? WHERE id = ?`, want, e.ID)
		if err != nil {
			return fmt.Errorf("failed to renumber waiting list: %w", err)
		}
	}
	return nil
}

func nullPosition(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
