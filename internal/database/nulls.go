package database

import (
	"database/sql"
	"time"
)

// Timestamps are stored as unix seconds.

// NullTime converts an optional time to a nullable unix timestamp.
func NullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

// TimePtr converts a nullable unix timestamp back to an optional UTC time.
func TimePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(n.Int64, 0).UTC()
	return &t
}

// Unix converts a non-null unix timestamp to UTC time.
func Unix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// NullString maps "" to NULL.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
