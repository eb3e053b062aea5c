package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// timestampLayout keeps a fixed fraction width so stored values sort
// lexically in time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteSessionRepository implements SessionRepository using SQLite.
//
// It stores one row per session in the show_sessions table.
type SQLiteSessionRepository struct {
	db *sql.DB
}

// NewSQLiteSessionRepository creates a new SQLite session repository.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *SQLiteSessionRepository: Repository instance ready for use
func NewSQLiteSessionRepository(db *sql.DB) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{db: db}
}

// RecordStart inserts a running session.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - rec: Session snapshot; EndedAt and EndReason are ignored
//
// Returns:
//   - error: nil on success, otherwise the underlying database error
func (r *SQLiteSessionRepository) RecordStart(ctx context.Context, rec SessionRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if rec.ShowID == "" {
		return fmt.Errorf("show id is required")
	}
	startedAt := rec.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO show_sessions (id, show_id, light_count, started_at) VALUES (?, ?, ?, ?)",
		rec.ID,
		rec.ShowID,
		rec.LightCount,
		formatTimestamp(startedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	return nil
}

// RecordEnd marks a session finished.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - id: Session identifier
//   - endedAt: When the show loop returned
//   - reason: Why it ended
//
// Returns:
//   - error: ErrSessionNotFound if no such session, otherwise the database error
func (r *SQLiteSessionRepository) RecordEnd(ctx context.Context, id string, endedAt time.Time, reason EndReason) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE show_sessions SET ended_at = ?, end_reason = ? WHERE id = ?",
		formatTimestamp(endedAt),
		string(reason),
		id,
	)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// List returns recent sessions, ordered newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - limit: Maximum entries to return (default 50, max 200)
//
// Returns:
//   - []SessionRecord: Sessions ordered by started_at DESC
//   - error: nil on success, otherwise the underlying query error
func (r *SQLiteSessionRepository) List(ctx context.Context, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, show_id, light_count, started_at, ended_at, end_reason
		 FROM show_sessions
		 ORDER BY started_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	records := make([]SessionRecord, 0, limit)
	for rows.Next() {
		var rec SessionRecord
		var startedAt string
		var endedAt, reason sql.NullString

		if err := rows.Scan(&rec.ID, &rec.ShowID, &rec.LightCount, &startedAt, &endedAt, &reason); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}

		rec.StartedAt, err = parseTimestamp(startedAt)
		if err != nil {
			return nil, err
		}
		if endedAt.Valid {
			ended, err := parseTimestamp(endedAt.String)
			if err != nil {
				return nil, err
			}
			rec.EndedAt = &ended
			rec.EndReason = EndReason(reason.String)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}

	return records, nil
}

// Prune deletes finished sessions that started before now-olderThan.
//
// Returns:
//   - int64: Number of rows deleted
//   - error: nil on success, otherwise the underlying database error
func (r *SQLiteSessionRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be positive")
	}

	cutoff := formatTimestamp(time.Now().Add(-olderThan))
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM show_sessions WHERE started_at < ? AND ended_at IS NOT NULL",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting sessions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp parses a timestamp stored in SQLite.
func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}

	timestamp, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", value, err)
	}
	return timestamp, nil
}
