package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gatherly/internal/domain"
)

// execer is satisfied by both *sql.DB and *sql.Tx, so guarded write helpers
// can run standalone or inside a larger transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside a transaction, rolling back on error and committing
// otherwise. Every multi-record accept/create path in this package goes
// through it: either all writes land or none do.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// addMemberGuarded adds userID to the event's member set without ever letting
// the set exceed the attendee limit. It locks the event row, counts the other
// members under that lock, and only then inserts, so concurrent accepts for
// the last slot serialize and exactly one wins. Must run inside a transaction.
func addMemberGuarded(ctx context.Context, tx execer, eventID, userID string) error {
	var limit sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT attendee_limit FROM events WHERE id = $1 FOR UPDATE`, eventID).
		Scan(&limit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock event: %w", err)
	}

	if limit.Valid {
		var others int64
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM event_members WHERE event_id = $1 AND user_id <> $2`,
			eventID, userID).
			Scan(&others)
		if err != nil {
			return fmt.Errorf("count members: %w", err)
		}
		if others >= limit.Int64 {
			return domain.ErrAttendeeLimitReached
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO event_members (event_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (event_id, user_id) DO NOTHING`,
		eventID, userID)
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}
