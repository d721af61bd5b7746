package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gatherly/internal/domain"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

type invitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{
		DB: db,
	}
}

func insertInvitation(ctx context.Context, q execer, inv *domain.Invitation) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO invitations (id, event_id, inviter_id, invitee_id, disposition, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, inv.ID, inv.EventID, inv.InviterID, inv.InviteeID, inv.Disposition, inv.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateInvitation
		}
		return err
	}
	return nil
}

// CreatePair persists the invitation and its paired notification atomically.
// The notification carries the invitation's id, assigned before the insert.
func (r *invitationRepository) CreatePair(ctx context.Context, inv *domain.Invitation, n *domain.Notification) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if err := insertInvitation(ctx, tx, inv); err != nil {
			return err
		}
		n.InvitationID = inv.ID
		return insertNotification(ctx, tx, n)
	})
}

// CreateBatch stages every invitation+notification pair in one transaction.
// Any failure aborts the whole batch; no partial set of pairs ever commits.
func (r *invitationRepository) CreateBatch(ctx context.Context, invs []*domain.Invitation, ns []*domain.Notification) error {
	if len(invs) != len(ns) {
		return fmt.Errorf("%w: mismatched batch lengths", domain.ErrInvalidInput)
	}
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		for i, inv := range invs {
			if err := insertInvitation(ctx, tx, inv); err != nil {
				return err
			}
			ns[i].InvitationID = inv.ID
			if err := insertNotification(ctx, tx, ns[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	var inv *domain.Invitation
	err := withRetry(ctx, func() error {
		var err error
		inv, err = scanInvitation(r.DB.QueryRowContext(ctx, `
			SELECT id, event_id, inviter_id, invitee_id, disposition, created_at
			FROM invitations
			WHERE id = $1
		`, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func scanInvitation(row *sql.Row) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	err := row.Scan(&inv.ID, &inv.EventID, &inv.InviterID, &inv.InviteeID, &inv.Disposition, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

// Accept flips the invitation, its paired notification, and the event's
// member set together. The pending predicate makes the flip single-shot, and
// the guarded member add enforces the attendee limit inside the same
// transaction, so an over-capacity accept leaves all three records untouched.
func (r *invitationRepository) Accept(ctx context.Context, invitationID string) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		var eventID, inviteeID string
		err := tx.QueryRowContext(ctx, `
			UPDATE invitations SET disposition = $2
			WHERE id = $1 AND disposition = $3
			RETURNING event_id, invitee_id
		`, invitationID, domain.InvitationAccepted, domain.InvitationPending).
			Scan(&eventID, &inviteeID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("accept invitation: %w", err)
		}
		if err := addMemberGuarded(ctx, tx, eventID, inviteeID); err != nil {
			return err
		}
		return flipPairedNotification(ctx, tx, invitationID, domain.DispositionAccepted)
	})
}

// Decline flips the invitation and its paired notification; the event's
// member set is never touched.
func (r *invitationRepository) Decline(ctx context.Context, invitationID string) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE invitations SET disposition = $2
			WHERE id = $1 AND disposition = $3
		`, invitationID, domain.InvitationDeclined, domain.InvitationPending)
		if err != nil {
			return fmt.Errorf("decline invitation: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return domain.ErrNotFound
		}
		return flipPairedNotification(ctx, tx, invitationID, domain.DispositionRejected)
	})
}

// flipPairedNotification resolves a notification through its stored invitation
// reference rather than a (event, inviter, invitee) scan.
func flipPairedNotification(ctx context.Context, tx execer, invitationID string, to domain.Disposition) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE notifications SET disposition = $2
		WHERE invitation_id = $1 AND disposition = $3
	`, invitationID, to, domain.DispositionPending)
	if err != nil {
		return fmt.Errorf("update paired notification: %w", err)
	}
	return nil
}

func (r *invitationRepository) HasNonTerminal(ctx context.Context, eventID, inviteeID string) (bool, error) {
	var exists bool
	err := withRetry(ctx, func() error {
		return r.DB.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM invitations
				WHERE event_id = $1 AND invitee_id = $2 AND disposition <> $3
			)
		`, eventID, inviteeID, domain.InvitationDeclined).
			Scan(&exists)
	})
	return exists, err
}

func (r *invitationRepository) GetPendingByEventAndInvitee(ctx context.Context, eventID, inviteeID string) (*domain.Invitation, error) {
	var inv *domain.Invitation
	err := withRetry(ctx, func() error {
		var err error
		inv, err = scanInvitation(r.DB.QueryRowContext(ctx, `
			SELECT id, event_id, inviter_id, invitee_id, disposition, created_at
			FROM invitations
			WHERE event_id = $1 AND invitee_id = $2 AND disposition = $3
		`, eventID, inviteeID, domain.InvitationPending))
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) ListNonTerminalInvitees(ctx context.Context, eventID string, inviteeIDs []string) ([]string, error) {
	var ids []string
	err := withRetry(ctx, func() error {
		rows, err := r.DB.QueryContext(ctx, `
			SELECT invitee_id FROM invitations
			WHERE event_id = $1 AND invitee_id = ANY($2) AND disposition <> $3
		`, eventID, pq.Array(inviteeIDs), domain.InvitationDeclined)
		if err != nil {
			return err
		}
		defer rows.Close()

		ids = make([]string, 0)
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
