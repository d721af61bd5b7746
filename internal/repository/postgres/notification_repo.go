package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gatherly/internal/domain"
)

type notificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) domain.NotificationRepository {
	return &notificationRepository{
		DB: db,
	}
}

const notificationColumns = `id, kind, disposition, is_read, event_id, sender_id, recipient_id, invitation_id, message, created_at`

func scanNotification(row interface{ Scan(dest ...any) error }) (*domain.Notification, error) {
	n := &domain.Notification{}
	var invitationID sql.NullString
	err := row.Scan(&n.ID, &n.Kind, &n.Disposition, &n.IsRead, &n.EventID,
		&n.SenderID, &n.RecipientID, &invitationID, &n.Message, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	n.InvitationID = invitationID.String
	return n, nil
}

func insertNotification(ctx context.Context, q execer, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	var invitationID sql.NullString
	if n.InvitationID != "" {
		invitationID = sql.NullString{String: n.InvitationID, Valid: true}
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO notifications (id, kind, disposition, is_read, event_id, sender_id, recipient_id, invitation_id, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, n.ID, n.Kind, n.Disposition, n.IsRead, n.EventID, n.SenderID, n.RecipientID,
		invitationID, n.Message, n.CreatedAt)
	return err
}

// Create inserts the notification. The pending-join-request unique index makes
// a second concurrent insert for the same (event, sender) fail; that failure
// surfaces as ErrDuplicateJoinRequest so the caller can return the winning row.
func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	err := insertNotification(ctx, r.DB, n)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return domain.ErrDuplicateJoinRequest
	}
	return err
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	var n *domain.Notification
	err := withRetry(ctx, func() error {
		var err error
		n, err = scanNotification(r.DB.QueryRowContext(ctx,
			`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

func (r *notificationRepository) ListByRecipientID(ctx context.Context, recipientID string, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	var total int
	err := withRetry(ctx, func() error {
		return r.DB.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1`, recipientID).
			Scan(&total)
	})
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	var notifications []*domain.Notification
	err = withRetry(ctx, func() error {
		rows, err := r.DB.QueryContext(ctx, query, recipientID, params.Limit(), params.Offset())
		if err != nil {
			return err
		}
		defer rows.Close()

		notifications = make([]*domain.Notification, 0)
		for rows.Next() {
			n, err := scanNotification(rows)
			if err != nil {
				return err
			}
			notifications = append(notifications, n)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *notificationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) GetPendingJoinRequest(ctx context.Context, eventID, senderID string) (*domain.Notification, error) {
	var n *domain.Notification
	err := withRetry(ctx, func() error {
		var err error
		n, err = scanNotification(r.DB.QueryRowContext(ctx, `
			SELECT `+notificationColumns+`
			FROM notifications
			WHERE event_id = $1 AND sender_id = $2 AND kind = $3 AND disposition = $4
		`, eventID, senderID, domain.KindJoinRequest, domain.DispositionPending))
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

func (r *notificationRepository) HasRejectedJoinRequest(ctx context.Context, eventID, senderID string) (bool, error) {
	var exists bool
	err := withRetry(ctx, func() error {
		return r.DB.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM notifications
				WHERE event_id = $1 AND sender_id = $2 AND kind = $3 AND disposition = $4
			)
		`, eventID, senderID, domain.KindJoinRequest, domain.DispositionRejected).
			Scan(&exists)
	})
	return exists, err
}

// AcceptJoinRequest adds the requester to the event and flips the notification
// to accepted in one transaction. The membership write is guarded by the
// attendee limit; if the limit is reached nothing commits.
func (r *notificationRepository) AcceptJoinRequest(ctx context.Context, notificationID, eventID, senderID string) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if err := addMemberGuarded(ctx, tx, eventID, senderID); err != nil {
			return err
		}
		return flipDisposition(ctx, tx, notificationID, domain.DispositionAccepted)
	})
}

func (r *notificationRepository) Reject(ctx context.Context, notificationID string) error {
	return flipDisposition(ctx, r.DB, notificationID, domain.DispositionRejected)
}

// flipDisposition transitions a pending notification exactly once. A replay of
// an already-resolved notification affects zero rows and reports ErrNotFound.
func flipDisposition(ctx context.Context, q execer, notificationID string, to domain.Disposition) error {
	result, err := q.ExecContext(ctx, `
		UPDATE notifications SET disposition = $2
		WHERE id = $1 AND disposition = $3
	`, notificationID, to, domain.DispositionPending)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkRead never touches join requests: they stay actionable in the feed until
// the creator resolves them.
func (r *notificationRepository) MarkRead(ctx context.Context, recipientID string, ids []string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE recipient_id = $1 AND id = ANY($2) AND kind <> $3
	`, recipientID, pq.Array(ids), domain.KindJoinRequest)
	return err
}
