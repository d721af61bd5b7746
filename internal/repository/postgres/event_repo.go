package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gatherly/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (creator_id, activity_type, inquiry, scheduled_at, is_private, attendee_limit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	var limit sql.NullInt64
	if event.AttendeeLimit != nil {
		limit = sql.NullInt64{Int64: int64(*event.AttendeeLimit), Valid: true}
	}
	return r.DB.QueryRowContext(ctx, query,
		event.CreatorID, event.ActivityType, event.Inquiry, event.ScheduledAt,
		event.IsPrivate, limit, event.CreatedAt, event.UpdatedAt).
		Scan(&event.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, creator_id, activity_type, inquiry, scheduled_at, is_private, attendee_limit, created_at, updated_at
		FROM events
		WHERE id = $1
	`
	event := &domain.Event{}
	var limit sql.NullInt64
	err := withRetry(ctx, func() error {
		return r.DB.QueryRowContext(ctx, query, id).
			Scan(&event.ID, &event.CreatorID, &event.ActivityType, &event.Inquiry,
				&event.ScheduledAt, &event.IsPrivate, &limit, &event.CreatedAt, &event.UpdatedAt)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if limit.Valid {
		v := int(limit.Int64)
		event.AttendeeLimit = &v
	}
	return event, nil
}

func (r *eventRepository) ListByCreatorID(ctx context.Context, creatorID string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	err := withRetry(ctx, func() error {
		return r.DB.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM events WHERE creator_id = $1`, creatorID).
			Scan(&total)
	})
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, creator_id, activity_type, inquiry, scheduled_at, is_private, attendee_limit, created_at, updated_at
		FROM events
		WHERE creator_id = $1
		ORDER BY scheduled_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	var events []*domain.Event
	err = withRetry(ctx, func() error {
		rows, err := r.DB.QueryContext(ctx, query, creatorID, params.Limit(), params.Offset())
		if err != nil {
			return err
		}
		defer rows.Close()

		events = make([]*domain.Event, 0)
		for rows.Next() {
			event := &domain.Event{}
			var limit sql.NullInt64
			if err := rows.Scan(&event.ID, &event.CreatorID, &event.ActivityType, &event.Inquiry,
				&event.ScheduledAt, &event.IsPrivate, &limit, &event.CreatedAt, &event.UpdatedAt); err != nil {
				return err
			}
			if limit.Valid {
				v := int(limit.Int64)
				event.AttendeeLimit = &v
			}
			events = append(events, event)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) AddMemberGuarded(ctx context.Context, eventID, userID string) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return addMemberGuarded(ctx, tx, eventID, userID)
	})
}

// RemoveMember is idempotent: removing a non-member is a no-op.
func (r *eventRepository) RemoveMember(ctx context.Context, eventID, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM event_members WHERE event_id = $1 AND user_id = $2`,
		eventID, userID)
	return err
}

func (r *eventRepository) IsMember(ctx context.Context, eventID, userID string) (bool, error) {
	var exists bool
	err := withRetry(ctx, func() error {
		return r.DB.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM event_members WHERE event_id = $1 AND user_id = $2)`,
			eventID, userID).
			Scan(&exists)
	})
	return exists, err
}

func (r *eventRepository) ListMemberIDs(ctx context.Context, eventID string) ([]string, error) {
	return r.listUserIDs(ctx, `SELECT user_id FROM event_members WHERE event_id = $1 ORDER BY created_at`, eventID)
}

// AddLike is idempotent: liking an already-liked event is a no-op.
func (r *eventRepository) AddLike(ctx context.Context, eventID, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO event_likes (event_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (event_id, user_id) DO NOTHING`,
		eventID, userID)
	return err
}

// RemoveLike is idempotent: unliking a non-liked event is a no-op.
func (r *eventRepository) RemoveLike(ctx context.Context, eventID, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM event_likes WHERE event_id = $1 AND user_id = $2`,
		eventID, userID)
	return err
}

func (r *eventRepository) ListLikeIDs(ctx context.Context, eventID string) ([]string, error) {
	return r.listUserIDs(ctx, `SELECT user_id FROM event_likes WHERE event_id = $1 ORDER BY created_at`, eventID)
}

func (r *eventRepository) listUserIDs(ctx context.Context, query, eventID string) ([]string, error) {
	var ids []string
	err := withRetry(ctx, func() error {
		rows, err := r.DB.QueryContext(ctx, query, eventID)
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
