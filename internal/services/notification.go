package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gatherly/internal/domain"
)

// subscribeFeedSize is the number of notifications carried in each feed snapshot.
const subscribeFeedSize = 50

type notificationService struct {
	notificationRepo domain.NotificationRepository
	eventRepo        domain.EventRepository
	dispatcher       domain.NotificationDispatcher
	logger           *slog.Logger
	pollInterval     time.Duration
	contextTimeout   time.Duration
}

// NewNotificationService creates a NotificationService. The dispatcher is
// invoked fire-and-forget after a notification is created; its failures never
// affect workflow results.
func NewNotificationService(
	notificationRepo domain.NotificationRepository,
	eventRepo domain.EventRepository,
	dispatcher domain.NotificationDispatcher,
	logger *slog.Logger,
	pollInterval time.Duration,
	timeout time.Duration,
) domain.NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		eventRepo:        eventRepo,
		dispatcher:       dispatcher,
		logger:           logger,
		pollInterval:     pollInterval,
		contextTimeout:   timeout,
	}
}

// CreateJoinRequest is idempotent: an unresolved request from the same user
// for the same event is returned unchanged instead of duplicated.
func (s *notificationService) CreateJoinRequest(ctx context.Context, event *domain.Event, requesterID string) (*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if requesterID == "" {
		return nil, fmt.Errorf("%w: requester is required", domain.ErrInvalidInput)
	}
	if requesterID == event.CreatorID {
		return nil, fmt.Errorf("%w: creator cannot request to join own event", domain.ErrInvalidInput)
	}

	existing, err := s.notificationRepo.GetPendingJoinRequest(ctx, event.ID, requesterID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get pending join request: %w", err)
	}

	message := fmt.Sprintf("wants to join your %s event", event.ActivityType)
	n := domain.NewJoinRequestNotification(event.ID, requesterID, event.CreatorID, message, time.Now())
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		if errors.Is(err, domain.ErrDuplicateJoinRequest) {
			// A concurrent request won the insert; its row is the one to return.
			existing, getErr := s.notificationRepo.GetPendingJoinRequest(ctx, event.ID, requesterID)
			if getErr != nil {
				return nil, fmt.Errorf("get concurrent join request: %w", getErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("create join request: %w", err)
	}
	s.dispatch(n)
	return n, nil
}

func (s *notificationService) AcceptJoinRequest(ctx context.Context, notificationID, eventID, actorID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	n, err := s.authorizeJoinRequestAction(ctx, notificationID, eventID, actorID)
	if err != nil {
		return err
	}
	// The guarded member add and the disposition flip commit together; if the
	// attendee limit is reached, neither lands.
	if err := s.notificationRepo.AcceptJoinRequest(ctx, notificationID, eventID, n.SenderID); err != nil {
		if errors.Is(err, domain.ErrAttendeeLimitReached) || errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("accept join request: %w", err)
	}
	return nil
}

func (s *notificationService) RejectJoinRequest(ctx context.Context, notificationID, eventID, actorID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.authorizeJoinRequestAction(ctx, notificationID, eventID, actorID); err != nil {
		return err
	}
	if err := s.notificationRepo.Reject(ctx, notificationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("reject join request: %w", err)
	}
	return nil
}

// authorizeJoinRequestAction verifies the notification is a join request on
// the given event and that the actor is the event creator it is addressed to.
func (s *notificationService) authorizeJoinRequestAction(ctx context.Context, notificationID, eventID, actorID string) (*domain.Notification, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID != actorID {
		return nil, domain.ErrForbidden
	}

	n, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	if n.EventID != eventID {
		return nil, domain.ErrNotFound
	}
	if n.Kind != domain.KindJoinRequest {
		return nil, fmt.Errorf("%w: notification is not a join request", domain.ErrInvalidInput)
	}
	if n.RecipientID != actorID {
		return nil, domain.ErrForbidden
	}
	return n, nil
}

func (s *notificationService) MarkMultipleAsRead(ctx context.Context, recipientID string, ids []string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if len(ids) == 0 {
		return nil
	}
	if err := s.notificationRepo.MarkRead(ctx, recipientID, ids); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

func (s *notificationService) Dismiss(ctx context.Context, notificationID, actorID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	n, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get notification: %w", err)
	}
	if n.RecipientID != actorID {
		return domain.ErrForbidden
	}
	if err := s.notificationRepo.Delete(ctx, notificationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

func (s *notificationService) ListByRecipient(ctx context.Context, recipientID string, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	notifications, total, err := s.notificationRepo.ListByRecipientID(ctx, recipientID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	if notifications == nil {
		notifications = []*domain.Notification{}
	}
	return notifications, total, nil
}

// Subscribe polls the store and emits a newest-first snapshot whenever the
// recipient's feed changes. The first snapshot is emitted immediately. The
// returned channel closes when ctx is cancelled; calling Subscribe again
// starts a fresh stream.
func (s *notificationService) Subscribe(ctx context.Context, recipientID string) (<-chan []*domain.Notification, error) {
	if recipientID == "" {
		return nil, fmt.Errorf("%w: recipient is required", domain.ErrInvalidInput)
	}

	updates := make(chan []*domain.Notification, 1)
	go func() {
		defer close(updates)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		var last []*domain.Notification
		first := true
		for {
			params := domain.PaginationParams{Page: 1, PageSize: subscribeFeedSize}
			notifications, _, err := s.notificationRepo.ListByRecipientID(ctx, recipientID, params)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.ErrorContext(ctx, "notification feed poll failed", "recipient_id", recipientID, "err", err)
			} else if first || feedChanged(last, notifications) {
				select {
				case updates <- notifications:
				case <-ctx.Done():
					return
				}
				last = notifications
				first = false
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return updates, nil
}

func (s *notificationService) HasPendingJoinRequest(ctx context.Context, eventID, userID string) (bool, error) {
	_, err := s.notificationRepo.GetPendingJoinRequest(ctx, eventID, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("get pending join request: %w", err)
}

func (s *notificationService) HasRejectedJoinRequest(ctx context.Context, eventID, userID string) (bool, error) {
	return s.notificationRepo.HasRejectedJoinRequest(ctx, eventID, userID)
}

// dispatch pushes the notification out of band. Failures are logged only.
func (s *notificationService) dispatch(n *domain.Notification) {
	if s.dispatcher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.contextTimeout)
		defer cancel()
		if err := s.dispatcher.Dispatch(ctx, n); err != nil {
			s.logger.Error("notification dispatch failed", "notification_id", n.ID, "err", err)
		}
	}()
}

// feedChanged reports whether two feed snapshots differ in membership, order,
// disposition, or read state.
func feedChanged(a, b []*domain.Notification) bool {
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if a[i].ID != b[i].ID ||
			a[i].Disposition != b[i].Disposition ||
			a[i].IsRead != b[i].IsRead {
			return true
		}
	}
	return false
}
