package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gatherly/internal/domain"
)

type eventService struct {
	eventRepo       domain.EventRepository
	invitationRepo  domain.InvitationRepository
	notificationSvc domain.NotificationService
	contextTimeout  time.Duration
}

// NewEventService creates an EventService. Join requests are delegated to the
// notification service; direct invitations resolve through the invitation repository.
func NewEventService(
	eventRepo domain.EventRepository,
	invitationRepo domain.InvitationRepository,
	notificationSvc domain.NotificationService,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:       eventRepo,
		invitationRepo:  invitationRepo,
		notificationSvc: notificationSvc,
		contextTimeout:  timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, draft domain.EventDraft, creatorID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if creatorID == "" {
		return nil, fmt.Errorf("%w: event creator is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(draft.ActivityType) == "" {
		return nil, fmt.Errorf("%w: activity type is required", domain.ErrInvalidInput)
	}
	if draft.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("%w: scheduled time is required", domain.ErrInvalidInput)
	}
	if draft.AttendeeLimit != nil && *draft.AttendeeLimit < 1 {
		return nil, fmt.Errorf("%w: attendee limit must be positive", domain.ErrInvalidInput)
	}

	now := time.Now()
	event := domain.NewEvent(creatorID, strings.TrimSpace(draft.ActivityType), strings.TrimSpace(draft.Inquiry),
		draft.ScheduledAt, draft.IsPrivate, draft.AttendeeLimit, now, now)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, eventID string) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	members, err := s.eventRepo.ListMemberIDs(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	likes, err := s.eventRepo.ListLikeIDs(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	return &domain.EventDetail{
		Event:    event,
		JoinedBy: members,
		LikedBy:  likes,
	}, nil
}

func (s *eventService) ListEventsByCreator(ctx context.Context, creatorID string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.ListByCreatorID(ctx, creatorID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, creatorID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID != creatorID {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// ToggleLike applies the caller's desired like state. The underlying writes
// are set operations, so a client retry replaying the same state is harmless.
func (s *eventService) ToggleLike(ctx context.Context, eventID, userID string, liked bool) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("get event: %w", err)
	}

	if liked {
		if err := s.eventRepo.AddLike(ctx, eventID, userID); err != nil {
			return false, fmt.Errorf("add like: %w", err)
		}
		return true, nil
	}
	if err := s.eventRepo.RemoveLike(ctx, eventID, userID); err != nil {
		return false, fmt.Errorf("remove like: %w", err)
	}
	return false, nil
}

func (s *eventService) RequestOrLeave(ctx context.Context, eventID, userID string) (domain.JoinOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get event: %w", err)
	}

	// Members leave. The delete is idempotent, so a retried leave is a no-op.
	isMember, err := s.eventRepo.IsMember(ctx, eventID, userID)
	if err != nil {
		return "", fmt.Errorf("check membership: %w", err)
	}
	if isMember {
		if err := s.eventRepo.RemoveMember(ctx, eventID, userID); err != nil {
			return "", fmt.Errorf("remove member: %w", err)
		}
		return domain.OutcomeLeft, nil
	}

	pending, err := s.notificationSvc.HasPendingJoinRequest(ctx, eventID, userID)
	if err != nil {
		return "", fmt.Errorf("check pending request: %w", err)
	}
	if pending {
		return domain.OutcomeAlreadyPending, nil
	}

	// A prior rejection is final; the creator's decision stands.
	rejected, err := s.notificationSvc.HasRejectedJoinRequest(ctx, eventID, userID)
	if err != nil {
		return "", fmt.Errorf("check rejected request: %w", err)
	}
	if rejected {
		return domain.OutcomeAlreadyRejected, nil
	}

	// Invited users bypass approval: accepting the invitation joins them and
	// resolves the invitation and its notification in one commit.
	inv, err := s.invitationRepo.GetPendingByEventAndInvitee(ctx, eventID, userID)
	if err == nil {
		if err := s.invitationRepo.Accept(ctx, inv.ID); err != nil {
			if errors.Is(err, domain.ErrAttendeeLimitReached) {
				return "", domain.ErrAttendeeLimitReached
			}
			return "", fmt.Errorf("accept invitation: %w", err)
		}
		return domain.OutcomeInvitedAndJoined, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("get invitation: %w", err)
	}

	if _, err := s.notificationSvc.CreateJoinRequest(ctx, event, userID); err != nil {
		return "", fmt.Errorf("create join request: %w", err)
	}
	return domain.OutcomeRequestPending, nil
}
