package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gatherly/internal/domain"
)

type invitationService struct {
	invitationRepo domain.InvitationRepository
	eventRepo      domain.EventRepository
	dispatcher     domain.NotificationDispatcher
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewInvitationService creates an InvitationService for single direct invites.
func NewInvitationService(
	invitationRepo domain.InvitationRepository,
	eventRepo domain.EventRepository,
	dispatcher domain.NotificationDispatcher,
	logger *slog.Logger,
	timeout time.Duration,
) domain.InvitationService {
	return &invitationService{
		invitationRepo: invitationRepo,
		eventRepo:      eventRepo,
		dispatcher:     dispatcher,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *invitationService) SendInvitation(ctx context.Context, eventID, inviterID, inviteeID string) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if inviteeID == "" {
		return nil, fmt.Errorf("%w: invitee is required", domain.ErrInvalidInput)
	}
	if inviteeID == inviterID {
		return nil, fmt.Errorf("%w: cannot invite yourself", domain.ErrInvalidInput)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID != inviterID {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	inv := domain.NewInvitation(uuid.NewString(), eventID, inviterID, inviteeID, now)
	message := fmt.Sprintf("invited you to a %s event", event.ActivityType)
	n := domain.NewInvitationNotification(inv.ID, eventID, inviterID, inviteeID, message, now)

	if err := s.invitationRepo.CreatePair(ctx, inv, n); err != nil {
		if errors.Is(err, domain.ErrDuplicateInvitation) {
			return nil, domain.ErrDuplicateInvitation
		}
		return nil, fmt.Errorf("create invitation: %w", err)
	}
	s.dispatch(n)
	return inv, nil
}

func (s *invitationService) AcceptInvitation(ctx context.Context, invitationID, actorID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.getForActor(ctx, invitationID, actorID)
	if err != nil {
		return err
	}
	// Invitation, paired notification, and membership commit together; the
	// attendee-limit guard runs inside the same transaction.
	if err := s.invitationRepo.Accept(ctx, inv.ID); err != nil {
		if errors.Is(err, domain.ErrAttendeeLimitReached) || errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("accept invitation: %w", err)
	}
	return nil
}

func (s *invitationService) DeclineInvitation(ctx context.Context, invitationID, actorID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.getForActor(ctx, invitationID, actorID)
	if err != nil {
		return err
	}
	if err := s.invitationRepo.Decline(ctx, inv.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("decline invitation: %w", err)
	}
	return nil
}

func (s *invitationService) getForActor(ctx context.Context, invitationID, actorID string) (*domain.Invitation, error) {
	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	if inv.InviteeID != actorID {
		return nil, domain.ErrForbidden
	}
	return inv, nil
}

func (s *invitationService) IsUserInvited(ctx context.Context, eventID, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	_, err := s.invitationRepo.GetPendingByEventAndInvitee(ctx, eventID, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("get invitation: %w", err)
}

func (s *invitationService) dispatch(n *domain.Notification) {
	if s.dispatcher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.contextTimeout)
		defer cancel()
		if err := s.dispatcher.Dispatch(ctx, n); err != nil {
			s.logger.Error("invitation dispatch failed", "notification_id", n.ID, "err", err)
		}
	}()
}
