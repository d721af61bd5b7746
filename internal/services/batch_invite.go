package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"gatherly/internal/domain"
)

type batchInviteService struct {
	invitationRepo domain.InvitationRepository
	eventRepo      domain.EventRepository
	dispatcher     domain.NotificationDispatcher
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewBatchInviteService creates a BatchInviteService. Used when a private
// event is created with multiple invitees: every invitee gets an invitation
// and its paired notification, or nobody gets anything.
func NewBatchInviteService(
	invitationRepo domain.InvitationRepository,
	eventRepo domain.EventRepository,
	dispatcher domain.NotificationDispatcher,
	logger *slog.Logger,
	timeout time.Duration,
) domain.BatchInviteService {
	return &batchInviteService{
		invitationRepo: invitationRepo,
		eventRepo:      eventRepo,
		dispatcher:     dispatcher,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *batchInviteService) CreateInvitationsInBatch(ctx context.Context, eventID string, inviteeIDs []string, inviterID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	invitees, err := normalizeInvitees(inviteeIDs, inviterID)
	if err != nil {
		return nil, err
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

	// Reject up front, before anything is staged, when any invitee already
	// holds an open invitation.
	conflicting, err := s.invitationRepo.ListNonTerminalInvitees(ctx, eventID, invitees)
	if err != nil {
		return nil, fmt.Errorf("check existing invitations: %w", err)
	}
	if len(conflicting) > 0 {
		return nil, &domain.BatchError{FailedInviteeIDs: conflicting, Reason: "invitation already exists"}
	}

	now := time.Now()
	message := fmt.Sprintf("invited you to a %s event", event.ActivityType)
	invs := make([]*domain.Invitation, 0, len(invitees))
	ns := make([]*domain.Notification, 0, len(invitees))
	for _, inviteeID := range invitees {
		inv := domain.NewInvitation(uuid.NewString(), eventID, inviterID, inviteeID, now)
		invs = append(invs, inv)
		ns = append(ns, domain.NewInvitationNotification(inv.ID, eventID, inviterID, inviteeID, message, now))
	}

	if err := s.invitationRepo.CreateBatch(ctx, invs, ns); err != nil {
		if errors.Is(err, domain.ErrDuplicateInvitation) {
			// An invitation landed between the pre-check and the commit. The
			// batch rolled back; re-probe so the caller learns exactly which
			// invitees caused it.
			conflicting, probeErr := s.invitationRepo.ListNonTerminalInvitees(ctx, eventID, invitees)
			if probeErr != nil || len(conflicting) == 0 {
				conflicting = invitees
			}
			return nil, &domain.BatchError{FailedInviteeIDs: conflicting, Reason: "invitation already exists"}
		}
		return nil, fmt.Errorf("create invitation batch: %w", err)
	}

	createdIDs := make([]string, 0, len(invs))
	for i, inv := range invs {
		createdIDs = append(createdIDs, inv.ID)
		s.dispatch(ns[i])
	}
	return createdIDs, nil
}

// normalizeInvitees trims and dedupes the invitee list, rejecting empty input
// and self-invitations.
func normalizeInvitees(inviteeIDs []string, inviterID string) ([]string, error) {
	seen := make(map[string]struct{}, len(inviteeIDs))
	invitees := make([]string, 0, len(inviteeIDs))
	for _, id := range inviteeIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if id == inviterID {
			return nil, fmt.Errorf("%w: cannot invite yourself", domain.ErrInvalidInput)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		invitees = append(invitees, id)
	}
	if len(invitees) == 0 {
		return nil, fmt.Errorf("%w: invitee list is empty", domain.ErrInvalidInput)
	}
	return invitees, nil
}

func (s *batchInviteService) dispatch(n *domain.Notification) {
	if s.dispatcher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.contextTimeout)
		defer cancel()
		if err := s.dispatcher.Dispatch(ctx, n); err != nil {
			s.logger.Error("batch invite dispatch failed", "notification_id", n.ID, "err", err)
		}
	}()
}
