package services

import (
	"context"
	"testing"
	"time"

	"gatherly/internal/domain"

	"github.com/stretchr/testify/require"
)

const testTimeout = 2 * time.Second

func testEvent(id, creatorID string) *domain.Event {
	return &domain.Event{
		ID:           id,
		CreatorID:    creatorID,
		ActivityType: "hiking",
		Inquiry:      "Ridge trail?",
		ScheduledAt:  time.Date(2026, 9, 12, 10, 0, 0, 0, time.UTC),
	}
}

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()
	badLimit := 0
	goodLimit := 4

	tests := []struct {
		name      string
		draft     domain.EventDraft
		creatorID string
		wantErr   error
	}{
		{
			name: "success",
			draft: domain.EventDraft{
				ActivityType:  "hiking",
				Inquiry:       "Ridge trail this weekend?",
				ScheduledAt:   time.Date(2026, 9, 12, 10, 0, 0, 0, time.UTC),
				AttendeeLimit: &goodLimit,
			},
			creatorID: "user-1",
		},
		{
			name: "missing creator",
			draft: domain.EventDraft{
				ActivityType: "hiking",
				ScheduledAt:  time.Now(),
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "missing activity type",
			draft: domain.EventDraft{
				ActivityType: "   ",
				ScheduledAt:  time.Now(),
			},
			creatorID: "user-1",
			wantErr:   domain.ErrInvalidInput,
		},
		{
			name: "missing scheduled time",
			draft: domain.EventDraft{
				ActivityType: "hiking",
			},
			creatorID: "user-1",
			wantErr:   domain.ErrInvalidInput,
		},
		{
			name: "non-positive attendee limit",
			draft: domain.EventDraft{
				ActivityType:  "hiking",
				ScheduledAt:   time.Now(),
				AttendeeLimit: &badLimit,
			},
			creatorID: "user-1",
			wantErr:   domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewEventService(&mockEventRepository{}, &mockInvitationRepository{}, &mockNotificationService{}, testTimeout)
			event, err := svc.CreateEvent(ctx, tt.draft, tt.creatorID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "ev-created", event.ID)
			require.Equal(t, tt.creatorID, event.CreatorID)
		})
	}
}

func TestEventService_GetEventByID(t *testing.T) {
	ctx := context.Background()

	eventRepo := &mockEventRepository{
		events: map[string]*domain.Event{"ev-1": testEvent("ev-1", "user-1")},
		members: map[string]bool{
			memberKey("ev-1", "user-2"): true,
		},
		likes: map[string]bool{
			memberKey("ev-1", "user-3"): true,
		},
	}
	svc := NewEventService(eventRepo, &mockInvitationRepository{}, &mockNotificationService{}, testTimeout)

	detail, err := svc.GetEventByID(ctx, "ev-1")
	require.NoError(t, err)
	require.Equal(t, "ev-1", detail.Event.ID)
	require.Equal(t, []string{"user-2"}, detail.JoinedBy)
	require.Equal(t, []string{"user-3"}, detail.LikedBy)

	_, err = svc.GetEventByID(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_DeleteEvent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		eventID string
		actorID string
		wantErr error
	}{
		{name: "creator deletes", eventID: "ev-1", actorID: "user-1"},
		{name: "non-creator is forbidden", eventID: "ev-1", actorID: "user-2", wantErr: domain.ErrForbidden},
		{name: "missing event", eventID: "ev-x", actorID: "user-1", wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eventRepo := &mockEventRepository{
				events: map[string]*domain.Event{"ev-1": testEvent("ev-1", "user-1")},
			}
			svc := NewEventService(eventRepo, &mockInvitationRepository{}, &mockNotificationService{}, testTimeout)
			err := svc.DeleteEvent(ctx, tt.eventID, tt.actorID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotContains(t, eventRepo.events, tt.eventID)
		})
	}
}

func TestEventService_ToggleLike(t *testing.T) {
	ctx := context.Background()

	eventRepo := &mockEventRepository{
		events: map[string]*domain.Event{"ev-1": testEvent("ev-1", "user-1")},
	}
	svc := NewEventService(eventRepo, &mockInvitationRepository{}, &mockNotificationService{}, testTimeout)

	liked, err := svc.ToggleLike(ctx, "ev-1", "user-2", true)
	require.NoError(t, err)
	require.True(t, liked)
	require.True(t, eventRepo.likes[memberKey("ev-1", "user-2")])

	// Replaying the same desired state is harmless.
	liked, err = svc.ToggleLike(ctx, "ev-1", "user-2", true)
	require.NoError(t, err)
	require.True(t, liked)
	require.True(t, eventRepo.likes[memberKey("ev-1", "user-2")])

	liked, err = svc.ToggleLike(ctx, "ev-1", "user-2", false)
	require.NoError(t, err)
	require.False(t, liked)
	require.False(t, eventRepo.likes[memberKey("ev-1", "user-2")])

	_, err = svc.ToggleLike(ctx, "missing", "user-2", true)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_RequestOrLeave(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name            string
		member          bool
		pendingRequest  bool
		rejectedBefore  bool
		pendingInvite   bool
		acceptErr       error
		wantOutcome     domain.JoinOutcome
		wantErr         error
		wantJoinRequest bool
	}{
		{
			name:        "member leaves",
			member:      true,
			wantOutcome: domain.OutcomeLeft,
		},
		{
			name:           "unresolved request reported",
			pendingRequest: true,
			wantOutcome:    domain.OutcomeAlreadyPending,
		},
		{
			name:           "prior rejection is final",
			rejectedBefore: true,
			wantOutcome:    domain.OutcomeAlreadyRejected,
		},
		{
			name:          "invited user joins directly",
			pendingInvite: true,
			wantOutcome:   domain.OutcomeInvitedAndJoined,
		},
		{
			name:          "invited user blocked by full event",
			pendingInvite: true,
			acceptErr:     domain.ErrAttendeeLimitReached,
			wantErr:       domain.ErrAttendeeLimitReached,
		},
		{
			name:            "declined invitee files a join request",
			wantOutcome:     domain.OutcomeRequestPending,
			wantJoinRequest: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eventRepo := &mockEventRepository{
				events: map[string]*domain.Event{"ev-1": testEvent("ev-1", "user-1")},
			}
			if tt.member {
				eventRepo.members = map[string]bool{memberKey("ev-1", "user-2"): true}
			}
			invitationRepo := &mockInvitationRepository{acceptErr: tt.acceptErr}
			if tt.pendingInvite {
				invitationRepo.pendingByEvent = map[string]*domain.Invitation{
					memberKey("ev-1", "user-2"): domain.NewInvitation("inv-1", "ev-1", "user-1", "user-2", time.Now()),
				}
			}
			notificationSvc := &mockNotificationService{
				pending:  tt.pendingRequest,
				rejected: tt.rejectedBefore,
			}

			svc := NewEventService(eventRepo, invitationRepo, notificationSvc, testTimeout)
			outcome, err := svc.RequestOrLeave(ctx, "ev-1", "user-2")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantOutcome, outcome)

			switch tt.wantOutcome {
			case domain.OutcomeLeft:
				require.Equal(t, []string{memberKey("ev-1", "user-2")}, eventRepo.removedMembers)
			case domain.OutcomeInvitedAndJoined:
				require.Equal(t, []string{"inv-1"}, invitationRepo.accepted)
			}
			if tt.wantJoinRequest {
				require.Equal(t, []string{"ev-1"}, notificationSvc.createdEvents)
			} else {
				require.Empty(t, notificationSvc.createdEvents)
			}
		})
	}
}

func TestEventService_RequestOrLeave_MissingEvent(t *testing.T) {
	svc := NewEventService(&mockEventRepository{}, &mockInvitationRepository{}, &mockNotificationService{}, testTimeout)
	_, err := svc.RequestOrLeave(context.Background(), "missing", "user-2")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
