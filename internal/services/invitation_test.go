package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"gatherly/internal/domain"

	"github.com/stretchr/testify/require"
)

func newInvitationService(invitationRepo *mockInvitationRepository, eventRepo *mockEventRepository) domain.InvitationService {
	return NewInvitationService(invitationRepo, eventRepo, nil, slog.Default(), testTimeout)
}

func TestInvitationService_SendInvitation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		eventID       string
		inviterID     string
		inviteeID     string
		createPairErr error
		wantErr       error
	}{
		{
			name:      "creator invites",
			eventID:   "ev-1",
			inviterID: "user-1",
			inviteeID: "user-2",
		},
		{
			name:      "missing invitee",
			eventID:   "ev-1",
			inviterID: "user-1",
			wantErr:   domain.ErrInvalidInput,
		},
		{
			name:      "self invitation",
			eventID:   "ev-1",
			inviterID: "user-1",
			inviteeID: "user-1",
			wantErr:   domain.ErrInvalidInput,
		},
		{
			name:      "non-creator is forbidden",
			eventID:   "ev-1",
			inviterID: "user-3",
			inviteeID: "user-2",
			wantErr:   domain.ErrForbidden,
		},
		{
			name:      "missing event",
			eventID:   "ev-x",
			inviterID: "user-1",
			inviteeID: "user-2",
			wantErr:   domain.ErrNotFound,
		},
		{
			name:          "invitee already has an open invitation",
			eventID:       "ev-1",
			inviterID:     "user-1",
			inviteeID:     "user-2",
			createPairErr: domain.ErrDuplicateInvitation,
			wantErr:       domain.ErrDuplicateInvitation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eventRepo := &mockEventRepository{
				events: map[string]*domain.Event{"ev-1": testEvent("ev-1", "user-1")},
			}
			invitationRepo := &mockInvitationRepository{createPairErr: tt.createPairErr}
			svc := newInvitationService(invitationRepo, eventRepo)

			inv, err := svc.SendInvitation(ctx, tt.eventID, tt.inviterID, tt.inviteeID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, inv.ID)
			require.Equal(t, domain.InvitationPending, inv.Disposition)
			require.Len(t, invitationRepo.pairedNotifs, 1)
			require.Equal(t, inv.ID, invitationRepo.pairedNotifs[0].InvitationID)
			require.Equal(t, domain.KindEventInvitation, invitationRepo.pairedNotifs[0].Kind)
			require.Equal(t, tt.inviteeID, invitationRepo.pairedNotifs[0].RecipientID)
		})
	}
}

func TestInvitationService_AcceptInvitation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		actorID   string
		acceptErr error
		wantErr   error
	}{
		{name: "invitee accepts", actorID: "user-2"},
		{name: "only the invitee may accept", actorID: "user-3", wantErr: domain.ErrForbidden},
		{name: "full event blocks the accept", actorID: "user-2", acceptErr: domain.ErrAttendeeLimitReached, wantErr: domain.ErrAttendeeLimitReached},
		{name: "already resolved", actorID: "user-2", acceptErr: domain.ErrNotFound, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invitationRepo := &mockInvitationRepository{
				invitations: map[string]*domain.Invitation{
					"inv-1": domain.NewInvitation("inv-1", "ev-1", "user-1", "user-2", time.Now()),
				},
				acceptErr: tt.acceptErr,
			}
			svc := newInvitationService(invitationRepo, &mockEventRepository{})

			err := svc.AcceptInvitation(ctx, "inv-1", tt.actorID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, []string{"inv-1"}, invitationRepo.accepted)
		})
	}
}

func TestInvitationService_DeclineInvitation(t *testing.T) {
	ctx := context.Background()

	invitationRepo := &mockInvitationRepository{
		invitations: map[string]*domain.Invitation{
			"inv-1": domain.NewInvitation("inv-1", "ev-1", "user-1", "user-2", time.Now()),
		},
	}
	svc := newInvitationService(invitationRepo, &mockEventRepository{})

	require.ErrorIs(t, svc.DeclineInvitation(ctx, "inv-1", "user-3"), domain.ErrForbidden)
	require.NoError(t, svc.DeclineInvitation(ctx, "inv-1", "user-2"))
	require.Equal(t, []string{"inv-1"}, invitationRepo.declined)
	require.Equal(t, domain.InvitationDeclined, invitationRepo.invitations["inv-1"].Disposition)
}

func TestInvitationService_IsUserInvited(t *testing.T) {
	ctx := context.Background()

	invitationRepo := &mockInvitationRepository{
		pendingByEvent: map[string]*domain.Invitation{
			memberKey("ev-1", "user-2"): domain.NewInvitation("inv-1", "ev-1", "user-1", "user-2", time.Now()),
		},
	}
	svc := newInvitationService(invitationRepo, &mockEventRepository{})

	invited, err := svc.IsUserInvited(ctx, "ev-1", "user-2")
	require.NoError(t, err)
	require.True(t, invited)

	invited, err = svc.IsUserInvited(ctx, "ev-1", "user-3")
	require.NoError(t, err)
	require.False(t, invited)
}
