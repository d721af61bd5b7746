package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// InvitationDisposition is the outcome of a direct invitation.
type InvitationDisposition string

// Invitation dispositions. Declined is terminal; a declined invitee may still
// file a regular join request later.
const (
	InvitationPending  InvitationDisposition = "pending"
	InvitationAccepted InvitationDisposition = "accepted"
	InvitationDeclined InvitationDisposition = "declined"
)

// Invitation represents a direct, creator-initiated offer to join an event.
// Exactly one event_invitation notification references it by id.
// swagger:model Invitation
type Invitation struct {
	ID          string                `json:"id"`
	EventID     string                `json:"event_id"`
	InviterID   string                `json:"inviter_id"`
	InviteeID   string                `json:"invitee_id"`
	Disposition InvitationDisposition `json:"disposition"`
	CreatedAt   time.Time             `json:"created_at"`
}

// NewInvitation returns a pending Invitation with the given pre-assigned id.
// IDs are assigned by the caller so the paired notification can reference the
// invitation inside the same transaction.
func NewInvitation(id, eventID, inviterID, inviteeID string, createdAt time.Time) *Invitation {
	return &Invitation{
		ID:          id,
		EventID:     eventID,
		InviterID:   inviterID,
		InviteeID:   inviteeID,
		Disposition: InvitationPending,
		CreatedAt:   createdAt,
	}
}

// InvitationRepository defines storage operations for invitations.
//
// CreatePair and CreateBatch persist invitations with their paired
// notifications atomically. Accept commits the invitation flip, the paired
// notification flip, and the guarded member add as one unit; Decline flips the
// invitation and its notification without touching the event.
type InvitationRepository interface {
	CreatePair(ctx context.Context, inv *Invitation, n *Notification) error
	CreateBatch(ctx context.Context, invs []*Invitation, ns []*Notification) error
	GetByID(ctx context.Context, id string) (*Invitation, error)
	Accept(ctx context.Context, invitationID string) error
	Decline(ctx context.Context, invitationID string) error
	HasNonTerminal(ctx context.Context, eventID, inviteeID string) (bool, error)
	GetPendingByEventAndInvitee(ctx context.Context, eventID, inviteeID string) (*Invitation, error)
	// ListNonTerminalInvitees returns the subset of inviteeIDs that already
	// hold a pending or accepted invitation for the event.
	ListNonTerminalInvitees(ctx context.Context, eventID string, inviteeIDs []string) ([]string, error)
}

// InvitationService defines the business logic for single direct invitations.
type InvitationService interface {
	SendInvitation(ctx context.Context, eventID, inviterID, inviteeID string) (*Invitation, error)
	AcceptInvitation(ctx context.Context, invitationID, actorID string) error
	DeclineInvitation(ctx context.Context, invitationID, actorID string) error
	IsUserInvited(ctx context.Context, eventID, userID string) (bool, error)
}

// BatchInviteService creates many invitation+notification pairs as one atomic
// unit when a private event is created with multiple invitees.
type BatchInviteService interface {
	CreateInvitationsInBatch(ctx context.Context, eventID string, inviteeIDs []string, inviterID string) ([]string, error)
}

// BatchError reports which invitee ids caused a batch invite to abort.
// The batch is all-or-nothing: when this error is returned, no records were
// created for any invitee.
type BatchError struct {
	FailedInviteeIDs []string
	Reason           string
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch invite failed for [%s]: %s", strings.Join(e.FailedInviteeIDs, ", "), e.Reason)
}
