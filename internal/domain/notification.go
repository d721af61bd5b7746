package domain

import (
	"context"
	"time"
)

// NotificationKind distinguishes join requests from direct invitations.
type NotificationKind string

// Notification kinds.
const (
	KindJoinRequest     NotificationKind = "join_request"
	KindEventInvitation NotificationKind = "event_invitation"
)

// Disposition is the outcome of a request or invitation notification.
// It is independent of the read flag: a rejected notification can be unread
// and a pending one can already have been seen.
type Disposition string

// Notification dispositions.
const (
	DispositionPending  Disposition = "pending"
	DispositionAccepted Disposition = "accepted"
	DispositionRejected Disposition = "rejected"
)

// Notification represents an actionable message in a user's feed.
// For event invitations, InvitationID references the paired Invitation record
// and is set at creation time.
// swagger:model Notification
type Notification struct {
	ID           string           `json:"id"`
	Kind         NotificationKind `json:"kind"`
	Disposition  Disposition      `json:"disposition"`
	IsRead       bool             `json:"is_read"`
	EventID      string           `json:"event_id"`
	SenderID     string           `json:"sender_id"`
	RecipientID  string           `json:"recipient_id"`
	InvitationID string           `json:"invitation_id,omitempty"`
	Message      string           `json:"message"`
	CreatedAt    time.Time        `json:"created_at"`
}

// NewJoinRequestNotification returns a pending join request addressed to the event creator.
func NewJoinRequestNotification(eventID, requesterID, creatorID, message string, createdAt time.Time) *Notification {
	return &Notification{
		Kind:        KindJoinRequest,
		Disposition: DispositionPending,
		EventID:     eventID,
		SenderID:    requesterID,
		RecipientID: creatorID,
		Message:     message,
		CreatedAt:   createdAt,
	}
}

// NewInvitationNotification returns a pending invitation notification addressed
// to the invitee, carrying the paired invitation's id.
func NewInvitationNotification(invitationID, eventID, inviterID, inviteeID, message string, createdAt time.Time) *Notification {
	return &Notification{
		Kind:         KindEventInvitation,
		Disposition:  DispositionPending,
		EventID:      eventID,
		SenderID:     inviterID,
		RecipientID:  inviteeID,
		InvitationID: invitationID,
		Message:      message,
		CreatedAt:    createdAt,
	}
}

// NotificationRepository defines storage operations for notifications.
//
// AcceptJoinRequest commits the guarded member add and the pending→accepted
// disposition flip as one atomic unit. The flip is predicated on the current
// disposition being pending, so a replay cannot transition twice.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	ListByRecipientID(ctx context.Context, recipientID string, params PaginationParams) ([]*Notification, int, error)
	Delete(ctx context.Context, id string) error

	GetPendingJoinRequest(ctx context.Context, eventID, senderID string) (*Notification, error)
	HasRejectedJoinRequest(ctx context.Context, eventID, senderID string) (bool, error)

	AcceptJoinRequest(ctx context.Context, notificationID, eventID, senderID string) error
	Reject(ctx context.Context, notificationID string) error

	// MarkRead sets is_read on the given notifications owned by recipientID,
	// skipping join requests, which stay visually actionable until resolved.
	MarkRead(ctx context.Context, recipientID string, ids []string) error
}

// NotificationService orchestrates the approval workflow: it creates and
// queries notifications and drives the accept/reject transitions that mutate
// event membership and invitation status.
type NotificationService interface {
	CreateJoinRequest(ctx context.Context, event *Event, requesterID string) (*Notification, error)
	AcceptJoinRequest(ctx context.Context, notificationID, eventID, actorID string) error
	RejectJoinRequest(ctx context.Context, notificationID, eventID, actorID string) error
	MarkMultipleAsRead(ctx context.Context, recipientID string, ids []string) error
	Dismiss(ctx context.Context, notificationID, actorID string) error
	ListByRecipient(ctx context.Context, recipientID string, params PaginationParams) ([]*Notification, int, error)
	// Subscribe returns a channel of newest-first feed snapshots for the
	// recipient. The channel closes when ctx is cancelled; calling Subscribe
	// again starts a fresh stream.
	Subscribe(ctx context.Context, recipientID string) (<-chan []*Notification, error)
	HasPendingJoinRequest(ctx context.Context, eventID, userID string) (bool, error)
	HasRejectedJoinRequest(ctx context.Context, eventID, userID string) (bool, error)
}
