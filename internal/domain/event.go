package domain

import (
	"context"
	"time"
)

// Event represents a planned activity users can join or like.
// swagger:model Event
type Event struct {
	ID            string    `json:"id"`
	CreatorID     string    `json:"creator_id"`
	ActivityType  string    `json:"activity_type"`
	Inquiry       string    `json:"inquiry"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	IsPrivate     bool      `json:"is_private"`
	AttendeeLimit *int      `json:"attendee_limit,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(creatorID, activityType, inquiry string, scheduledAt time.Time, isPrivate bool, attendeeLimit *int, createdAt, updatedAt time.Time) *Event {
	return &Event{
		CreatorID:     creatorID,
		ActivityType:  activityType,
		Inquiry:       inquiry,
		ScheduledAt:   scheduledAt,
		IsPrivate:     isPrivate,
		AttendeeLimit: attendeeLimit,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
}

// EventDetail bundles an event with its joined and liked member sets.
// swagger:model EventDetail
type EventDetail struct {
	Event    *Event   `json:"event"`
	JoinedBy []string `json:"joined_by"`
	LikedBy  []string `json:"liked_by"`
}

// JoinOutcome is the result of RequestOrLeave.
type JoinOutcome string

// RequestOrLeave outcomes.
const (
	// OutcomeLeft: the caller was a member and has been removed.
	OutcomeLeft JoinOutcome = "left"
	// OutcomeInvitedAndJoined: the caller held an invitation and joined directly.
	OutcomeInvitedAndJoined JoinOutcome = "invited_and_joined"
	// OutcomeRequestPending: a new join request awaits the creator's decision.
	OutcomeRequestPending JoinOutcome = "request_pending"
	// OutcomeAlreadyPending: an earlier join request is still unresolved.
	OutcomeAlreadyPending JoinOutcome = "already_pending"
	// OutcomeAlreadyRejected: the creator rejected this user before; no new request is made.
	OutcomeAlreadyRejected JoinOutcome = "already_rejected"
)

// EventRepository defines storage operations for events and their member/like sets.
// AddMemberGuarded evaluates the attendee limit and the insert as one atomic
// store operation; callers must never pre-check the count themselves.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByCreatorID(ctx context.Context, creatorID string, params PaginationParams) ([]*Event, int, error)
	Delete(ctx context.Context, id string) error

	AddMemberGuarded(ctx context.Context, eventID, userID string) error
	RemoveMember(ctx context.Context, eventID, userID string) error
	IsMember(ctx context.Context, eventID, userID string) (bool, error)
	ListMemberIDs(ctx context.Context, eventID string) ([]string, error)

	AddLike(ctx context.Context, eventID, userID string) error
	RemoveLike(ctx context.Context, eventID, userID string) error
	ListLikeIDs(ctx context.Context, eventID string) ([]string, error)
}

// EventDraft carries the caller-supplied fields for a new event.
type EventDraft struct {
	ActivityType  string
	Inquiry       string
	ScheduledAt   time.Time
	IsPrivate     bool
	AttendeeLimit *int
}

// EventService defines the business logic for event lifecycle and membership toggles.
type EventService interface {
	CreateEvent(ctx context.Context, draft EventDraft, creatorID string) (*Event, error)
	GetEventByID(ctx context.Context, eventID string) (*EventDetail, error)
	ListEventsByCreator(ctx context.Context, creatorID string, params PaginationParams) ([]*Event, int, error)
	DeleteEvent(ctx context.Context, eventID, creatorID string) error
	// ToggleLike applies the caller's desired like state as an idempotent set
	// write and returns the resulting membership. Retrying the identical call
	// cannot flip the state twice.
	ToggleLike(ctx context.Context, eventID, userID string, liked bool) (bool, error)
	// RequestOrLeave removes the caller from the event if joined; otherwise it
	// joins directly (invited users), reports an unresolved or rejected prior
	// request, or files a new join request with the creator.
	RequestOrLeave(ctx context.Context, eventID, userID string) (JoinOutcome, error)
}
