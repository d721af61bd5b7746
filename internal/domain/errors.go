package domain

import "errors"

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound     = errors.New("record not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")

	// ErrAttendeeLimitReached is returned by guarded membership writes when
	// adding the user would exceed the event's attendee limit.
	ErrAttendeeLimitReached = errors.New("attendee limit reached")

	// ErrDuplicateInvitation is returned when the invitee already holds a
	// pending or accepted invitation for the event.
	ErrDuplicateInvitation = errors.New("invitation already exists")

	// ErrDuplicateJoinRequest is returned when the requester already has a
	// pending join request for the event.
	ErrDuplicateJoinRequest = errors.New("join request already pending")
)
