package domain

import "context"

// NotificationDispatcher delivers a newly created notification to the push
// channel. Dispatch is fire-and-forget from the workflow's point of view:
// failures are logged by the caller and never affect request outcomes.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, n *Notification) error
}
