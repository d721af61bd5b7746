package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"gatherly/internal/domain"
)

func memberKey(eventID, userID string) string {
	return eventID + ":" + userID
}

type mockEventRepository struct {
	events  map[string]*domain.Event
	members map[string]bool
	likes   map[string]bool
	err     error

	removedMembers []string
}

func (m *mockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.err != nil {
		return m.err
	}
	event.ID = "ev-created"
	return nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	ev, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

func (m *mockEventRepository) ListByCreatorID(ctx context.Context, creatorID string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var events []*domain.Event
	for _, ev := range m.events {
		if ev.CreatorID == creatorID {
			events = append(events, ev)
		}
	}
	return events, len(events), nil
}

func (m *mockEventRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *mockEventRepository) AddMemberGuarded(ctx context.Context, eventID, userID string) error {
	if m.members == nil {
		m.members = make(map[string]bool)
	}
	m.members[memberKey(eventID, userID)] = true
	return nil
}

func (m *mockEventRepository) RemoveMember(ctx context.Context, eventID, userID string) error {
	delete(m.members, memberKey(eventID, userID))
	m.removedMembers = append(m.removedMembers, memberKey(eventID, userID))
	return nil
}

func (m *mockEventRepository) IsMember(ctx context.Context, eventID, userID string) (bool, error) {
	return m.members[memberKey(eventID, userID)], nil
}

func (m *mockEventRepository) ListMemberIDs(ctx context.Context, eventID string) ([]string, error) {
	ids := []string{}
	for key, ok := range m.members {
		if ok && strings.HasPrefix(key, eventID+":") {
			ids = append(ids, key[len(eventID)+1:])
		}
	}
	return ids, nil
}

func (m *mockEventRepository) AddLike(ctx context.Context, eventID, userID string) error {
	if m.likes == nil {
		m.likes = make(map[string]bool)
	}
	m.likes[memberKey(eventID, userID)] = true
	return nil
}

func (m *mockEventRepository) RemoveLike(ctx context.Context, eventID, userID string) error {
	delete(m.likes, memberKey(eventID, userID))
	return nil
}

func (m *mockEventRepository) ListLikeIDs(ctx context.Context, eventID string) ([]string, error) {
	ids := []string{}
	for key, ok := range m.likes {
		if ok && strings.HasPrefix(key, eventID+":") {
			ids = append(ids, key[len(eventID)+1:])
		}
	}
	return ids, nil
}

type mockNotificationRepository struct {
	mu            sync.Mutex
	notifications map[string]*domain.Notification
	pendingJoin   map[string]*domain.Notification
	rejectedJoin  map[string]bool
	feed          []*domain.Notification
	err           error

	created       []*domain.Notification
	acceptResults []error
	markReadCalls int

	// createErr fails the next Create call once. When it is the duplicate
	// sentinel, racedPending becomes visible as the pending row, standing in
	// for a concurrent insert that committed first.
	createErr    error
	racedPending *domain.Notification
}

func (m *mockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if m.err != nil {
		return m.err
	}
	if m.createErr != nil {
		err := m.createErr
		m.createErr = nil
		if errors.Is(err, domain.ErrDuplicateJoinRequest) && m.racedPending != nil {
			if m.pendingJoin == nil {
				m.pendingJoin = make(map[string]*domain.Notification)
			}
			m.pendingJoin[memberKey(n.EventID, n.SenderID)] = m.racedPending
		}
		return err
	}
	n.ID = "n-created"
	m.created = append(m.created, n)
	return nil
}

func (m *mockNotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	n, ok := m.notifications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return n, nil
}

func (m *mockNotificationRepository) ListByRecipientID(ctx context.Context, recipientID string, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	feed := make([]*domain.Notification, len(m.feed))
	copy(feed, m.feed)
	return feed, len(feed), nil
}

func (m *mockNotificationRepository) setFeed(feed []*domain.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feed = feed
}

func (m *mockNotificationRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.notifications[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.notifications, id)
	return nil
}

func (m *mockNotificationRepository) GetPendingJoinRequest(ctx context.Context, eventID, senderID string) (*domain.Notification, error) {
	if m.err != nil {
		return nil, m.err
	}
	n, ok := m.pendingJoin[memberKey(eventID, senderID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return n, nil
}

func (m *mockNotificationRepository) HasRejectedJoinRequest(ctx context.Context, eventID, senderID string) (bool, error) {
	return m.rejectedJoin[memberKey(eventID, senderID)], nil
}

func (m *mockNotificationRepository) AcceptJoinRequest(ctx context.Context, notificationID, eventID, senderID string) error {
	if len(m.acceptResults) > 0 {
		err := m.acceptResults[0]
		m.acceptResults = m.acceptResults[1:]
		if err != nil {
			return err
		}
	}
	if n, ok := m.notifications[notificationID]; ok {
		n.Disposition = domain.DispositionAccepted
	}
	return nil
}

func (m *mockNotificationRepository) Reject(ctx context.Context, notificationID string) error {
	n, ok := m.notifications[notificationID]
	if !ok || n.Disposition != domain.DispositionPending {
		return domain.ErrNotFound
	}
	n.Disposition = domain.DispositionRejected
	return nil
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, recipientID string, ids []string) error {
	m.markReadCalls++
	return m.err
}

type mockInvitationRepository struct {
	invitations    map[string]*domain.Invitation
	pendingByEvent map[string]*domain.Invitation
	nonTerminal    []string
	acceptErr      error
	createPairErr  error
	createBatchErr error
	listErr        error

	accepted     []string
	declined     []string
	batchedInvs  []*domain.Invitation
	pairedNotifs []*domain.Notification
}

func (m *mockInvitationRepository) CreatePair(ctx context.Context, inv *domain.Invitation, n *domain.Notification) error {
	if m.createPairErr != nil {
		return m.createPairErr
	}
	n.InvitationID = inv.ID
	m.pairedNotifs = append(m.pairedNotifs, n)
	return nil
}

func (m *mockInvitationRepository) CreateBatch(ctx context.Context, invs []*domain.Invitation, ns []*domain.Notification) error {
	if m.createBatchErr != nil {
		return m.createBatchErr
	}
	m.batchedInvs = append(m.batchedInvs, invs...)
	m.pairedNotifs = append(m.pairedNotifs, ns...)
	return nil
}

func (m *mockInvitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	inv, ok := m.invitations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func (m *mockInvitationRepository) Accept(ctx context.Context, invitationID string) error {
	if m.acceptErr != nil {
		return m.acceptErr
	}
	m.accepted = append(m.accepted, invitationID)
	if inv, ok := m.invitations[invitationID]; ok {
		inv.Disposition = domain.InvitationAccepted
	}
	return nil
}

func (m *mockInvitationRepository) Decline(ctx context.Context, invitationID string) error {
	m.declined = append(m.declined, invitationID)
	if inv, ok := m.invitations[invitationID]; ok {
		inv.Disposition = domain.InvitationDeclined
	}
	return nil
}

func (m *mockInvitationRepository) HasNonTerminal(ctx context.Context, eventID, inviteeID string) (bool, error) {
	for _, id := range m.nonTerminal {
		if id == inviteeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockInvitationRepository) GetPendingByEventAndInvitee(ctx context.Context, eventID, inviteeID string) (*domain.Invitation, error) {
	inv, ok := m.pendingByEvent[memberKey(eventID, inviteeID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func (m *mockInvitationRepository) ListNonTerminalInvitees(ctx context.Context, eventID string, inviteeIDs []string) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	conflicting := []string{}
	for _, id := range inviteeIDs {
		for _, nt := range m.nonTerminal {
			if id == nt {
				conflicting = append(conflicting, id)
			}
		}
	}
	return conflicting, nil
}

type mockNotificationService struct {
	pending       bool
	rejected      bool
	createErr     error
	createdEvents []string
}

func (m *mockNotificationService) CreateJoinRequest(ctx context.Context, event *domain.Event, requesterID string) (*domain.Notification, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.createdEvents = append(m.createdEvents, event.ID)
	return domain.NewJoinRequestNotification(event.ID, requesterID, event.CreatorID, "msg", event.CreatedAt), nil
}

func (m *mockNotificationService) AcceptJoinRequest(ctx context.Context, notificationID, eventID, actorID string) error {
	return nil
}

func (m *mockNotificationService) RejectJoinRequest(ctx context.Context, notificationID, eventID, actorID string) error {
	return nil
}

func (m *mockNotificationService) MarkMultipleAsRead(ctx context.Context, recipientID string, ids []string) error {
	return nil
}

func (m *mockNotificationService) Dismiss(ctx context.Context, notificationID, actorID string) error {
	return nil
}

func (m *mockNotificationService) ListByRecipient(ctx context.Context, recipientID string, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	return nil, 0, nil
}

func (m *mockNotificationService) Subscribe(ctx context.Context, recipientID string) (<-chan []*domain.Notification, error) {
	return nil, nil
}

func (m *mockNotificationService) HasPendingJoinRequest(ctx context.Context, eventID, userID string) (bool, error) {
	return m.pending, nil
}

func (m *mockNotificationService) HasRejectedJoinRequest(ctx context.Context, eventID, userID string) (bool, error) {
	return m.rejected, nil
}
