package controllers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"gatherly/internal/delivery/http/helpers"
	"gatherly/internal/domain"
)

type NotificationController struct {
	Logger  *slog.Logger
	Service domain.NotificationService
}

func NewNotificationController(logger *slog.Logger, svc domain.NotificationService) *NotificationController {
	return &NotificationController{
		Logger:  logger,
		Service: svc,
	}
}

func pathNotificationID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("notificationID")
	if id == "" || !uuidRegex.MatchString(id) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid notificationID")
		return "", false
	}
	return id, true
}

// ListNotificationsResponse is the data payload for GET /notifications.
type ListNotificationsResponse struct {
	Notifications []*domain.Notification `json:"notifications"`
	Meta          helpers.PaginationMeta `json:"meta"`
}

// ListNotifications godoc
// @Summary List the caller's notifications, newest first
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data: ListNotificationsResponse"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /notifications [get]
func (c *NotificationController) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)

	notifications, total, err := c.Service.ListByRecipient(r.Context(), userID, params)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListNotificationsResponse{
		Notifications: notifications,
		Meta:          helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// StreamNotifications godoc
// @Summary Stream the caller's notification feed as server-sent events
// @Description Emits a newest-first snapshot of the feed whenever it changes. The stream stays open until the client disconnects; reconnecting starts a fresh stream.
// @Tags notifications
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {string} string "SSE stream of notification snapshots"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /notifications/stream [get]
func (c *NotificationController) StreamNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "streaming unsupported")
		return
	}

	updates, err := c.Service.Subscribe(r.Context(), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for snapshot := range updates {
		payload, err := json.Marshal(snapshot)
		if err != nil {
			c.Logger.ErrorContext(r.Context(), "encode feed snapshot", "err", err)
			return
		}
		fmt.Fprintf(w, "event: notifications\ndata: %s\n\n", payload)
		flusher.Flush()
	}
}

// JoinRequestActionRequest is the request body for accepting or rejecting a join request.
type JoinRequestActionRequest struct {
	EventID string `json:"event_id"`
}

// Validate implements helpers.Validator.
func (req *JoinRequestActionRequest) Validate() []string {
	if req.EventID == "" || !uuidRegex.MatchString(req.EventID) {
		return []string{"event_id must be a valid UUID"}
	}
	return nil
}

// AcceptJoinRequest godoc
// @Summary Accept a pending join request
// @Description Adds the requester to the event and marks the notification accepted, in one commit. The attendee limit is enforced inside that commit: when the event is full, nothing changes and 409 is returned.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param notificationID path string true "Notification ID (UUID)"
// @Param body body controllers.JoinRequestActionRequest true "Event the request belongs to"
// @Success 204 "Accepted"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (attendee limit reached)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /notifications/{notificationID}/accept [post]
func (c *NotificationController) AcceptJoinRequest(w http.ResponseWriter, r *http.Request) {
	notificationID, ok := pathNotificationID(w, r)
	if !ok {
		return
	}
	var req JoinRequestActionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := c.Service.AcceptJoinRequest(r.Context(), notificationID, req.EventID, userID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RejectJoinRequest godoc
// @Summary Reject a pending join request
// @Description Marks the notification rejected. The event is not touched; the decision is final.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param notificationID path string true "Notification ID (UUID)"
// @Param body body controllers.JoinRequestActionRequest true "Event the request belongs to"
// @Success 204 "Rejected"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /notifications/{notificationID}/reject [post]
func (c *NotificationController) RejectJoinRequest(w http.ResponseWriter, r *http.Request) {
	notificationID, ok := pathNotificationID(w, r)
	if !ok {
		return
	}
	var req JoinRequestActionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := c.Service.RejectJoinRequest(r.Context(), notificationID, req.EventID, userID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkReadRequest is the request body for POST /notifications/read.
type MarkReadRequest struct {
	IDs []string `json:"ids"`
}

// Validate implements helpers.Validator.
func (req *MarkReadRequest) Validate() []string {
	if len(req.IDs) == 0 {
		return []string{"ids is required"}
	}
	for _, id := range req.IDs {
		if !uuidRegex.MatchString(id) {
			return []string{"ids must be valid UUIDs"}
		}
	}
	return nil
}

// MarkRead godoc
// @Summary Mark notifications as read
// @Description Sets is_read on the caller's listed notifications. Join requests are skipped: they stay actionable until resolved.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.MarkReadRequest true "Notification ids"
// @Success 204 "Marked"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /notifications/read [post]
func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req MarkReadRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := c.Service.MarkMultipleAsRead(r.Context(), userID, req.IDs); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DismissNotification godoc
// @Summary Dismiss a notification
// @Description Deletes the notification. Only its recipient may dismiss it.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param notificationID path string true "Notification ID (UUID)"
// @Success 204 "Dismissed"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /notifications/{notificationID} [delete]
func (c *NotificationController) DismissNotification(w http.ResponseWriter, r *http.Request) {
	notificationID, ok := pathNotificationID(w, r)
	if !ok {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := c.Service.Dismiss(r.Context(), notificationID, userID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
