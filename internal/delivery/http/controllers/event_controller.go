package controllers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"gatherly/internal/delivery/http/helpers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// pathEventID extracts and validates the eventID path value. On failure it
// writes a 400 and returns false.
func pathEventID(w http.ResponseWriter, r *http.Request) (string, bool) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return "", false
	}
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return "", false
	}
	return eventID, true
}

// callerID extracts the authenticated user ID. On failure it writes a 401 and
// returns false.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	ActivityType  string    `json:"activity_type"`
	Inquiry       string    `json:"inquiry"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	IsPrivate     bool      `json:"is_private"`
	AttendeeLimit *int      `json:"attendee_limit,omitempty"`
}

// Validate implements helpers.Validator.
func (req *CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.ActivityType) == "" {
		errs = append(errs, "activity_type is required")
	}
	if req.ScheduledAt.IsZero() {
		errs = append(errs, "scheduled_at is required")
	}
	if req.AttendeeLimit != nil && *req.AttendeeLimit < 1 {
		errs = append(errs, "attendee_limit must be positive")
	}
	return errs
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates a new event owned by the authenticated user, with empty member and like sets.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateEventRequest true "Event fields"
// @Success 201 {object} helpers.APIResponse "data: Event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	event, err := c.Service.CreateEvent(r.Context(), domain.EventDraft{
		ActivityType:  req.ActivityType,
		Inquiry:       req.Inquiry,
		ScheduledAt:   req.ScheduledAt,
		IsPrivate:     req.IsPrivate,
		AttendeeLimit: req.AttendeeLimit,
	}, userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEvent godoc
// @Summary Get an event with its member and like sets
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data: EventDetail"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathEventID(w, r)
	if !ok {
		return
	}
	if _, ok := callerID(w, r); !ok {
		return
	}

	detail, err := c.Service.GetEventByID(r.Context(), eventID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, detail)
}

// ListMyEventsResponse is the data payload for GET /events.
type ListMyEventsResponse struct {
	Events []*domain.Event        `json:"events"`
	Meta   helpers.PaginationMeta `json:"meta"`
}

// ListMyEvents godoc
// @Summary List events created by the authenticated user
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data: ListMyEventsResponse"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)

	events, total, err := c.Service.ListEventsByCreator(r.Context(), userID, params)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListMyEventsResponse{
		Events: events,
		Meta:   helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event. Only the creator may delete it.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204 "Deleted"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathEventID(w, r)
	if !ok {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := c.Service.DeleteEvent(r.Context(), eventID, userID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleLikeRequest is the request body for PUT /events/{eventID}/like.
// The client sends the state it wants, so a retried request replays the same
// write instead of flipping twice.
type ToggleLikeRequest struct {
	Liked bool `json:"liked"`
}

// ToggleLikeResponse is the data payload for PUT /events/{eventID}/like.
type ToggleLikeResponse struct {
	Liked bool `json:"liked"`
}

// ToggleLike godoc
// @Summary Set or clear the caller's like on an event
// @Description Applies the desired like state as an idempotent set write and returns the resulting membership.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.ToggleLikeRequest true "Desired like state"
// @Success 200 {object} helpers.APIResponse "data: ToggleLikeResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/like [put]
func (c *EventController) ToggleLike(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathEventID(w, r)
	if !ok {
		return
	}
	var req ToggleLikeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	liked, err := c.Service.ToggleLike(r.Context(), eventID, userID, req.Liked)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ToggleLikeResponse{Liked: liked})
}

// RequestOrLeaveResponse is the data payload for POST /events/{eventID}/membership.
type RequestOrLeaveResponse struct {
	Outcome domain.JoinOutcome `json:"outcome"`
}

// RequestOrLeave godoc
// @Summary Request to join, join via invitation, or leave an event
// @Description Members leave. Invited users join directly, resolving their invitation. Others get a pending join request addressed to the creator, unless one is already pending or was rejected.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data: RequestOrLeaveResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (attendee limit reached)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/membership [post]
func (c *EventController) RequestOrLeave(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathEventID(w, r)
	if !ok {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	outcome, err := c.Service.RequestOrLeave(r.Context(), eventID, userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RequestOrLeaveResponse{Outcome: outcome})
}
