package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"gatherly/internal/delivery/http/helpers"
	"gatherly/internal/domain"
)

type InvitationController struct {
	Logger       *slog.Logger
	Service      domain.InvitationService
	BatchService domain.BatchInviteService
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService, batchSvc domain.BatchInviteService) *InvitationController {
	return &InvitationController{
		Logger:       logger,
		Service:      svc,
		BatchService: batchSvc,
	}
}

// SendInvitationRequest is the request body for POST /events/{eventID}/invitations.
type SendInvitationRequest struct {
	InviteeID string `json:"invitee_id"`
}

// Validate implements helpers.Validator.
func (req *SendInvitationRequest) Validate() []string {
	req.InviteeID = strings.TrimSpace(req.InviteeID)
	if req.InviteeID == "" {
		return []string{"invitee_id is required"}
	}
	return nil
}

// SendInvitation godoc
// @Summary Invite a user to an event
// @Description Creates an invitation and its paired notification atomically. Fails with 409 when the invitee already holds a pending or accepted invitation.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.SendInvitationRequest true "Invitee"
// @Success 201 {object} helpers.APIResponse "data: Invitation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invitations [post]
func (c *InvitationController) SendInvitation(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathEventID(w, r)
	if !ok {
		return
	}
	var req SendInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	inv, err := c.Service.SendInvitation(r.Context(), eventID, userID, req.InviteeID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, inv)
}

// BatchInviteRequest is the request body for POST /events/{eventID}/invitations/batch.
type BatchInviteRequest struct {
	InviteeIDs []string `json:"invitee_ids"`
}

// Validate implements helpers.Validator.
func (req *BatchInviteRequest) Validate() []string {
	if len(req.InviteeIDs) == 0 {
		return []string{"invitee_ids is required"}
	}
	return nil
}

// BatchInviteResponse is the data payload for POST /events/{eventID}/invitations/batch.
type BatchInviteResponse struct {
	InvitationIDs []string `json:"invitation_ids"`
}

// BatchInvite godoc
// @Summary Invite several users to an event at once
// @Description Creates one invitation and one paired notification per invitee as a single atomic unit. If any invitee already holds an open invitation, nothing is created and the failing ids are reported.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.BatchInviteRequest true "Invitees"
// @Success 201 {object} helpers.APIResponse "data: BatchInviteResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (failing invitee ids in message)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invitations/batch [post]
func (c *InvitationController) BatchInvite(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathEventID(w, r)
	if !ok {
		return
	}
	var req BatchInviteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	ids, err := c.BatchService.CreateInvitationsInBatch(r.Context(), eventID, req.InviteeIDs, userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, BatchInviteResponse{InvitationIDs: ids})
}

func pathInvitationID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("invitationID")
	if id == "" || !uuidRegex.MatchString(id) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid invitationID")
		return "", false
	}
	return id, true
}

// AcceptInvitation godoc
// @Summary Accept an invitation
// @Description Marks the invitation and its paired notification accepted and joins the invitee, all in one commit. Fails with 409 when the event is full.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID (UUID)"
// @Success 204 "Accepted"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (attendee limit reached)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID}/accept [post]
func (c *InvitationController) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInvitationID(w, r)
	if !ok {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := c.Service.AcceptInvitation(r.Context(), id, userID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeclineInvitation godoc
// @Summary Decline an invitation
// @Description Marks the invitation declined and its paired notification rejected. The event is not touched.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID (UUID)"
// @Success 204 "Declined"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID}/decline [post]
func (c *InvitationController) DeclineInvitation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInvitationID(w, r)
	if !ok {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := c.Service.DeclineInvitation(r.Context(), id, userID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
