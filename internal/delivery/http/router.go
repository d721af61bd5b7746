package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"gatherly/internal/delivery/http/controllers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Every API route requires a verified bearer token.
func NewRouter(
	eventController *controllers.EventController,
	invitationController *controllers.InvitationController,
	notificationController *controllers.NotificationController,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Events
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("GET /events", auth(eventController.ListMyEvents))
	mux.HandleFunc("GET /events/{eventID}", auth(eventController.GetEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(eventController.DeleteEvent))
	mux.HandleFunc("PUT /events/{eventID}/like", auth(eventController.ToggleLike))
	mux.HandleFunc("POST /events/{eventID}/membership", auth(eventController.RequestOrLeave))

	// Invitations
	mux.HandleFunc("POST /events/{eventID}/invitations", auth(invitationController.SendInvitation))
	mux.HandleFunc("POST /events/{eventID}/invitations/batch", auth(invitationController.BatchInvite))
	mux.HandleFunc("POST /invitations/{invitationID}/accept", auth(invitationController.AcceptInvitation))
	mux.HandleFunc("POST /invitations/{invitationID}/decline", auth(invitationController.DeclineInvitation))

	// Notifications
	mux.HandleFunc("GET /notifications", auth(notificationController.ListNotifications))
	mux.HandleFunc("GET /notifications/stream", auth(notificationController.StreamNotifications))
	mux.HandleFunc("POST /notifications/read", auth(notificationController.MarkRead))
	mux.HandleFunc("POST /notifications/{notificationID}/accept", auth(notificationController.AcceptJoinRequest))
	mux.HandleFunc("POST /notifications/{notificationID}/reject", auth(notificationController.RejectJoinRequest))
	mux.HandleFunc("DELETE /notifications/{notificationID}", auth(notificationController.DismissNotification))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
