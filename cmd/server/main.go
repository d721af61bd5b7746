package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"gatherly/config"
	"gatherly/internal/adapters/auth"
	"gatherly/internal/adapters/push"
	httpdelivery "gatherly/internal/delivery/http"
	"gatherly/internal/delivery/http/controllers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/repository/postgres"
	"gatherly/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ping database: %v", err)
	}
	if err := postgres.RunMigrations(ctx, db); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	eventRepo := postgres.NewEventRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)

	dispatcher, err := push.NewDispatcher(push.DispatcherConfig{
		Provider:       cfg.PushProvider,
		FromAddress:    cfg.PushFromAddress,
		FromName:       cfg.PushFromName,
		GatewayAddress: cfg.PushGatewayAddress,
		SES: push.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
	})
	if err != nil {
		log.Fatalf("create dispatcher: %v", err)
	}

	notificationSvc := services.NewNotificationService(notificationRepo, eventRepo, dispatcher,
		logger, cfg.NotificationPollInterval, cfg.RequestTimeout)
	invitationSvc := services.NewInvitationService(invitationRepo, eventRepo, dispatcher,
		logger, cfg.RequestTimeout)
	batchInviteSvc := services.NewBatchInviteService(invitationRepo, eventRepo, dispatcher,
		logger, cfg.RequestTimeout)
	eventSvc := services.NewEventService(eventRepo, invitationRepo, notificationSvc, cfg.RequestTimeout)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	eventController := controllers.NewEventController(logger, eventSvc)
	invitationController := controllers.NewInvitationController(logger, invitationSvc, batchInviteSvc)
	notificationController := controllers.NewNotificationController(logger, notificationSvc)

	mux := httpdelivery.NewRouter(eventController, invitationController, notificationController, verifier, logger)
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
