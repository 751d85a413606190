// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

// Package main is the transcript service: it tracks online meetings from
// calendar change notifications, polls for their transcripts on a bounded
// retry budget, archives what it finds, and keeps the change notification
// subscriptions renewed.
package main

import (
	"context"
	_ "expvar"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/meetingharvest/transcript-service/internal/handlers"
	"github.com/meetingharvest/transcript-service/internal/infrastructure/messaging"
	"github.com/meetingharvest/transcript-service/internal/infrastructure/store"
	"github.com/meetingharvest/transcript-service/internal/logging"
	"github.com/meetingharvest/transcript-service/internal/scheduler"
	"github.com/meetingharvest/transcript-service/internal/service"
)

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Connect to the registry and apply migrations.
	db, err := setupStore(ctx, env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up registry store")
		os.Exit(1)
	}

	// Setup NATS connection
	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	graphClient := setupGraphClient(env)

	contentStore, err := setupContentStore(ctx, env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up archive store")
		return
	}

	notesGenerator, err := setupNotesGenerator(env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up notes generator")
		return
	}

	// Initialize repositories
	meetingRepository := store.NewMeetingRepository(db)
	transcriptRepository := store.NewTranscriptRepository(db)
	userRepository := store.NewUserRepository(db)

	// Initialize services
	serviceConfig := service.ServiceConfig{
		MaxTranscriptRetries: env.MaxTranscriptRetries,
		InterMeetingDelay:    env.InterMeetingDelay,
		RenewalWorkers:       env.RenewalWorkers,
		NotificationURL:      env.Webhook.NotificationURL,
		ClientState:          env.Webhook.ClientState,
		EmailDomain:          env.EmailDomain,
	}
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	notificationService := service.NewNotificationService(
		graphClient,
		meetingRepository,
		messageBuilder,
		serviceConfig,
	)
	transcriptService := service.NewTranscriptService(
		graphClient,
		meetingRepository,
		transcriptRepository,
		contentStore,
		notesGenerator,
		messageBuilder,
		serviceConfig,
	)
	renewalService := service.NewRenewalService(
		graphClient,
		userRepository,
		messageBuilder,
		serviceConfig,
	)
	userSyncService := service.NewUserSyncService(
		graphClient,
		userRepository,
		serviceConfig,
	)

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(notificationService, env.Webhook.ClientState)
	healthHandler := handlers.NewHealthHandler(webhookHandler, db, natsConn)

	httpServer := setupHTTPServer(flags, webhookHandler, healthHandler, &gracefulCloseWG)

	// Start the periodic drivers.
	drivers := []*scheduler.Scheduler{
		scheduler.New("transcript-retrieval", env.TranscriptPollInterval, transcriptService.Tick),
		scheduler.New("subscription-renewal", env.RenewalInterval, renewalService.Tick),
		scheduler.New("directory-user-sync", env.UserSyncInterval, userSyncService.Tick),
	}
	for _, driver := range drivers {
		gracefulCloseWG.Add(1)
		go func(driver *scheduler.Scheduler) {
			defer gracefulCloseWG.Done()
			driver.Run(ctx)
		}(driver)
	}

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, db, &gracefulCloseWG, cancel)
}
