// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/meetingharvest/transcript-service/internal/domain"
	"github.com/meetingharvest/transcript-service/internal/infrastructure/graph/api"
	"github.com/meetingharvest/transcript-service/internal/infrastructure/notes/openai"
	"github.com/meetingharvest/transcript-service/internal/infrastructure/storage/s3"
	"github.com/meetingharvest/transcript-service/internal/infrastructure/store"
	"github.com/meetingharvest/transcript-service/internal/logging"
)

// setupStore connects to the registry database and applies pending
// migrations.
func setupStore(ctx context.Context, env environment) (*sql.DB, error) {
	db, err := store.Connect(ctx, env.DatabaseURL, store.DefaultOptions())
	if err != nil {
		return nil, err
	}

	if err := store.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// setupGraphClient builds the directory API client from credentials.
func setupGraphClient(env environment) *api.Client {
	return api.NewClient(api.Config{
		TenantID:     env.Graph.TenantID,
		ClientID:     env.Graph.ClientID,
		ClientSecret: env.Graph.ClientSecret,
	})
}

// setupContentStore builds the transcript archive store.
func setupContentStore(ctx context.Context, env environment) (domain.ContentStore, error) {
	return s3.New(ctx, env.Archive.Region, env.Archive.Bucket, env.Archive.Prefix)
}

// setupNotesGenerator builds the optional meeting-notes generator. Notes are
// disabled when no API key is configured.
func setupNotesGenerator(env environment) (domain.NotesGenerator, error) {
	if env.Notes.APIKey == "" {
		slog.Info("meeting notes generation disabled: no API key configured")
		return nil, nil
	}
	return openai.NewClient(openai.Config{
		APIKey: env.Notes.APIKey,
		Model:  env.Notes.Model,
	})
}

// setupNATS connects to the NATS server used for lifecycle messages. The
// connection participates in graceful shutdown: a close outside of shutdown
// brings the process down so the orchestrator restarts it.
func setupNATS(ctx context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	gracefulCloseWG.Add(1)

	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.DrainTimeout(25*time.Second),
		nats.ConnectHandler(func(nc *nats.Conn) {
			slog.With("nats_url", nc.ConnectedUrlRedacted()).Info("connected to NATS")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			slog.With(logging.ErrKey, err).Error("NATS error")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			slog.Info("NATS connection closed")
			gracefulCloseWG.Done()
			if ctx.Err() == nil {
				// Unexpected close: trigger shutdown of the whole process.
				done <- os.Interrupt
			}
		}),
	)
	if err != nil {
		gracefulCloseWG.Done()
		return nil, err
	}

	return natsConn, nil
}

// gracefulShutdown drains in-flight work before exiting: stop accepting HTTP
// requests, stop the drivers, drain NATS, and wait for everything to settle.
func gracefulShutdown(httpServer *http.Server, natsConn *nats.Conn, db *sql.DB, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down http server")
	}
	gracefulCloseWG.Done()

	// Stop the periodic drivers.
	cancel()

	if natsConn != nil && !natsConn.IsClosed() {
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
		}
	}

	gracefulCloseWG.Wait()

	if db != nil {
		if err := db.Close(); err != nil {
			slog.With(logging.ErrKey, err).Error("error closing database")
		}
	}

	slog.Info("shutdown complete")
}
