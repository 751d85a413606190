// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/meetingharvest/transcript-service/internal/logging"
	"github.com/meetingharvest/transcript-service/pkg/constants"
)

// flags are the command line flags for the transcript service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the transcript service.
type environment struct {
	Port        string
	DatabaseURL string
	NatsURL     string
	Graph       graphConfig
	Archive     archiveConfig
	Notes       notesConfig
	Webhook     webhookConfig
	EmailDomain string

	TranscriptPollInterval time.Duration
	RenewalInterval        time.Duration
	UserSyncInterval       time.Duration

	MaxTranscriptRetries int
	InterMeetingDelay    time.Duration
	RenewalWorkers       int
}

// graphConfig holds directory API credentials.
type graphConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
}

// archiveConfig holds transcript archive storage configuration.
type archiveConfig struct {
	Region string
	Bucket string
	Prefix string
}

// notesConfig holds the optional meeting-notes generation configuration.
type notesConfig struct {
	APIKey string
	Model  string
}

// webhookConfig holds the outward-facing webhook registration values.
type webhookConfig struct {
	NotificationURL string
	ClientState     string
}

// parseFlags parses command line flags for the transcript service
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the transcript service
func parseEnv() environment {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		slog.Error("DATABASE_URL environment variable is required but not set")
		os.Exit(1)
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = nats.DefaultURL
	}

	notificationURL := os.Getenv("WEBHOOK_NOTIFICATION_URL")
	if notificationURL == "" {
		slog.Error("WEBHOOK_NOTIFICATION_URL environment variable is required but not set")
		os.Exit(1)
	}
	if _, err := url.Parse(notificationURL); err != nil {
		slog.With(logging.ErrKey, err, "url", notificationURL).Error("invalid WEBHOOK_NOTIFICATION_URL provided")
		os.Exit(1)
	}

	return environment{
		Port:        port,
		DatabaseURL: databaseURL,
		NatsURL:     natsURL,
		Graph:       parseGraphConfig(),
		Archive:     parseArchiveConfig(),
		Notes: notesConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  os.Getenv("OPENAI_MODEL"),
		},
		Webhook: webhookConfig{
			NotificationURL: notificationURL,
			ClientState:     os.Getenv("WEBHOOK_CLIENT_STATE"),
		},
		EmailDomain: os.Getenv("EMAIL_DOMAIN"),

		TranscriptPollInterval: parseDurationEnv("TRANSCRIPT_POLL_INTERVAL", constants.DefaultTranscriptPollInterval),
		RenewalInterval:        parseDurationEnv("RENEWAL_INTERVAL", constants.DefaultRenewalInterval),
		UserSyncInterval:       parseDurationEnv("USER_SYNC_INTERVAL", constants.DefaultUserSyncInterval),

		MaxTranscriptRetries: parseIntEnv("MAX_TRANSCRIPT_RETRIES", constants.DefaultMaxTranscriptRetries),
		InterMeetingDelay:    parseDurationEnv("INTER_MEETING_DELAY", constants.DefaultInterMeetingDelay),
		RenewalWorkers:       parseIntEnv("RENEWAL_WORKERS", constants.DefaultRenewalWorkers),
	}
}

// parseGraphConfig parses directory API credentials from environment variables
func parseGraphConfig() graphConfig {
	tenantID := os.Getenv("GRAPH_TENANT_ID")
	if tenantID == "" {
		slog.Error("GRAPH_TENANT_ID environment variable is required but not set")
		os.Exit(1)
	}

	clientID := os.Getenv("GRAPH_CLIENT_ID")
	if clientID == "" {
		slog.Error("GRAPH_CLIENT_ID environment variable is required but not set")
		os.Exit(1)
	}

	clientSecret := os.Getenv("GRAPH_CLIENT_SECRET")
	if clientSecret == "" {
		slog.Error("GRAPH_CLIENT_SECRET environment variable is required but not set")
		os.Exit(1)
	}

	return graphConfig{
		TenantID:     tenantID,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}
}

// parseArchiveConfig parses archive storage configuration from environment variables
func parseArchiveConfig() archiveConfig {
	bucket := os.Getenv("ARCHIVE_S3_BUCKET")
	if bucket == "" {
		slog.Error("ARCHIVE_S3_BUCKET environment variable is required but not set")
		os.Exit(1)
	}

	region := os.Getenv("ARCHIVE_S3_REGION")
	if region == "" {
		region = "us-west-2"
	}

	return archiveConfig{
		Region: region,
		Bucket: bucket,
		Prefix: os.Getenv("ARCHIVE_S3_PREFIX"),
	}
}

func parseIntEnv(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		slog.With(logging.ErrKey, err, "name", name, "value", raw).Error("invalid integer, using default")
		return fallback
	}
	return n
}

func parseDurationEnv(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.With(logging.ErrKey, err, "name", name, "value", raw).Error("invalid duration, using default")
		return fallback
	}
	return d
}
