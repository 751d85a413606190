// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/meetingharvest/transcript-service/internal/domain"
	"github.com/meetingharvest/transcript-service/internal/domain/models"
)

// UserRepository implements domain.UserRepository over Postgres.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a user repository over the shared pool.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ domain.UserRepository = (*UserRepository)(nil)

// ListEligibleUsers returns users flagged as able to host meetings.
func (r *UserRepository) ListEligibleUsers(ctx context.Context) ([]*models.User, error) {
	const query = `
SELECT user_id, email, can_host_meetings, last_validated_at, subscription_expires_at
FROM users
WHERE can_host_meetings
ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.NewStoreError("failed to list eligible users", err)
	}
	defer func() { _ = rows.Close() }()

	var users []*models.User
	for rows.Next() {
		var u models.User
		var lastValidatedAt, subscriptionExpiresAt sql.NullTime
		if err := rows.Scan(&u.ID, &u.Email, &u.CanHostMeetings, &lastValidatedAt, &subscriptionExpiresAt); err != nil {
			return nil, domain.NewStoreError("failed to scan user row", err)
		}
		if lastValidatedAt.Valid {
			u.LastValidatedAt = &lastValidatedAt.Time
		}
		if subscriptionExpiresAt.Valid {
			u.SubscriptionExpiresAt = &subscriptionExpiresAt.Time
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("failed to read eligible users", err)
	}

	return users, nil
}

// UpsertUser inserts or refreshes a user row keyed by user ID. The directory
// sync owns email and eligibility; the validation timestamps are owned by the
// renewal driver and left alone here.
func (r *UserRepository) UpsertUser(ctx context.Context, user *models.User) error {
	const query = `
INSERT INTO users (user_id, email, can_host_meetings)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE SET
	email             = EXCLUDED.email,
	can_host_meetings = EXCLUDED.can_host_meetings`

	_, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.CanHostMeetings)
	if err != nil {
		return domain.NewStoreError("failed to upsert user", err)
	}
	return nil
}

// BulkUpdateValidation stamps lastValidatedAt/subscriptionExpiresAt for every
// eligible user in a single statement, regardless of per-user renewal
// outcomes in the batch.
func (r *UserRepository) BulkUpdateValidation(ctx context.Context, validatedAt, expiresAt time.Time) error {
	const query = `
UPDATE users
SET last_validated_at = $1,
    subscription_expires_at = $2
WHERE can_host_meetings`

	_, err := r.db.ExecContext(ctx, query, validatedAt, expiresAt)
	if err != nil {
		return domain.NewStoreError("failed to bulk update validation timestamps", err)
	}
	return nil
}
