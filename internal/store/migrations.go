package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS challenges (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		challenge_type TEXT NOT NULL,
		status TEXT NOT NULL,
		start_at TIMESTAMPTZ NOT NULL,
		end_at TIMESTAMPTZ NOT NULL,
		total_workouts INTEGER NOT NULL DEFAULT 30,
		base_points_per_workout INTEGER NOT NULL DEFAULT 10,
		daily_challenge_points INTEGER NOT NULL DEFAULT 0,
		created_by TEXT NOT NULL,
		is_daily_challenge BOOLEAN NOT NULL DEFAULT FALSE,
		daily_challenges BOOLEAN NOT NULL DEFAULT FALSE,
		parent_challenge_id TEXT REFERENCES challenges(id) ON DELETE CASCADE,
		current_creator_id TEXT,
		next_rotation_date TIMESTAMPTZ,
		rotation_interval_days INTEGER NOT NULL DEFAULT 1,
		max_posts_per_day INTEGER NOT NULL DEFAULT 1,
		max_posts_per_week INTEGER NOT NULL DEFAULT 5,
		track_weight BOOLEAN NOT NULL DEFAULT FALSE,
		track_meals BOOLEAN NOT NULL DEFAULT FALSE,
		require_weekly_weigh_in BOOLEAN NOT NULL DEFAULT FALSE,
		weigh_in_day TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_challenges_status_end ON challenges(status, end_at)`,
	`CREATE TABLE IF NOT EXISTS challenge_participants (
		id TEXT PRIMARY KEY,
		challenge_id TEXT NOT NULL REFERENCES challenges(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		status TEXT NOT NULL,
		points INTEGER NOT NULL DEFAULT 0,
		workouts_completed INTEGER NOT NULL DEFAULT 0,
		joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ,
		target_weight DOUBLE PRECISION,
		starting_weight DOUBLE PRECISION,
		current_weight DOUBLE PRECISION,
		calorie_goal INTEGER,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_participants_one_active
		ON challenge_participants(challenge_id, user_id) WHERE status = 'ACTIVE'`,
	`CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		post_type TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		measurement_data JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS post_challenges (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		challenge_id TEXT NOT NULL REFERENCES challenges(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		post_type TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL,
		validated BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_post_challenges_window
		ON post_challenges(challenge_id, user_id, timestamp)`,
	`CREATE TABLE IF NOT EXISTS reminder_schedules (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		challenge_id TEXT NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		time_preference TEXT NOT NULL,
		second_preference TEXT NOT NULL DEFAULT '',
		timezone TEXT NOT NULL DEFAULT 'UTC',
		repeat_daily BOOLEAN NOT NULL DEFAULT TRUE,
		next_scheduled TIMESTAMPTZ NOT NULL,
		last_sent TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminder_schedules(status, next_scheduled)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		data TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		failure_reason TEXT,
		sent_at TIMESTAMPTZ,
		read_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS device_tokens (
		user_id TEXT NOT NULL,
		token TEXT NOT NULL,
		platform TEXT NOT NULL,
		added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_used TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, token)
	)`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
