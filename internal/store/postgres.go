package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"sweatsyncAPI/internal/challenge"
	"sweatsyncAPI/internal/notification"
	"sweatsyncAPI/internal/query"
	"sweatsyncAPI/internal/reminder"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Connect opens a pool against databaseURL and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func where(filter query.Expr) (string, []any, error) {
	clause, args, err := query.Compile(filter, 1)
	if err != nil {
		return "", nil, fmt.Errorf("invalid filter: %w", err)
	}
	return " WHERE " + clause, args, nil
}

func expectRow(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- challenges ----

const challengeColumns = `id, title, description, challenge_type, status, start_at, end_at,
	total_workouts, base_points_per_workout, daily_challenge_points, created_by,
	is_daily_challenge, daily_challenges, parent_challenge_id,
	current_creator_id, next_rotation_date, rotation_interval_days,
	max_posts_per_day, max_posts_per_week,
	track_weight, track_meals, require_weekly_weigh_in, weigh_in_day,
	created_at, updated_at`

func scanChallenge(row pgx.Row) (*challenge.Challenge, error) {
	var c challenge.Challenge
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &c.ChallengeType, &c.Status, &c.StartAt, &c.EndAt,
		&c.TotalWorkouts, &c.BasePointsPerWorkout, &c.DailyChallengePoints, &c.CreatedBy,
		&c.IsDailyChallenge, &c.DailyChallenges, &c.ParentChallengeID,
		&c.CurrentCreatorID, &c.NextRotationDate, &c.RotationIntervalDays,
		&c.MaxPostsPerDay, &c.MaxPostsPerWeek,
		&c.TrackWeight, &c.TrackMeals, &c.RequireWeeklyWeighIn, &c.WeighInDay,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) GetChallenge(ctx context.Context, id string) (*challenge.Challenge, error) {
	row := s.db.QueryRow(ctx, `SELECT `+challengeColumns+` FROM challenges WHERE id = $1`, id)
	c, err := scanChallenge(row)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (s *PostgresStore) ListChallenges(ctx context.Context, filter query.Expr) ([]*challenge.Challenge, error) {
	clause, args, err := where(filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `SELECT `+challengeColumns+` FROM challenges`+clause+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	var out []*challenge.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateChallenge(ctx context.Context, c *challenge.Challenge) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO challenges (`+challengeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`,
		c.ID, c.Title, c.Description, c.ChallengeType, c.Status, c.StartAt, c.EndAt,
		c.TotalWorkouts, c.BasePointsPerWorkout, c.DailyChallengePoints, c.CreatedBy,
		c.IsDailyChallenge, c.DailyChallenges, c.ParentChallengeID,
		c.CurrentCreatorID, c.NextRotationDate, c.RotationIntervalDays,
		c.MaxPostsPerDay, c.MaxPostsPerWeek,
		c.TrackWeight, c.TrackMeals, c.RequireWeeklyWeighIn, c.WeighInDay,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert challenge: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateChallenge(ctx context.Context, c *challenge.Challenge) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE challenges SET
			title = $2, description = $3, challenge_type = $4, status = $5,
			start_at = $6, end_at = $7, total_workouts = $8,
			base_points_per_workout = $9, daily_challenge_points = $10,
			is_daily_challenge = $11, daily_challenges = $12, parent_challenge_id = $13,
			current_creator_id = $14, next_rotation_date = $15, rotation_interval_days = $16,
			max_posts_per_day = $17, max_posts_per_week = $18,
			track_weight = $19, track_meals = $20, require_weekly_weigh_in = $21,
			weigh_in_day = $22, updated_at = $23
		WHERE id = $1`,
		c.ID, c.Title, c.Description, c.ChallengeType, c.Status,
		c.StartAt, c.EndAt, c.TotalWorkouts,
		c.BasePointsPerWorkout, c.DailyChallengePoints,
		c.IsDailyChallenge, c.DailyChallenges, c.ParentChallengeID,
		c.CurrentCreatorID, c.NextRotationDate, c.RotationIntervalDays,
		c.MaxPostsPerDay, c.MaxPostsPerWeek,
		c.TrackWeight, c.TrackMeals, c.RequireWeeklyWeighIn,
		c.WeighInDay, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update challenge: %w", err)
	}
	return expectRow(tag)
}

func (s *PostgresStore) DeleteChallenge(ctx context.Context, id string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM reminder_schedules WHERE challenge_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete reminders: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM challenges WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}
	if err := expectRow(tag); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ---- participants ----

const participantColumns = `id, challenge_id, user_id, status, points, workouts_completed,
	joined_at, completed_at, target_weight, starting_weight, current_weight, calorie_goal, updated_at`

func scanParticipant(row pgx.Row) (*challenge.Participant, error) {
	var p challenge.Participant
	err := row.Scan(
		&p.ID, &p.ChallengeID, &p.UserID, &p.Status, &p.Points, &p.WorkoutsCompleted,
		&p.JoinedAt, &p.CompletedAt, &p.TargetWeight, &p.StartingWeight, &p.CurrentWeight,
		&p.CalorieGoal, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) GetParticipant(ctx context.Context, id string) (*challenge.Participant, error) {
	row := s.db.QueryRow(ctx, `SELECT `+participantColumns+` FROM challenge_participants WHERE id = $1`, id)
	p, err := scanParticipant(row)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *PostgresStore) GetActiveParticipant(ctx context.Context, challengeID, userID string) (*challenge.Participant, error) {
	clause, args, err := where(activeParticipantFilter(challengeID, userID))
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `SELECT `+participantColumns+` FROM challenge_participants`+clause+` LIMIT 2`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query participant: %w", err)
	}
	defer rows.Close()

	var found []*challenge.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		found = append(found, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(found) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return found[0], nil
	}
	return nil, ErrDuplicateParticipant
}

func (s *PostgresStore) ListParticipants(ctx context.Context, filter query.Expr) ([]*challenge.Participant, error) {
	clause, args, err := where(filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `SELECT `+participantColumns+` FROM challenge_participants`+clause+` ORDER BY joined_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var out []*challenge.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateParticipant(ctx context.Context, p *challenge.Participant) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO challenge_participants (`+participantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.ChallengeID, p.UserID, p.Status, p.Points, p.WorkoutsCompleted,
		p.JoinedAt, p.CompletedAt, p.TargetWeight, p.StartingWeight, p.CurrentWeight,
		p.CalorieGoal, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateParticipant
	}
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateParticipant(ctx context.Context, p *challenge.Participant) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE challenge_participants SET
			status = $2, points = $3, workouts_completed = $4, completed_at = $5,
			target_weight = $6, starting_weight = $7, current_weight = $8,
			calorie_goal = $9, updated_at = $10
		WHERE id = $1`,
		p.ID, p.Status, p.Points, p.WorkoutsCompleted, p.CompletedAt,
		p.TargetWeight, p.StartingWeight, p.CurrentWeight,
		p.CalorieGoal, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateParticipant
	}
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	return expectRow(tag)
}

func (s *PostgresStore) AddParticipantProgress(ctx context.Context, id string, points, target int, at time.Time) (*challenge.Participant, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE challenge_participants SET
			points = points + $2,
			workouts_completed = workouts_completed + 1,
			status = CASE WHEN workouts_completed + 1 >= $3 THEN $4 ELSE status END,
			completed_at = CASE WHEN workouts_completed + 1 >= $3 THEN COALESCE(completed_at, $5) ELSE completed_at END,
			updated_at = $5
		WHERE id = $1 AND status = $6
		RETURNING `+participantColumns,
		id, points, target, challenge.ParticipantCompleted, at, challenge.ParticipantActive,
	)
	p, err := scanParticipant(row)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *PostgresStore) DeleteParticipant(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM challenge_participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	return expectRow(tag)
}

// ---- posts ----

func (s *PostgresStore) GetPost(ctx context.Context, id string) (*challenge.Post, error) {
	var (
		p   challenge.Post
		raw []byte
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, post_type, content, measurement_data, created_at
		FROM posts WHERE id = $1`, id,
	).Scan(&p.ID, &p.UserID, &p.PostType, &p.Content, &raw, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if len(raw) > 0 {
		var md challenge.MeasurementData
		if err := json.Unmarshal(raw, &md); err != nil {
			return nil, fmt.Errorf("failed to decode measurement data: %w", err)
		}
		p.MeasurementData = &md
	}
	return &p, nil
}

func (s *PostgresStore) CreatePost(ctx context.Context, p *challenge.Post) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	var raw []byte
	if p.MeasurementData != nil {
		var err error
		raw, err = json.Marshal(p.MeasurementData)
		if err != nil {
			return fmt.Errorf("failed to encode measurement data: %w", err)
		}
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO posts (id, user_id, post_type, content, measurement_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.UserID, p.PostType, p.Content, raw, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

const postChallengeColumns = `id, post_id, challenge_id, user_id, post_type, timestamp, validated`

func (s *PostgresStore) CreatePostChallenge(ctx context.Context, pc *challenge.PostChallenge) error {
	if pc.ID == "" {
		pc.ID = uuid.NewString()
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO post_challenges (`+postChallengeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		pc.ID, pc.PostID, pc.ChallengeID, pc.UserID, pc.PostType, pc.Timestamp, pc.Validated,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post challenge: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListPostChallenges(ctx context.Context, filter query.Expr) ([]*challenge.PostChallenge, error) {
	clause, args, err := where(filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `SELECT `+postChallengeColumns+` FROM post_challenges`+clause+` ORDER BY timestamp, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list post challenges: %w", err)
	}
	defer rows.Close()

	var out []*challenge.PostChallenge
	for rows.Next() {
		var pc challenge.PostChallenge
		if err := rows.Scan(&pc.ID, &pc.PostID, &pc.ChallengeID, &pc.UserID, &pc.PostType, &pc.Timestamp, &pc.Validated); err != nil {
			return nil, fmt.Errorf("failed to scan post challenge: %w", err)
		}
		out = append(out, &pc)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountPostChallenges(ctx context.Context, filter query.Expr) (int, error) {
	clause, args, err := where(filter)
	if err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM post_challenges`+clause, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count post challenges: %w", err)
	}
	return count, nil
}

// ---- reminders ----

const reminderColumns = `id, user_id, challenge_id, type, status, time_preference, second_preference,
	timezone, repeat_daily, next_scheduled, last_sent, created_at, updated_at`

func scanReminder(row pgx.Row) (*reminder.Schedule, error) {
	var r reminder.Schedule
	err := row.Scan(
		&r.ID, &r.UserID, &r.ChallengeID, &r.Type, &r.Status, &r.TimePreference, &r.SecondPreference,
		&r.Timezone, &r.RepeatDaily, &r.NextScheduled, &r.LastSent, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PostgresStore) GetReminder(ctx context.Context, id string) (*reminder.Schedule, error) {
	row := s.db.QueryRow(ctx, `SELECT `+reminderColumns+` FROM reminder_schedules WHERE id = $1`, id)
	r, err := scanReminder(row)
	if err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

func (s *PostgresStore) ListReminders(ctx context.Context, filter query.Expr) ([]*reminder.Schedule, error) {
	clause, args, err := where(filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `SELECT `+reminderColumns+` FROM reminder_schedules`+clause+` ORDER BY next_scheduled, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	var out []*reminder.Schedule
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateReminder(ctx context.Context, r *reminder.Schedule) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO reminder_schedules (`+reminderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		r.ID, r.UserID, r.ChallengeID, r.Type, r.Status, r.TimePreference, r.SecondPreference,
		r.Timezone, r.RepeatDaily, r.NextScheduled, r.LastSent, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateReminder(ctx context.Context, r *reminder.Schedule) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE reminder_schedules SET
			status = $2, time_preference = $3, second_preference = $4, timezone = $5,
			repeat_daily = $6, next_scheduled = $7, last_sent = $8, updated_at = $9
		WHERE id = $1`,
		r.ID, r.Status, r.TimePreference, r.SecondPreference, r.Timezone,
		r.RepeatDaily, r.NextScheduled, r.LastSent, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	return expectRow(tag)
}

// ---- notifications ----

const notificationColumns = `id, user_id, type, title, body, data, status, attempts,
	failure_reason, sent_at, read_at, created_at`

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var n notification.Notification
	err := row.Scan(
		&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.Data, &n.Status, &n.Attempts,
		&n.FailureReason, &n.SentAt, &n.ReadAt, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *PostgresStore) GetNotification(ctx context.Context, id string) (*notification.Notification, error) {
	row := s.db.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	n, err := scanNotification(row)
	if err != nil {
		return nil, notFound(err)
	}
	return n, nil
}

func (s *PostgresStore) ListNotifications(ctx context.Context, filter query.Expr) ([]*notification.Notification, error) {
	clause, args, err := where(filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `SELECT `+notificationColumns+` FROM notifications`+clause+` ORDER BY created_at DESC, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateNotification(ctx context.Context, n *notification.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		n.ID, n.UserID, n.Type, n.Title, n.Body, n.Data, n.Status, n.Attempts,
		n.FailureReason, n.SentAt, n.ReadAt, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateNotification(ctx context.Context, n *notification.Notification) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE notifications SET
			status = $2, attempts = $3, failure_reason = $4, sent_at = $5, read_at = $6
		WHERE id = $1`,
		n.ID, n.Status, n.Attempts, n.FailureReason, n.SentAt, n.ReadAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	return expectRow(tag)
}

func (s *PostgresStore) UpsertDeviceToken(ctx context.Context, t *notification.DeviceToken) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO device_tokens (user_id, token, platform, added_at, last_used)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, token)
		DO UPDATE SET platform = EXCLUDED.platform, last_used = EXCLUDED.last_used`,
		t.UserID, t.Token, t.Platform, t.AddedAt, t.LastUsed,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert device token: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListDeviceTokens(ctx context.Context, userID string) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, token, platform, added_at, last_used
		FROM device_tokens WHERE user_id = $1 ORDER BY token`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	defer rows.Close()

	var out []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.UserID, &t.Token, &t.Platform, &t.AddedAt, &t.LastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

var _ Store = (*PostgresStore)(nil)
