package store

import (
	"sweatsyncAPI/internal/challenge"
	"sweatsyncAPI/internal/notification"
	"sweatsyncAPI/internal/reminder"
)

// The record types expose entity fields under their column names so the
// in-memory store can evaluate query filters.

type challengeRecord struct{ *challenge.Challenge }

func (r challengeRecord) Field(name string) (any, bool) {
	c := r.Challenge
	switch name {
	case "id":
		return c.ID, true
	case "title":
		return c.Title, true
	case "description":
		return c.Description, true
	case "challenge_type":
		return string(c.ChallengeType), true
	case "status":
		return string(c.Status), true
	case "start_at":
		return c.StartAt, true
	case "end_at":
		return c.EndAt, true
	case "total_workouts":
		return c.TotalWorkouts, true
	case "base_points_per_workout":
		return c.BasePointsPerWorkout, true
	case "daily_challenge_points":
		return c.DailyChallengePoints, true
	case "created_by":
		return c.CreatedBy, true
	case "is_daily_challenge":
		return c.IsDailyChallenge, true
	case "daily_challenges":
		return c.DailyChallenges, true
	case "parent_challenge_id":
		return c.ParentChallengeID, true
	case "current_creator_id":
		return c.CurrentCreatorID, true
	case "next_rotation_date":
		return c.NextRotationDate, true
	case "rotation_interval_days":
		return c.RotationIntervalDays, true
	case "max_posts_per_day":
		return c.MaxPostsPerDay, true
	case "max_posts_per_week":
		return c.MaxPostsPerWeek, true
	case "track_weight":
		return c.TrackWeight, true
	case "track_meals":
		return c.TrackMeals, true
	case "require_weekly_weigh_in":
		return c.RequireWeeklyWeighIn, true
	case "weigh_in_day":
		return c.WeighInDay, true
	case "created_at":
		return c.CreatedAt, true
	case "updated_at":
		return c.UpdatedAt, true
	}
	return nil, false
}

type participantRecord struct{ *challenge.Participant }

func (r participantRecord) Field(name string) (any, bool) {
	p := r.Participant
	switch name {
	case "id":
		return p.ID, true
	case "challenge_id":
		return p.ChallengeID, true
	case "user_id":
		return p.UserID, true
	case "status":
		return string(p.Status), true
	case "points":
		return p.Points, true
	case "workouts_completed":
		return p.WorkoutsCompleted, true
	case "joined_at":
		return p.JoinedAt, true
	case "completed_at":
		return p.CompletedAt, true
	case "target_weight":
		return p.TargetWeight, true
	case "starting_weight":
		return p.StartingWeight, true
	case "current_weight":
		return p.CurrentWeight, true
	case "calorie_goal":
		return p.CalorieGoal, true
	case "updated_at":
		return p.UpdatedAt, true
	}
	return nil, false
}

type postChallengeRecord struct{ *challenge.PostChallenge }

func (r postChallengeRecord) Field(name string) (any, bool) {
	pc := r.PostChallenge
	switch name {
	case "id":
		return pc.ID, true
	case "post_id":
		return pc.PostID, true
	case "challenge_id":
		return pc.ChallengeID, true
	case "user_id":
		return pc.UserID, true
	case "post_type":
		return string(pc.PostType), true
	case "timestamp":
		return pc.Timestamp, true
	case "validated":
		return pc.Validated, true
	}
	return nil, false
}

type reminderRecord struct{ *reminder.Schedule }

func (r reminderRecord) Field(name string) (any, bool) {
	s := r.Schedule
	switch name {
	case "id":
		return s.ID, true
	case "user_id":
		return s.UserID, true
	case "challenge_id":
		return s.ChallengeID, true
	case "type":
		return string(s.Type), true
	case "status":
		return string(s.Status), true
	case "time_preference":
		return s.TimePreference, true
	case "second_preference":
		return s.SecondPreference, true
	case "timezone":
		return s.Timezone, true
	case "repeat_daily":
		return s.RepeatDaily, true
	case "next_scheduled":
		return s.NextScheduled, true
	case "last_sent":
		return s.LastSent, true
	case "created_at":
		return s.CreatedAt, true
	case "updated_at":
		return s.UpdatedAt, true
	}
	return nil, false
}

type notificationRecord struct{ *notification.Notification }

func (r notificationRecord) Field(name string) (any, bool) {
	n := r.Notification
	switch name {
	case "id":
		return n.ID, true
	case "user_id":
		return n.UserID, true
	case "type":
		return string(n.Type), true
	case "title":
		return n.Title, true
	case "body":
		return n.Body, true
	case "status":
		return string(n.Status), true
	case "attempts":
		return n.Attempts, true
	case "sent_at":
		return n.SentAt, true
	case "read_at":
		return n.ReadAt, true
	case "created_at":
		return n.CreatedAt, true
	}
	return nil, false
}
