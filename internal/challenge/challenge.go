package challenge

import (
	"time"
)

type ChallengeType string

const (
	TypePublic   ChallengeType = "PUBLIC"
	TypeGroup    ChallengeType = "GROUP"
	TypePersonal ChallengeType = "PERSONAL"
	TypeFriends  ChallengeType = "FRIENDS"
	TypeDaily    ChallengeType = "DAILY"
	TypeNone     ChallengeType = "NONE"
)

func (t ChallengeType) Valid() bool {
	switch t {
	case TypePublic, TypeGroup, TypePersonal, TypeFriends, TypeDaily, TypeNone:
		return true
	}
	return false
}

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusArchived  Status = "ARCHIVED"
	StatusDraft     Status = "DRAFT"
	StatusCancelled Status = "CANCELLED"
)

type ParticipantStatus string

const (
	ParticipantActive    ParticipantStatus = "ACTIVE"
	ParticipantCompleted ParticipantStatus = "COMPLETED"
	ParticipantDropped   ParticipantStatus = "DROPPED"
	ParticipantPending   ParticipantStatus = "PENDING"
)

type PostType string

const (
	PostWorkout        PostType = "workout"
	PostMeal           PostType = "meal"
	PostWeight         PostType = "weight"
	PostDailyChallenge PostType = "dailyChallenge"
)

func (t PostType) Valid() bool {
	switch t {
	case PostWorkout, PostMeal, PostWeight, PostDailyChallenge:
		return true
	}
	return false
}

// CountsAsWorkout reports whether posts of this type advance workout
// progress and earn points.
func (t PostType) CountsAsWorkout() bool {
	return t == PostWorkout || t == PostDailyChallenge
}

const (
	DefaultBasePointsPerWorkout = 10
	DefaultTotalWorkouts        = 30
	DefaultMaxPostsPerDay       = 1
	DefaultMaxPostsPerWeek      = 5
	DefaultRotationIntervalDays = 1
	MaxMealsPerDay              = 5
)

type Challenge struct {
	ID                   string        `json:"id" db:"id"`
	Title                string        `json:"title" db:"title"`
	Description          string        `json:"description" db:"description"`
	ChallengeType        ChallengeType `json:"challenge_type" db:"challenge_type"`
	Status               Status        `json:"status" db:"status"`
	StartAt              time.Time     `json:"start_at" db:"start_at"`
	EndAt                time.Time     `json:"end_at" db:"end_at"`
	TotalWorkouts        int           `json:"total_workouts" db:"total_workouts"`
	BasePointsPerWorkout int           `json:"base_points_per_workout" db:"base_points_per_workout"`
	DailyChallengePoints int           `json:"daily_challenge_points" db:"daily_challenge_points"`
	CreatedBy            string        `json:"created_by" db:"created_by"`

	IsDailyChallenge  bool    `json:"is_daily_challenge" db:"is_daily_challenge"`
	DailyChallenges   bool    `json:"daily_challenges" db:"daily_challenges"`
	ParentChallengeID *string `json:"parent_challenge_id,omitempty" db:"parent_challenge_id"`

	CurrentCreatorID     *string    `json:"current_creator_id,omitempty" db:"current_creator_id"`
	NextRotationDate     *time.Time `json:"next_rotation_date,omitempty" db:"next_rotation_date"`
	RotationIntervalDays int        `json:"rotation_interval_days" db:"rotation_interval_days"`

	MaxPostsPerDay  int `json:"max_posts_per_day" db:"max_posts_per_day"`
	MaxPostsPerWeek int `json:"max_posts_per_week" db:"max_posts_per_week"`

	TrackWeight          bool   `json:"track_weight" db:"track_weight"`
	TrackMeals           bool   `json:"track_meals" db:"track_meals"`
	RequireWeeklyWeighIn bool   `json:"require_weekly_weigh_in" db:"require_weekly_weigh_in"`
	WeighInDay           string `json:"weigh_in_day,omitempty" db:"weigh_in_day"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Zero-valued limits fall back to the defaults.

func (c *Challenge) PostsPerDayLimit() int {
	if c.MaxPostsPerDay > 0 {
		return c.MaxPostsPerDay
	}
	return DefaultMaxPostsPerDay
}

func (c *Challenge) PostsPerWeekLimit() int {
	if c.MaxPostsPerWeek > 0 {
		return c.MaxPostsPerWeek
	}
	return DefaultMaxPostsPerWeek
}

func (c *Challenge) PointsPerWorkout() int {
	if c.BasePointsPerWorkout > 0 {
		return c.BasePointsPerWorkout
	}
	return DefaultBasePointsPerWorkout
}

func (c *Challenge) PointsForDailyChallenge() int {
	if c.DailyChallengePoints > 0 {
		return c.DailyChallengePoints
	}
	return c.PointsPerWorkout()
}

func (c *Challenge) WorkoutTarget() int {
	if c.TotalWorkouts > 0 {
		return c.TotalWorkouts
	}
	return DefaultTotalWorkouts
}

func (c *Challenge) RotationInterval() time.Duration {
	days := c.RotationIntervalDays
	if days <= 0 {
		days = DefaultRotationIntervalDays
	}
	return time.Duration(days) * 24 * time.Hour
}

func (c *Challenge) HasEnded(now time.Time) bool {
	return c.EndAt.Before(now)
}

// RotatesCreator reports whether the challenge hands the daily-challenge
// creator role around its participants.
func (c *Challenge) RotatesCreator() bool {
	return c.ChallengeType == TypeGroup && c.DailyChallenges
}

type Participant struct {
	ID                string            `json:"id" db:"id"`
	ChallengeID       string            `json:"challenge_id" db:"challenge_id"`
	UserID            string            `json:"user_id" db:"user_id"`
	Status            ParticipantStatus `json:"status" db:"status"`
	Points            int               `json:"points" db:"points"`
	WorkoutsCompleted int               `json:"workouts_completed" db:"workouts_completed"`
	JoinedAt          time.Time         `json:"joined_at" db:"joined_at"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty" db:"completed_at"`

	TargetWeight   *float64 `json:"target_weight,omitempty" db:"target_weight"`
	StartingWeight *float64 `json:"starting_weight,omitempty" db:"starting_weight"`
	CurrentWeight  *float64 `json:"current_weight,omitempty" db:"current_weight"`
	CalorieGoal    *int     `json:"calorie_goal,omitempty" db:"calorie_goal"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PostChallenge links a post to a challenge. It is written once and only
// read afterwards for rate limits and streaks.
type PostChallenge struct {
	ID          string    `json:"id" db:"id"`
	PostID      string    `json:"post_id" db:"post_id"`
	ChallengeID string    `json:"challenge_id" db:"challenge_id"`
	UserID      string    `json:"user_id" db:"user_id"`
	PostType    PostType  `json:"post_type" db:"post_type"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	Validated   bool      `json:"validated" db:"validated"`
}

type Post struct {
	ID              string           `json:"id" db:"id"`
	UserID          string           `json:"user_id" db:"user_id"`
	PostType        PostType         `json:"post_type" db:"post_type"`
	Content         string           `json:"content" db:"content"`
	MeasurementData *MeasurementData `json:"measurement_data,omitempty" db:"measurement_data"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
}

type MeasurementData struct {
	Weight   *float64 `json:"weight,omitempty"`
	MealName string   `json:"meal_name,omitempty"`
	Calories *int     `json:"calories,omitempty"`
	MealTime string   `json:"meal_time,omitempty"`
}

// ValidationResult is the outcome of a rules check. A rejection is a
// normal result, not an error.
type ValidationResult struct {
	IsValid bool   `json:"is_valid"`
	Message string `json:"message"`
}

func Valid() ValidationResult {
	return ValidationResult{IsValid: true, Message: "Post is valid"}
}

func Invalid(message string) ValidationResult {
	return ValidationResult{IsValid: false, Message: message}
}
