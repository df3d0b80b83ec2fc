package challenge

import "time"

type CreateChallengeRequest struct {
	Title                string        `json:"title"`
	Description          string        `json:"description"`
	ChallengeType        ChallengeType `json:"challenge_type"`
	StartAt              time.Time     `json:"start_at"`
	EndAt                time.Time     `json:"end_at"`
	TotalWorkouts        int           `json:"total_workouts"`
	BasePointsPerWorkout int           `json:"base_points_per_workout"`
	DailyChallengePoints int           `json:"daily_challenge_points"`
	IsDailyChallenge     bool          `json:"is_daily_challenge"`
	DailyChallenges      bool          `json:"daily_challenges"`
	RotationIntervalDays int           `json:"rotation_interval_days"`
	MaxPostsPerDay       int           `json:"max_posts_per_day"`
	MaxPostsPerWeek      int           `json:"max_posts_per_week"`
	TrackWeight          bool          `json:"track_weight"`
	TrackMeals           bool          `json:"track_meals"`
	RequireWeeklyWeighIn bool          `json:"require_weekly_weigh_in"`
	WeighInDay           string        `json:"weigh_in_day"`
	Draft                bool          `json:"draft"`
}

type JoinChallengeRequest struct {
	TargetWeight   *float64 `json:"target_weight,omitempty"`
	StartingWeight *float64 `json:"starting_weight,omitempty"`
	CalorieGoal    *int     `json:"calorie_goal,omitempty"`
}

type CreateDailyChallengeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ListChallengesFilter struct {
	ChallengeType ChallengeType
	Status        Status
	CreatedBy     string
	Search        string
}

// PostSubmission is a prospective post checked by the rules engine. It is
// always judged at the server's current time.
type PostSubmission struct {
	ChallengeID     string           `json:"challenge_id"`
	UserID          string           `json:"-"`
	PostType        PostType         `json:"post_type"`
	MeasurementData *MeasurementData `json:"measurement_data,omitempty"`
}

type CreatePostRequest struct {
	PostSubmission
	Content string `json:"content"`
}

type PointsUpdate struct {
	ChallengeID string
	UserID      string
	PostType    PostType
}

// PostHistoryItem pairs a challenge link with the post it points at.
type PostHistoryItem struct {
	Link *PostChallenge `json:"link"`
	Post *Post          `json:"post,omitempty"`
}

type RecordPostResponse struct {
	Post          *Post            `json:"post,omitempty"`
	Validation    ValidationResult `json:"validation"`
	PointsAwarded bool             `json:"points_awarded"`
}
