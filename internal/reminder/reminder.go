package reminder

import (
	"time"
)

type Type string

const (
	TypeDailyPost       Type = "DAILY_POST"
	TypeGroupPost       Type = "GROUP_POST"
	TypeCreatorRotation Type = "CREATOR_ROTATION"
)

func (t Type) Valid() bool {
	switch t {
	case TypeDailyPost, TypeGroupPost, TypeCreatorRotation:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSent      Status = "SENT"
	StatusCancelled Status = "CANCELLED"
)

const DefaultTimezone = "UTC"

type Schedule struct {
	ID               string     `json:"id" db:"id"`
	UserID           string     `json:"user_id" db:"user_id"`
	ChallengeID      string     `json:"challenge_id" db:"challenge_id"`
	Type             Type       `json:"type" db:"type"`
	Status           Status     `json:"status" db:"status"`
	TimePreference   string     `json:"time_preference" db:"time_preference"`
	SecondPreference string     `json:"second_preference,omitempty" db:"second_preference"`
	Timezone         string     `json:"timezone" db:"timezone"`
	RepeatDaily      bool       `json:"repeat_daily" db:"repeat_daily"`
	NextScheduled    time.Time  `json:"next_scheduled" db:"next_scheduled"`
	LastSent         *time.Time `json:"last_sent,omitempty" db:"last_sent"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// MissingFields lists the identifying fields the dispatcher requires.
func (s *Schedule) MissingFields() []string {
	var missing []string
	if s.ID == "" {
		missing = append(missing, "id")
	}
	if s.UserID == "" {
		missing = append(missing, "userId")
	}
	if s.ChallengeID == "" {
		missing = append(missing, "challengeId")
	}
	if s.Type == "" {
		missing = append(missing, "type")
	}
	return missing
}

type CreateReminderRequest struct {
	ChallengeID      string `json:"challenge_id"`
	Type             Type   `json:"type"`
	TimePreference   string `json:"time_preference"`
	SecondPreference string `json:"second_preference,omitempty"`
	Timezone         string `json:"timezone"`
	RepeatDaily      bool   `json:"repeat_daily"`
}

type Template struct {
	Title string
	Body  string
}

var templates = map[Type]Template{
	TypeDailyPost: {
		Title: "Daily Challenge Reminder",
		Body:  "Don't forget to post your workout for today's challenge!",
	},
	TypeGroupPost: {
		Title: "Group Challenge Reminder",
		Body:  "Your group is counting on you! Post your workout today.",
	},
	TypeCreatorRotation: {
		Title: "Your Turn to Create",
		Body:  "It's your turn to create today's challenge for your group!",
	},
}

var fallbackTemplate = Template{
	Title: "Challenge Reminder",
	Body:  "You have a challenge waiting for you!",
}

// TemplateFor returns the push copy for a reminder type, or generic copy
// when the type has none.
func TemplateFor(t Type) Template {
	if tpl, ok := templates[t]; ok {
		return tpl
	}
	return fallbackTemplate
}
