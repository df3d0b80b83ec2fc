package handlers

import (
	"github.com/gorilla/mux"
)

// API groups the handlers served under the authenticated /api/v1 router.
type API struct {
	Challenges    *ChallengeHandler
	Posts         *PostHandler
	Reminders     *ReminderHandler
	Notifications *NotificationHandler
}

func (a *API) Register(protected *mux.Router) {
	protected.HandleFunc("/challenges", a.Challenges.CreateChallenge).Methods("POST")
	protected.HandleFunc("/challenges", a.Challenges.ListChallenges).Methods("GET")
	protected.HandleFunc("/challenges/{id}", a.Challenges.GetChallenge).Methods("GET")
	protected.HandleFunc("/challenges/{id}", a.Challenges.DeleteChallenge).Methods("DELETE")
	protected.HandleFunc("/challenges/{id}/join", a.Challenges.JoinChallenge).Methods("POST")
	protected.HandleFunc("/challenges/{id}/leave", a.Challenges.LeaveChallenge).Methods("POST")
	protected.HandleFunc("/challenges/{id}/participants", a.Challenges.ListParticipants).Methods("GET")
	protected.HandleFunc("/challenges/{id}/posts", a.Posts.ListPosts).Methods("GET")
	protected.HandleFunc("/challenges/{id}/daily", a.Challenges.CreateDailyChallenge).Methods("POST")

	protected.HandleFunc("/posts/validate", a.Posts.ValidatePost).Methods("POST")
	protected.HandleFunc("/posts", a.Posts.CreatePost).Methods("POST")

	protected.HandleFunc("/reminders", a.Reminders.CreateReminder).Methods("POST")
	protected.HandleFunc("/reminders", a.Reminders.ListReminders).Methods("GET")
	protected.HandleFunc("/reminders/{id}", a.Reminders.CancelReminder).Methods("DELETE")

	protected.HandleFunc("/notifications", a.Notifications.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/read-all", a.Notifications.MarkAllAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/{id}/read", a.Notifications.MarkAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", a.Notifications.RegisterDevice).Methods("POST")
}

// Register mounts the job triggers. The router is expected to carry the
// job secret middleware.
func (h *JobHandler) Register(jobs *mux.Router) {
	jobs.HandleFunc("/{name}", h.Trigger).Methods("POST")
}
