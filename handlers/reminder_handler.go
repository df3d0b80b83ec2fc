package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/internal/reminder"
	"sweatsyncAPI/services"
)

type ReminderHandler struct {
	reminderService *services.ReminderService
	log             logger.Logger
}

func NewReminderHandler(reminderService *services.ReminderService, log logger.Logger) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService, log: log}
}

// POST /api/v1/reminders
func (h *ReminderHandler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req reminder.CreateReminderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rem, err := h.reminderService.CreateReminder(ctx, userID, req)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, rem)
}

// GET /api/v1/reminders
func (h *ReminderHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	list, err := h.reminderService.ListReminders(ctx, userID)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	if list == nil {
		list = []*reminder.Schedule{}
	}
	respondWithJSON(w, http.StatusOK, list)
}

// DELETE /api/v1/reminders/{id}
func (h *ReminderHandler) CancelReminder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.reminderService.CancelReminder(ctx, mux.Vars(r)["id"], userID); err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Reminder cancelled"})
}
