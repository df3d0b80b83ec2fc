package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/internal/notification"
	"sweatsyncAPI/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
	log                 logger.Logger
}

func NewNotificationHandler(notificationService *services.NotificationService, log logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		log:                 log,
	}
}

// GET /api/v1/notifications - Get user's notifications
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	response, err := h.notificationService.GetNotifications(ctx, userID, unreadOnly)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, response)
}

// PUT /api/v1/notifications/{id}/read - Mark notification as read
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	err := h.notificationService.MarkAsRead(ctx, mux.Vars(r)["id"], userID)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// PUT /api/v1/notifications/read-all - Mark all as read
func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	marked, err := h.notificationService.MarkAllAsRead(ctx, userID)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"message": "All notifications marked as read",
		"marked":  marked,
	})
}

// POST /api/v1/notifications/register-device - Register device token for push notifications
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req notification.RegisterDeviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.notificationService.RegisterDevice(ctx, userID, req); err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Device registered successfully"})
}
