package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/internal/store"
	"sweatsyncAPI/middleware"
	"sweatsyncAPI/services"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps service and store errors to status codes.
// Unknown errors are logged and hidden behind a 500.
func respondWithServiceError(w http.ResponseWriter, log logger.Logger, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidDates):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotCreator), errors.Is(err, services.ErrNotCurrentCreator):
		respondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrAlreadyJoined), errors.Is(err, services.ErrChallengeClosed),
		errors.Is(err, store.ErrDuplicateParticipant):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrNotParticipant):
		respondWithError(w, http.StatusNotFound, err.Error())
	default:
		log.Errorf("request failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return "", false
	}
	return userID, true
}
