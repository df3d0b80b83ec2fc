package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"sweatsyncAPI/internal/challenge"
	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/services"
)

type ChallengeHandler struct {
	challengeService *services.ChallengeService
	log              logger.Logger
}

func NewChallengeHandler(challengeService *services.ChallengeService, log logger.Logger) *ChallengeHandler {
	return &ChallengeHandler{challengeService: challengeService, log: log}
}

// POST /api/v1/challenges
func (h *ChallengeHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req challenge.CreateChallengeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.challengeService.CreateChallenge(ctx, userID, req)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, c)
}

// GET /api/v1/challenges?type=&status=&created_by=&search=
func (h *ChallengeHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()
	list, err := h.challengeService.ListChallenges(ctx, challenge.ListChallengesFilter{
		ChallengeType: challenge.ChallengeType(q.Get("type")),
		Status:        challenge.Status(q.Get("status")),
		CreatedBy:     q.Get("created_by"),
		Search:        q.Get("search"),
	})
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	if list == nil {
		list = []*challenge.Challenge{}
	}
	respondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/challenges/{id}
func (h *ChallengeHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.challengeService.GetChallenge(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

// DELETE /api/v1/challenges/{id}
func (h *ChallengeHandler) DeleteChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.challengeService.DeleteChallenge(ctx, mux.Vars(r)["id"], userID); err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Challenge deleted"})
}

// POST /api/v1/challenges/{id}/join
func (h *ChallengeHandler) JoinChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req challenge.JoinChallengeRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.challengeService.JoinChallenge(ctx, mux.Vars(r)["id"], userID, req)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, p)
}

// POST /api/v1/challenges/{id}/leave
func (h *ChallengeHandler) LeaveChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.challengeService.LeaveChallenge(ctx, mux.Vars(r)["id"], userID); err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Left challenge"})
}

// GET /api/v1/challenges/{id}/participants
func (h *ChallengeHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.challengeService.ListParticipants(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	if list == nil {
		list = []*challenge.Participant{}
	}
	respondWithJSON(w, http.StatusOK, list)
}

// POST /api/v1/challenges/{id}/daily
func (h *ChallengeHandler) CreateDailyChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req challenge.CreateDailyChallengeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	daily, err := h.challengeService.CreateDailyChallenge(ctx, mux.Vars(r)["id"], userID, req)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, daily)
}
