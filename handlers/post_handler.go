package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"sweatsyncAPI/internal/challenge"
	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/services"
)

type PostHandler struct {
	rulesService *services.RulesService
	postService  *services.PostService
	log          logger.Logger
}

func NewPostHandler(rulesService *services.RulesService, postService *services.PostService, log logger.Logger) *PostHandler {
	return &PostHandler{rulesService: rulesService, postService: postService, log: log}
}

// POST /api/v1/posts/validate - dry run of the challenge rules
func (h *PostHandler) ValidatePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req challenge.PostSubmission
	if !decodeJSON(w, r, &req) {
		return
	}
	req.UserID = userID

	result, err := h.rulesService.ValidateChallengePost(ctx, req)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// POST /api/v1/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req challenge.CreatePostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.UserID = userID

	resp, err := h.postService.RecordPost(ctx, req)
	switch {
	case errors.Is(err, services.ErrPostNotLinked):
		// The post exists; the client must not retry and duplicate it.
		h.log.Errorf("post %s not linked to challenge %s: %v", resp.Post.ID, req.ChallengeID, err)
		respondWithJSON(w, http.StatusAccepted, resp)
	case err != nil:
		respondWithServiceError(w, h.log, err)
	case !resp.Validation.IsValid:
		respondWithJSON(w, http.StatusUnprocessableEntity, resp)
	default:
		respondWithJSON(w, http.StatusCreated, resp)
	}
}

// GET /api/v1/challenges/{id}/posts?user_id= - defaults to the caller
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if other := r.URL.Query().Get("user_id"); other != "" {
		userID = other
	}

	items, err := h.postService.ListPosts(ctx, mux.Vars(r)["id"], userID)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}
