package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"sweatsyncAPI/internal/jobs"
	"sweatsyncAPI/internal/logger"
)

// jobTimeout bounds a triggered run. The response deadline is extended past
// the server's WriteTimeout so the result still reaches the caller.
const jobTimeout = 5 * time.Minute

// JobHandler lets an external scheduler trigger the challenge jobs.
type JobHandler struct {
	runner *jobs.Runner
	now    func() time.Time
	log    logger.Logger
}

func NewJobHandler(runner *jobs.Runner, log logger.Logger) *JobHandler {
	return &JobHandler{runner: runner, now: time.Now, log: log}
}

// POST /jobs/{name}
// process-reminders accepts optional RFC3339 start and end query
// parameters; the default window is the last hour.
func (h *JobHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), jobTimeout)
	defer cancel()

	if err := http.NewResponseController(w).SetWriteDeadline(time.Now().Add(jobTimeout + 10*time.Second)); err != nil {
		h.log.Warnf("job trigger keeps the server write timeout: %v", err)
	}

	now := h.now()
	var resp jobs.Response

	switch name := mux.Vars(r)["name"]; name {
	case jobs.JobRotateCreator:
		resp = h.runner.RotateCreators(ctx, now)
	case jobs.JobChallengeCleanup:
		resp = h.runner.ChallengeCleanup(ctx, now)
	case jobs.JobProcessReminders:
		window, err := parseWindow(r, now)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		resp = h.runner.ProcessReminders(ctx, window)
	default:
		respondWithError(w, http.StatusNotFound, "Unknown job "+name)
		return
	}

	respondWithJSON(w, resp.StatusCode, resp)
}

func parseWindow(r *http.Request, now time.Time) (jobs.Window, error) {
	window := jobs.LastHour(now)
	q := r.URL.Query()
	if v := q.Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return window, err
		}
		window.StartTime = t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return window, err
		}
		window.EndTime = t
	}
	return window, nil
}
