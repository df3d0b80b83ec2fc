package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweatsyncAPI/internal/challenge"
	"sweatsyncAPI/internal/joblock"
	"sweatsyncAPI/internal/jobs"
	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/internal/store"
	"sweatsyncAPI/middleware"
	"sweatsyncAPI/services"
)

type testServer struct {
	router http.Handler
	store  *store.MemoryStore
}

// asUser stands in for the Clerk middleware.
func asUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Test-User"); id != "" {
			r = r.WithContext(middleware.WithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.Discard()
	st := store.NewMemoryStore()

	notifications := services.NewNotificationService(st, 1, 0, log)
	rules := services.NewRulesService(st, time.UTC, log)
	points := services.NewPointsService(st, log)
	api := &API{
		Challenges:    NewChallengeHandler(services.NewChallengeService(st, notifications, time.UTC, log), log),
		Posts:         NewPostHandler(rules, services.NewPostService(st, rules, points, log), log),
		Reminders:     NewReminderHandler(services.NewReminderService(st, log), log),
		Notifications: NewNotificationHandler(notifications, log),
	}
	runner := jobs.NewRunner(
		services.NewRotationService(st, notifications, log),
		services.NewCleanupService(st, log),
		services.NewReminderDispatcher(st, notifications, time.UTC, 2, log),
		joblock.NewLocalLocker(),
		log,
	)

	r := mux.NewRouter()
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(asUser)
	api.Register(protected)
	NewJobHandler(runner, log).Register(r.PathPrefix("/jobs").Subrouter())

	return &testServer{router: r, store: st}
}

func (s *testServer) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (s *testServer) createChallenge(t *testing.T, user string, req challenge.CreateChallengeRequest) *challenge.Challenge {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/challenges", user, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[*challenge.Challenge](t, rec)
}

func openGroup() challenge.CreateChallengeRequest {
	now := time.Now().UTC()
	return challenge.CreateChallengeRequest{
		Title:         "Team sweat",
		ChallengeType: challenge.TypeGroup,
		StartAt:       now.Add(-time.Hour),
		EndAt:         now.AddDate(0, 1, 0),
	}
}

func TestChallengeLifecycle(t *testing.T) {
	s := newTestServer(t)
	c := s.createChallenge(t, "alice", openGroup())

	rec := s.do(t, http.MethodGet, "/api/v1/challenges/"+c.ID, "alice", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/challenges/"+c.ID+"/join", "bob", nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/challenges/"+c.ID+"/join", "bob", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/challenges/"+c.ID+"/participants", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]*challenge.Participant](t, rec), 2)

	rec = s.do(t, http.MethodPost, "/api/v1/challenges/"+c.ID+"/leave", "bob", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/challenges/"+c.ID, "bob", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/challenges/"+c.ID, "alice", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/challenges/"+c.ID, "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateChallenge_Errors(t *testing.T) {
	s := newTestServer(t)

	req := openGroup()
	req.EndAt = req.StartAt.Add(-time.Hour)
	rec := s.do(t, http.MethodPost, "/api/v1/challenges", "alice", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/challenges", "", openGroup())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/challenges", bytes.NewBufferString("{not json"))
	r.Header.Set("X-Test-User", "alice")
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, r)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestPostEndpoints(t *testing.T) {
	s := newTestServer(t)
	c := s.createChallenge(t, "alice", openGroup())

	submission := map[string]any{"challenge_id": c.ID, "post_type": "workout"}

	rec := s.do(t, http.MethodPost, "/api/v1/posts/validate", "alice", submission)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[challenge.ValidationResult](t, rec).IsValid)

	rec = s.do(t, http.MethodPost, "/api/v1/posts/validate", "stranger", submission)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User is not an active participant", decode[challenge.ValidationResult](t, rec).Message)

	submission["content"] = "5k run"
	rec = s.do(t, http.MethodPost, "/api/v1/posts", "alice", submission)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[challenge.RecordPostResponse](t, rec)
	assert.True(t, created.PointsAwarded)
	require.NotNil(t, created.Post)

	// A client-claimed date from last week does not open a new window.
	submission["timestamp"] = time.Now().AddDate(0, 0, -7).Format(time.RFC3339)
	rec = s.do(t, http.MethodPost, "/api/v1/posts", "alice", submission)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Daily post limit reached", decode[challenge.RecordPostResponse](t, rec).Validation.Message)

	rec = s.do(t, http.MethodGet, "/api/v1/challenges/"+c.ID+"/posts", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]challenge.PostHistoryItem](t, rec)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].Post)
	assert.Equal(t, "5k run", history[0].Post.Content)

	rec = s.do(t, http.MethodGet, "/api/v1/challenges/missing/posts", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReminderEndpoints(t *testing.T) {
	s := newTestServer(t)
	c := s.createChallenge(t, "alice", openGroup())

	rec := s.do(t, http.MethodPost, "/api/v1/reminders", "alice", map[string]any{
		"challenge_id":    c.ID,
		"type":            "GROUP_POST",
		"time_preference": "09:00",
		"timezone":        "Europe/Sofia",
		"repeat_daily":    true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	rec = s.do(t, http.MethodPost, "/api/v1/reminders", "alice", map[string]any{
		"challenge_id": c.ID, "type": "GROUP_POST", "time_preference": "25:00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/reminders", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = s.do(t, http.MethodDelete, "/api/v1/reminders/"+id, "mallory", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/v1/reminders/"+id, "alice", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNotificationEndpoints(t *testing.T) {
	s := newTestServer(t)
	parentReq := openGroup()
	parentReq.DailyChallenges = true
	parent := s.createChallenge(t, "alice", parentReq)

	rec := s.do(t, http.MethodPost, "/api/v1/challenges/"+parent.ID+"/join", "bob", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/notifications/register-device", "bob", map[string]string{"token": "device-1", "platform": "android"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/challenges/"+parent.ID+"/daily", "bob", map[string]string{"title": "Plank"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/challenges/"+parent.ID+"/daily", "alice", map[string]string{"title": "Plank"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/notifications?unread_only=true", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, list["unread_count"])
	items, _ := list["notifications"].([]any)
	require.Len(t, items, 1)
	id, _ := items[0].(map[string]any)["id"].(string)

	rec = s.do(t, http.MethodPut, "/api/v1/notifications/"+id+"/read", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodPut, "/api/v1/notifications/"+id+"/read", "bob", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/notifications/read-all", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, rec)["marked"])
}

func TestJobTrigger(t *testing.T) {
	s := newTestServer(t)
	ended := &challenge.Challenge{
		Title:         "Old",
		ChallengeType: challenge.TypePublic,
		Status:        challenge.StatusActive,
		StartAt:       time.Now().AddDate(0, -2, 0),
		EndAt:         time.Now().AddDate(0, -1, 0),
		CreatedBy:     "alice",
	}
	require.NoError(t, s.store.CreateChallenge(context.Background(), ended))

	rec := s.do(t, http.MethodPost, "/jobs/challenge-cleanup", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[map[string]any](t, rec)
	assert.EqualValues(t, 200, resp["statusCode"])
	body, _ := resp["body"].(map[string]any)
	assert.EqualValues(t, 1, body["processed"])

	rec = s.do(t, http.MethodPost, "/jobs/process-reminders?start=2026-01-15T14:00:00Z&end=2026-01-15T15:00:00Z", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/jobs/process-reminders?start=yesterday", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/jobs/reindex", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type slowReminders struct {
	delay time.Duration
}

func (s slowReminders) ProcessReminders(ctx context.Context, window jobs.Window) (*jobs.BatchResult, error) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return jobs.NewBatch(jobs.JobProcessReminders), nil
}

func TestJobTrigger_OutlivesServerWriteTimeout(t *testing.T) {
	runner := jobs.NewRunner(nil, nil, slowReminders{delay: 200 * time.Millisecond}, joblock.NewLocalLocker(), logger.Discard())
	r := mux.NewRouter()
	r.Use(middleware.MonitorMiddleware)
	NewJobHandler(runner, logger.Discard()).Register(r.PathPrefix("/jobs").Subrouter())

	srv := httptest.NewUnstartedServer(r)
	srv.Config.WriteTimeout = 50 * time.Millisecond
	srv.Start()
	defer srv.Close()

	res, err := srv.Client().Post(srv.URL+"/jobs/process-reminders", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	var resp jobs.Response
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
