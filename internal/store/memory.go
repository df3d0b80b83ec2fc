package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"sweatsyncAPI/internal/challenge"
	"sweatsyncAPI/internal/notification"
	"sweatsyncAPI/internal/query"
	"sweatsyncAPI/internal/reminder"
)

// MemoryStore keeps every entity in process memory. It backs local runs
// with STORE_DRIVER=memory and the service tests, which use FailOn and
// Calls to inject failures and count writes.
type MemoryStore struct {
	mu sync.RWMutex

	challenges     map[string]*challenge.Challenge
	participants   map[string]*challenge.Participant
	posts          map[string]*challenge.Post
	postChallenges map[string]*challenge.PostChallenge
	reminders      map[string]*reminder.Schedule
	notifications  map[string]*notification.Notification
	devices        map[string]map[string]notification.DeviceToken

	failOn map[string]error
	calls  map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		challenges:     make(map[string]*challenge.Challenge),
		participants:   make(map[string]*challenge.Participant),
		posts:          make(map[string]*challenge.Post),
		postChallenges: make(map[string]*challenge.PostChallenge),
		reminders:      make(map[string]*reminder.Schedule),
		notifications:  make(map[string]*notification.Notification),
		devices:        make(map[string]map[string]notification.DeviceToken),
		failOn:         make(map[string]error),
		calls:          make(map[string]int),
	}
}

// FailOn makes every later call to the named method return err. A nil err
// clears the failure.
func (m *MemoryStore) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failOn, op)
		return
	}
	m.failOn[op] = err
}

// Calls reports how many times the named method has been invoked.
func (m *MemoryStore) Calls(op string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[op]
}

// enter must be called with mu held.
func (m *MemoryStore) enter(op string) error {
	m.calls[op]++
	return m.failOn[op]
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) Close() {}

// ---- challenges ----

func (m *MemoryStore) GetChallenge(ctx context.Context, id string) (*challenge.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetChallenge"); err != nil {
		return nil, err
	}
	c, ok := m.challenges[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyChallenge(c), nil
}

func (m *MemoryStore) ListChallenges(ctx context.Context, filter query.Expr) ([]*challenge.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListChallenges"); err != nil {
		return nil, err
	}
	var out []*challenge.Challenge
	for _, c := range m.challenges {
		if query.Match(filter, challengeRecord{c}) {
			out = append(out, copyChallenge(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) CreateChallenge(ctx context.Context, c *challenge.Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateChallenge"); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, exists := m.challenges[c.ID]; exists {
		return fmt.Errorf("challenge %s already exists", c.ID)
	}
	m.challenges[c.ID] = copyChallenge(c)
	return nil
}

func (m *MemoryStore) UpdateChallenge(ctx context.Context, c *challenge.Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateChallenge"); err != nil {
		return err
	}
	if _, ok := m.challenges[c.ID]; !ok {
		return ErrNotFound
	}
	m.challenges[c.ID] = copyChallenge(c)
	return nil
}

func (m *MemoryStore) DeleteChallenge(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteChallenge"); err != nil {
		return err
	}
	if _, ok := m.challenges[id]; !ok {
		return ErrNotFound
	}
	delete(m.challenges, id)
	for pid, p := range m.participants {
		if p.ChallengeID == id {
			delete(m.participants, pid)
		}
	}
	for pcid, pc := range m.postChallenges {
		if pc.ChallengeID == id {
			delete(m.postChallenges, pcid)
		}
	}
	for rid, r := range m.reminders {
		if r.ChallengeID == id {
			delete(m.reminders, rid)
		}
	}
	return nil
}

// ---- participants ----

func (m *MemoryStore) GetParticipant(ctx context.Context, id string) (*challenge.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetParticipant"); err != nil {
		return nil, err
	}
	p, ok := m.participants[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyParticipant(p), nil
}

func (m *MemoryStore) GetActiveParticipant(ctx context.Context, challengeID, userID string) (*challenge.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetActiveParticipant"); err != nil {
		return nil, err
	}
	filter := activeParticipantFilter(challengeID, userID)
	var found *challenge.Participant
	for _, p := range m.participants {
		if !query.Match(filter, participantRecord{p}) {
			continue
		}
		if found != nil {
			return nil, ErrDuplicateParticipant
		}
		found = p
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return copyParticipant(found), nil
}

func (m *MemoryStore) ListParticipants(ctx context.Context, filter query.Expr) ([]*challenge.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListParticipants"); err != nil {
		return nil, err
	}
	var out []*challenge.Participant
	for _, p := range m.participants {
		if query.Match(filter, participantRecord{p}) {
			out = append(out, copyParticipant(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) CreateParticipant(ctx context.Context, p *challenge.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateParticipant"); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == challenge.ParticipantActive {
		filter := activeParticipantFilter(p.ChallengeID, p.UserID)
		for _, existing := range m.participants {
			if query.Match(filter, participantRecord{existing}) {
				return ErrDuplicateParticipant
			}
		}
	}
	m.participants[p.ID] = copyParticipant(p)
	return nil
}

func (m *MemoryStore) UpdateParticipant(ctx context.Context, p *challenge.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateParticipant"); err != nil {
		return err
	}
	if _, ok := m.participants[p.ID]; !ok {
		return ErrNotFound
	}
	m.participants[p.ID] = copyParticipant(p)
	return nil
}

func (m *MemoryStore) AddParticipantProgress(ctx context.Context, id string, points, target int, at time.Time) (*challenge.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("AddParticipantProgress"); err != nil {
		return nil, err
	}
	p, ok := m.participants[id]
	if !ok || p.Status != challenge.ParticipantActive {
		return nil, ErrNotFound
	}
	p.Points += points
	p.WorkoutsCompleted++
	p.UpdatedAt = at
	if p.WorkoutsCompleted >= target {
		p.Status = challenge.ParticipantCompleted
		completed := at
		p.CompletedAt = &completed
	}
	return copyParticipant(p), nil
}

func (m *MemoryStore) DeleteParticipant(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteParticipant"); err != nil {
		return err
	}
	if _, ok := m.participants[id]; !ok {
		return ErrNotFound
	}
	delete(m.participants, id)
	return nil
}

// ---- posts ----

func (m *MemoryStore) GetPost(ctx context.Context, id string) (*challenge.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetPost"); err != nil {
		return nil, err
	}
	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyPost(p), nil
}

func (m *MemoryStore) CreatePost(ctx context.Context, p *challenge.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreatePost"); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.posts[p.ID] = copyPost(p)
	return nil
}

func (m *MemoryStore) CreatePostChallenge(ctx context.Context, pc *challenge.PostChallenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreatePostChallenge"); err != nil {
		return err
	}
	if pc.ID == "" {
		pc.ID = uuid.NewString()
	}
	cp := *pc
	m.postChallenges[pc.ID] = &cp
	return nil
}

func (m *MemoryStore) ListPostChallenges(ctx context.Context, filter query.Expr) ([]*challenge.PostChallenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListPostChallenges"); err != nil {
		return nil, err
	}
	var out []*challenge.PostChallenge
	for _, pc := range m.postChallenges {
		if query.Match(filter, postChallengeRecord{pc}) {
			cp := *pc
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) CountPostChallenges(ctx context.Context, filter query.Expr) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CountPostChallenges"); err != nil {
		return 0, err
	}
	count := 0
	for _, pc := range m.postChallenges {
		if query.Match(filter, postChallengeRecord{pc}) {
			count++
		}
	}
	return count, nil
}

// ---- reminders ----

func (m *MemoryStore) GetReminder(ctx context.Context, id string) (*reminder.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetReminder"); err != nil {
		return nil, err
	}
	r, ok := m.reminders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyReminder(r), nil
}

func (m *MemoryStore) ListReminders(ctx context.Context, filter query.Expr) ([]*reminder.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListReminders"); err != nil {
		return nil, err
	}
	var out []*reminder.Schedule
	for _, r := range m.reminders {
		if query.Match(filter, reminderRecord{r}) {
			out = append(out, copyReminder(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextScheduled.Equal(out[j].NextScheduled) {
			return out[i].NextScheduled.Before(out[j].NextScheduled)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// CreateReminder keeps a caller supplied ID so fixtures can seed rows
// with arbitrary identifiers, including empty ones.
func (m *MemoryStore) CreateReminder(ctx context.Context, r *reminder.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateReminder"); err != nil {
		return err
	}
	if _, exists := m.reminders[r.ID]; exists && r.ID != "" {
		return fmt.Errorf("reminder %s already exists", r.ID)
	}
	m.reminders[r.ID] = copyReminder(r)
	return nil
}

func (m *MemoryStore) UpdateReminder(ctx context.Context, r *reminder.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateReminder"); err != nil {
		return err
	}
	if _, ok := m.reminders[r.ID]; !ok {
		return ErrNotFound
	}
	m.reminders[r.ID] = copyReminder(r)
	return nil
}

// ---- notifications ----

func (m *MemoryStore) GetNotification(ctx context.Context, id string) (*notification.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetNotification"); err != nil {
		return nil, err
	}
	n, ok := m.notifications[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyNotification(n), nil
}

func (m *MemoryStore) ListNotifications(ctx context.Context, filter query.Expr) ([]*notification.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListNotifications"); err != nil {
		return nil, err
	}
	var out []*notification.Notification
	for _, n := range m.notifications {
		if query.Match(filter, notificationRecord{n}) {
			out = append(out, copyNotification(n))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) CreateNotification(ctx context.Context, n *notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateNotification"); err != nil {
		return err
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	m.notifications[n.ID] = copyNotification(n)
	return nil
}

func (m *MemoryStore) UpdateNotification(ctx context.Context, n *notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateNotification"); err != nil {
		return err
	}
	if _, ok := m.notifications[n.ID]; !ok {
		return ErrNotFound
	}
	m.notifications[n.ID] = copyNotification(n)
	return nil
}

func (m *MemoryStore) UpsertDeviceToken(ctx context.Context, t *notification.DeviceToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpsertDeviceToken"); err != nil {
		return err
	}
	tokens, ok := m.devices[t.UserID]
	if !ok {
		tokens = make(map[string]notification.DeviceToken)
		m.devices[t.UserID] = tokens
	}
	if existing, ok := tokens[t.Token]; ok {
		existing.Platform = t.Platform
		existing.LastUsed = t.LastUsed
		tokens[t.Token] = existing
		return nil
	}
	tokens[t.Token] = *t
	return nil
}

func (m *MemoryStore) ListDeviceTokens(ctx context.Context, userID string) ([]notification.DeviceToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListDeviceTokens"); err != nil {
		return nil, err
	}
	out := make([]notification.DeviceToken, 0, len(m.devices[userID]))
	for _, t := range m.devices[userID] {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out, nil
}

func copyChallenge(c *challenge.Challenge) *challenge.Challenge {
	cp := *c
	return &cp
}

func copyParticipant(p *challenge.Participant) *challenge.Participant {
	cp := *p
	return &cp
}

func copyPost(p *challenge.Post) *challenge.Post {
	cp := *p
	if p.MeasurementData != nil {
		md := *p.MeasurementData
		cp.MeasurementData = &md
	}
	return &cp
}

func copyReminder(r *reminder.Schedule) *reminder.Schedule {
	cp := *r
	return &cp
}

func copyNotification(n *notification.Notification) *notification.Notification {
	cp := *n
	return &cp
}

var _ Store = (*MemoryStore)(nil)
