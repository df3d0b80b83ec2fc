package workers

import (
	"context"
	"sync"
	"time"

	"sweatsyncAPI/internal/logger"
)

type CronJob interface {
	Do(ctx context.Context)
	RunNow() bool
	Next(now time.Time) time.Time
}

// CronJobManager runs each registered job on its own timer. A job is
// rescheduled only after its previous run returns, so runs of the same
// job never overlap inside one process.
type CronJobManager struct {
	mutex   sync.Mutex
	wait    sync.WaitGroup
	jobs    map[CronJob]*time.Timer
	stopped bool
	now     func() time.Time
	log     logger.Logger
}

func NewCronJobManager(log logger.Logger) *CronJobManager {
	return &CronJobManager{
		jobs: make(map[CronJob]*time.Timer),
		now:  time.Now,
		log:  log,
	}
}

func (m *CronJobManager) Register(jobs ...CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, job := range jobs {
		m.jobs[job] = nil
	}
}

// Start schedules every registered job and blocks until ctx is done and
// in-flight runs have returned.
func (m *CronJobManager) Start(ctx context.Context) {
	jobs := m.registered()
	m.log.Infof("Cron job manager started with %d jobs", len(jobs))

	for _, job := range jobs {
		if job.RunNow() {
			go m.fire(ctx, job)
		} else {
			m.schedule(ctx, job)
		}
	}

	<-ctx.Done()
	m.Cancel()
	m.wait.Wait()
	m.log.Infof("Cron job manager stopped")
}

// Cancel stops all pending timers. Runs already in progress finish.
func (m *CronJobManager) Cancel() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.stopped = true
	for job, timer := range m.jobs {
		if timer == nil {
			continue
		}
		timer.Stop()
		m.jobs[job] = nil
	}
}

func (m *CronJobManager) registered() []CronJob {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	jobs := make([]CronJob, 0, len(m.jobs))
	for job := range m.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

func (m *CronJobManager) fire(ctx context.Context, job CronJob) {
	m.mutex.Lock()
	if m.stopped {
		m.mutex.Unlock()
		return
	}
	m.wait.Add(1)
	m.mutex.Unlock()

	m.run(ctx, job)
}

func (m *CronJobManager) run(ctx context.Context, job CronJob) {
	defer m.wait.Done()

	m.log.Infof("%T is running...", job)
	job.Do(ctx)
	m.log.Infof("%T ok", job)

	m.schedule(ctx, job)
}

func (m *CronJobManager) schedule(ctx context.Context, job CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.stopped {
		return
	}
	if _, ok := m.jobs[job]; !ok {
		return
	}

	now := m.now()
	next := job.Next(now)
	m.jobs[job] = time.AfterFunc(next.Sub(now), func() { m.fire(ctx, job) })
}
