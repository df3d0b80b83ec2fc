package main

import (
	"context"
	"fmt"

	clerk "github.com/clerk/clerk-sdk-go/v2"

	"sweatsyncAPI/handlers"
	"sweatsyncAPI/internal/config"
	"sweatsyncAPI/internal/joblock"
	"sweatsyncAPI/internal/jobs"
	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/internal/metrics"
	"sweatsyncAPI/internal/notification"
	"sweatsyncAPI/internal/store"
	"sweatsyncAPI/internal/workers"
	"sweatsyncAPI/services"
)

type app struct {
	cfg    *config.Config
	log    logger.Logger
	store  store.Store
	locker joblock.Locker
	closer []func()

	challengeService    *services.ChallengeService
	rulesService        *services.RulesService
	postService         *services.PostService
	reminderService     *services.ReminderService
	notificationService *services.NotificationService
	runner              *jobs.Runner
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.New(cfg.LogLevel)
	a := &app{cfg: cfg, log: log}

	if err := a.loadStore(ctx); err != nil {
		a.close()
		return nil, err
	}
	a.loadLocker(ctx)
	a.loadServices(ctx)
	metrics.Init()

	return a, nil
}

func (a *app) loadStore(ctx context.Context) error {
	switch a.cfg.StoreDriver {
	case config.StoreMemory:
		a.log.Warn("Using in-memory store; data is lost on restart")
		a.store = store.NewMemoryStore()
		return nil
	default:
		pool, err := store.Connect(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return err
		}
		a.closer = append(a.closer, pool.Close)
		if err := store.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		a.log.Info("Successfully connected to Postgres")
		a.store = store.NewPostgresStore(pool)
		return nil
	}
}

// Without REDIS_ADDR the lock only covers this process.
func (a *app) loadLocker(ctx context.Context) {
	if a.cfg.RedisAddr == "" {
		a.locker = joblock.NewLocalLocker()
		return
	}
	rl, err := joblock.NewRedisLocker(ctx, a.cfg.RedisAddr)
	if err != nil {
		a.log.Warnf("Could not connect to Redis at %s, falling back to a local job lock: %v", a.cfg.RedisAddr, err)
		a.locker = joblock.NewLocalLocker()
		return
	}
	a.closer = append(a.closer, func() { rl.Close() })
	a.locker = rl
}

func (a *app) loadServices(ctx context.Context) {
	loc := a.cfg.RulesLocation()

	a.notificationService = services.NewNotificationService(a.store, a.cfg.PushMaxAttempts, a.cfg.PushBackoff, a.log)
	fcmService, err := notification.NewFCMService(ctx, a.cfg.FCMServiceAccountJSON, a.cfg.FCMCredentialsFile, a.log)
	if err != nil {
		a.log.Warnf("Could not initialize FCM, pushes will only be logged: %v", err)
	} else {
		a.notificationService.SetPushProvider(fcmService)
		a.log.Info("FCM Push Provider initialized successfully")
	}

	a.rulesService = services.NewRulesService(a.store, loc, a.log)
	points := services.NewPointsService(a.store, a.log)
	a.postService = services.NewPostService(a.store, a.rulesService, points, a.log)
	a.challengeService = services.NewChallengeService(a.store, a.notificationService, loc, a.log)
	a.reminderService = services.NewReminderService(a.store, a.log)

	rotation := services.NewRotationService(a.store, a.notificationService, a.log)
	cleanup := services.NewCleanupService(a.store, a.log)
	dispatcher := services.NewReminderDispatcher(a.store, a.notificationService, loc, a.cfg.ReminderWorkers, a.log)
	a.runner = jobs.NewRunner(rotation, cleanup, dispatcher, a.locker, a.log)
}

func (a *app) handlers() *handlers.API {
	return &handlers.API{
		Challenges:    handlers.NewChallengeHandler(a.challengeService, a.log),
		Posts:         handlers.NewPostHandler(a.rulesService, a.postService, a.log),
		Reminders:     handlers.NewReminderHandler(a.reminderService, a.log),
		Notifications: handlers.NewNotificationHandler(a.notificationService, a.log),
	}
}

func (a *app) scheduler() *workers.CronJobManager {
	m := workers.NewCronJobManager(a.log)
	m.Register(
		workers.NewRotationCronJob(a.runner),
		workers.NewCleanupCronJob(a.runner),
		workers.NewReminderCronJob(a.runner, a.cfg.ReminderCatchUp),
	)
	return m
}

func (a *app) setClerkKey() error {
	if a.cfg.ClerkSecretKey == "" {
		return fmt.Errorf("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(a.cfg.ClerkSecretKey)
	a.log.Info("Clerk initialized successfully")
	return nil
}

func (a *app) close() {
	for i := len(a.closer) - 1; i >= 0; i-- {
		a.closer[i]()
	}
}
