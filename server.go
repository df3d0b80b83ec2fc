package main

import (
	"context"
	"net/http"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sweatsyncAPI/handlers"
	"sweatsyncAPI/middleware"

	_ "net/http/pprof"
)

func (a *app) router(ctx context.Context, verify middleware.TokenVerifier) http.Handler {
	r := mux.NewRouter()

	standardRouter := r.PathPrefix("/").Subrouter()

	limiter := middleware.NewRateLimiter(5, 30)
	go limiter.Cleanup(ctx)

	standardRouter.Use(limiter.Middleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(a.cfg.MetricsUser, a.cfg.MetricsPass)(promhttp.Handler()))
	standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(a.cfg.PprofSecret)(http.DefaultServeMux))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := a.store.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "sweatsync-api"}`))
	}).Methods("GET")

	jobRouter := standardRouter.PathPrefix("/jobs").Subrouter()
	jobRouter.Use(middleware.JobSecretMiddleware(a.cfg.JobSecret))
	handlers.NewJobHandler(a.runner, a.log).Register(jobRouter)

	api := standardRouter.PathPrefix("/api/v1").Subrouter()
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware(verify, a.log))
	a.handlers().Register(protected)

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret", "X-Job-Secret"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorillaHandlers.AllowCredentials(),
	)
	return corsHandler(r)
}

func (a *app) serve(ctx context.Context) error {
	if err := a.setClerkKey(); err != nil {
		return err
	}
	middleware.InitPrometheus()

	server := http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      a.router(ctx, middleware.ClerkVerifier),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	schedulerDone := make(chan struct{})
	if a.cfg.RunScheduler {
		go func() {
			defer close(schedulerDone)
			a.scheduler().Start(ctx)
		}()
	} else {
		close(schedulerDone)
	}

	serverErr := make(chan error, 1)
	go func() {
		a.log.Infof("Starting server on port %s", a.cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok && err != nil {
			return err
		}
	case <-ctx.Done():
		a.log.Info("Shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.log.Errorf("Server shutdown error: %v", err)
	}
	<-schedulerDone

	a.log.Info("Server shutdown complete")
	return nil
}
