package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"sweatsyncAPI/internal/config"
	"sweatsyncAPI/internal/jobs"
)

func main() {
	app := cli.NewApp()
	app.Name = "sweatsync"
	app.Usage = "Fitness challenge API and scheduled jobs"
	app.Action = serve
	app.Commands = []*cli.Command{
		{
			Action:      serve,
			Name:        "serve",
			Usage:       "Start the HTTP API",
			Category:    "Api",
			Description: `Serves /api/v1, the job triggers, health and metrics. Runs the cron scheduler unless RUN_SCHEDULER=false.`,
		},
		{
			Action:   runJob(jobs.JobRotateCreator),
			Name:     "rotate",
			Usage:    "Rotate daily-challenge creators that are due",
			Category: "Jobs",
		},
		{
			Action:   runJob(jobs.JobChallengeCleanup),
			Name:     "cleanup",
			Usage:    "Expire and archive ended challenges",
			Category: "Jobs",
		},
		{
			Action:   runJob(jobs.JobProcessReminders),
			Name:     "reminders",
			Usage:    "Send reminders due in a window",
			Category: "Jobs",
			Flags: []cli.Flag{
				&cli.TimestampFlag{Name: "start", Usage: "window start (RFC3339), default one hour ago", Layout: time.RFC3339, Timezone: time.UTC},
				&cli.TimestampFlag{Name: "end", Usage: "window end (RFC3339), default now", Layout: time.RFC3339, Timezone: time.UTC},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := load(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	return a.serve(ctx)
}

// runJob runs one job invocation and prints its response, for use from
// an external cron.
func runJob(name string) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx, cancel := context.WithTimeout(c.Context, 10*time.Minute)
		defer cancel()

		a, err := load(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		now := time.Now()
		var resp jobs.Response
		switch name {
		case jobs.JobRotateCreator:
			resp = a.runner.RotateCreators(ctx, now)
		case jobs.JobChallengeCleanup:
			resp = a.runner.ChallengeCleanup(ctx, now)
		case jobs.JobProcessReminders:
			window := jobs.LastHour(now)
			if start := c.Timestamp("start"); start != nil {
				window.StartTime = *start
			}
			if end := c.Timestamp("end"); end != nil {
				window.EndTime = *end
			}
			resp = a.runner.ProcessReminders(ctx, window)
		}

		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		if resp.StatusCode >= 400 {
			return cli.Exit("", 1)
		}
		return nil
	}
}

func load(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return newApp(ctx, cfg)
}
