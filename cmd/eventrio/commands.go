package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"

	"eventrio/config"
	"eventrio/internal/adapters/cronlog"
	deliveryhttp "eventrio/internal/delivery/http"
	"eventrio/internal/domain"
	"eventrio/internal/repository/postgres"
)

const shutdownTimeout = 15 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API and the periodic reminder cycle.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-reminders", Usage: "Do not schedule reminder cycles in this process."},
			&cli.BoolFlag{Name: "migrate", Usage: "Apply the database schema before serving."},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApplication(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if c.Bool("migrate") {
				if err := postgres.Migrate(ctx, a.db); err != nil {
					return err
				}
			}

			if !c.Bool("no-reminders") {
				runner, err := a.startReminderCron()
				if err != nil {
					return err
				}
				defer func() {
					<-runner.Stop().Done()
				}()
			}

			return a.serveHTTP(ctx)
		},
	}
}

// startReminderCron schedules reminder cycles on REMINDER_SCHEDULE in the reminder timezone.
// Overlapping ticks are skipped rather than queued.
func (a *application) startReminderCron() (*cron.Cron, error) {
	logger := cronlog.New(a.logger)
	runner := cron.New(
		cron.WithLocation(a.cfg.Reminders.Location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	_, err := runner.AddFunc(a.cfg.Reminders.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Reminders.LockTTL)
		defer cancel()
		_, _ = a.runReminders(ctx, time.Now())
	})
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_SCHEDULE %q: %w", a.cfg.Reminders.Schedule, err)
	}
	runner.Start()
	a.logger.Info("reminder cron started", "schedule", a.cfg.Reminders.Schedule, "timezone", a.cfg.Reminders.Timezone)
	return runner, nil
}

func (a *application) serveHTTP(ctx context.Context) error {
	handler := deliveryhttp.NewRouter(a.routes, a.verifier, a.cfg.CORSOrigins, a.logger)
	srv := &http.Server{
		Addr:              net.JoinHostPort("", a.cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func remindCommand() *cli.Command {
	return &cli.Command{
		Name:  "remind",
		Usage: "Run one reminder cycle now and print its summary as JSON.",
		Flags: []cli.Flag{
			&cli.TimestampFlag{
				Name:   "at",
				Usage:  "Select events and word messages as if the cycle ran at this instant (RFC 3339). Sends are still recorded at the current time.",
				Layout: time.RFC3339,
			},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApplication(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			now := time.Now()
			if at := c.Timestamp("at"); at != nil {
				now = *at
			}
			summary, err := a.runReminders(ctx, now)
			if errors.Is(err, domain.ErrLockHeld) {
				return cli.Exit("another reminder cycle is running", 2)
			}
			if err != nil {
				return err
			}
			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply the embedded database schema.",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := config.NewLogger(cfg)
			db, err := openDB(c.Context, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(c.Context, db); err != nil {
				return err
			}
			logger.Info("schema applied")
			return nil
		},
	}
}
