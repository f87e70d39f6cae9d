// Package jobs runs background work on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fritter/internal/cache"
	"fritter/internal/middleware"
	"fritter/internal/models"
	"fritter/internal/notifications"
	"fritter/internal/observability"

	"github.com/robfig/cron/v3"
)

// ExpiredFreetSource lists freets whose expiration falls in a window.
type ExpiredFreetSource interface {
	ListExpiredBetween(ctx context.Context, after, upTo time.Time) ([]*models.Freet, error)
}

// EventPublisher delivers realtime events.
type EventPublisher interface {
	Publish(ctx context.Context, ev notifications.Event) error
}

// ExpirySweeper reports freets that crossed their expiration since the
// previous run. Nothing is written to the database; expiry is a read-time
// property and the sweeper only refreshes caches and listeners.
type ExpirySweeper struct {
	freets ExpiredFreetSource
	events EventPublisher
	now    func() time.Time

	mu      sync.Mutex
	lastRun time.Time
	cron    *cron.Cron
}

func NewExpirySweeper(freets ExpiredFreetSource, events EventPublisher) *ExpirySweeper {
	return &ExpirySweeper{
		freets:  freets,
		events:  events,
		now:     time.Now,
		lastRun: time.Now().UTC(),
	}
}

// WithClock replaces the time source and restarts the window at its current time.
func (s *ExpirySweeper) WithClock(now func() time.Time) *ExpirySweeper {
	s.now = now
	s.lastRun = now().UTC()
	return s
}

func (s *ExpirySweeper) Name() string { return "expiry sweeper" }

// Sweep handles the window (lastRun, now] and returns how many freets expired in it.
// The window only advances when the listing succeeds.
func (s *ExpirySweeper) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	upTo := s.now().UTC()
	expired, err := s.freets.ListExpiredBetween(ctx, s.lastRun, upTo)
	if err != nil {
		observability.ExpirySweeps.WithLabelValues("error").Inc()
		return 0, err
	}
	s.lastRun = upTo
	observability.ExpirySweeps.WithLabelValues("ok").Inc()
	if len(expired) == 0 {
		return 0, nil
	}

	authors := make([]uint, 0, len(expired))
	seen := make(map[uint]struct{}, len(expired))
	for _, f := range expired {
		if _, ok := seen[f.AuthorID]; !ok {
			seen[f.AuthorID] = struct{}{}
			authors = append(authors, f.AuthorID)
		}
	}
	cache.InvalidateFreets(ctx, authors...)
	observability.FreetsExpired.Add(float64(len(expired)))

	if s.events != nil {
		for _, f := range expired {
			ev := notifications.Event{
				Type:      notifications.EventFreetExpired,
				Payload:   models.NewFreetResponse(f),
				Recipient: f.AuthorID,
			}
			if err := s.events.Publish(ctx, ev); err != nil {
				middleware.Logger.WarnContext(ctx, "failed to publish expiry event",
					slog.Uint64("freet_id", uint64(f.ID)), slog.String("error", err.Error()))
			}
		}
	}

	middleware.Logger.InfoContext(ctx, "expiry sweep finished", slog.Int("expired", len(expired)))
	return len(expired), nil
}

// Start schedules Sweep. schedule uses the standard cron syntax, including
// descriptors such as "@every 1m". An empty schedule disables the sweeper.
func (s *ExpirySweeper) Start(schedule string) error {
	if schedule == "" {
		return nil
	}
	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			middleware.Logger.Error("expiry sweep failed", slog.String("error", err.Error()))
		}
	}); err != nil {
		return fmt.Errorf("schedule expiry sweeper: %w", err)
	}

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()
	c.Start()
	middleware.Logger.Info("expiry sweeper started", slog.String("schedule", schedule))
	return nil
}

// Shutdown stops scheduling and waits for a running sweep to finish.
func (s *ExpirySweeper) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return nil
	}
	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts the cron scheduler's logger to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	middleware.Logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{slog.String("error", err.Error())}, keysAndValues...)
	middleware.Logger.Error("cron: "+msg, args...)
}
