// Package jobs runs periodic maintenance against the database.
package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/store"
)

// jobTimeout bounds a single run.
const jobTimeout = 30 * time.Second

// Scheduler runs the low-stock report and the revoked token purge on cron
// schedules.
type Scheduler struct {
	db   *sql.DB
	cron *cron.Cron
	now  func() time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now for the purge cutoff.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New registers the jobs whose schedule is non-empty. Schedules use the
// standard five-field cron syntax plus descriptors such as @hourly.
func New(db *sql.DB, lowStockSchedule, purgeSchedule string, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		db:   db,
		cron: cron.New(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if lowStockSchedule != "" {
		if _, err := s.cron.AddJob(lowStockSchedule, cron.FuncJob(s.runLowStock)); err != nil {
			return nil, fmt.Errorf("scheduling low stock report: %w", err)
		}
	}
	if purgeSchedule != "" {
		if _, err := s.cron.AddJob(purgeSchedule, cron.FuncJob(s.runPurge)); err != nil {
			return nil, fmt.Errorf("scheduling token purge: %w", err)
		}
	}
	return s, nil
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// ReportLowStock logs every inventory line at or below its minimum and
// returns them.
func (s *Scheduler) ReportLowStock(ctx context.Context) ([]model.InventoryItem, error) {
	items, err := store.ListLowStock(ctx, s.db)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		slog.Warn("low stock",
			"item", it.ID,
			"name", it.Name,
			"qty", it.Quantity,
			"min_stock", it.MinStock,
		)
	}
	slog.Info("low stock report", "items", len(items))
	return items, nil
}

// PurgeTokens drops revocation entries for tokens that have expired.
func (s *Scheduler) PurgeTokens(ctx context.Context) (int64, error) {
	n, err := store.PurgeExpiredTokens(ctx, s.db, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("revoked tokens purged", "count", n)
	}
	return n, nil
}

func (s *Scheduler) runLowStock() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.ReportLowStock(ctx); err != nil {
		slog.Error("low stock report failed", "error", err)
	}
}

func (s *Scheduler) runPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.PurgeTokens(ctx); err != nil {
		slog.Error("token purge failed", "error", err)
	}
}
