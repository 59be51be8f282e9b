package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/eansearch/eansearch-go/internal/metrics"
	"github.com/eansearch/eansearch-go/internal/store"
)

// Lock leases outlive any reasonable single run; a crashed holder frees the
// job once the TTL expires.
const (
	refreshLockTTL = time.Hour
	pruneLockTTL   = 10 * time.Minute

	// Job rows in job_runs carry these names.
	JobRefresh = "refresh"
	JobPrune   = "prune"

	// Running job rows older than this belong to a crashed process.
	staleJobAge = 2 * time.Hour
)

// Scheduler manages periodic refresh and prune jobs. Each run takes a
// database lock first so a second replica skips instead of double-running.
type Scheduler struct {
	cron   *cron.Cron
	engine *Engine
	store  store.Store
	holder string
	log    *slog.Logger

	refreshEntryID cron.EntryID
	pruneEntryID   cron.EntryID
}

// NewScheduler creates a new Scheduler that runs engine jobs on a schedule.
func NewScheduler(
	eng *Engine,
	s store.Store,
	refreshInterval time.Duration,
	pruneInterval time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()

	sch := &Scheduler{
		cron:   c,
		engine: eng,
		store:  s,
		holder: holderName(),
		log:    log,
	}

	id, err := c.AddFunc("@every "+refreshInterval.String(), sch.runRefresh)
	if err != nil {
		return nil, err
	}
	sch.refreshEntryID = id

	id, err = c.AddFunc("@every "+pruneInterval.String(), sch.runPrune)
	if err != nil {
		return nil, err
	}
	sch.pruneEntryID = id

	return sch, nil
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started", "holder", s.holder)
	s.cron.Start()
	s.SyncNextRunTimestamps()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// SyncNextRunTimestamps exports the next scheduled run times as metrics.
func (s *Scheduler) SyncNextRunTimestamps() {
	for _, e := range s.cron.Entries() {
		switch e.ID {
		case s.refreshEntryID:
			metrics.SchedulerNextRefreshTimestamp.Set(float64(e.Next.Unix()))
		case s.pruneEntryID:
			metrics.SchedulerNextPruneTimestamp.Set(float64(e.Next.Unix()))
		}
	}
}

// RecoverStaleJobRuns marks job rows abandoned by a crashed process so the
// run history does not show phantom in-flight jobs. Called once at startup.
func (s *Scheduler) RecoverStaleJobRuns(ctx context.Context) {
	n, err := s.store.RecoverStaleJobRuns(ctx, staleJobAge)
	if err != nil {
		s.log.Error("recovering stale job runs failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Warn("recovered stale job runs", "count", n)
	}
}

func (s *Scheduler) runRefresh() {
	s.log.Info("scheduled refresh starting")
	if err := s.runJob(context.Background(), JobRefresh, refreshLockTTL, s.engine.RunRefresh); err != nil {
		s.log.Error("scheduled refresh failed", "error", err)
	}
	s.SyncNextRunTimestamps()
}

func (s *Scheduler) runPrune() {
	s.log.Info("scheduled prune starting")
	if err := s.runJob(context.Background(), JobPrune, pruneLockTTL, s.engine.RunPrune); err != nil {
		s.log.Error("scheduled prune failed", "error", err)
	}
	s.SyncNextRunTimestamps()
}

// runJob wraps a job with lock acquisition and job_runs bookkeeping.
func (s *Scheduler) runJob(
	ctx context.Context,
	name string,
	ttl time.Duration,
	fn func(ctx context.Context) (int, error),
) error {
	acquired, err := s.store.AcquireSchedulerLock(ctx, name, s.holder, ttl)
	if err != nil {
		return fmt.Errorf("acquiring scheduler lock: %w", err)
	}
	if !acquired {
		s.log.Info("job already running elsewhere, skipping", "job", name)
		return nil
	}
	defer func() {
		if relErr := s.store.ReleaseSchedulerLock(ctx, name, s.holder); relErr != nil {
			s.log.Error("releasing scheduler lock failed", "job", name, "error", relErr)
		}
	}()

	runID, err := s.store.InsertJobRun(ctx, name)
	if err != nil {
		s.log.Error("recording job run failed", "job", name, "error", err)
	}

	rows, jobErr := fn(ctx)

	if runID != "" {
		status, errText := "ok", ""
		if jobErr != nil {
			status, errText = "error", jobErr.Error()
		}
		if err := s.store.CompleteJobRun(ctx, runID, status, errText, rows); err != nil {
			s.log.Error("completing job run failed", "job", name, "error", err)
		}
	}

	return jobErr
}

// holderName identifies this process in scheduler_locks rows.
func holderName() string {
	suffix := uuid.NewString()[:8]
	host, err := os.Hostname()
	if err != nil {
		return suffix
	}
	return host + "-" + suffix
}
