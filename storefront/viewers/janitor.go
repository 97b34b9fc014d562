package viewers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/storefront/server/internal/batch"
	"codeberg.org/storefront/server/internal/logger"
)

type JanitorConfig struct {
	ActiveWindow    time.Duration
	RetentionWindow time.Duration
	BatchSize       int
	BatchPause      time.Duration

	// maximum records fetched per pass; larger backlogs drain over several runs
	FetchCap int
}

func DefaultJanitorConfig() JanitorConfig {
	return JanitorConfig{
		ActiveWindow:    5 * time.Minute,
		RetentionWindow: 24 * time.Hour,
		BatchSize:       25,
		BatchPause:      200 * time.Millisecond,
		FetchCap:        1000,
	}
}

// outcome of one sweep
type SweepReport struct {
	Expired         int       `json:"inactiveSessionsMarked"`
	ExpireFailed    int       `json:"expireFailed"`
	ExpireSkipped   int       `json:"expireSkipped"`
	Deleted         int       `json:"oldSessionsDeleted"`
	DeleteFailed    int       `json:"deleteFailed"`
	ActiveSessions  int       `json:"activeSessions"`
	PendingInactive int       `json:"pendingInactive"`
	TotalSessions   int       `json:"totalSessions"`
	StartedAt       time.Time `json:"startedAt"`
	FinishedAt      time.Time `json:"finishedAt"`
}

// expires stale sessions and deletes ones past retention.
// safe to run repeatedly and concurrently since both writes are idempotent.
type Janitor struct {
	store  Store
	cfg    JanitorConfig
	runner *batch.Runner
	now    func() time.Time
}

func NewJanitor(store Store, cfg JanitorConfig) *Janitor {
	return &Janitor{
		store:  store,
		cfg:    cfg,
		runner: batch.New(cfg.BatchSize, cfg.BatchPause),
		now:    time.Now,
	}
}

// replaces the wall clock, used by tests
func (j *Janitor) WithClock(now func() time.Time) *Janitor {
	j.now = now
	return j
}

// runs the soft-expire pass then the retention pass.
// a failed fetch aborts the run; failed writes are logged and counted.
func (j *Janitor) Sweep(ctx context.Context) (*SweepReport, error) {
	log := logger.FromContext(ctx)
	now := j.now().UTC().Truncate(time.Millisecond)
	staleCutoff := now.Add(-j.cfg.ActiveWindow)

	report := &SweepReport{StartedAt: now}

	if err := j.expireStale(ctx, staleCutoff, report); err != nil {
		report.FinishedAt = j.now().UTC()
		return report, err
	}

	if err := j.deleteExpired(ctx, now.Add(-j.cfg.RetentionWindow), report); err != nil {
		report.FinishedAt = j.now().UTC()
		return report, err
	}

	if stats, err := j.store.Stats(ctx, staleCutoff); err != nil {
		log.Warn("failed to collect session stats after sweep", "error", err)
	} else {
		report.ActiveSessions = stats.ActiveSessions
		report.PendingInactive = stats.PendingInactive
		report.TotalSessions = stats.TotalSessions
	}

	report.FinishedAt = j.now().UTC()

	log.Info("viewer session sweep completed",
		"expired", report.Expired,
		"expire_failed", report.ExpireFailed,
		"expire_skipped", report.ExpireSkipped,
		"deleted", report.Deleted,
		"delete_failed", report.DeleteFailed,
		"active_sessions", report.ActiveSessions,
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)

	return report, nil
}

func (j *Janitor) expireStale(ctx context.Context, cutoff time.Time, report *SweepReport) error {
	stale, err := j.store.ListStale(ctx, StaleQuery{Before: cutoff, ActiveOnly: true, Limit: j.cfg.FetchCap})
	if err != nil {
		return storeErr("list stale sessions", err)
	}

	if len(stale) == 0 {
		return nil
	}

	logger.FromContext(ctx).Debug("found stale viewer sessions", "count", len(stale), "cutoff", cutoff)

	res := batch.Each(ctx, j.runner, stale, func(ctx context.Context, s *ViewerSession) error {
		next, changed := OnSweepExpire(StateOf(s), cutoff)
		if !changed {
			return batch.ErrSkip
		}

		// deleted since the fetch; nothing left to expire
		err := j.store.Patch(ctx, s.SessionID, Patch{IsActive: ptr(next.IsActive())})
		if errors.Is(err, ErrSessionNotFound) {
			return batch.ErrSkip
		}

		return err
	})

	report.Expired += res.Succeeded
	report.ExpireFailed += res.Failed
	report.ExpireSkipped += res.Skipped
	j.logFailures(ctx, "failed to expire stale session", stale, res)

	return res.Err
}

func (j *Janitor) deleteExpired(ctx context.Context, cutoff time.Time, report *SweepReport) error {
	old, err := j.store.ListStale(ctx, StaleQuery{Before: cutoff, Limit: j.cfg.FetchCap})
	if err != nil {
		return storeErr("list expired sessions", err)
	}

	if len(old) == 0 {
		return nil
	}

	logger.FromContext(ctx).Debug("found viewer sessions past retention", "count", len(old), "cutoff", cutoff)

	res := batch.Each(ctx, j.runner, old, func(ctx context.Context, s *ViewerSession) error {
		return j.store.Delete(ctx, s.SessionID)
	})

	report.Deleted += res.Succeeded
	report.DeleteFailed += res.Failed
	j.logFailures(ctx, "failed to delete old session", old, res)

	return res.Err
}

func (j *Janitor) logFailures(ctx context.Context, msg string, sessions []*ViewerSession, res batch.Result) {
	log := logger.FromContext(ctx)

	for _, failure := range res.Errors {
		s := sessions[failure.Index]
		log.Error(msg,
			"error", failure.Err,
			"session_id", s.SessionID,
			"last_seen", s.LastSeen,
		)
	}
}

// begins the janitor background loop; blocks until ctx is done
func (j *Janitor) Start(ctx context.Context, interval time.Duration) {
	logger.Info("starting viewer session janitor",
		"interval", interval,
		"active_window", j.cfg.ActiveWindow,
		"retention_window", j.cfg.RetentionWindow,
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("viewer session janitor stopped")
			return
		case <-ticker.C:
			if _, err := j.Sweep(ctx); err != nil && ctx.Err() == nil {
				logger.ErrorErr(err, "viewer session sweep failed")
			}
		}
	}
}

func (r *SweepReport) String() string {
	return fmt.Sprintf("expired=%d (failed %d, skipped %d) deleted=%d (failed %d) active=%d pending=%d total=%d",
		r.Expired, r.ExpireFailed, r.ExpireSkipped, r.Deleted, r.DeleteFailed,
		r.ActiveSessions, r.PendingInactive, r.TotalSessions)
}
