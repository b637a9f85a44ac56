package upload

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"photoshare/internal/pkg/blob"
)

const DefaultSweepInterval = time.Hour

// SweepReport summarizes one sweep.
type SweepReport struct {
	Found    int
	Deleted  int
	Failed   int
	Duration time.Duration
}

// Sweeper removes uploads whose expiry has passed.
type Sweeper struct {
	repo     Repository
	blobs    *blob.Store
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time
}

func NewSweeper(repo Repository, blobs *blob.Store, log *zap.Logger, interval time.Duration, now func() time.Time) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if now == nil {
		now = time.Now
	}
	return &Sweeper{repo: repo, blobs: blobs, log: log, interval: interval, now: now}
}

// RunOnce deletes every upload that had expired when the sweep started.
// Per-upload failures are logged and counted; only the initial query fails
// the sweep.
func (s *Sweeper) RunOnce(ctx context.Context) (SweepReport, error) {
	start := time.Now()
	var report SweepReport

	expired, err := s.repo.ListExpired(ctx, s.now().UTC())
	if err != nil {
		s.log.Error("expiry sweep query failed", zap.Error(err))
		return report, err
	}
	report.Found = len(expired)

	for i := range expired {
		if ctx.Err() != nil {
			break
		}
		u := &expired[i]
		if err := s.blobs.Remove(u.Filename); err != nil {
			s.log.Error("expiry sweep: failed to remove blob",
				zap.Uint64("id", u.ID),
				zap.String("filename", u.Filename),
				zap.Error(err),
			)
		}
		if err := s.repo.Delete(ctx, u.ID); err != nil {
			if errors.Is(err, ErrNotFound) {
				// deleted by its owner after the snapshot
				s.log.Debug("expiry sweep: upload already gone", zap.Uint64("id", u.ID))
				report.Deleted++
				continue
			}
			report.Failed++
			s.log.Error("expiry sweep: failed to delete upload", zap.Uint64("id", u.ID), zap.Error(err))
			continue
		}
		report.Deleted++
	}

	report.Duration = time.Since(start)
	if report.Found > 0 {
		s.log.Info("expiry sweep completed",
			zap.Int("found", report.Found),
			zap.Int("deleted", report.Deleted),
			zap.Int("failed", report.Failed),
			zap.Duration("duration", report.Duration),
		)
	}
	return report, nil
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	s.log.Info("expiry sweeper started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	_, _ = s.RunOnce(ctx)
	for {
		select {
		case <-ticker.C:
			_, _ = s.RunOnce(ctx)
		case <-ctx.Done():
			s.log.Info("expiry sweeper stopped")
			return nil
		}
	}
}
