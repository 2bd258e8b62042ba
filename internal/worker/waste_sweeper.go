package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/skysweep/skysweep/internal/domain/rule"
	"github.com/skysweep/skysweep/internal/domain/snapshot"
	"github.com/skysweep/skysweep/internal/pkg/logger"
	"github.com/skysweep/skysweep/internal/pkg/metrics"
)

// Fetcher pulls the current orphan candidate set from the inventory
// service.
type Fetcher interface {
	FetchSnapshots(ctx context.Context) ([]snapshot.ResourceSnapshot, error)
}

// WasteSweeper periodically pulls snapshots from the inventory
// service, replaces the local cache wholesale, and republishes the
// waste gauges. Each sweep is last-write-wins over the previous cache.
type WasteSweeper struct {
	fetcher   Fetcher
	snapshots snapshot.Repository
	rules     rule.Repository
	schedule  string
	cron      *cron.Cron
	logger    *logger.Logger
	now       func() time.Time
}

// NewWasteSweeper creates a new waste sweeper worker. schedule is a
// cron expression, e.g. "@every 15m".
func NewWasteSweeper(
	fetcher Fetcher,
	snapshots snapshot.Repository,
	rules rule.Repository,
	schedule string,
	log *logger.Logger,
) *WasteSweeper {
	return &WasteSweeper{
		fetcher:   fetcher,
		snapshots: snapshots,
		rules:     rules,
		schedule:  schedule,
		logger:    log,
		now:       time.Now,
	}
}

// Start runs an initial sweep and schedules recurring ones. It returns
// after scheduling; Stop halts the cron loop.
func (s *WasteSweeper) Start(ctx context.Context) error {
	s.logger.WithFields(map[string]interface{}{
		"schedule": s.schedule,
	}).Info("Starting waste sweeper")

	if err := s.Sweep(ctx); err != nil {
		s.logger.ErrorWithErr(err, "Initial sweep failed")
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.Sweep(ctx); err != nil {
			s.logger.ErrorWithErr(err, "Scheduled sweep failed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the recurring sweeps and waits for a running one.
func (s *WasteSweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.logger.Info("Waste sweeper stopped")
}

// Sweep performs one fetch-cache-publish cycle.
func (s *WasteSweeper) Sweep(ctx context.Context) error {
	start := s.now()

	snapshots, err := s.fetcher.FetchSnapshots(ctx)
	if err != nil {
		metrics.RecordSweep("error", s.now().Sub(start))
		return err
	}

	if err := s.snapshots.ReplaceAll(ctx, snapshots); err != nil {
		metrics.RecordSweep("error", s.now().Sub(start))
		return err
	}

	s.publishGauges(ctx, snapshots)
	metrics.RecordSweep("success", s.now().Sub(start))

	s.logger.WithFields(map[string]interface{}{
		"snapshots":   len(snapshots),
		"duration_ms": s.now().Sub(start).Milliseconds(),
	}).Info("Sweep completed")

	return nil
}

// publishGauges recomputes the waste totals and per-type tier counts
// from the freshly cached set. Resources whose rule is disabled are
// left out of the totals, matching the summary endpoint.
func (s *WasteSweeper) publishGauges(ctx context.Context, snapshots []snapshot.ResourceSnapshot) {
	rules, err := s.rules.List(ctx)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to load rules for gauge update")
		return
	}

	type bucket struct {
		resourceType string
		tier         string
	}
	counts := make(map[bucket]float64)
	var runRate, accrued float64

	now := s.now()
	for _, snap := range snapshots {
		r, ok := rule.Find(rules, snap.ResourceType)
		if ok && !r.Enabled() {
			continue
		}
		if !ok {
			r = rule.DetectionRule{ResourceType: snap.ResourceType}
		}

		ev := snapshot.Evaluate(snap, r, now)
		counts[bucket{snap.ResourceType, string(ev.Tier)}]++
		runRate += snap.EstimatedMonthlyCost
		if ev.Accrued.Known {
			accrued += ev.Accrued.Amount
		}
	}

	for b, count := range counts {
		metrics.SetOrphanedResources(b.resourceType, b.tier, count)
	}
	metrics.SetMonthlyRunRate(runRate)
	metrics.SetAccruedWaste(accrued)
}
