package services

import (
	"context"
	"time"

	"github.com/skysweep/skysweep/internal/domain/confidence"
	"github.com/skysweep/skysweep/internal/domain/rule"
	"github.com/skysweep/skysweep/internal/domain/snapshot"
	"github.com/skysweep/skysweep/internal/pkg/logger"
)

// TierCounts holds per-tier orphan counts for a summary.
type TierCounts map[confidence.Tier]int

// WasteSummary aggregates the waste picture across all cached orphans.
type WasteSummary struct {
	TotalResources  int        `json:"total_resources"`
	MonthlyRunRate  float64    `json:"monthly_run_rate"`
	AccruedWaste    float64    `json:"accrued_waste"`
	UnknownAge      int        `json:"unknown_age"`
	TierCounts      TierCounts `json:"tier_counts"`
	DisabledSkipped int        `json:"disabled_skipped"`
}

// OrphanService combines cached inventory snapshots with the current
// detection rules to produce scored orphan listings and summaries.
type OrphanService struct {
	snapshots snapshot.Repository
	rules     rule.Repository
	logger    *logger.Logger
	now       func() time.Time
}

// NewOrphanService creates a new orphan service
func NewOrphanService(snapshots snapshot.Repository, rules rule.Repository, log *logger.Logger) *OrphanService {
	return &OrphanService{
		snapshots: snapshots,
		rules:     rules,
		logger:    log,
		now:       time.Now,
	}
}

// WithClock overrides the clock, for tests that pin sub-day accrual.
func (s *OrphanService) WithClock(now func() time.Time) *OrphanService {
	s.now = now
	return s
}

// List retrieves scored orphan evaluations. Tier filtering happens
// here rather than in the store because the tier is derived from the
// rule thresholds, not persisted.
func (s *OrphanService) List(ctx context.Context, filter snapshot.Filter, limit, offset int) ([]snapshot.Evaluation, int64, error) {
	rules, err := s.rules.List(ctx)
	if err != nil {
		return nil, 0, err
	}

	// Tier filters are applied post-query, so pull the full filtered
	// set and page in memory only in that case.
	queryLimit, queryOffset := limit, offset
	if filter.Tier != "" {
		queryLimit, queryOffset = -1, 0
	}

	snapshots, total, err := s.snapshots.List(ctx, filter, queryLimit, queryOffset)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	evaluations := make([]snapshot.Evaluation, 0, len(snapshots))
	for _, snap := range snapshots {
		r, ok := rule.Find(rules, snap.ResourceType)
		if !ok {
			// Inventory can report types this deployment has no rule
			// for yet; score them with the fallback thresholds.
			r = rule.DetectionRule{ResourceType: snap.ResourceType}
		}
		evaluations = append(evaluations, snapshot.Evaluate(snap, r, now))
	}

	if filter.Tier != "" {
		filtered := evaluations[:0]
		for _, ev := range evaluations {
			if ev.Tier == filter.Tier {
				filtered = append(filtered, ev)
			}
		}
		evaluations = filtered
		total = int64(len(evaluations))

		if offset >= len(evaluations) {
			evaluations = nil
		} else {
			end := offset + limit
			if limit < 0 || end > len(evaluations) {
				end = len(evaluations)
			}
			evaluations = evaluations[offset:end]
		}
	}

	return evaluations, total, nil
}

// Summary aggregates tier counts, run rate, and accrued waste across
// the whole cached inventory. Resources whose rule is disabled are
// counted separately and excluded from the totals.
func (s *OrphanService) Summary(ctx context.Context) (*WasteSummary, error) {
	rules, err := s.rules.List(ctx)
	if err != nil {
		return nil, err
	}

	snapshots, _, err := s.snapshots.List(ctx, snapshot.Filter{}, -1, 0)
	if err != nil {
		return nil, err
	}

	now := s.now()
	summary := &WasteSummary{
		TierCounts: TierCounts{
			confidence.TierCritical: 0,
			confidence.TierHigh:     0,
			confidence.TierMedium:   0,
			confidence.TierLow:      0,
		},
	}

	for _, snap := range snapshots {
		r, ok := rule.Find(rules, snap.ResourceType)
		if ok && !r.Enabled() {
			summary.DisabledSkipped++
			continue
		}
		if !ok {
			r = rule.DetectionRule{ResourceType: snap.ResourceType}
		}

		ev := snapshot.Evaluate(snap, r, now)
		summary.TotalResources++
		summary.MonthlyRunRate += snap.EstimatedMonthlyCost
		summary.TierCounts[ev.Tier]++
		if ev.Accrued.Known {
			summary.AccruedWaste += ev.Accrued.Amount
		} else {
			summary.UnknownAge++
		}
	}

	return summary, nil
}
