package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/skysweep/skysweep/internal/domain/rule"
	"github.com/skysweep/skysweep/internal/domain/snapshot"
	"github.com/skysweep/skysweep/internal/pkg/logger"
	"github.com/skysweep/skysweep/internal/testutil"
)

type stubFetcher struct {
	snapshots []snapshot.ResourceSnapshot
	err       error
	calls     int
}

func (f *stubFetcher) FetchSnapshots(ctx context.Context) ([]snapshot.ResourceSnapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshots, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

func TestSweep_ReplacesCache(t *testing.T) {
	rules := testutil.NewMockRuleRepository()
	rules.Seed(rule.TypeEBSVolume, "Unattached EBS volumes", rule.Settings{
		rule.KeyEnabled:    rule.BoolValue(true),
		rule.KeyMinAgeDays: rule.IntValue(7),
	})

	cache := testutil.NewMockSnapshotRepository()
	cache.Snapshots = []snapshot.ResourceSnapshot{
		{ID: "vol-stale", ResourceType: rule.TypeEBSVolume, AgeDays: 5},
	}

	fetcher := &stubFetcher{snapshots: []snapshot.ResourceSnapshot{
		{ID: "vol-a", ResourceType: rule.TypeEBSVolume, EstimatedMonthlyCost: 30.0, AgeDays: 10},
		{ID: "vol-b", ResourceType: rule.TypeEBSVolume, EstimatedMonthlyCost: 15.0, AgeDays: 3},
	}}

	sweeper := NewWasteSweeper(fetcher, cache, rules, "@every 15m", testLogger())
	if err := sweeper.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	if len(cache.Snapshots) != 2 {
		t.Fatalf("Expected cache replaced with 2 snapshots, got %d", len(cache.Snapshots))
	}
	for _, s := range cache.Snapshots {
		if s.ID == "vol-stale" {
			t.Error("Stale snapshot survived the sweep")
		}
	}
}

func TestSweep_FetchErrorLeavesCache(t *testing.T) {
	cache := testutil.NewMockSnapshotRepository()
	cache.Snapshots = []snapshot.ResourceSnapshot{
		{ID: "vol-keep", ResourceType: rule.TypeEBSVolume, AgeDays: 5},
	}

	fetcher := &stubFetcher{err: errors.New("inventory unreachable")}
	sweeper := NewWasteSweeper(fetcher, cache, testutil.NewMockRuleRepository(), "@every 15m", testLogger())

	if err := sweeper.Sweep(context.Background()); err == nil {
		t.Fatal("Expected fetch error to surface")
	}
	if len(cache.Snapshots) != 1 || cache.Snapshots[0].ID != "vol-keep" {
		t.Error("Failed sweep must not touch the cache")
	}
}

func TestSweep_CacheWriteError(t *testing.T) {
	cache := testutil.NewMockSnapshotRepository()
	cache.ReplaceError = errors.New("disk full")

	fetcher := &stubFetcher{snapshots: []snapshot.ResourceSnapshot{
		{ID: "vol-a", ResourceType: rule.TypeEBSVolume, AgeDays: 10},
	}}
	sweeper := NewWasteSweeper(fetcher, cache, testutil.NewMockRuleRepository(), "@every 15m", testLogger())

	if err := sweeper.Sweep(context.Background()); err == nil {
		t.Fatal("Expected cache write error to surface")
	}
}

func TestStartStop(t *testing.T) {
	fetcher := &stubFetcher{}
	sweeper := NewWasteSweeper(fetcher, testutil.NewMockSnapshotRepository(),
		testutil.NewMockRuleRepository(), "@every 1h", testLogger())

	if err := sweeper.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("Expected one initial sweep, got %d", fetcher.calls)
	}
	sweeper.Stop()
}

func TestStart_BadSchedule(t *testing.T) {
	sweeper := NewWasteSweeper(&stubFetcher{}, testutil.NewMockSnapshotRepository(),
		testutil.NewMockRuleRepository(), "not a schedule", testLogger())

	if err := sweeper.Start(context.Background()); err == nil {
		t.Fatal("Expected error for invalid cron expression")
	}
}
