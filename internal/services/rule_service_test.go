package services

import (
	"context"
	"errors"
	"testing"

	"github.com/skysweep/skysweep/internal/domain/rule"
	apperrors "github.com/skysweep/skysweep/internal/pkg/errors"
	"github.com/skysweep/skysweep/internal/pkg/logger"
	"github.com/skysweep/skysweep/internal/testutil"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

func seededRuleRepo() *testutil.MockRuleRepository {
	repo := testutil.NewMockRuleRepository()
	repo.Seed(rule.TypeEBSVolume, "Unattached EBS volumes", rule.Settings{
		rule.KeyEnabled:                rule.BoolValue(true),
		rule.KeyMinAgeDays:             rule.IntValue(7),
		rule.KeyConfidenceCriticalDays: rule.IntValue(90),
		rule.KeyConfidenceHighDays:     rule.IntValue(30),
		rule.KeyConfidenceMediumDays:   rule.IntValue(7),
	})
	repo.Seed(rule.TypeEC2Stopped, "Long-stopped EC2 instances", rule.Settings{
		rule.KeyEnabled:        rule.BoolValue(true),
		rule.KeyMinStoppedDays: rule.IntValue(30),
	})
	return repo
}

func TestRuleService_UpdateSetting(t *testing.T) {
	repo := seededRuleRepo()
	svc := NewRuleService(repo, testLogger())

	updated, err := svc.UpdateSetting(context.Background(), rule.TypeEBSVolume, rule.KeyMinAgeDays, rule.IntValue(14))
	if err != nil {
		t.Fatalf("UpdateSetting failed: %v", err)
	}
	if got, _ := updated.CurrentSettings.Int(rule.KeyMinAgeDays); got != 14 {
		t.Errorf("Expected min_age_days 14, got %d", got)
	}
	if !updated.IsCustomized() {
		t.Error("Expected rule to be customized after edit")
	}

	// The override must be persisted, not just returned.
	stored, err := svc.GetRule(context.Background(), rule.TypeEBSVolume)
	if err != nil {
		t.Fatalf("GetRule failed: %v", err)
	}
	if got, _ := stored.CurrentSettings.Int(rule.KeyMinAgeDays); got != 14 {
		t.Errorf("Expected persisted min_age_days 14, got %d", got)
	}
	if got, _ := stored.DefaultSettings.Int(rule.KeyMinAgeDays); got != 7 {
		t.Errorf("Defaults must not change on edit, got %d", got)
	}
}

func TestRuleService_UpdateSetting_UnknownRule(t *testing.T) {
	svc := NewRuleService(seededRuleRepo(), testLogger())

	_, err := svc.UpdateSetting(context.Background(), "quantum_widget", rule.KeyEnabled, rule.BoolValue(false))
	if err == nil {
		t.Fatal("Expected error for unknown resource type")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrCodeRuleNotFound {
		t.Errorf("Expected RULE_NOT_FOUND, got %v", err)
	}
}

func TestRuleService_UpdateSetting_PersistFailure(t *testing.T) {
	repo := seededRuleRepo()
	repo.ReplaceError = errors.New("disk full")
	svc := NewRuleService(repo, testLogger())

	_, err := svc.UpdateSetting(context.Background(), rule.TypeEBSVolume, rule.KeyMinAgeDays, rule.IntValue(14))
	if err == nil {
		t.Fatal("Expected persist error to surface")
	}
}

func TestRuleService_Reset(t *testing.T) {
	repo := seededRuleRepo()
	svc := NewRuleService(repo, testLogger())
	ctx := context.Background()

	if _, err := svc.UpdateSetting(ctx, rule.TypeEBSVolume, rule.KeyMinAgeDays, rule.IntValue(60)); err != nil {
		t.Fatalf("UpdateSetting failed: %v", err)
	}

	reset, err := svc.Reset(ctx, rule.TypeEBSVolume)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if reset.IsCustomized() {
		t.Error("Expected rule to be uncustomized after reset")
	}
	if got, _ := reset.CurrentSettings.Int(rule.KeyMinAgeDays); got != 7 {
		t.Errorf("Expected factory min_age_days 7, got %d", got)
	}

	stored, err := svc.GetRule(ctx, rule.TypeEBSVolume)
	if err != nil {
		t.Fatalf("GetRule failed: %v", err)
	}
	if stored.IsCustomized() {
		t.Error("Expected reset to remove the persisted override")
	}
}

func TestRuleService_Reset_NeverCustomized(t *testing.T) {
	svc := NewRuleService(seededRuleRepo(), testLogger())

	reset, err := svc.Reset(context.Background(), rule.TypeEC2Stopped)
	if err != nil {
		t.Fatalf("Reset of pristine rule should succeed: %v", err)
	}
	if reset.IsCustomized() {
		t.Error("Pristine rule should stay uncustomized")
	}
}

func TestRuleService_ResetAll(t *testing.T) {
	repo := seededRuleRepo()
	svc := NewRuleService(repo, testLogger())
	ctx := context.Background()

	if _, err := svc.UpdateSetting(ctx, rule.TypeEBSVolume, rule.KeyMinAgeDays, rule.IntValue(60)); err != nil {
		t.Fatalf("UpdateSetting failed: %v", err)
	}
	if _, err := svc.UpdateSetting(ctx, rule.TypeEC2Stopped, rule.KeyEnabled, rule.BoolValue(false)); err != nil {
		t.Fatalf("UpdateSetting failed: %v", err)
	}

	count, err := svc.ResetAll(ctx)
	if err != nil {
		t.Fatalf("ResetAll failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 overrides removed, got %d", count)
	}

	// A second reset finds nothing to remove.
	count, err = svc.ResetAll(ctx)
	if err != nil {
		t.Fatalf("ResetAll failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 overrides removed on repeat, got %d", count)
	}
}

func TestRuleService_ReplaceSettings(t *testing.T) {
	svc := NewRuleService(seededRuleRepo(), testLogger())

	settings := rule.Settings{
		rule.KeyEnabled:    rule.BoolValue(false),
		rule.KeyMinAgeDays: rule.IntValue(1),
	}
	updated, err := svc.ReplaceSettings(context.Background(), rule.TypeEBSVolume, settings)
	if err != nil {
		t.Fatalf("ReplaceSettings failed: %v", err)
	}
	if updated.Enabled() {
		t.Error("Expected rule disabled after replace")
	}
	if len(updated.CurrentSettings) != 2 {
		t.Errorf("Expected exactly the replaced keys, got %d", len(updated.CurrentSettings))
	}

	// Mutating the caller's map must not leak into the stored settings.
	settings[rule.KeyMinAgeDays] = rule.IntValue(999)
	stored, _ := svc.GetRule(context.Background(), rule.TypeEBSVolume)
	if got, _ := stored.CurrentSettings.Int(rule.KeyMinAgeDays); got != 1 {
		t.Errorf("Stored settings aliased the caller's map, got %d", got)
	}
}

func TestRuleService_ListRules(t *testing.T) {
	repo := seededRuleRepo()
	svc := NewRuleService(repo, testLogger())
	ctx := context.Background()

	rules, err := svc.ListRules(ctx)
	if err != nil {
		t.Fatalf("ListRules failed: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(rules))
	}

	repo.ListError = errors.New("connection refused")
	if _, err := svc.ListRules(ctx); err == nil {
		t.Error("Expected list error to surface")
	}
}
