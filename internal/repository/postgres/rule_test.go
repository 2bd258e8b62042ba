package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/skysweep/skysweep/internal/domain/rule"
	apperrors "github.com/skysweep/skysweep/internal/pkg/errors"
	"github.com/skysweep/skysweep/internal/testutil"
)

func TestRuleRepository_List(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRuleRepository(db)

	rules, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(rules) != 3 {
		t.Fatalf("Expected 3 seeded rules, got %d", len(rules))
	}

	// Ordered by resource type.
	if rules[0].ResourceType != "ebs_volume" {
		t.Errorf("Expected ebs_volume first, got %s", rules[0].ResourceType)
	}
	for _, r := range rules {
		if r.IsCustomized() {
			t.Errorf("%s: seeded rule should not be customized", r.ResourceType)
		}
	}

	ebs := rules[0]
	if days, ok := ebs.CurrentSettings.Int(rule.KeyMinAgeDays); !ok || days != 7 {
		t.Errorf("Expected min_age_days 7, got %d (ok=%v)", days, ok)
	}
	if !ebs.Enabled() {
		t.Error("Expected ebs_volume enabled")
	}
}

func TestRuleRepository_GetByType_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRuleRepository(db)

	_, err := repo.GetByType(context.Background(), "quantum_widget")
	if err == nil {
		t.Fatal("Expected error for unknown resource type")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrCodeRuleNotFound {
		t.Errorf("Expected RULE_NOT_FOUND, got %v", err)
	}
}

func TestRuleRepository_OverrideLifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRuleRepository(db)
	ctx := context.Background()

	original, err := repo.GetByType(ctx, "ebs_volume")
	if err != nil {
		t.Fatalf("GetByType failed: %v", err)
	}

	edited := original.CurrentSettings.Clone()
	edited[rule.KeyMinAgeDays] = rule.IntValue(30)
	if err := repo.ReplaceSettings(ctx, "ebs_volume", edited); err != nil {
		t.Fatalf("ReplaceSettings failed: %v", err)
	}

	customized, err := repo.GetByType(ctx, "ebs_volume")
	if err != nil {
		t.Fatalf("GetByType failed: %v", err)
	}
	if !customized.IsCustomized() {
		t.Error("Expected rule customized after override")
	}
	if days, _ := customized.CurrentSettings.Int(rule.KeyMinAgeDays); days != 30 {
		t.Errorf("Expected min_age_days 30, got %d", days)
	}
	if days, _ := customized.DefaultSettings.Int(rule.KeyMinAgeDays); days != 7 {
		t.Errorf("Defaults must survive the override, got %d", days)
	}

	// A second replace updates the same row.
	edited[rule.KeyMinAgeDays] = rule.IntValue(45)
	if err := repo.ReplaceSettings(ctx, "ebs_volume", edited); err != nil {
		t.Fatalf("Second ReplaceSettings failed: %v", err)
	}
	customized, _ = repo.GetByType(ctx, "ebs_volume")
	if days, _ := customized.CurrentSettings.Int(rule.KeyMinAgeDays); days != 45 {
		t.Errorf("Expected min_age_days 45 after upsert, got %d", days)
	}

	// Reset removes the override.
	if err := repo.DeleteOverride(ctx, "ebs_volume"); err != nil {
		t.Fatalf("DeleteOverride failed: %v", err)
	}
	reset, _ := repo.GetByType(ctx, "ebs_volume")
	if reset.IsCustomized() {
		t.Error("Expected rule pristine after delete")
	}
	if days, _ := reset.CurrentSettings.Int(rule.KeyMinAgeDays); days != 7 {
		t.Errorf("Expected factory min_age_days 7, got %d", days)
	}
}

func TestRuleRepository_DeleteOverride_Missing(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRuleRepository(db)
	ctx := context.Background()

	// No override exists; deleting must still succeed.
	if err := repo.DeleteOverride(ctx, "ebs_volume"); err != nil {
		t.Errorf("DeleteOverride of pristine rule should succeed: %v", err)
	}

	// Unknown rules still error.
	if err := repo.DeleteOverride(ctx, "quantum_widget"); err == nil {
		t.Error("Expected error for unknown resource type")
	}
}

func TestRuleRepository_DeleteAllOverrides(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRuleRepository(db)
	ctx := context.Background()

	settings := rule.Settings{rule.KeyEnabled: rule.BoolValue(false)}
	if err := repo.ReplaceSettings(ctx, "ebs_volume", settings); err != nil {
		t.Fatalf("ReplaceSettings failed: %v", err)
	}
	if err := repo.ReplaceSettings(ctx, "ec2_stopped", settings); err != nil {
		t.Fatalf("ReplaceSettings failed: %v", err)
	}

	count, err := repo.DeleteAllOverrides(ctx)
	if err != nil {
		t.Fatalf("DeleteAllOverrides failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 deleted overrides, got %d", count)
	}

	count, err = repo.DeleteAllOverrides(ctx)
	if err != nil {
		t.Fatalf("DeleteAllOverrides failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 on repeat, got %d", count)
	}
}

func TestRuleRepository_LegacyThresholdSeed(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRuleRepository(db)

	lb, err := repo.GetByType(context.Background(), "load_balancer_idle")
	if err != nil {
		t.Fatalf("GetByType failed: %v", err)
	}
	if days, ok := lb.CurrentSettings.Int(rule.KeyConfidenceThresholdDays); !ok || days != 30 {
		t.Errorf("Expected legacy confidence_threshold_days 30, got %d (ok=%v)", days, ok)
	}
	if tf, ok := lb.ThresholdField(); !ok || tf.Key != rule.KeyMinIdleDays {
		t.Errorf("Expected min_idle_days threshold, got %+v (ok=%v)", tf, ok)
	}
}
