package services

import (
	"context"

	"github.com/skysweep/skysweep/internal/domain/rule"
	"github.com/skysweep/skysweep/internal/pkg/logger"
	"github.com/skysweep/skysweep/internal/pkg/metrics"
)

// RuleService implements rule.Service
type RuleService struct {
	repo   rule.Repository
	logger *logger.Logger
}

// NewRuleService creates a new rule service
func NewRuleService(repo rule.Repository, log *logger.Logger) rule.Service {
	return &RuleService{
		repo:   repo,
		logger: log,
	}
}

// ListRules retrieves every detection rule
func (s *RuleService) ListRules(ctx context.Context) ([]rule.DetectionRule, error) {
	rules, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	customized := 0
	for _, r := range rules {
		if r.IsCustomized() {
			customized++
		}
	}
	metrics.SetCustomizedRules(float64(customized))

	return rules, nil
}

// GetRule retrieves a single rule by resource type
func (s *RuleService) GetRule(ctx context.Context, resourceType string) (*rule.DetectionRule, error) {
	return s.repo.GetByType(ctx, resourceType)
}

// UpdateSetting sets one key on a rule's current settings and persists
// the result. The edit is applied through the same copy-on-write path
// the dashboard uses locally, then the full settings map is stored as
// the override.
func (s *RuleService) UpdateSetting(ctx context.Context, resourceType, key string, value rule.SettingValue) (*rule.DetectionRule, error) {
	current, err := s.repo.GetByType(ctx, resourceType)
	if err != nil {
		return nil, err
	}

	edited := rule.ApplyLocalEdit([]rule.DetectionRule{*current}, resourceType, key, value)[0]
	if err := s.repo.ReplaceSettings(ctx, resourceType, edited.CurrentSettings); err != nil {
		s.logger.ErrorWithErr(err, "Failed to persist rule edit")
		return nil, err
	}

	metrics.RecordRuleEdit(resourceType)
	s.logger.WithFields(map[string]interface{}{
		"resource_type": resourceType,
		"key":           key,
		"value":         value.String(),
	}).Info("Rule setting updated")

	return &edited, nil
}

// ReplaceSettings replaces a rule's entire current settings map
func (s *RuleService) ReplaceSettings(ctx context.Context, resourceType string, settings rule.Settings) (*rule.DetectionRule, error) {
	current, err := s.repo.GetByType(ctx, resourceType)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceSettings(ctx, resourceType, settings.Clone()); err != nil {
		s.logger.ErrorWithErr(err, "Failed to replace rule settings")
		return nil, err
	}

	metrics.RecordRuleEdit(resourceType)
	s.logger.WithFields(map[string]interface{}{
		"resource_type": resourceType,
		"keys":          len(settings),
	}).Info("Rule settings replaced")

	updated := *current
	updated.CurrentSettings = settings.Clone()
	return &updated, nil
}

// Reset restores a rule's current settings to the factory defaults.
// Resetting a rule that was never customized succeeds quietly; the
// override row simply was not there to delete.
func (s *RuleService) Reset(ctx context.Context, resourceType string) (*rule.DetectionRule, error) {
	current, err := s.repo.GetByType(ctx, resourceType)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteOverride(ctx, resourceType); err != nil {
		s.logger.ErrorWithErr(err, "Failed to delete rule override")
		return nil, err
	}

	metrics.RecordRuleReset(resourceType)
	s.logger.WithFields(map[string]interface{}{
		"resource_type":  resourceType,
		"was_customized": current.IsCustomized(),
	}).Info("Rule reset to defaults")

	reset := current.ResetToDefault()
	return &reset, nil
}

// ResetAll restores every rule and reports how many overrides were
// actually removed, so a caller can tell "reset 3 rules" apart from
// "nothing was customized to begin with".
func (s *RuleService) ResetAll(ctx context.Context) (int64, error) {
	count, err := s.repo.DeleteAllOverrides(ctx)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to reset all rules")
		return 0, err
	}

	metrics.SetCustomizedRules(0)
	s.logger.WithFields(map[string]interface{}{
		"overrides_removed": count,
	}).Info("All rules reset to defaults")

	return count, nil
}
