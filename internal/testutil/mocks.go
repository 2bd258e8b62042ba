package testutil

import (
	"context"
	"sort"

	"github.com/skysweep/skysweep/internal/domain/rule"
	"github.com/skysweep/skysweep/internal/domain/snapshot"
	apperrors "github.com/skysweep/skysweep/internal/pkg/errors"
)

// MockRuleRepository is a mock implementation of rule.Repository.
// Defaults holds the factory settings per resource type; Overrides
// holds the currently persisted customizations.
type MockRuleRepository struct {
	Rules        map[string]rule.DetectionRule
	Overrides    map[string]rule.Settings
	ListError    error
	GetError     error
	ReplaceError error
	DeleteError  error
}

func NewMockRuleRepository() *MockRuleRepository {
	return &MockRuleRepository{
		Rules:     make(map[string]rule.DetectionRule),
		Overrides: make(map[string]rule.Settings),
	}
}

// Seed registers a rule with the given defaults and no override.
func (m *MockRuleRepository) Seed(resourceType, description string, defaults rule.Settings) {
	m.Rules[resourceType] = rule.DetectionRule{
		ResourceType:    resourceType,
		Description:     description,
		DefaultSettings: defaults.Clone(),
	}
}

func (m *MockRuleRepository) build(r rule.DetectionRule) rule.DetectionRule {
	if override, ok := m.Overrides[r.ResourceType]; ok {
		r.CurrentSettings = override.Clone()
	} else {
		r.CurrentSettings = r.DefaultSettings.Clone()
	}
	r.DefaultSettings = r.DefaultSettings.Clone()
	return r
}

func (m *MockRuleRepository) List(ctx context.Context) ([]rule.DetectionRule, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	types := make([]string, 0, len(m.Rules))
	for t := range m.Rules {
		types = append(types, t)
	}
	sort.Strings(types)
	rules := make([]rule.DetectionRule, 0, len(types))
	for _, t := range types {
		rules = append(rules, m.build(m.Rules[t]))
	}
	return rules, nil
}

func (m *MockRuleRepository) GetByType(ctx context.Context, resourceType string) (*rule.DetectionRule, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	r, ok := m.Rules[resourceType]
	if !ok {
		return nil, apperrors.RuleNotFound(resourceType)
	}
	built := m.build(r)
	return &built, nil
}

func (m *MockRuleRepository) ReplaceSettings(ctx context.Context, resourceType string, settings rule.Settings) error {
	if m.ReplaceError != nil {
		return m.ReplaceError
	}
	if _, ok := m.Rules[resourceType]; !ok {
		return apperrors.RuleNotFound(resourceType)
	}
	m.Overrides[resourceType] = settings.Clone()
	return nil
}

func (m *MockRuleRepository) DeleteOverride(ctx context.Context, resourceType string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	if _, ok := m.Rules[resourceType]; !ok {
		return apperrors.RuleNotFound(resourceType)
	}
	delete(m.Overrides, resourceType)
	return nil
}

func (m *MockRuleRepository) DeleteAllOverrides(ctx context.Context) (int64, error) {
	if m.DeleteError != nil {
		return 0, m.DeleteError
	}
	n := int64(len(m.Overrides))
	m.Overrides = make(map[string]rule.Settings)
	return n, nil
}

// MockSnapshotRepository is a mock implementation of snapshot.Repository.
type MockSnapshotRepository struct {
	Snapshots    []snapshot.ResourceSnapshot
	ListError    error
	ReplaceError error
}

func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{}
}

func (m *MockSnapshotRepository) List(ctx context.Context, filter snapshot.Filter, limit, offset int) ([]snapshot.ResourceSnapshot, int64, error) {
	if m.ListError != nil {
		return nil, 0, m.ListError
	}
	matched := make([]snapshot.ResourceSnapshot, 0, len(m.Snapshots))
	for _, s := range m.Snapshots {
		if filter.ResourceType != "" && s.ResourceType != filter.ResourceType {
			continue
		}
		if filter.Region != "" && s.Region != filter.Region {
			continue
		}
		matched = append(matched, s)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].EstimatedMonthlyCost != matched[j].EstimatedMonthlyCost {
			return matched[i].EstimatedMonthlyCost > matched[j].EstimatedMonthlyCost
		}
		return matched[i].ID < matched[j].ID
	})
	total := int64(len(matched))
	if limit < 0 {
		return matched, total, nil
	}
	if offset >= len(matched) {
		return []snapshot.ResourceSnapshot{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *MockSnapshotRepository) ReplaceAll(ctx context.Context, snapshots []snapshot.ResourceSnapshot) error {
	if m.ReplaceError != nil {
		return m.ReplaceError
	}
	m.Snapshots = append([]snapshot.ResourceSnapshot(nil), snapshots...)
	return nil
}
