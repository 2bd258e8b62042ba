package rule

import "context"

// Service defines the interface for detection rule business logic.
type Service interface {
	// ListRules retrieves every rule.
	ListRules(ctx context.Context) ([]DetectionRule, error)

	// GetRule retrieves a single rule by resource type.
	GetRule(ctx context.Context, resourceType string) (*DetectionRule, error)

	// UpdateSetting sets one key on a rule's current settings and
	// persists the result, returning the updated rule.
	UpdateSetting(ctx context.Context, resourceType, key string, value SettingValue) (*DetectionRule, error)

	// ReplaceSettings replaces a rule's entire current settings map.
	ReplaceSettings(ctx context.Context, resourceType string, settings Settings) (*DetectionRule, error)

	// Reset restores a rule's current settings to the factory defaults.
	Reset(ctx context.Context, resourceType string) (*DetectionRule, error)

	// ResetAll restores every rule and reports how many overrides were
	// actually removed.
	ResetAll(ctx context.Context) (int64, error)
}
