package rule

import "context"

// Repository defines the interface for detection rule storage. Factory
// rules are seeded by migration; user edits live in an override row per
// resource type, so "reset" is a delete of the override.
type Repository interface {
	// List retrieves every rule with its effective current settings
	// (override when present, factory defaults otherwise).
	List(ctx context.Context) ([]DetectionRule, error)

	// GetByType retrieves a single rule by resource type.
	GetByType(ctx context.Context, resourceType string) (*DetectionRule, error)

	// ReplaceSettings upserts the override row for one resource type.
	ReplaceSettings(ctx context.Context, resourceType string, settings Settings) error

	// DeleteOverride removes the override row for one resource type,
	// restoring the factory defaults. Deleting a missing override is
	// not an error.
	DeleteOverride(ctx context.Context, resourceType string) error

	// DeleteAllOverrides removes every override row and reports how
	// many actually existed.
	DeleteAllOverrides(ctx context.Context) (int64, error)
}
