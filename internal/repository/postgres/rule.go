package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/skysweep/skysweep/internal/domain/rule"
	"github.com/skysweep/skysweep/internal/pkg/errors"
	"github.com/skysweep/skysweep/internal/pkg/metrics"
)

// RuleRepository implements rule.Repository. Factory rules live in the
// rules table; user edits live in rule_overrides, one row per resource
// type, so a reset is a plain delete.
type RuleRepository struct {
	db *sql.DB
}

// NewRuleRepository creates a new rule repository
func NewRuleRepository(db *sql.DB) rule.Repository {
	return &RuleRepository{db: db}
}

// List retrieves every rule with its effective current settings
func (r *RuleRepository) List(ctx context.Context) ([]rule.DetectionRule, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list", "rules", time.Since(start)) }()

	query := `
		SELECT r.resource_type, r.description, r.default_settings, o.current_settings
		FROM rules r
		LEFT JOIN rule_overrides o ON o.resource_type = r.resource_type
		ORDER BY r.resource_type
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list rules", err)
	}
	defer rows.Close()

	var rules []rule.DetectionRule
	for rows.Next() {
		var (
			resourceType string
			description  string
			defaultsRaw  []byte
			overrideRaw  sql.NullString
		)
		if err := rows.Scan(&resourceType, &description, &defaultsRaw, &overrideRaw); err != nil {
			return nil, errors.DatabaseError("Failed to scan rule", err)
		}

		dr, err := buildRule(resourceType, description, defaultsRaw, overrideRaw)
		if err != nil {
			return nil, err
		}
		rules = append(rules, dr)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate rules", err)
	}

	return rules, nil
}

// GetByType retrieves a single rule by resource type
func (r *RuleRepository) GetByType(ctx context.Context, resourceType string) (*rule.DetectionRule, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("get", "rules", time.Since(start)) }()

	query := `
		SELECT r.resource_type, r.description, r.default_settings, o.current_settings
		FROM rules r
		LEFT JOIN rule_overrides o ON o.resource_type = r.resource_type
		WHERE r.resource_type = $1
	`

	var (
		description string
		defaultsRaw []byte
		overrideRaw sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, resourceType).Scan(
		&resourceType, &description, &defaultsRaw, &overrideRaw,
	)
	if err == sql.ErrNoRows {
		return nil, errors.RuleNotFound(resourceType)
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get rule", err)
	}

	dr, err := buildRule(resourceType, description, defaultsRaw, overrideRaw)
	if err != nil {
		return nil, err
	}
	return &dr, nil
}

// ReplaceSettings upserts the override row for one resource type
func (r *RuleRepository) ReplaceSettings(ctx context.Context, resourceType string, settings rule.Settings) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("replace", "rule_overrides", time.Since(start)) }()

	if err := r.ensureRuleExists(ctx, resourceType); err != nil {
		return err
	}

	raw, err := json.Marshal(settings)
	if err != nil {
		return errors.Internal("Failed to encode rule settings", err)
	}

	query := `
		INSERT INTO rule_overrides (resource_type, current_settings, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (resource_type) DO UPDATE SET
			current_settings = excluded.current_settings,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.db.ExecContext(ctx, query, resourceType, string(raw)); err != nil {
		return errors.DatabaseError("Failed to save rule settings", err)
	}
	return nil
}

// DeleteOverride removes the override row for one resource type.
// Deleting a missing override succeeds; overrides are only present
// while a rule is customized.
func (r *RuleRepository) DeleteOverride(ctx context.Context, resourceType string) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("delete", "rule_overrides", time.Since(start)) }()

	if err := r.ensureRuleExists(ctx, resourceType); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM rule_overrides WHERE resource_type = $1", resourceType); err != nil {
		return errors.DatabaseError("Failed to delete rule override", err)
	}
	return nil
}

// DeleteAllOverrides removes every override row and reports how many existed
func (r *RuleRepository) DeleteAllOverrides(ctx context.Context) (int64, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("delete_all", "rule_overrides", time.Since(start)) }()

	result, err := r.db.ExecContext(ctx, "DELETE FROM rule_overrides")
	if err != nil {
		return 0, errors.DatabaseError("Failed to delete rule overrides", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, errors.DatabaseError("Failed to count deleted overrides", err)
	}
	return count, nil
}

func (r *RuleRepository) ensureRuleExists(ctx context.Context, resourceType string) error {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM rules WHERE resource_type = $1", resourceType).Scan(&one)
	if err == sql.ErrNoRows {
		return errors.RuleNotFound(resourceType)
	}
	if err != nil {
		return errors.DatabaseError("Failed to look up rule", err)
	}
	return nil
}

// buildRule assembles a DetectionRule from stored JSON. The current
// settings are the override when one exists, otherwise a copy of the
// defaults, so callers can edit without touching the factory map.
func buildRule(resourceType, description string, defaultsRaw []byte, overrideRaw sql.NullString) (rule.DetectionRule, error) {
	var defaults rule.Settings
	if err := json.Unmarshal(defaultsRaw, &defaults); err != nil {
		return rule.DetectionRule{}, errors.Internal("Corrupt default settings for "+resourceType, err)
	}

	current := defaults.Clone()
	if overrideRaw.Valid {
		var override rule.Settings
		if err := json.Unmarshal([]byte(overrideRaw.String), &override); err != nil {
			return rule.DetectionRule{}, errors.Internal("Corrupt override settings for "+resourceType, err)
		}
		current = override
	}

	return rule.DetectionRule{
		ResourceType:    resourceType,
		Description:     description,
		CurrentSettings: current,
		DefaultSettings: defaults,
	}, nil
}
