package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// NewTestDB creates an in-memory SQLite database with the rule-store
// schema and factory seed used by repository tests.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS rules (
		resource_type VARCHAR(100) PRIMARY KEY,
		description TEXT NOT NULL DEFAULT '',
		default_settings TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS rule_overrides (
		resource_type VARCHAR(100) PRIMARY KEY REFERENCES rules(resource_type) ON DELETE CASCADE,
		current_settings TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS resource_snapshots (
		id VARCHAR(255) PRIMARY KEY,
		name VARCHAR(255) NOT NULL DEFAULT '',
		resource_type VARCHAR(100) NOT NULL,
		provider VARCHAR(50) NOT NULL DEFAULT '',
		region VARCHAR(100) NOT NULL DEFAULT '',
		estimated_monthly_cost DECIMAL(12, 4) NOT NULL DEFAULT 0,
		age_days INTEGER NOT NULL DEFAULT -1,
		created_at_raw VARCHAR(64),
		scanned_at TIMESTAMP
	);

	INSERT INTO rules (resource_type, description, default_settings) VALUES
		('ebs_volume', 'Unattached EBS volumes',
		 '{"enabled": true, "min_age_days": 7, "confidence_critical_days": 90, "confidence_high_days": 30, "confidence_medium_days": 7}'),
		('ec2_stopped', 'Long-stopped EC2 instances',
		 '{"enabled": true, "min_stopped_days": 30, "confidence_critical_days": 180, "confidence_high_days": 60, "confidence_medium_days": 30}'),
		('load_balancer_idle', 'Idle load balancers',
		 '{"enabled": true, "min_idle_days": 14, "confidence_threshold_days": 30}');
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}
