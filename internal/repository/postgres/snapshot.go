package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/skysweep/skysweep/internal/domain/snapshot"
	"github.com/skysweep/skysweep/internal/pkg/errors"
	"github.com/skysweep/skysweep/internal/pkg/metrics"
)

// SnapshotRepository implements snapshot.Repository over the cached
// inventory table. Every sweep replaces the full set.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *sql.DB) snapshot.Repository {
	return &SnapshotRepository{db: db}
}

// List retrieves snapshots with filters and pagination
func (r *SnapshotRepository) List(ctx context.Context, filter snapshot.Filter, limit, offset int) ([]snapshot.ResourceSnapshot, int64, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list", "resource_snapshots", time.Since(start)) }()

	where := " WHERE 1=1"
	args := []interface{}{}
	n := 0
	next := func() string {
		n++
		return placeholder(n)
	}

	if filter.ResourceType != "" {
		where += " AND resource_type = " + next()
		args = append(args, filter.ResourceType)
	}
	if filter.Region != "" {
		where += " AND region = " + next()
		args = append(args, filter.Region)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM resource_snapshots"+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count snapshots", err)
	}

	query := `
		SELECT id, name, resource_type, provider, region,
		       estimated_monthly_cost, age_days, created_at_raw, scanned_at
		FROM resource_snapshots` + where + `
		ORDER BY estimated_monthly_cost DESC, id`
	// Negative limit means the full set (sweeps and summaries).
	if limit >= 0 {
		query += " LIMIT " + next() + " OFFSET " + next()
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list snapshots", err)
	}
	defer rows.Close()

	var snapshots []snapshot.ResourceSnapshot
	for rows.Next() {
		var (
			s         snapshot.ResourceSnapshot
			createdAt sql.NullString
			scannedAt sql.NullTime
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.ResourceType, &s.Provider, &s.Region,
			&s.EstimatedMonthlyCost, &s.AgeDays, &createdAt, &scannedAt); err != nil {
			return nil, 0, errors.DatabaseError("Failed to scan snapshot", err)
		}
		if createdAt.Valid {
			s.CreatedAt = createdAt.String
		}
		if scannedAt.Valid {
			s.ScannedAt = scannedAt.Time
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to iterate snapshots", err)
	}

	return snapshots, total, nil
}

// ReplaceAll swaps the entire cached snapshot set for the given one
func (r *SnapshotRepository) ReplaceAll(ctx context.Context, snapshots []snapshot.ResourceSnapshot) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("replace_all", "resource_snapshots", time.Since(start)) }()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("Failed to start snapshot transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM resource_snapshots"); err != nil {
		return errors.DatabaseError("Failed to clear snapshot cache", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO resource_snapshots
			(id, name, resource_type, provider, region,
			 estimated_monthly_cost, age_days, created_at_raw, scanned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	if err != nil {
		return errors.DatabaseError("Failed to prepare snapshot insert", err)
	}
	defer stmt.Close()

	for _, s := range snapshots {
		var createdAt interface{}
		if s.CreatedAt != "" {
			createdAt = s.CreatedAt
		}
		if _, err := stmt.ExecContext(ctx, s.ID, s.Name, s.ResourceType, s.Provider, s.Region,
			s.EstimatedMonthlyCost, s.AgeDays, createdAt, s.ScannedAt); err != nil {
			return errors.DatabaseError("Failed to insert snapshot "+s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("Failed to commit snapshot cache", err)
	}
	return nil
}

func placeholder(n int) string {
	// $N works for both postgres and sqlite
	return "$" + strconv.Itoa(n)
}
