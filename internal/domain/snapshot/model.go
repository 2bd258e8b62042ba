package snapshot

import (
	"context"
	"time"

	"github.com/skysweep/skysweep/internal/domain/accrual"
	"github.com/skysweep/skysweep/internal/domain/confidence"
	"github.com/skysweep/skysweep/internal/domain/rule"
)

// ResourceSnapshot is a read-only record of one detected orphaned
// resource, as reported by the inventory side. The model never mutates
// or requests changes to this data.
type ResourceSnapshot struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	ResourceType         string    `json:"resource_type"`
	Provider             string    `json:"provider"`
	Region               string    `json:"region"`
	EstimatedMonthlyCost float64   `json:"estimated_monthly_cost"`
	AgeDays              int       `json:"age_days"`             // -1 sentinel = unknown
	CreatedAt            string    `json:"created_at,omitempty"` // ISO-8601; meaningful only when AgeDays == 0
	ScannedAt            time.Time `json:"scanned_at,omitempty"`
}

// Evaluation is a snapshot scored against its detection rule.
type Evaluation struct {
	Snapshot ResourceSnapshot
	Tier     confidence.Tier
	Accrued  accrual.Accrual
}

// Evaluate classifies a snapshot's age against the rule's thresholds
// and computes its waste accrued so far. now is injected so callers
// and tests control the sub-day clock.
func Evaluate(s ResourceSnapshot, r rule.DetectionRule, now time.Time) Evaluation {
	return Evaluation{
		Snapshot: s,
		Tier:     confidence.Classify(s.AgeDays, confidence.FromRule(r)),
		Accrued:  accrual.Accrue(s.EstimatedMonthlyCost, s.AgeDays, s.CreatedAt, now),
	}
}

// Filter contains snapshot listing options.
type Filter struct {
	ResourceType string
	Region       string
	Tier         confidence.Tier
}

// Repository defines the interface for the cached snapshot store. The
// cache is replaced wholesale on every inventory sweep: last write
// wins at the granularity of the full set.
type Repository interface {
	// List retrieves snapshots with filters and pagination. A negative
	// limit returns the full set. Tier filtering happens above the
	// store, so Filter.Tier is ignored here.
	List(ctx context.Context, filter Filter, limit, offset int) ([]ResourceSnapshot, int64, error)

	// ReplaceAll swaps the entire cached set for the given one.
	ReplaceAll(ctx context.Context, snapshots []ResourceSnapshot) error
}
