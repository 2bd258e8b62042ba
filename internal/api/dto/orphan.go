package dto

import (
	"time"

	"github.com/skysweep/skysweep/internal/domain/snapshot"
	"github.com/skysweep/skysweep/internal/services"
)

// OrphanDTO represents a scored orphaned resource in API responses.
// Accrued fields are null when the resource's age is unknown.
type OrphanDTO struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name,omitempty"`
	ResourceType         string     `json:"resourceType"`
	Provider             string     `json:"provider,omitempty"`
	Region               string     `json:"region,omitempty"`
	EstimatedMonthlyCost float64    `json:"estimatedMonthlyCost"`
	AgeDays              *int       `json:"ageDays"`
	Tier                 string     `json:"tier"`
	AccruedCost          *float64   `json:"accruedCost"`
	AccruedLabel         string     `json:"accruedLabel,omitempty"`
	ScannedAt            *time.Time `json:"scannedAt,omitempty"`
}

// NewOrphanDTO converts a scored evaluation into its API shape.
func NewOrphanDTO(ev snapshot.Evaluation) OrphanDTO {
	dto := OrphanDTO{
		ID:                   ev.Snapshot.ID,
		Name:                 ev.Snapshot.Name,
		ResourceType:         ev.Snapshot.ResourceType,
		Provider:             ev.Snapshot.Provider,
		Region:               ev.Snapshot.Region,
		EstimatedMonthlyCost: ev.Snapshot.EstimatedMonthlyCost,
		Tier:                 string(ev.Tier),
	}
	if ev.Snapshot.AgeDays >= 0 {
		age := ev.Snapshot.AgeDays
		dto.AgeDays = &age
	}
	if ev.Accrued.Known {
		amount := ev.Accrued.Amount
		dto.AccruedCost = &amount
		dto.AccruedLabel = ev.Accrued.Label
	}
	if !ev.Snapshot.ScannedAt.IsZero() {
		scanned := ev.Snapshot.ScannedAt
		dto.ScannedAt = &scanned
	}
	return dto
}

// NewOrphanDTOs converts an evaluation slice.
func NewOrphanDTOs(evals []snapshot.Evaluation) []OrphanDTO {
	dtos := make([]OrphanDTO, 0, len(evals))
	for _, ev := range evals {
		dtos = append(dtos, NewOrphanDTO(ev))
	}
	return dtos
}

// WasteSummaryDTO represents aggregate waste statistics
type WasteSummaryDTO struct {
	TotalResources  int            `json:"totalResources"`
	MonthlyRunRate  float64        `json:"monthlyRunRate"`
	AccruedWaste    float64        `json:"accruedWaste"`
	UnknownAge      int            `json:"unknownAge"`
	TierCounts      map[string]int `json:"tierCounts"`
	DisabledSkipped int            `json:"disabledSkipped"`
}

// NewWasteSummaryDTO converts a service summary into its API shape.
func NewWasteSummaryDTO(s *services.WasteSummary) WasteSummaryDTO {
	tiers := make(map[string]int, len(s.TierCounts))
	for tier, count := range s.TierCounts {
		tiers[string(tier)] = count
	}
	return WasteSummaryDTO{
		TotalResources:  s.TotalResources,
		MonthlyRunRate:  s.MonthlyRunRate,
		AccruedWaste:    s.AccruedWaste,
		UnknownAge:      s.UnknownAge,
		TierCounts:      tiers,
		DisabledSkipped: s.DisabledSkipped,
	}
}
