package client

import "time"

// Rule represents a detection rule with its current and factory settings
type Rule struct {
	ResourceType    string                 `json:"resourceType"`
	Description     string                 `json:"description,omitempty"`
	CurrentSettings map[string]interface{} `json:"currentSettings"`
	DefaultSettings map[string]interface{} `json:"defaultSettings"`
	Customized      bool                   `json:"customized"`
	ThresholdKey    string                 `json:"thresholdKey,omitempty"`
	ThresholdDays   int                    `json:"thresholdDays,omitempty"`
}

// Orphan represents a detected orphaned resource with its waste score
type Orphan struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name,omitempty"`
	ResourceType         string     `json:"resourceType"`
	Provider             string     `json:"provider,omitempty"`
	Region               string     `json:"region,omitempty"`
	EstimatedMonthlyCost float64    `json:"estimatedMonthlyCost"`
	AgeDays              *int       `json:"ageDays"`
	Tier                 string     `json:"tier"` // critical, high, medium, low
	AccruedCost          *float64   `json:"accruedCost"`
	AccruedLabel         string     `json:"accruedLabel,omitempty"`
	ScannedAt            *time.Time `json:"scannedAt,omitempty"`
}

// WasteSummary represents aggregate waste statistics
type WasteSummary struct {
	TotalResources  int            `json:"totalResources"`
	MonthlyRunRate  float64        `json:"monthlyRunRate"`
	AccruedWaste    float64        `json:"accruedWaste"`
	UnknownAge      int            `json:"unknownAge"`
	TierCounts      map[string]int `json:"tierCounts"`
	DisabledSkipped int            `json:"disabledSkipped"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status string `json:"status"`
}

// ListOptions contains common pagination options
type ListOptions struct {
	Page     int `json:"page,omitempty"`
	PageSize int `json:"page_size,omitempty"`
}

// OrphanPage wraps a paginated orphan list response
type OrphanPage struct {
	Data       []Orphan `json:"data"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalItems int64    `json:"total_items"`
	TotalPages int      `json:"total_pages"`
}
