// Package inventory talks to the external Resource Inventory Service,
// the read-only feed of orphaned-resource candidates that the sweeper
// caches locally.
package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skysweep/skysweep/internal/domain/accrual"
	"github.com/skysweep/skysweep/internal/domain/snapshot"
	apperrors "github.com/skysweep/skysweep/internal/pkg/errors"
)

// Client fetches resource snapshots over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds the inventory client configuration
type Config struct {
	BaseURL    string        // Inventory service base URL
	Timeout    time.Duration // HTTP client timeout (default: 30s)
	HTTPClient *http.Client  // Optional custom HTTP client
}

// NewClient creates a new inventory client
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
		}
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
	}
}

// wireResource is the inventory service's JSON shape. Age and cost
// come back loosely typed, the same way the upstream scanner emits
// them, so the fields that can be absent are pointers.
type wireResource struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	ResourceType         string   `json:"resource_type"`
	Provider             string   `json:"provider"`
	Region               string   `json:"region"`
	EstimatedMonthlyCost *float64 `json:"estimated_monthly_cost"`
	AgeDays              *int     `json:"age_days"`
	CreatedAt            string   `json:"created_at"`
}

type wireResponse struct {
	Resources []wireResource `json:"resources"`
}

// FetchSnapshots retrieves the current orphan candidate set. A missing
// age comes through as the unknown-age sentinel; a missing cost as
// zero. ScannedAt is stamped with the fetch time.
func (c *Client) FetchSnapshots(ctx context.Context) ([]snapshot.ResourceSnapshot, error) {
	url := c.baseURL + "/v1/resources"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.InventoryAPIError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, apperrors.InventoryAPIError(
			fmt.Errorf("inventory returned status %d: %s", resp.StatusCode, string(body)))
	}

	var payload wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.InventoryAPIError(fmt.Errorf("failed to decode response: %w", err))
	}

	now := time.Now().UTC()
	snapshots := make([]snapshot.ResourceSnapshot, 0, len(payload.Resources))
	for _, r := range payload.Resources {
		s := snapshot.ResourceSnapshot{
			ID:           r.ID,
			Name:         r.Name,
			ResourceType: r.ResourceType,
			Provider:     r.Provider,
			Region:       r.Region,
			AgeDays:      accrual.UnknownAgeDays,
			CreatedAt:    r.CreatedAt,
			ScannedAt:    now,
		}
		if r.EstimatedMonthlyCost != nil {
			s.EstimatedMonthlyCost = *r.EstimatedMonthlyCost
		}
		if r.AgeDays != nil {
			s.AgeDays = *r.AgeDays
		}
		snapshots = append(snapshots, s)
	}

	return snapshots, nil
}
