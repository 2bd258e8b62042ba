package client

import (
	"context"
	"net/url"
	"strconv"
)

// OrphanService handles orphaned resource API calls
type OrphanService struct {
	client *Client
}

// OrphanListOptions contains options for listing orphans
type OrphanListOptions struct {
	ListOptions
	ResourceType string `json:"resource_type,omitempty"`
	Region       string `json:"region,omitempty"`
	Tier         string `json:"tier,omitempty"` // critical, high, medium, low
}

// List retrieves a page of scored orphaned resources
func (s *OrphanService) List(ctx context.Context, opts *OrphanListOptions) (*OrphanPage, error) {
	query := url.Values{}

	if opts != nil {
		if opts.Page > 0 {
			query.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(opts.PageSize))
		}
		if opts.ResourceType != "" {
			query.Set("resource_type", opts.ResourceType)
		}
		if opts.Region != "" {
			query.Set("region", opts.Region)
		}
		if opts.Tier != "" {
			query.Set("tier", opts.Tier)
		}
	}

	path := "/api/v1/orphans"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page OrphanPage
	if err := s.client.doRequest(ctx, "GET", path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Summary retrieves aggregate waste statistics
func (s *OrphanService) Summary(ctx context.Context) (*WasteSummary, error) {
	var summary WasteSummary
	if err := s.client.doRequest(ctx, "GET", "/api/v1/orphans/summary", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
