package client

import (
	"context"
	"fmt"
)

// RuleService handles detection rule API calls
type RuleService struct {
	client *Client
}

// UpdateSettingRequest represents a single-key rule edit
type UpdateSettingRequest struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"` // boolean, number, or string
}

// ReplaceSettingsRequest represents a full settings replacement
type ReplaceSettingsRequest struct {
	Settings map[string]interface{} `json:"settings"`
}

// ResetAllResult reports how many rule overrides were removed
type ResetAllResult struct {
	Reset int64 `json:"reset"`
}

// List retrieves every detection rule
func (s *RuleService) List(ctx context.Context) ([]Rule, error) {
	var rules []Rule
	if err := s.client.doRequest(ctx, "GET", "/api/v1/rules", nil, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// Get retrieves a single rule by resource type
func (s *RuleService) Get(ctx context.Context, resourceType string) (*Rule, error) {
	var rule Rule
	path := fmt.Sprintf("/api/v1/rules/%s", resourceType)
	if err := s.client.doRequest(ctx, "GET", path, nil, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// UpdateSetting sets one key in a rule's current settings
func (s *RuleService) UpdateSetting(ctx context.Context, resourceType, key string, value interface{}) (*Rule, error) {
	var rule Rule
	path := fmt.Sprintf("/api/v1/rules/%s/settings", resourceType)
	req := UpdateSettingRequest{Key: key, Value: value}
	if err := s.client.doRequest(ctx, "PATCH", path, req, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// ReplaceSettings replaces a rule's entire current settings map
func (s *RuleService) ReplaceSettings(ctx context.Context, resourceType string, settings map[string]interface{}) (*Rule, error) {
	var rule Rule
	path := fmt.Sprintf("/api/v1/rules/%s/settings", resourceType)
	req := ReplaceSettingsRequest{Settings: settings}
	if err := s.client.doRequest(ctx, "PUT", path, req, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// Reset restores a rule to its factory defaults
func (s *RuleService) Reset(ctx context.Context, resourceType string) (*Rule, error) {
	var rule Rule
	path := fmt.Sprintf("/api/v1/rules/%s", resourceType)
	if err := s.client.doRequest(ctx, "DELETE", path, nil, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// ResetAll restores every rule to its factory defaults
func (s *RuleService) ResetAll(ctx context.Context) (int64, error) {
	var result ResetAllResult
	if err := s.client.doRequest(ctx, "DELETE", "/api/v1/rules", nil, &result); err != nil {
		return 0, err
	}
	return result.Reset, nil
}
