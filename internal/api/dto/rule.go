package dto

import (
	"encoding/json"

	"github.com/skysweep/skysweep/internal/domain/rule"
)

// RuleDTO represents a detection rule in API responses
// Uses camelCase for frontend compatibility
type RuleDTO struct {
	ResourceType    string                     `json:"resourceType"`
	Description     string                     `json:"description,omitempty"`
	CurrentSettings map[string]json.RawMessage `json:"currentSettings"`
	DefaultSettings map[string]json.RawMessage `json:"defaultSettings"`
	Customized      bool                       `json:"customized"`
	ThresholdKey    string                     `json:"thresholdKey,omitempty"`
	ThresholdDays   int                        `json:"thresholdDays,omitempty"`
}

// NewRuleDTO converts a domain rule into its API shape.
func NewRuleDTO(r rule.DetectionRule) RuleDTO {
	dto := RuleDTO{
		ResourceType:    r.ResourceType,
		Description:     r.Description,
		CurrentSettings: settingsToRaw(r.CurrentSettings),
		DefaultSettings: settingsToRaw(r.DefaultSettings),
		Customized:      r.IsCustomized(),
	}
	if tf, ok := r.ThresholdField(); ok {
		dto.ThresholdKey = tf.Key
		dto.ThresholdDays = tf.Days
	}
	return dto
}

// NewRuleDTOs converts a rule slice.
func NewRuleDTOs(rules []rule.DetectionRule) []RuleDTO {
	dtos := make([]RuleDTO, 0, len(rules))
	for _, r := range rules {
		dtos = append(dtos, NewRuleDTO(r))
	}
	return dtos
}

func settingsToRaw(s rule.Settings) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(s))
	for k, v := range s {
		raw, err := json.Marshal(v)
		if err != nil {
			continue
		}
		out[k] = raw
	}
	return out
}

// UpdateSettingRequest represents a single-key rule edit
type UpdateSettingRequest struct {
	Key   string          `json:"key" validate:"required"`
	Value json.RawMessage `json:"value" validate:"required"`
}

// ReplaceSettingsRequest represents a full settings replacement
type ReplaceSettingsRequest struct {
	Settings map[string]json.RawMessage `json:"settings" validate:"required,min=1"`
}

// ResetAllResponse reports how many rule overrides were removed
type ResetAllResponse struct {
	Reset int64 `json:"reset"`
}
