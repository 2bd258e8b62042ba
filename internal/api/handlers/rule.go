package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skysweep/skysweep/internal/api/dto"
	"github.com/skysweep/skysweep/internal/domain/rule"
	"github.com/skysweep/skysweep/internal/pkg/errors"
	"github.com/skysweep/skysweep/internal/pkg/logger"
	"github.com/skysweep/skysweep/internal/pkg/utils"
	"github.com/skysweep/skysweep/internal/pkg/validator"
)

type RuleHandler struct {
	service   rule.Service
	logger    *logger.Logger
	validator *validator.Validator
}

func NewRuleHandler(service rule.Service, log *logger.Logger, val *validator.Validator) *RuleHandler {
	return &RuleHandler{service: service, logger: log, validator: val}
}

// List returns all detection rules
// @Summary List detection rules
// @Description Get every detection rule with its current and default settings
// @Tags Rules
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]dto.RuleDTO} "List of rules"
// @Failure 500 {object} utils.ErrorResponse "Internal server error"
// @Router /rules [get]
func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.service.ListRules(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to list rules")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewRuleDTOs(rules))
}

// Get returns a single rule by resource type
// @Summary Get rule by resource type
// @Description Get one detection rule's current and default settings
// @Tags Rules
// @Produce json
// @Param resourceType path string true "Resource type"
// @Success 200 {object} utils.SuccessResponse{data=dto.RuleDTO} "Rule details"
// @Failure 404 {object} utils.ErrorResponse "Rule not found"
// @Router /rules/{resourceType} [get]
func (h *RuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	resourceType := chi.URLParam(r, "resourceType")

	detectionRule, err := h.service.GetRule(r.Context(), resourceType)
	if err != nil {
		writeServiceError(w, err, "Failed to get rule")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewRuleDTO(*detectionRule))
}

// UpdateSetting edits a single setting on a rule
// @Summary Update one rule setting
// @Description Set a single key in a rule's current settings
// @Tags Rules
// @Accept json
// @Produce json
// @Param resourceType path string true "Resource type"
// @Param request body dto.UpdateSettingRequest true "Setting edit"
// @Success 200 {object} utils.SuccessResponse{data=dto.RuleDTO} "Updated rule"
// @Failure 400 {object} utils.ErrorResponse "Invalid request"
// @Failure 404 {object} utils.ErrorResponse "Rule not found"
// @Router /rules/{resourceType}/settings [patch]
func (h *RuleHandler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	resourceType := chi.URLParam(r, "resourceType")

	var req dto.UpdateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}
	if errs := h.validator.Validate(req); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return
	}

	var value rule.SettingValue
	if err := json.Unmarshal(req.Value, &value); err != nil {
		utils.WriteError(w, errors.BadRequest("Setting value must be a boolean, number, or string"))
		return
	}

	updated, err := h.service.UpdateSetting(r.Context(), resourceType, req.Key, value)
	if err != nil {
		writeServiceError(w, err, "Failed to update rule setting")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewRuleDTO(*updated))
}

// ReplaceSettings replaces a rule's entire settings map
// @Summary Replace rule settings
// @Description Replace the full current settings of a rule
// @Tags Rules
// @Accept json
// @Produce json
// @Param resourceType path string true "Resource type"
// @Param request body dto.ReplaceSettingsRequest true "New settings"
// @Success 200 {object} utils.SuccessResponse{data=dto.RuleDTO} "Updated rule"
// @Failure 400 {object} utils.ErrorResponse "Invalid request"
// @Failure 404 {object} utils.ErrorResponse "Rule not found"
// @Router /rules/{resourceType}/settings [put]
func (h *RuleHandler) ReplaceSettings(w http.ResponseWriter, r *http.Request) {
	resourceType := chi.URLParam(r, "resourceType")

	var req dto.ReplaceSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}
	if errs := h.validator.Validate(req); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return
	}

	settings := make(rule.Settings, len(req.Settings))
	for key, raw := range req.Settings {
		var value rule.SettingValue
		if err := json.Unmarshal(raw, &value); err != nil {
			utils.WriteError(w, errors.BadRequest(
				"Setting "+key+" must be a boolean, number, or string"))
			return
		}
		settings[key] = value
	}

	updated, err := h.service.ReplaceSettings(r.Context(), resourceType, settings)
	if err != nil {
		writeServiceError(w, err, "Failed to replace rule settings")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewRuleDTO(*updated))
}

// Reset restores a rule to its factory defaults
// @Summary Reset rule
// @Description Restore a rule's settings to the factory defaults
// @Tags Rules
// @Produce json
// @Param resourceType path string true "Resource type"
// @Success 200 {object} utils.SuccessResponse{data=dto.RuleDTO} "Reset rule"
// @Failure 404 {object} utils.ErrorResponse "Rule not found"
// @Router /rules/{resourceType} [delete]
func (h *RuleHandler) Reset(w http.ResponseWriter, r *http.Request) {
	resourceType := chi.URLParam(r, "resourceType")

	reset, err := h.service.Reset(r.Context(), resourceType)
	if err != nil {
		writeServiceError(w, err, "Failed to reset rule")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewRuleDTO(*reset))
}

// ResetAll restores every rule to its factory defaults
// @Summary Reset all rules
// @Description Restore every rule's settings to the factory defaults
// @Tags Rules
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.ResetAllResponse} "Number of rules reset"
// @Failure 500 {object} utils.ErrorResponse "Internal server error"
// @Router /rules [delete]
func (h *RuleHandler) ResetAll(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.ResetAll(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to reset rules")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ResetAllResponse{Reset: count})
}
