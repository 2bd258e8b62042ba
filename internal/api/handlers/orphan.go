package handlers

import (
	"net/http"

	"github.com/skysweep/skysweep/internal/api/dto"
	"github.com/skysweep/skysweep/internal/domain/confidence"
	"github.com/skysweep/skysweep/internal/domain/snapshot"
	"github.com/skysweep/skysweep/internal/pkg/errors"
	"github.com/skysweep/skysweep/internal/pkg/logger"
	"github.com/skysweep/skysweep/internal/pkg/utils"
	"github.com/skysweep/skysweep/internal/services"
)

type OrphanHandler struct {
	service *services.OrphanService
	logger  *logger.Logger
}

func NewOrphanHandler(service *services.OrphanService, log *logger.Logger) *OrphanHandler {
	return &OrphanHandler{service: service, logger: log}
}

// List returns scored orphaned resources
// @Summary List orphaned resources
// @Description Get a paginated list of orphans with confidence tier and accrued waste
// @Tags Orphans
// @Produce json
// @Param resource_type query string false "Filter by resource type"
// @Param region query string false "Filter by region"
// @Param tier query string false "Filter by confidence tier" Enums(critical, high, medium, low)
// @Param page query int false "Page number (default: 1)"
// @Param page_size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} utils.PaginatedResponse{data=[]dto.OrphanDTO} "List of orphans"
// @Failure 400 {object} utils.ErrorResponse "Invalid tier"
// @Failure 500 {object} utils.ErrorResponse "Internal server error"
// @Router /orphans [get]
func (h *OrphanHandler) List(w http.ResponseWriter, r *http.Request) {
	params := utils.ParsePaginationParams(r)

	filter := snapshot.Filter{
		ResourceType: r.URL.Query().Get("resource_type"),
		Region:       r.URL.Query().Get("region"),
	}
	if tier := r.URL.Query().Get("tier"); tier != "" {
		t := confidence.Tier(tier)
		if !t.Valid() {
			utils.WriteError(w, errors.BadRequest(
				"Tier must be one of: critical, high, medium, low"))
			return
		}
		filter.Tier = t
	}

	evals, total, err := h.service.List(r.Context(), filter, params.PageSize, params.Offset)
	if err != nil {
		writeServiceError(w, err, "Failed to list orphans")
		return
	}

	utils.WriteSuccess(w, http.StatusOK,
		utils.NewPaginatedResponse(dto.NewOrphanDTOs(evals), params.Page, params.PageSize, total))
}

// Summary returns aggregate waste statistics
// @Summary Waste summary
// @Description Get total run rate, accrued waste, and per-tier orphan counts
// @Tags Orphans
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.WasteSummaryDTO} "Waste summary"
// @Failure 500 {object} utils.ErrorResponse "Internal server error"
// @Router /orphans/summary [get]
func (h *OrphanHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to build waste summary")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewWasteSummaryDTO(summary))
}
