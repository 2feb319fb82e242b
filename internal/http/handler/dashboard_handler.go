package handler

import (
	"net/http"

	"github.com/kamtrack/lead-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// KamDashboard godoc
// @Summary KAM dashboard
// @Description Aggregate a KAM's whole book over a trailing window (default 30 days)
// @Tags Dashboard
// @Produce json
// @Param kamId path string true "KAM ID"
// @Param windowDays query int false "Window length in days" default(30)
// @Success 200 {object} domain.KamDashboard
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /dashboard/kam/{kamId} [get]
func (h *DashboardHandler) KamDashboard(w http.ResponseWriter, r *http.Request) {
	kamID, ok := parseUUIDParam(w, r, "kamId")
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.GetKamDashboard(r.Context(), kamID, parseWindowDays(r))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, dashboard)
}

// LeadPerformance godoc
// @Summary Lead performance
// @Description Order statistics for one lead over a trailing window (default 30 days), bucketed in the owner's timezone
// @Tags Dashboard
// @Produce json
// @Param id path string true "Lead ID"
// @Param windowDays query int false "Window length in days" default(30)
// @Success 200 {object} domain.LeadPerformance
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/performance [get]
func (h *DashboardHandler) LeadPerformance(w http.ResponseWriter, r *http.Request) {
	leadID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	perf, err := h.dashboardService.GetLeadPerformance(r.Context(), leadID, parseWindowDays(r))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, perf)
}
