package handler

import (
	"net/http"

	"github.com/infinirdc/Opulence/internal/service"
	"github.com/infinirdc/Opulence/pkg/logger"
)

type DashboardHandler struct {
	dashboardService service.DashboardServiceInterface
	logger           *logger.Logger
}

func NewDashboardHandler(dashboardService service.DashboardServiceInterface, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           log.WithComponent("dashboard_handler"),
	}
}

// GetDashboard handles GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	dashboard, err := h.dashboardService.GetDashboard(r.Context())
	if err != nil {
		h.logger.Error("Failed to assemble dashboard", "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, dashboard)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}
