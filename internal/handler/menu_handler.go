package handler

import (
	"errors"
	"net/http"

	"github.com/infinirdc/Opulence/internal/service"
	"github.com/infinirdc/Opulence/models"
	"github.com/infinirdc/Opulence/pkg/logger"
)

type MenuHandler struct {
	menuService service.MenuServiceInterface
	logger      *logger.Logger
}

func NewMenuHandler(menuService service.MenuServiceInterface, log *logger.Logger) *MenuHandler {
	return &MenuHandler{
		menuService: menuService,
		logger:      log.WithComponent("menu_handler"),
	}
}

// menuResponse is the public menu envelope. Degraded means the store was
// unreachable and the catalog is served empty rather than as an error.
type menuResponse struct {
	Dishes   []*models.Dish `json:"dishes"`
	Degraded bool           `json:"degraded"`
}

// GetMenu handles GET /api/v1/menu. Customer-facing: available dishes only.
// A store outage degrades to an empty catalog instead of failing the page.
func (h *MenuHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	dishes, err := h.menuService.GetMenu(r.Context())
	if err != nil {
		var unavailableErr *models.UnavailableError
		if errors.As(err, &unavailableErr) {
			h.logger.Warn("Menu degraded: store unreachable", "error", err)
			writeJSONResponse(w, http.StatusOK, menuResponse{Dishes: []*models.Dish{}, Degraded: true})
			reqCtx.StatusCode = http.StatusOK
			h.logger.LogResponse(reqCtx)
			return
		}

		h.logger.Error("Failed to get menu", "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, menuResponse{Dishes: dishes})
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// GetAllDishes handles GET /api/v1/dishes
func (h *MenuHandler) GetAllDishes(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	dishes, err := h.menuService.GetAllDishes(r.Context())
	if err != nil {
		h.logger.Error("Failed to get dishes", "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, dishes)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// GetDish handles GET /api/v1/dishes/{id}
func (h *MenuHandler) GetDish(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	id := r.PathValue("id")

	dish, err := h.menuService.GetDish(r.Context(), id)
	if err != nil {
		h.logger.Warn("Failed to get dish", "dish_id", id, "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, dish)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// CreateDish handles POST /api/v1/dishes
func (h *MenuHandler) CreateDish(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req service.UpsertDishRequest
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for create dish", "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	dish, err := h.menuService.CreateDish(r.Context(), req)
	if err != nil {
		h.logger.Warn("Failed to create dish", "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusCreated, dish)
	reqCtx.StatusCode = http.StatusCreated
	h.logger.LogResponse(reqCtx)
}

// UpdateDish handles PUT /api/v1/dishes/{id}
func (h *MenuHandler) UpdateDish(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	id := r.PathValue("id")

	var req service.UpsertDishRequest
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for update dish", "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	dish, err := h.menuService.UpdateDish(r.Context(), id, req)
	if err != nil {
		h.logger.Warn("Failed to update dish", "dish_id", id, "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, dish)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// SetDishAvailability handles PATCH /api/v1/dishes/{id}/availability
func (h *MenuHandler) SetDishAvailability(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	id := r.PathValue("id")

	var req struct {
		Available bool `json:"available"`
	}
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for set dish availability", "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	if err := h.menuService.SetDishAvailability(r.Context(), id, req.Available); err != nil {
		h.logger.Warn("Failed to set dish availability", "dish_id", id, "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"dish_id":   id,
		"available": req.Available,
	})
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// DeleteDish handles DELETE /api/v1/dishes/{id}
func (h *MenuHandler) DeleteDish(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	id := r.PathValue("id")

	if err := h.menuService.DeleteDish(r.Context(), id); err != nil {
		h.logger.Warn("Failed to delete dish", "dish_id", id, "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"dish_id": id, "message": "Dish deleted"})
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}
