package handler

import (
	"net/http"

	"github.com/infinirdc/Opulence/internal/service"
	"github.com/infinirdc/Opulence/pkg/logger"
)

type InventoryHandler struct {
	inventoryService service.InventoryServiceInterface
	logger           *logger.Logger
}

func NewInventoryHandler(inventoryService service.InventoryServiceInterface, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		logger:           log.WithComponent("inventory_handler"),
	}
}

// GetAllIngredients handles GET /api/v1/inventory
func (h *InventoryHandler) GetAllIngredients(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	items, err := h.inventoryService.GetAllIngredients(r.Context())
	if err != nil {
		h.logger.Error("Failed to get ingredients", "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, items)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// GetIngredient handles GET /api/v1/inventory/{id}
func (h *InventoryHandler) GetIngredient(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	id := r.PathValue("id")

	item, err := h.inventoryService.GetIngredient(r.Context(), id)
	if err != nil {
		h.logger.Warn("Failed to get ingredient", "ingredient_id", id, "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, item)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// AddIngredient handles POST /api/v1/inventory
func (h *InventoryHandler) AddIngredient(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req service.UpsertIngredientRequest
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for add ingredient", "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	item, err := h.inventoryService.AddIngredient(r.Context(), req)
	if err != nil {
		h.logger.Warn("Failed to add ingredient", "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusCreated, item)
	reqCtx.StatusCode = http.StatusCreated
	h.logger.LogResponse(reqCtx)
}

// UpdateIngredient handles PUT /api/v1/inventory/{id}
func (h *InventoryHandler) UpdateIngredient(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	id := r.PathValue("id")

	var req service.UpsertIngredientRequest
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for update ingredient", "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	item, err := h.inventoryService.UpdateIngredient(r.Context(), id, req)
	if err != nil {
		h.logger.Warn("Failed to update ingredient", "ingredient_id", id, "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, item)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// AdjustStock handles POST /api/v1/inventory/{id}/adjust
func (h *InventoryHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	id := r.PathValue("id")

	var req service.AdjustStockRequest
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for adjust stock", "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	newStock, err := h.inventoryService.AdjustStock(r.Context(), id, req.Delta)
	if err != nil {
		h.logger.Warn("Failed to adjust stock", "ingredient_id", id, "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"ingredient_id": id,
		"stock":         newStock,
	})
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// GetLowStock handles GET /api/v1/inventory/low-stock
func (h *InventoryHandler) GetLowStock(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	items, err := h.inventoryService.GetLowStock(r.Context())
	if err != nil {
		h.logger.Error("Failed to get low-stock ingredients", "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, items)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}
