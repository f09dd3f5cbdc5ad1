package handler

import (
	"net/http"

	"github.com/infinirdc/Opulence/internal/service"
	"github.com/infinirdc/Opulence/models"
	"github.com/infinirdc/Opulence/pkg/logger"
)

type OrderHandler struct {
	orderService service.OrderServiceInterface
	logger       *logger.Logger
}

func NewOrderHandler(orderService service.OrderServiceInterface, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       log.WithComponent("order_handler"),
	}
}

// placeOrderResponse is the checkout confirmation contract. Rejections use
// the same shape with success=false and a reason.
type placeOrderResponse struct {
	Success bool    `json:"success"`
	OrderID string  `json:"order_id,omitempty"`
	Total   float64 `json:"total,omitempty"`
	Message string  `json:"message,omitempty"`
}

// PlaceOrder handles POST /api/v1/orders
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var placeReq service.PlaceOrderRequest
	if err := parseRequestBody(r, &placeReq); err != nil {
		h.logger.Warn("Invalid request body for place order", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, placeOrderResponse{
			Success: false,
			Message: "invalid request body",
		})
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	order, err := h.orderService.PlaceOrder(r.Context(), placeReq)
	if err != nil {
		h.logger.Warn("Failed to place order", "error", err)
		statusCode := statusFromError(err)
		writeJSONResponse(w, statusCode, placeOrderResponse{
			Success: false,
			Message: errorMessage(err),
		})
		reqCtx.StatusCode = statusCode
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusCreated, placeOrderResponse{
		Success: true,
		OrderID: order.ID,
		Total:   order.Total,
	})
	reqCtx.StatusCode = http.StatusCreated
	h.logger.LogResponse(reqCtx)
}

// GetAllOrders handles GET /api/v1/orders
func (h *OrderHandler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	orders, err := h.orderService.GetAllOrders(r.Context())
	if err != nil {
		h.logger.Error("Failed to get all orders", "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, orders)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// GetOrderByID handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	id := r.PathValue("id")

	order, err := h.orderService.GetOrderByID(r.Context(), id)
	if err != nil {
		h.logger.Warn("Failed to get order", "order_id", id, "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, order)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// UpdateOrderStatus handles PATCH /api/v1/orders/{id}/status
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	id := r.PathValue("id")

	var statusReq struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := parseRequestBody(r, &statusReq); err != nil {
		h.logger.Warn("Invalid request body for update order status", "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	order, err := h.orderService.UpdateOrderStatus(r.Context(), id, statusReq.Status)
	if err != nil {
		h.logger.Warn("Failed to update order status", "order_id", id, "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, order)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}
