package router

import (
	"net/http"

	"github.com/infinirdc/Opulence/internal/handler"
	"github.com/infinirdc/Opulence/pkg/database"
	"github.com/infinirdc/Opulence/pkg/logger"
	"github.com/infinirdc/Opulence/pkg/metrics"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Order     *handler.OrderHandler
	Inventory *handler.InventoryHandler
	Menu      *handler.MenuHandler
	Dashboard *handler.DashboardHandler
	Admin     *handler.AdminGuard
}

// New builds the HTTP routing tree. Customer routes (menu, order placement,
// order lookup) are open; inventory, dish administration, fulfillment
// transitions and the dashboard sit behind the admin guard.
func New(h Handlers, db *database.DB, m *metrics.Metrics, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler(db, log))
	mux.Handle("GET /metrics", m.Handler())

	// Customer-facing
	mux.HandleFunc("GET /api/v1/menu", h.Menu.GetMenu)
	mux.HandleFunc("POST /api/v1/orders", h.Order.PlaceOrder)
	mux.HandleFunc("GET /api/v1/orders/{id}", h.Order.GetOrderByID)

	// Admin: fulfillment
	mux.HandleFunc("GET /api/v1/orders", h.Admin.Require(h.Order.GetAllOrders))
	mux.HandleFunc("PATCH /api/v1/orders/{id}/status", h.Admin.Require(h.Order.UpdateOrderStatus))

	// Admin: stock ledger
	mux.HandleFunc("GET /api/v1/inventory", h.Admin.Require(h.Inventory.GetAllIngredients))
	mux.HandleFunc("POST /api/v1/inventory", h.Admin.Require(h.Inventory.AddIngredient))
	mux.HandleFunc("GET /api/v1/inventory/low-stock", h.Admin.Require(h.Inventory.GetLowStock))
	mux.HandleFunc("GET /api/v1/inventory/{id}", h.Admin.Require(h.Inventory.GetIngredient))
	mux.HandleFunc("PUT /api/v1/inventory/{id}", h.Admin.Require(h.Inventory.UpdateIngredient))
	mux.HandleFunc("POST /api/v1/inventory/{id}/adjust", h.Admin.Require(h.Inventory.AdjustStock))

	// Admin: recipe catalog
	mux.HandleFunc("GET /api/v1/dishes", h.Admin.Require(h.Menu.GetAllDishes))
	mux.HandleFunc("POST /api/v1/dishes", h.Admin.Require(h.Menu.CreateDish))
	mux.HandleFunc("GET /api/v1/dishes/{id}", h.Admin.Require(h.Menu.GetDish))
	mux.HandleFunc("PUT /api/v1/dishes/{id}", h.Admin.Require(h.Menu.UpdateDish))
	mux.HandleFunc("PATCH /api/v1/dishes/{id}/availability", h.Admin.Require(h.Menu.SetDishAvailability))
	mux.HandleFunc("DELETE /api/v1/dishes/{id}", h.Admin.Require(h.Menu.DeleteDish))

	// Admin: dashboard
	mux.HandleFunc("GET /api/v1/dashboard", h.Admin.Require(h.Dashboard.GetDashboard))

	return log.HTTPMiddleware(m.HTTPMiddleware(mux))
}

// healthHandler reports liveness plus store reachability.
func healthHandler(db *database.DB, log *logger.Logger) http.HandlerFunc {
	healthLog := log.WithComponent("health")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if err := db.HealthCheck(r.Context()); err != nil {
			healthLog.Warn("Health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"degraded","database":"unreachable"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","database":"reachable"}`))
	}
}
