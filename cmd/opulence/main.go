package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/infinirdc/Opulence/internal/handler"
	"github.com/infinirdc/Opulence/internal/repositories"
	"github.com/infinirdc/Opulence/internal/router"
	"github.com/infinirdc/Opulence/internal/service"
	"github.com/infinirdc/Opulence/pkg/database"
	"github.com/infinirdc/Opulence/pkg/envconfig"
	"github.com/infinirdc/Opulence/pkg/flags"
	"github.com/infinirdc/Opulence/pkg/logger"
	"github.com/infinirdc/Opulence/pkg/metrics"
	"github.com/infinirdc/Opulence/pkg/shutdownsetup"
	"github.com/infinirdc/Opulence/pkg/telemetry"
)

func main() {
	// Parse command-line flags
	flagConfig := flags.Parse()

	if err := flagConfig.Validate(); err != nil {
		fmt.Printf("Configuration error: %v\n", err)
		return
	}

	envErr := envconfig.LoadEnvFile(".env")

	loggerConfig := logger.Config{
		Level:        logger.LogLevel(envconfig.GetLogLevel()),
		Format:       envconfig.GetEnv("LOG_FORMAT", "json"),
		Output:       envconfig.GetEnv("LOG_OUTPUT", "stdout"),
		EnableCaller: envconfig.GetEnv("LOG_ENABLE_CALLER", "true") == "true",
		Environment:  envconfig.GetEnv("ENVIRONMENT", "development"),
	}

	appLogger := logger.New(loggerConfig)

	if envErr != nil {
		appLogger.Warn("Failed to load .env file", "error", envErr)
	} else {
		appLogger.Debug(".env file loaded successfully")
	}

	appLogger.Info("Starting Opulence restaurant service",
		"environment", loggerConfig.Environment,
		"log_level", loggerConfig.Level)

	ctx := context.Background()

	telemetryProvider, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:      envconfig.GetBool("OTEL_ENABLED", false),
		ServiceName:  envconfig.GetEnv("OTEL_SERVICE_NAME", "opulence"),
		OTLPEndpoint: envconfig.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
	})
	if err != nil {
		appLogger.Warn("Failed to initialize tracing, continuing without it", "error", err)
		telemetryProvider = &telemetry.Provider{}
	}

	// Establish database connection
	db, err := database.NewConnection(envconfig.LoadDatabaseConfig(), appLogger)
	if err != nil {
		appLogger.Fatal("Failed to establish database connection", "error", err)
	}

	if err := db.HealthCheck(ctx); err != nil {
		appLogger.Error("Database health check failed", "error", err)
	} else {
		appLogger.Info("Database health check passed")
	}

	appMetrics := metrics.New("opulence")

	// Initialize repositories with logger and database connection
	inventoryRepo := repositories.NewInventoryRepository(appLogger, db)
	menuRepo := repositories.NewMenuRepository(appLogger, db)
	orderRepo := repositories.NewOrderRepository(appLogger, db)

	// Initialize services
	orderConfig := service.OrderServiceConfig{
		StrictStatusFlow: envconfig.GetBool("ORDER_STRICT_STATUS_FLOW", true),
	}

	inventoryService := service.NewInventoryService(inventoryRepo, appMetrics, appLogger)
	menuService := service.NewMenuService(menuRepo, appLogger)
	orderService := service.NewOrderService(orderRepo, menuRepo, orderConfig,
		appMetrics, telemetryProvider.Tracer("order_service"), appLogger)
	dashboardService := service.NewDashboardService(inventoryRepo, menuRepo, orderRepo, appLogger)

	// Initialize handlers
	handlers := router.Handlers{
		Order:     handler.NewOrderHandler(orderService, appLogger),
		Inventory: handler.NewInventoryHandler(inventoryService, appLogger),
		Menu:      handler.NewMenuHandler(menuService, appLogger),
		Dashboard: handler.NewDashboardHandler(dashboardService, appLogger),
		Admin:     handler.NewAdminGuard(envconfig.GetEnv("ADMIN_PIN", ""), appLogger),
	}

	routes := router.New(handlers, db, appMetrics, appLogger)

	initialPort := flagConfig.Port
	if initialPort == "" {
		initialPort = envconfig.GetEnv("PORT", "8080")
	}
	host := envconfig.GetEnv("HOST", "localhost")

	port := initialPort

	server := &http.Server{
		Handler:      routes,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		server.Addr = host + ":" + port

		go func() {
			appLogger.Info("Starting HTTP server",
				"host", host,
				"port", port,
				"address", server.Addr)

			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLogger.Error("Server error", "error", err)
				serverErrors <- err
			}
		}()

		select {
		case err := <-serverErrors:
			if strings.Contains(err.Error(), "address already in use") && i < maxRetries-1 {
				portNum := 8080 + i + 1
				port = fmt.Sprintf("%d", portNum)
				appLogger.Warn("Port already in use, trying alternative port",
					"current_port", server.Addr,
					"next_port", port)
				continue
			} else {
				appLogger.Error("Failed to start server after retries", "error", err)
				return
			}
		case <-time.After(200 * time.Millisecond):
			appLogger.Info("Server started successfully", "port", port)
		}

		break
	}

	select {
	case err := <-serverErrors:
		appLogger.Error("Could not start server", "error", err)
	default:
		shutdownsetup.SetupGracefulShutdown(server, appLogger,
			func(ctx context.Context) error {
				return db.Close()
			},
			func(ctx context.Context) error {
				return telemetryProvider.Shutdown(ctx)
			},
		)
	}
}
