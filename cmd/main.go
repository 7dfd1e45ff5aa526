package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"tandoor/internal/catalog"
	"tandoor/internal/events"
	"tandoor/internal/handler"
	"tandoor/internal/repositories"
	"tandoor/internal/router"
	"tandoor/internal/service"
	"tandoor/pkg/database"
	"tandoor/pkg/envconfig"
	"tandoor/pkg/flags"
	"tandoor/pkg/logger"
	"tandoor/pkg/shutdownsetup"
)

func main() {
	flagConfig := flags.Parse()
	if err := flagConfig.Validate(); err != nil {
		fmt.Printf("Configuration error: %v\n", err)
		return
	}

	envErr := envconfig.LoadEnvFile(".env")

	loggerConfig := logger.Config{
		Level:        envconfig.GetLogLevel(),
		Format:       envconfig.GetEnv("LOG_FORMAT", "json"),
		Output:       envconfig.GetEnv("LOG_OUTPUT", "stdout"),
		EnableCaller: envconfig.GetEnvBool("LOG_ENABLE_CALLER", true),
		Environment:  envconfig.GetEnv("ENVIRONMENT", "development"),
	}
	appLogger := logger.New(loggerConfig)

	if envErr != nil {
		appLogger.Warn("Failed to load .env file", "error", envErr)
	} else {
		appLogger.Debug(".env file loaded successfully")
	}

	appLogger.Info("Starting Tandoor application",
		"environment", loggerConfig.Environment,
		"log_level", loggerConfig.Level)

	db, err := database.NewConnection(envconfig.LoadDatabaseConfig(), appLogger)
	if err != nil {
		appLogger.Fatal("Failed to establish database connection", "error", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Failed to close database connection", "error", err)
		}
	}()

	if err := repositories.EnsureSchema(db, appLogger); err != nil {
		appLogger.Fatal("Failed to ensure database schema", "error", err)
	}

	menuCatalog, err := catalog.LoadFile(flagConfig.MenuPath, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load menu dataset", "path", flagConfig.MenuPath, "error", err)
	}

	orderRepo := repositories.NewOrderRepository(appLogger, db)
	tableRepo := repositories.NewTableRepository(appLogger, db)
	bookingRepo := repositories.NewBookingRepository(appLogger, db)
	inventoryRepo := repositories.NewInventoryRepository(appLogger, db)

	// The event publisher is optional: without an AMQP URL the order
	// flow simply runs without kitchen notifications.
	var eventSink service.EventSinkInterface
	if amqpURL := envconfig.GetEnv("EVENTS_AMQP_URL", ""); amqpURL != "" {
		publisher, err := events.Dial(amqpURL, appLogger)
		if err != nil {
			appLogger.Warn("Failed to connect to event broker, continuing without events", "error", err)
		} else {
			defer publisher.Close()
			eventSink = publisher
		}
	}

	inventoryService := service.NewInventoryService(inventoryRepo, appLogger)
	tableService := service.NewTableService(tableRepo, appLogger)

	turnover := time.Duration(envconfig.GetEnvInt("BOOKING_TURNOVER_MINUTES", 15)) * time.Minute
	bookingService := service.NewBookingService(bookingRepo, tableRepo, turnover, appLogger)
	orderService := service.NewOrderService(orderRepo, tableRepo, menuCatalog, inventoryService, eventSink, appLogger)

	if flagConfig.Baseline != "" {
		if err := inventoryService.LoadBaselineFile(flagConfig.Baseline); err != nil {
			appLogger.Fatal("Failed to seed inventory baseline", "path", flagConfig.Baseline, "error", err)
		}
	}

	httpHandler := router.New(router.Handlers{
		Orders:    handler.NewOrderHandler(orderService, appLogger),
		Tables:    handler.NewTableHandler(tableService, appLogger),
		Bookings:  handler.NewBookingHandler(bookingService, appLogger),
		Inventory: handler.NewInventoryHandler(inventoryService, appLogger),
		Menu:      handler.NewMenuHandler(menuCatalog, appLogger),
	}, db, appLogger)

	host := envconfig.GetEnv("HOST", "localhost")
	port := flagConfig.Port

	server := &http.Server{
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		server.Addr = host + ":" + port

		go func() {
			appLogger.Info("Starting HTTP server", "address", server.Addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLogger.Error("Server error", "error", err)
				serverErrors <- err
			}
		}()

		select {
		case err := <-serverErrors:
			if strings.Contains(err.Error(), "address already in use") && i < maxRetries-1 {
				port = fmt.Sprintf("%d", 8080+i+1)
				appLogger.Warn("Port already in use, trying alternative port", "next_port", port)
				continue
			}
			appLogger.Error("Failed to start server after retries", "error", err)
			return
		case <-time.After(200 * time.Millisecond):
			appLogger.Info("Server started successfully", "port", port)
		}

		break
	}

	select {
	case err := <-serverErrors:
		appLogger.Error("Could not start server", "error", err)
		return
	default:
		shutdownsetup.SetupGracefulShutdown(server, appLogger)
	}
}
