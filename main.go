// main.go
package main

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/splitbill/splitbill-backend/handlers"
	"github.com/splitbill/splitbill-backend/repository"
	"github.com/splitbill/splitbill-backend/routes"
	"github.com/splitbill/splitbill-backend/services"
	"github.com/splitbill/splitbill-backend/utils"
)

func main() {
	logger := utils.NewLogger()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found, using environment variables")
	}

	// Initialize New Relic
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName("SplitBill API"),
		newrelic.ConfigLicense(os.Getenv("NEW_RELIC_LICENSE_KEY")),
		newrelic.ConfigDistributedTracerEnabled(true),
	)
	if err != nil {
		logger.Warn("failed to initialize New Relic", "error", err)
	}

	// Initialize storage. The handle is passed into services explicitly.
	var store repository.Store
	if os.Getenv("STORE_BACKEND") == "memory" {
		store = repository.NewMemoryStore()
		logger.Info("using in-memory store")
	} else {
		db, err := repository.OpenDB()
		if err != nil {
			logger.Error("failed to initialize database", "error", err)
			os.Exit(1)
		}
		pgStore, err := repository.NewPostgresStore(db)
		if err != nil {
			logger.Error("failed to initialize store", "error", err)
			os.Exit(1)
		}
		store = pgStore
		logger.Info("connected to Postgres")
	}
	defer store.Close()

	// Initialize services
	balanceService := services.NewBalanceService(store, logger)
	billService := services.NewBillService(store, balanceService, logger)
	assignmentService := services.NewAssignmentService(store, balanceService, logger)
	paymentService := services.NewPaymentService(store, balanceService, logger)
	auditService := services.NewAuditService(store, logger)
	exportService := services.NewExportService(billService, assignmentService, balanceService, paymentService)

	// Set up Gin router
	router := gin.Default()

	// Add New Relic middleware
	if app != nil {
		router.Use(nrgin.Middleware(app))
	}

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Change to your frontend URL in production
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Set up routes
	routes.SetupRoutes(router,
		handlers.NewBillHandler(billService),
		handlers.NewAssignmentHandler(assignmentService),
		handlers.NewBalanceHandler(balanceService, auditService, exportService),
		handlers.NewPaymentHandler(paymentService),
	)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	logger.Info("server starting", "port", port)
	if err := router.Run(":" + port); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
