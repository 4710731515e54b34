package main

import (
	"net/http"

	"crm-service/internal/handler"
	mid "crm-service/internal/middleware"
	"crm-service/pkg/config"
	"crm-service/pkg/database"
	"crm-service/pkg/jwtutil"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration (reads .env when present)
	appConfig, err := config.Load("crm-service")
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting crm-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database; the handle is injected into every handler
	db, err := database.InitDB(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Uploaded contract files are served back over a static route
	e.Static(appConfig.Upload.PublicPath, appConfig.Upload.Dir)

	// Handlers
	authHandler := handler.NewAuthHandler(db)
	customerHandler := handler.NewCustomerHandler(db)
	departmentHandler := handler.NewDepartmentHandler(db)
	designationHandler := handler.NewDesignationHandler(db)
	employeeHandler := handler.NewEmployeeHandler(db)
	projectHandler := handler.NewProjectHandler(db)
	projectMasterHandler := handler.NewProjectMasterHandler(db)
	contractHandler := handler.NewContractHandler(db, appConfig.Upload)

	// Public auth routes
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// Customer routes
	customerAPI := e.Group("/customers", mid.AuthMiddleware)
	customerAPI.POST("", customerHandler.Create)
	customerAPI.GET("", customerHandler.List)
	customerAPI.GET("/all", customerHandler.ExportAll)
	customerAPI.POST("/all", customerHandler.Import)
	customerAPI.PATCH("/:id", customerHandler.Update)

	// Department routes
	departmentAPI := e.Group("/departments", mid.AuthMiddleware)
	departmentAPI.POST("", departmentHandler.Create)
	departmentAPI.GET("", departmentHandler.List)
	departmentAPI.GET("/all", departmentHandler.ExportAll)
	departmentAPI.POST("/all", departmentHandler.Import)
	departmentAPI.PATCH("/:id", departmentHandler.Update)

	// Designation routes
	designationAPI := e.Group("/designations", mid.AuthMiddleware)
	designationAPI.POST("", designationHandler.Create)
	designationAPI.GET("", designationHandler.List)
	designationAPI.GET("/all", designationHandler.ExportAll)
	designationAPI.POST("/all", designationHandler.Import)
	designationAPI.PATCH("/:id", designationHandler.Update)

	// Employee routes
	employeeAPI := e.Group("/employees", mid.AuthMiddleware)
	employeeAPI.POST("", employeeHandler.Create)
	employeeAPI.GET("", employeeHandler.List)
	employeeAPI.GET("/all", employeeHandler.ExportAll)
	employeeAPI.POST("/all", employeeHandler.Import)
	employeeAPI.PATCH("/:id", employeeHandler.Update)

	// Project routes
	projectAPI := e.Group("/projects", mid.AuthMiddleware)
	projectAPI.POST("", projectHandler.Create)
	projectAPI.GET("", projectHandler.List)
	projectAPI.GET("/all", projectHandler.ExportAll)
	projectAPI.POST("/all", projectHandler.Import)
	projectAPI.PATCH("/:id", projectHandler.Update)

	// Project master-list routes
	projectMasterAPI := e.Group("/projects_master", mid.AuthMiddleware)
	projectMasterAPI.POST("", projectMasterHandler.Create)
	projectMasterAPI.GET("", projectMasterHandler.List)
	projectMasterAPI.GET("/all", projectMasterHandler.ExportAll)
	projectMasterAPI.POST("/all", projectMasterHandler.Import)
	projectMasterAPI.PATCH("/:id", projectMasterHandler.Update)

	// Contract routes
	contractAPI := e.Group("/contracts", mid.AuthMiddleware)
	contractAPI.POST("", contractHandler.Create)
	contractAPI.GET("", contractHandler.List)
	contractAPI.GET("/all", contractHandler.ExportAll)
	contractAPI.POST("/all", contractHandler.Import)
	contractAPI.GET("/view/:id", contractHandler.View)
	contractAPI.PATCH("/:id", contractHandler.Update)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
