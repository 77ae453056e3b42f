package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	consolidationapp "github.com/groupclose/backend/internal/application/consolidation"
	"github.com/groupclose/backend/internal/domain/consolidation"
	"github.com/groupclose/backend/internal/infrastructure/config"
	"github.com/groupclose/backend/internal/infrastructure/logger"
	"github.com/groupclose/backend/internal/infrastructure/persistence"
	"github.com/groupclose/backend/internal/infrastructure/rates"
	"github.com/groupclose/backend/internal/interfaces/http/handler"
	"github.com/groupclose/backend/internal/interfaces/http/middleware"
	"github.com/groupclose/backend/internal/interfaces/http/router"
)

//	@title			GroupClose Backend API
//	@version		1.0
//	@description	Consolidation run engine for multi-entity financial close

//	@contact.name	API Support
//	@contact.url	https://github.com/groupclose/backend

//	@host		localhost:8080
//	@BasePath	/api/v1

const maxBodyBytes = 4 << 20 // 4 MiB

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting GroupClose Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Redis client for the rate cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()

	// Initialize repositories
	groupRepo := persistence.NewGormConsolidationGroupRepository(db.DB)
	ruleRepo := persistence.NewGormEliminationRuleRepository(db.DB)
	runRepo := persistence.NewGormConsolidationRunRepository(db.DB)
	trialBalanceRepo := persistence.NewGormTrialBalanceRepository(db.DB)

	// Source-data providers feeding the consolidation pipeline
	balanceProvider := persistence.NewGormTrialBalanceProvider(db.DB)
	transactionProvider := persistence.NewGormIntercompanyTransactionProvider(db.DB)

	// Exchange rate resolution with a Redis read-through cache
	rateResolver := rates.NewCachedRateResolver(
		rates.NewGormRateResolver(db.DB),
		redisClient,
		cfg.Consolidation.RateCacheTTL,
		log,
	)

	// Consolidation run orchestrator
	orchestrator := consolidation.NewOrchestrator(
		groupRepo,
		ruleRepo,
		runRepo,
		trialBalanceRepo,
		rateResolver,
		balanceProvider,
		transactionProvider,
		consolidation.WithLogger(log),
		consolidation.WithRoundingTolerance(cfg.Consolidation.RoundingToleranceDecimal()),
		consolidation.WithMaterialityThreshold(cfg.Consolidation.MaterialityThresholdDecimal()),
	)

	// Initialize application services
	groupService := consolidationapp.NewGroupService(groupRepo, runRepo)
	ruleService := consolidationapp.NewRuleService(ruleRepo, groupRepo, trialBalanceRepo)
	runService := consolidationapp.NewRunService(orchestrator, runRepo, trialBalanceRepo, log)
	reportService := consolidationapp.NewReportService(
		runRepo,
		trialBalanceRepo,
		consolidation.NewReportAssembler(cfg.Consolidation.RoundingToleranceDecimal()),
	)

	// Initialize handlers
	groupHandler := handler.NewConsolidationGroupHandler(groupService)
	ruleHandler := handler.NewEliminationRuleHandler(ruleService)
	runHandler := handler.NewConsolidationRunHandler(runService)
	reportHandler := handler.NewReportHandler(reportService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Throttle per tenant/IP
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(maxBodyBytes))

	// Throttle per tenant and client IP
	rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	engine.Use(middleware.RateLimit(rateLimiter))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Consolidation domain routes
	consolidationRoutes := router.NewDomainGroup("consolidation", "/consolidation")

	// Group and membership routes
	consolidationRoutes.POST("/groups", groupHandler.Create)
	consolidationRoutes.GET("/groups", groupHandler.List)
	consolidationRoutes.GET("/groups/:id", groupHandler.GetByID)
	consolidationRoutes.PUT("/groups/:id", groupHandler.Update)
	consolidationRoutes.DELETE("/groups/:id", groupHandler.Delete)
	consolidationRoutes.POST("/groups/:id/deactivate", groupHandler.Deactivate)
	consolidationRoutes.POST("/groups/:id/members", groupHandler.AddMember)
	consolidationRoutes.PUT("/groups/:id/members/:companyId", groupHandler.UpdateMember)
	consolidationRoutes.DELETE("/groups/:id/members/:companyId", groupHandler.RemoveMember)

	// Elimination rule routes
	consolidationRoutes.POST("/groups/:id/rules", ruleHandler.Create)
	consolidationRoutes.POST("/groups/:id/rules/standard", ruleHandler.CreateStandardSet)
	consolidationRoutes.GET("/groups/:id/rules", ruleHandler.ListForGroup)
	consolidationRoutes.GET("/rules/:id", ruleHandler.GetByID)
	consolidationRoutes.PATCH("/rules/:id", ruleHandler.Update)
	consolidationRoutes.DELETE("/rules/:id", ruleHandler.Delete)

	// Run lifecycle routes
	consolidationRoutes.POST("/runs", runHandler.Initiate)
	consolidationRoutes.GET("/runs", runHandler.List)
	consolidationRoutes.GET("/runs/:id", runHandler.GetByID)
	consolidationRoutes.POST("/runs/:id/execute", runHandler.Execute)
	consolidationRoutes.POST("/runs/:id/cancel", runHandler.Cancel)
	consolidationRoutes.DELETE("/runs/:id", runHandler.Delete)
	consolidationRoutes.GET("/runs/:id/trial-balance", runHandler.GetTrialBalance)
	consolidationRoutes.GET("/groups/:id/runs/latest", runHandler.GetLatestCompleted)

	// Consolidated report routes
	consolidationRoutes.GET("/runs/:id/reports", reportHandler.GetReportPackage)
	consolidationRoutes.GET("/runs/:id/reports/balance-sheet", reportHandler.GetBalanceSheet)
	consolidationRoutes.GET("/runs/:id/reports/income-statement", reportHandler.GetIncomeStatement)
	consolidationRoutes.GET("/runs/:id/reports/cash-flow", reportHandler.GetCashFlowStatement)
	consolidationRoutes.GET("/runs/:id/reports/equity", reportHandler.GetEquityStatement)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(consolidationRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
