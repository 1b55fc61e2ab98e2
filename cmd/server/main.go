package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcatalog "github.com/resto/backend/internal/application/catalog"
	appevent "github.com/resto/backend/internal/application/event"
	appordering "github.com/resto/backend/internal/application/ordering"
	apppayments "github.com/resto/backend/internal/application/payments"
	appstock "github.com/resto/backend/internal/application/stock"
	"github.com/resto/backend/internal/domain/stock"
	"github.com/resto/backend/internal/infrastructure/cache"
	"github.com/resto/backend/internal/infrastructure/config"
	"github.com/resto/backend/internal/infrastructure/event"
	"github.com/resto/backend/internal/infrastructure/logger"
	"github.com/resto/backend/internal/infrastructure/persistence"
	"github.com/resto/backend/internal/infrastructure/telemetry"
	"github.com/resto/backend/internal/interfaces/http/handler"
	"github.com/resto/backend/internal/interfaces/http/middleware"
	"github.com/resto/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//	@title			Resto Backend API
//	@version		1.0
//	@description	Restaurant point-of-sale backend: order lifecycle, multi-station stock allocation, payment reconciliation and cancellation audit.

//	@contact.name	API Support
//	@contact.url	https://github.com/resto/backend

//	@host		localhost:8080
//	@BasePath	/api/v1

// version is overridden at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Resto Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Bridge application logs to the OTEL collector alongside stdout
	if cfg.Telemetry.Enabled {
		logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Warn("OTEL log export unavailable, continuing with local logs only", zap.Error(err))
		} else {
			otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
				ServiceName:    cfg.Telemetry.ServiceName,
				LoggerProvider: logsProvider,
				Level:          zapcore.InfoLevel,
			})
			log = telemetry.NewBridgedLogger(log.Core(), otelCore)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := logsProvider.Shutdown(shutdownCtx); err != nil {
					log.Error("Error shutting down OTEL logger provider", zap.Error(err))
				}
			}()
		}
	}

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithGormLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize telemetry providers
	var (
		tracerProvider *telemetry.TracerProvider
		meterProvider  *telemetry.MeterProvider
	)
	if cfg.Telemetry.Enabled {
		tracerProvider, err = telemetry.NewTracerProvider(ctx, telemetry.Config{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			SamplingRatio:     cfg.Telemetry.SamplingRatio,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Warn("Tracing unavailable", zap.Error(err))
			tracerProvider = nil
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
					log.Error("Error shutting down tracer provider", zap.Error(err))
				}
			}()
		}

		meterProvider, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Warn("Metrics unavailable", zap.Error(err))
			meterProvider = nil
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := meterProvider.Shutdown(shutdownCtx); err != nil {
					log.Error("Error shutting down meter provider", zap.Error(err))
				}
			}()
		}

		if cfg.Telemetry.DBTraceEnabled {
			dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
				Enabled:         true,
				LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
				SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			}, log)
			if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
				log.Warn("Failed to register database tracing", zap.Error(err))
			}
		}

		if meterProvider != nil {
			if _, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, telemetry.DefaultDBMetricsConfig(), log); err != nil {
				log.Warn("Failed to register database metrics", zap.Error(err))
			}
		}

		profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
			Enabled:           cfg.Telemetry.ProfilingEnabled,
			ServerAddress:     cfg.Telemetry.ProfilingServer,
			ApplicationName:   cfg.Telemetry.ServiceName,
			ProfileCPU:        true,
			ProfileAllocSpace: true,
			ProfileInuseSpace: true,
			ProfileGoroutines: true,
		}, log)
		if err != nil {
			log.Warn("Profiling unavailable", zap.Error(err))
		} else {
			defer func() {
				if err := profiler.Stop(); err != nil {
					log.Error("Error stopping profiler", zap.Error(err))
				}
			}()
		}
	}

	// Initialize repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	assignmentRepo := persistence.NewGormStockAssignmentRepository(db.DB)
	ledgerRepo := persistence.NewGormAllocationLedgerRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	stationRepo := persistence.NewGormStationRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)

	// Transaction scope binding order mutations, stock allocation and
	// payment voids to a single database transaction
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Initialize application services
	orderService := appordering.NewOrderService(orderRepo, productRepo, txScope, appordering.OrderServiceConfig{
		AllocationTrigger: appordering.AllocationTrigger(cfg.Ordering.AllocationTrigger),
		BillTolerance:     decimal.NewFromFloat(cfg.Ordering.BillTolerance),
	})
	cancellationService := appordering.NewCancellationService(txScope)
	cancellationService.SetStaleRetryLimit(cfg.Ordering.StaleRetryLimit)
	paymentService := apppayments.NewPaymentService(paymentRepo, txScope)
	stockService := appstock.NewStockService(assignmentRepo, ledgerRepo)
	catalogService := appcatalog.NewCatalogService(productRepo, stationRepo, categoryRepo)

	// Assignment chain cache (Redis when available, in-memory otherwise)
	assignmentCache := cache.NewAssignmentCache(cfg.Redis, log)
	stockService.SetCache(assignmentCache)

	// Business metrics fed by domain events and a periodic pool scan
	var posMetrics *telemetry.PosMetrics
	if meterProvider != nil {
		posMetrics, err = telemetry.NewPosMetrics(telemetry.PosMetricsConfig{
			Meter:         meterProvider.Meter("resto-backend"),
			Logger:        log,
			StockProvider: &poolAlertProvider{repo: assignmentRepo},
		})
		if err != nil {
			log.Warn("Business metrics unavailable", zap.Error(err))
			posMetrics = nil
		} else {
			posMetrics.StartPeriodicCollection(ctx, time.Minute)
			defer posMetrics.Stop()
		}
	}

	// Initialize event bus and subscribe handlers
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(appstock.NewStockBelowMinimumHandler(log).
		WithNotifier(appstock.NewLoggingStockAlertNotifier(log)))
	eventBus.Subscribe(appstock.NewCacheInvalidationHandler(assignmentCache, log))
	if posMetrics != nil {
		eventBus.Subscribe(appevent.NewMetricsHandler(posMetrics, log))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	orderService.SetEventPublisher(eventBus)
	cancellationService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)
	stockService.SetEventPublisher(eventBus)
	catalogService.SetEventPublisher(eventBus)

	// Initialize HTTP handlers
	orderHandler := handler.NewOrderHandler(orderService, cancellationService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	stockHandler := handler.NewStockHandler(stockService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	systemHandler := handler.NewSystemHandler(db.DB, orderRepo, version)

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
	// 7. TerminalContext - Resolve the POS terminal identity
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.Use(middleware.TerminalContext())

	// Observability middleware, after the terminal identity is resolved
	if cfg.Telemetry.Enabled {
		if tracerProvider != nil {
			engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
				ServiceName: cfg.Telemetry.ServiceName,
				Enabled:     true,
			}))
			engine.Use(middleware.SpanErrorMarker())
		}
		if meterProvider != nil {
			engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
				MeterProvider: meterProvider,
				ServiceName:   cfg.Telemetry.ServiceName,
				Enabled:       true,
			}))
		}
		if cfg.Telemetry.ProfilingEnabled {
			engine.Use(middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig()))
		}
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	// Initialize versioned router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Ordering domain (order lifecycle, cancellation and per-order payments)
	orderRoutes := router.NewDomainGroup("ordering", "/orders")
	orderRoutes.POST("", orderHandler.Open)
	orderRoutes.GET("", orderHandler.List)
	orderRoutes.GET("/number/:number", orderHandler.GetByOrderNumber)
	orderRoutes.GET("/:id", orderHandler.GetByID)
	orderRoutes.POST("/:id/items", orderHandler.AddItem)
	orderRoutes.POST("/:id/persons", orderHandler.AttachPerson)
	orderRoutes.POST("/:id/send", orderHandler.SendToKitchen)
	orderRoutes.POST("/:id/items/:itemId/start", orderHandler.MarkItemInProgress)
	orderRoutes.POST("/:id/items/:itemId/ready", orderHandler.MarkItemReady)
	orderRoutes.PUT("/:id/items/:itemId/status", orderHandler.AdvanceItemStatus)
	orderRoutes.POST("/:id/items/:itemId/cancel", orderHandler.CancelItem)
	orderRoutes.POST("/:id/bill", orderHandler.RequestBill)
	orderRoutes.POST("/:id/close", orderHandler.CloseOrder)
	orderRoutes.POST("/:id/cancel", orderHandler.CancelOrder)
	orderRoutes.GET("/:id/cancellations", orderHandler.CancellationHistory)
	orderRoutes.POST("/:id/payments", paymentHandler.Register)
	orderRoutes.GET("/:id/payments", paymentHandler.ListByOrder)
	orderRoutes.GET("/:id/balance", paymentHandler.Balance)

	// Payments domain (operations addressed by payment id)
	paymentRoutes := router.NewDomainGroup("payments", "/payments")
	paymentRoutes.POST("/:id/void", paymentHandler.Void)

	// Stock domain (station pools, allocation chains and ledgers)
	stockRoutes := router.NewDomainGroup("stock", "/stock")
	stockRoutes.POST("/assignments", stockHandler.CreateAssignment)
	stockRoutes.PATCH("/assignments/:id", stockHandler.AdjustAssignment)
	stockRoutes.POST("/assignments/:id/replenish", stockHandler.Replenish)
	stockRoutes.GET("/products/:productId/chain", stockHandler.GetProductChain)
	stockRoutes.GET("/stations/:stationId/assignments", stockHandler.ListByStation)
	stockRoutes.GET("/below-minimum", stockHandler.ListBelowMinimum)
	stockRoutes.GET("/ledgers/items/:itemId", stockHandler.GetLedgerForItem)
	stockRoutes.GET("/ledgers/orders/:id", stockHandler.GetLedgersForOrder)

	// Catalog domain (products, stations, categories at the API root)
	catalogRoutes := router.NewDomainGroup("catalog", "")
	catalogRoutes.POST("/products", catalogHandler.CreateProduct)
	catalogRoutes.GET("/products", catalogHandler.ListProducts)
	catalogRoutes.GET("/products/:id", catalogHandler.GetProduct)
	catalogRoutes.PUT("/products/:id", catalogHandler.UpdateProduct)
	catalogRoutes.PUT("/products/:id/inventory-tracking", catalogHandler.SetInventoryTracking)
	catalogRoutes.DELETE("/products/:id", catalogHandler.RetireProduct)
	catalogRoutes.POST("/stations", catalogHandler.CreateStation)
	catalogRoutes.GET("/stations", catalogHandler.ListStations)
	catalogRoutes.PUT("/stations/:id/active", catalogHandler.SetStationActive)
	catalogRoutes.POST("/categories", catalogHandler.CreateCategory)
	catalogRoutes.GET("/categories", catalogHandler.ListCategories)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.Info)
	systemRoutes.GET("/stats", systemHandler.Stats)
	systemRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Register all domain groups
	r.Register(orderRoutes).
		Register(paymentRoutes).
		Register(stockRoutes).
		Register(catalogRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// poolAlertProvider adapts the assignment repository to the telemetry
// layer's stock provider interface.
type poolAlertProvider struct {
	repo stock.StockAssignmentRepository
}

// GetBelowMinimumCount returns the number of active pools under their
// alert threshold.
func (p *poolAlertProvider) GetBelowMinimumCount(ctx context.Context) (int64, error) {
	pools, err := p.repo.FindBelowMinimum(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(pools)), nil
}
