package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	catalogapp "github.com/ppm/backend/internal/application/catalog"
	syncapp "github.com/ppm/backend/internal/application/sync"
	"github.com/ppm/backend/internal/domain/integration"
	"github.com/ppm/backend/internal/domain/shared"
	"github.com/ppm/backend/internal/infrastructure/baselinker"
	"github.com/ppm/backend/internal/infrastructure/cache"
	"github.com/ppm/backend/internal/infrastructure/config"
	"github.com/ppm/backend/internal/infrastructure/event"
	"github.com/ppm/backend/internal/infrastructure/logger"
	"github.com/ppm/backend/internal/infrastructure/persistence"
	"github.com/ppm/backend/internal/infrastructure/prestashop"
	"github.com/ppm/backend/internal/infrastructure/syncqueue"
	"github.com/ppm/backend/internal/interfaces/http/handler"
	"github.com/ppm/backend/internal/interfaces/http/router"
)

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
		_ = log.Sync()
	}()

	log.Info("Starting PPM Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB, log)
	attrTypeRepo := persistence.NewGormAttributeTypeRepository(db.DB)
	attrValueRepo := persistence.NewGormAttributeValueRepository(db.DB)
	mappingRepo := persistence.NewGormIntegrationMappingRepository(db.DB)
	progressRepo := persistence.NewGormJobProgressRepository(db.DB)
	targetProvider := persistence.NewGormTargetProvider(db.DB)
	categoryUoW := persistence.NewGormCategoryUnitOfWork(db.DB)

	// Initialize event dedup store
	dedup, err := newIdempotencyStore(cfg)
	if err != nil {
		log.Fatal("Failed to initialize dedup store", zap.Error(err))
	}
	defer func() {
		if err := dedup.Close(); err != nil {
			log.Error("Error closing dedup store", zap.Error(err))
		}
	}()

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Register integration target clients from configured credentials
	registry := integration.NewTargetClientRegistry()
	registry.Register(newPrestashopClient(cfg, log))
	registry.Register(newBaselinkerClient(cfg, log))

	// Initialize the sync pipeline: executor -> queue -> dispatcher
	executor := syncapp.NewExecutor(targetProvider, mappingRepo, registry,
		categoryRepo, productRepo, attrTypeRepo, attrValueRepo, log)

	queue, err := syncqueue.NewQueue(syncqueue.Config{
		Workers:        cfg.Sync.Workers,
		QueueSize:      cfg.Sync.QueueSize,
		MaxAttempts:    cfg.Sync.MaxAttempts,
		RetryBaseDelay: cfg.Sync.RetryBaseDelay,
		RetryMaxDelay:  cfg.Sync.RetryMaxDelay,
		TaskTimeout:    cfg.Sync.TaskTimeout,
	}, executor, log)
	if err != nil {
		log.Fatal("Failed to create sync queue", zap.Error(err))
	}
	if err := queue.Start(context.Background()); err != nil {
		log.Fatal("Failed to start sync queue", zap.Error(err))
	}
	defer func() {
		if err := queue.Stop(context.Background()); err != nil {
			log.Error("Error stopping sync queue", zap.Error(err))
		}
	}()
	log.Info("Sync queue started",
		zap.Int("workers", cfg.Sync.Workers),
		zap.Int("queue_size", cfg.Sync.QueueSize),
	)

	dispatcher := syncapp.NewDispatcher(syncapp.DispatcherConfig{
		MaxAttempts:  cfg.Sync.MaxAttempts,
		DedupEnabled: cfg.Event.DedupEnabled,
		DedupTTL:     cfg.Event.DedupTTL,
	}, queue, targetProvider, dedup, log)
	eventBus.Subscribe(dispatcher)

	mappingCleanup := syncapp.NewMappingCleanupHandler(mappingRepo, log)
	eventBus.Subscribe(mappingCleanup)

	log.Info("Event handlers registered",
		zap.Strings("dispatcher_events", dispatcher.EventTypes()),
		zap.Strings("mapping_cleanup_events", mappingCleanup.EventTypes()),
	)

	// Initialize application services
	categoryService := catalogapp.NewCategoryService(categoryRepo, eventBus, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, eventBus, log)
	attributeService := catalogapp.NewAttributeService(attrTypeRepo, attrValueRepo, eventBus, log)
	progressService := syncapp.NewProgressService(progressRepo, log)
	bulkService := syncapp.NewCategoryBulkService(categoryRepo, categoryUoW, progressService, eventBus, log)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewCategoryHandler(categoryService, bulkService, log)).
		Register(handler.NewProductHandler(productService)).
		Register(handler.NewAttributeHandler(attributeService)).
		Register(handler.NewJobHandler(progressService))
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

// newIdempotencyStore builds the dedup backend selected in config
func newIdempotencyStore(cfg *config.Config) (shared.IdempotencyStore, error) {
	if cfg.Event.DedupBackend == "redis" {
		return cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return cache.NewInMemoryIdempotencyStore(), nil
}

// newPrestashopClient builds the PrestaShop client and loads every configured
// shop's credentials into it
func newPrestashopClient(cfg *config.Config, log *zap.Logger) *prestashop.Client {
	client := prestashop.NewClient()
	for identifier, creds := range cfg.Integrations.Prestashop {
		shopCfg := prestashop.NewConfig(creds.BaseURL, creds.APIKey)
		if creds.TimeoutSeconds > 0 {
			shopCfg.TimeoutSeconds = creds.TimeoutSeconds
		}
		if creds.RequestsPerSecond > 0 {
			shopCfg.RequestsPerSecond = creds.RequestsPerSecond
		}
		if creds.Burst > 0 {
			shopCfg.Burst = creds.Burst
		}
		if err := client.SetShopConfig(identifier, shopCfg); err != nil {
			log.Warn("Skipping misconfigured PrestaShop shop",
				zap.String("identifier", identifier),
				zap.Error(err),
			)
		}
	}
	return client
}

// newBaselinkerClient builds the Baselinker client and loads every configured
// account's credentials into it
func newBaselinkerClient(cfg *config.Config, log *zap.Logger) *baselinker.Client {
	client := baselinker.NewClient()
	for identifier, creds := range cfg.Integrations.Baselinker {
		accountCfg := baselinker.NewConfig(creds.Token, creds.InventoryID)
		if creds.TimeoutSeconds > 0 {
			accountCfg.TimeoutSeconds = creds.TimeoutSeconds
		}
		if creds.RequestsPerMinute > 0 {
			accountCfg.RequestsPerMinute = creds.RequestsPerMinute
		}
		if err := client.SetAccountConfig(identifier, accountCfg); err != nil {
			log.Warn("Skipping misconfigured Baselinker account",
				zap.String("identifier", identifier),
				zap.Error(err),
			)
		}
	}
	return client
}

// gormLogLevel maps the application log level onto GORM's logger levels
func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "warn", "warning":
		return gormlogger.Warn
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Silent
	}
}
