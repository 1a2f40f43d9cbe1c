// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/kirana-be/internal/adapters/db"
	redis_a "github.com/ammerola/kirana-be/internal/adapters/redis_adapter"
	"github.com/ammerola/kirana-be/internal/adapters/storage"
	"github.com/ammerola/kirana-be/internal/core/ports"
	"github.com/ammerola/kirana-be/internal/core/services"
	"github.com/ammerola/kirana-be/internal/handlers"
	"github.com/ammerola/kirana-be/internal/handlers/middleware"
	"github.com/ammerola/kirana-be/internal/invoice"
	"github.com/ammerola/kirana-be/internal/pkg/config"
	"github.com/ammerola/kirana-be/internal/pkg/logger"
	"github.com/ammerola/kirana-be/internal/session"
	"github.com/ammerola/kirana-be/internal/workers"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting kirana point of sale API",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	slogger.Info("loading configuration")
	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx := context.Background()

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	if err := runMigrations(ctx, cfg, slogger); err != nil {
		if cfg.IsProduction() {
			slogger.Error("failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		slogger.Warn("failed to run migrations", slog.String("error", err.Error()))
	}

	// Sweep abandoned carts in the background. Sessions are process
	// memory, so the sweep has to run here rather than in the worker.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepSessions(sweepCtx, deps.sessions, cfg.Invoice.SessionTTL, slogger)

	server := setupHTTPServer(cfg, deps, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
		)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database       *db.Database
	redisClient    *redis.Client
	cache          ports.CacheRepository
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector
	sessions       ports.SessionStore

	catalogHandler   *handlers.CatalogHandler
	cartHandler      *handlers.CartHandler
	checkoutHandler  *handlers.CheckoutHandler
	salesHandler     *handlers.SalesHandler
	invoiceHandler   *handlers.InvoiceHandler
	dashboardHandler *handlers.DashboardHandler
	reportHandler    *handlers.ReportHandler
	exportHandler    *handlers.ExportHandler
	priceListHandler *handlers.PriceListHandler
	authHandler      *handlers.AuthHandler
	healthHandler    *handlers.HealthHandler
}

func (d *dependencies) cleanup() {
	if d.database != nil {
		d.database.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, slogger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	slogger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, slogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	slogger.Info("connecting to Redis",
		slog.String("host", cfg.Redis.Host),
		slog.String("port", cfg.Redis.Port),
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:            fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		PoolTimeout:     cfg.Redis.PoolTimeout,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	deps.redisClient = redisClient
	deps.cache = redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
	deps.asynqClient = asynq.NewClient(asynqRedisOpt)
	deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)

	artifacts, err := storage.NewS3Store(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.S3Bucket,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.S3Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, slogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize artifact store: %w", err)
	}

	// Repositories and stores
	catalogRepo := db.NewCatalogRepository(database, slogger)
	salesRepo := db.NewSalesRepository(database, slogger)
	sessions := session.NewStore(slogger)
	deps.sessions = sessions
	enqueuer := workers.NewEnqueuer(deps.asynqClient, slogger)

	renderer := invoice.NewRenderer(invoice.ShopInfo{
		Name:    cfg.Invoice.ShopName,
		Address: cfg.Invoice.ShopAddress,
		Phone:   cfg.Invoice.ShopPhone,
		Footer:  cfg.Invoice.Footer,
	})

	// Services
	catalogService := services.NewCatalogService(catalogRepo, slogger)
	salesService := services.NewSalesService(salesRepo, slogger)
	reportService := services.NewReportService(salesRepo, catalogRepo, slogger)
	checkoutService := services.NewCheckoutService(
		catalogRepo, salesRepo, sessions, database,
		renderer, artifacts, enqueuer, slogger,
	)

	unlockPassword, err := config.ResolveUnlockPassword(ctx, cfg, slogger)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve unlock password: %w", err)
	}

	// Handlers
	deps.catalogHandler = handlers.NewCatalogHandler(catalogService, slogger)
	deps.cartHandler = handlers.NewCartHandler(sessions, catalogService, slogger)
	deps.checkoutHandler = handlers.NewCheckoutHandler(checkoutService, deps.cache, slogger)
	deps.salesHandler = handlers.NewSalesHandler(salesService, deps.cache, slogger)
	deps.invoiceHandler = handlers.NewInvoiceHandler(salesService, renderer, artifacts, slogger)
	deps.dashboardHandler = handlers.NewDashboardHandler(reportService, deps.cache, slogger)
	deps.reportHandler = handlers.NewReportHandler(reportService, deps.cache, slogger)
	deps.exportHandler = handlers.NewExportHandler(salesService, catalogService, deps.cache, slogger)
	deps.priceListHandler = handlers.NewPriceListHandler(artifacts, enqueuer, slogger, 0)
	deps.authHandler = handlers.NewAuthHandler(unlockPassword, handlers.DefaultTokenTTL, slogger)
	deps.healthHandler = handlers.NewHealthHandler(database, redisClient, deps.asynqInspector, cfg, slogger)

	slogger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, slogger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	registerRoutes(mux, deps, cfg)

	// Apply middleware in reverse order (innermost first)
	var handler http.Handler = mux

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}
	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}
	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}

	handler = middleware.Logger(slogger)(handler)
	handler = middleware.Recovery(slogger)(handler)
	handler = middleware.RequestID(handler)

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(slogger.Handler(), slog.LevelError),
	}
}

func registerRoutes(mux *http.ServeMux, deps *dependencies, cfg *config.Config) {
	apiV1 := "/api/v1"

	// Open endpoints: health probes and the unlock door itself.
	mux.HandleFunc("GET /health", deps.healthHandler.Health)
	mux.HandleFunc("GET /ready", deps.healthHandler.Readiness)
	mux.HandleFunc("POST "+apiV1+"/unlock", deps.authHandler.Unlock)

	// Everything else sits behind the shop token.
	locked := http.NewServeMux()

	locked.HandleFunc("POST "+apiV1+"/lock", deps.authHandler.Lock)

	// Catalog
	locked.HandleFunc("GET "+apiV1+"/products", deps.catalogHandler.ListProducts)
	locked.HandleFunc("POST "+apiV1+"/products", deps.catalogHandler.CreateProduct)
	locked.HandleFunc("GET "+apiV1+"/products/low-stock", deps.catalogHandler.LowStock)
	locked.HandleFunc("GET "+apiV1+"/products/barcode/{barcode}", deps.catalogHandler.GetProductByBarcode)
	locked.HandleFunc("GET "+apiV1+"/products/{id}", deps.catalogHandler.GetProduct)
	locked.HandleFunc("PUT "+apiV1+"/products/{id}", deps.catalogHandler.UpdateProduct)
	locked.HandleFunc("DELETE "+apiV1+"/products/{id}", deps.catalogHandler.DeleteProduct)
	locked.HandleFunc("POST "+apiV1+"/products/{id}/stock", deps.catalogHandler.AdjustStock)
	locked.HandleFunc("POST "+apiV1+"/catalog/import", deps.catalogHandler.ImportCSV)
	locked.HandleFunc("POST "+apiV1+"/catalog/pricelist", deps.priceListHandler.ImportPriceList)

	// Cart sessions
	locked.HandleFunc("POST "+apiV1+"/carts", deps.cartHandler.CreateCart)
	locked.HandleFunc("GET "+apiV1+"/carts/{id}", deps.cartHandler.GetCart)
	locked.HandleFunc("DELETE "+apiV1+"/carts/{id}", deps.cartHandler.DeleteCart)
	locked.HandleFunc("POST "+apiV1+"/carts/{id}/lines", deps.cartHandler.AddLine)
	locked.HandleFunc("PUT "+apiV1+"/carts/{id}/lines/{index}", deps.cartHandler.UpdateLine)
	locked.HandleFunc("DELETE "+apiV1+"/carts/{id}/lines/{index}", deps.cartHandler.RemoveLine)
	locked.HandleFunc("POST "+apiV1+"/carts/{id}/clear", deps.cartHandler.ClearCart)
	locked.HandleFunc("POST "+apiV1+"/carts/{id}/checkout", deps.checkoutHandler.Checkout)

	// Sales ledger
	locked.HandleFunc("GET "+apiV1+"/sales", deps.salesHandler.ListSales)
	locked.HandleFunc("GET "+apiV1+"/sales/recent", deps.salesHandler.RecentSales)
	locked.HandleFunc("GET "+apiV1+"/sales/{id}", deps.salesHandler.GetSale)
	locked.HandleFunc("DELETE "+apiV1+"/sales/{id}", deps.salesHandler.DeleteSale)
	locked.HandleFunc("GET "+apiV1+"/sales/{id}/invoice", deps.invoiceHandler.GetInvoice)
	locked.HandleFunc("GET "+apiV1+"/sales/{id}/invoice/url", deps.invoiceHandler.GetInvoiceURL)

	// Reports and dashboard
	locked.HandleFunc("GET "+apiV1+"/dashboard", deps.dashboardHandler.GetDashboard)
	locked.HandleFunc("GET "+apiV1+"/reports/sales", deps.reportHandler.SalesReport)
	locked.HandleFunc("GET "+apiV1+"/reports/timeseries", deps.reportHandler.TimeSeries)
	locked.HandleFunc("GET "+apiV1+"/reports/top-products", deps.reportHandler.TopProducts)
	locked.HandleFunc("GET "+apiV1+"/reports/categories", deps.reportHandler.CategoryRevenue)

	// Exports
	locked.HandleFunc("GET "+apiV1+"/export/sales/csv", deps.exportHandler.ExportSalesCSV)
	locked.HandleFunc("GET "+apiV1+"/export/sales/excel", deps.exportHandler.ExportSalesExcel)
	locked.HandleFunc("GET "+apiV1+"/export/sales/json", deps.exportHandler.ExportSalesJSON)
	locked.HandleFunc("GET "+apiV1+"/export/products/csv", deps.exportHandler.ExportProductsCSV)
	locked.HandleFunc("GET "+apiV1+"/export/products/excel", deps.exportHandler.ExportProductsExcel)

	mux.Handle("/", middleware.RequireToken(deps.authHandler.Validate)(locked))
}

func sweepSessions(ctx context.Context, sessions ports.SessionStore, maxIdle time.Duration, slogger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sessions.Sweep(ctx, maxIdle)
			if err != nil {
				slogger.Warn("session sweep failed", slog.String("error", err.Error()))
				continue
			}
			if removed > 0 {
				slogger.Info("stale carts removed", slog.Int("count", removed))
			}
		}
	}
}

func runMigrations(ctx context.Context, cfg *config.Config, slogger *slog.Logger) error {
	slogger.Info("running database migrations")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}

	return db.RunMigrationsWithRetry(ctx, migrationConfig, slogger, 3)
}
