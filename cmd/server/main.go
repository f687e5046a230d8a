package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	feeapp "github.com/schoolfee/backend/internal/application/fee"
	schoolapp "github.com/schoolfee/backend/internal/application/school"
	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/infrastructure/auth"
	"github.com/schoolfee/backend/internal/infrastructure/cache"
	"github.com/schoolfee/backend/internal/infrastructure/config"
	"github.com/schoolfee/backend/internal/infrastructure/logger"
	"github.com/schoolfee/backend/internal/infrastructure/persistence"
	"github.com/schoolfee/backend/internal/infrastructure/persistence/tenant"
	"github.com/schoolfee/backend/internal/infrastructure/printing"
	"github.com/schoolfee/backend/internal/infrastructure/storage"
	"github.com/schoolfee/backend/internal/infrastructure/telemetry"
	"github.com/schoolfee/backend/internal/interfaces/http/handler"
	"github.com/schoolfee/backend/internal/interfaces/http/middleware"
	"github.com/schoolfee/backend/internal/interfaces/http/router"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// The log bridge must exist before the logger so every entry reaches the collector
	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry)
	if err != nil {
		panic("Failed to initialize log exporter: " + err.Error())
	}
	var extraCores []zapcore.Core
	if logProvider.IsEnabled() {
		extraCores = append(extraCores, logProvider.ZapCore(logger.ParseLevel(cfg.Log.Level)))
	}
	log := logger.New(cfg.Log, extraCores...)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting school fee backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	guardOpts := []tenant.Option{tenant.WithLogger(log)}
	if !cfg.App.IsProduction() {
		guardOpts = append(guardOpts, tenant.WithStrict())
	}
	if err := tenant.Register(db.DB, guardOpts...); err != nil {
		log.Fatal("Failed to register tenant guard", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Repositories
	schoolRepo := persistence.NewGormSchoolRepository(db.DB)
	classRepo := persistence.NewGormClassRepository(db.DB)
	studentRepo := persistence.NewGormStudentRepository(db.DB)
	structureRepo := persistence.NewGormFeeStructureRepository(db.DB)
	invoiceRepo := persistence.NewGormFeeInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormFeePaymentRepository(db.DB)
	handoverRepo := persistence.NewGormFeeHandoverRepository(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB)

	idempotency := cache.NewIdempotencyStore(ctx, cfg.Redis, log)
	if closer, ok := idempotency.(interface{ Close() error }); ok {
		defer func() {
			_ = closer.Close()
		}()
	}

	// Optional collaborators: logo storage and PDF printing
	var (
		logoStorage *storage.S3LogoStorage
		logoURLs    feeapp.LogoURLResolver
		logoUploads handler.LogoUploader
	)
	if cfg.Storage.Enabled {
		logoStorage, err = storage.NewS3LogoStorage(cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize logo storage", zap.Error(err))
		}
		if err := logoStorage.EnsureBucket(ctx); err != nil {
			log.Warn("Logo bucket check failed, uploads may fail", zap.Error(err))
		}
		logoURLs = logoStorage
		logoUploads = logoStorage
	} else {
		log.Info("Logo storage disabled")
	}

	var receiptRenderer feeapp.ReceiptRenderer
	if cfg.Printing.Enabled {
		printer, err := printing.NewChromedpPrinter(cfg.Printing, log)
		if err != nil {
			log.Fatal("Failed to start receipt printer", zap.Error(err))
		}
		defer func() {
			_ = printer.Close()
		}()
		renderer, err := printing.NewReceiptRenderer(printer, cfg.Printing)
		if err != nil {
			log.Fatal("Failed to initialize receipt renderer", zap.Error(err))
		}
		receiptRenderer = renderer
	} else {
		log.Info("Receipt PDF printing disabled")
	}

	feeMetrics, err := telemetry.NewFeeMetrics(meterProvider.Meter())
	if err != nil {
		log.Fatal("Failed to create fee metrics", zap.Error(err))
	}
	httpMetrics, err := telemetry.NewHTTPMetrics(meterProvider.Meter())
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	// Application services
	feeOpts := []feeapp.Option{feeapp.WithMetrics(feeMetrics)}
	structureService := feeapp.NewStructureService(structureRepo, invoiceRepo, classRepo, log, feeOpts...)
	invoiceService := feeapp.NewInvoiceService(invoiceRepo, structureRepo, paymentRepo, studentRepo, log, feeOpts...)
	paymentService := feeapp.NewPaymentService(uow, paymentRepo, invoiceRepo, studentRepo, idempotency,
		feeapp.PaymentConfig{
			AllowOverpayment: cfg.Fee.AllowOverpayment,
			IdempotencyTTL:   cfg.Fee.IdempotencyTTL,
		}, log, feeOpts...)
	handoverService := feeapp.NewHandoverService(uow, handoverRepo, paymentRepo,
		fee.CollectionPolicy{AllMethods: cfg.Fee.HandoverCountsAllMethods}, log, feeOpts...)
	receiptService := feeapp.NewReceiptService(feeapp.ReceiptSources{
		Payments:   paymentRepo,
		Invoices:   invoiceRepo,
		Structures: structureRepo,
		Students:   studentRepo,
		Classes:    classRepo,
		Schools:    schoolRepo,
	}, logoURLs, receiptRenderer, log, feeOpts...)
	subscriptionService := schoolapp.NewSubscriptionService(schoolRepo, log)

	// HTTP
	engine, err := router.NewEngine(router.EngineConfig{
		HTTP:   cfg.HTTP,
		Logger: log,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		},
		HTTPMetrics: httpMetrics,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, db)
	systemHandler.RegisterHealthRoutes(engine)

	jwtService := auth.NewJWTService(cfg.JWT)
	router.NewRouter(engine,
		router.WithGroupMiddleware(
			middleware.JWTAuthMiddleware(jwtService, log),
			middleware.SpanEnricher(),
			middleware.Profiling(profiler.IsEnabled()),
		),
	).
		Register(systemHandler).
		Register(handler.NewSchoolHandler(subscriptionService, logoUploads)).
		Register(handler.NewFeeStructureHandler(structureService)).
		Register(handler.NewFeeInvoiceHandler(invoiceService)).
		Register(handler.NewFeePaymentHandler(paymentService, receiptService)).
		Register(handler.NewFeeHandoverHandler(handoverService)).
		Setup()

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Flush telemetry last so shutdown spans and logs are exported
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler stop failed", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	log.Info("Server exited gracefully")
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Log provider shutdown failed", zap.Error(err))
	}
}
