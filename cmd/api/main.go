package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"docconvert/docs"
	"docconvert/internal/config"
	"docconvert/internal/converter"
	"docconvert/internal/database"
	"docconvert/internal/database/migration"
	handlers "docconvert/internal/http/handler"
	"docconvert/internal/http/middleware"
	"docconvert/internal/logging"
	"docconvert/internal/otel"
	"docconvert/internal/repository/postgres"
	"docconvert/internal/service"
	"docconvert/internal/storage"
)

// @title Document Conversion API
// @version 1.0
// @description Upload office documents and images; every upload is stored with a PDF rendition.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := logging.Location(cfg.Log.Timezone)
	log := logging.New(os.Stdout, cfg.Log.Level, loc)
	slog.SetDefault(log)

	if err := run(cfg, log, loc); err != nil {
		log.Error("server_exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, log *slog.Logger, loc *time.Location) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return err
	}

	objStore, err := storage.New(cfg)
	if err != nil {
		return err
	}

	convMetrics, err := converter.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	conv, err := converter.NewFromConfig(cfg.Converter, log, convMetrics)
	if err != nil {
		return err
	}
	defer conv.Close()
	log.Info("converter_ready",
		slog.Any("word", conv.Methods(converter.CategoryWord)),
		slog.Any("excel", conv.Methods(converter.CategoryExcel)),
		slog.Any("image", conv.Methods(converter.CategoryImage)),
	)

	docRepo := postgres.NewDocumentPostgres(db)
	docSvc := service.NewDocumentService(objStore, docRepo, conv, service.Options{
		MaxBytes:      cfg.Upload.MaxBytes,
		PageSize:      cfg.Upload.PageSize,
		TempDir:       cfg.Converter.TempDir,
		PresignExpiry: cfg.Storage.PresignExpiry,
		Logger:        log,
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// Leave room for multipart framing; the service enforces the exact file limit.
		BodyLimit:    int(cfg.Upload.MaxBytes) + 1<<20,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
	})

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(loc))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", middleware.MetricsHandler(prometheus.DefaultGatherer))

	if local, ok := objStore.(*storage.Local); ok && strings.HasPrefix(cfg.Storage.PublicBaseURL, "/") {
		app.Static(cfg.Storage.PublicBaseURL, local.Root(), fiber.Static{ByteRange: true})
	}

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, docSvc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("server_starting", slog.String("addr", addr), slog.String("storage_driver", cfg.Storage.Driver))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server_shutting_down")
	sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(sctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
