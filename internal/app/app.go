package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"tpodash/internal/config"
	apierrors "tpodash/internal/errors"
	"tpodash/internal/dataset"
	"tpodash/internal/exporter"
	"tpodash/internal/infrastructure"
	customMiddleware "tpodash/internal/middleware"
	"tpodash/internal/services"
	handlers "tpodash/internal/transport/http"
	ws "tpodash/internal/websocket"
)

var (
	// BuildTime is set at compile time
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	h := sha256.New()
	h.Write([]byte(config.AppVersion))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config           *config.Config
	Router           *chi.Mux
	Server           *http.Server
	Logger           *slog.Logger
	OTelProviders    *infrastructure.OTelProviders
	Metrics          *infrastructure.DashboardMetrics
	Store            *dataset.MemoryStore
	WebSocketHub     *ws.Hub
	DashboardService *services.DashboardService
	HealthService    *services.HealthService

	errorHandler *apierrors.ErrorHandler
	validation   *customMiddleware.ValidationMiddleware
}

// NewApplication loads configuration, initializes logging and wires the
// application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires an application from an already loaded configuration
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("build_id", BuildID))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.NewDashboardMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}

	app.createServer()
	return app, nil
}

// initializeServices creates the dataset store, the hub and the services
func (a *Application) initializeServices() error {
	a.Store = dataset.NewMemoryStore()

	a.WebSocketHub = ws.NewHub(a.Logger, a.Config.WebSocket)

	a.DashboardService = services.NewDashboardService(a.Store, a.Logger,
		services.WithEvents(a.WebSocketHub),
		services.WithMetrics(a.Metrics),
		services.WithTracer(a.OTelProviders.Tracer),
		services.WithMaxFiles(a.Config.Upload.MaxFiles),
		services.WithDataDir(a.Config.Upload.DataDir),
	)

	a.HealthService = services.NewHealthService(config.AppVersion, a.Store, a.WebSocketHub, a.Logger)

	a.validation = customMiddleware.NewValidationMiddleware(a.Logger, a.errorHandler)
	return handlers.RegisterValidations(a.validation)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() error {
	r := chi.NewRouter()
	r.Use(customMiddleware.RequestID)
	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	// The upgrade needs the raw ResponseWriter, so /ws skips the wrapping middleware
	upgrader := ws.NewUpgrader(a.Config.WebSocket, a.allowedOrigins())
	r.Handle(config.WebSocketEndpoint, handlers.NewWebSocketHandler(a.WebSocketHub, upgrader, a.Logger))

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		// RequestID → OTel → Logger → Recoverer → SecurityHeaders → CORS → RateLimit
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.errorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
				a.errorHandler,
			).Handler)
		}

		health := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Route(config.HealthEndpoint, func(r chi.Router) {
			r.Get("/", health.LivenessCheck)
			r.Get("/ready", health.ReadinessCheck)
		})

		a.setupAPIRoutes(r, health)
	})

	a.Router = r
	return nil
}

// setupAPIRoutes configures the /api/v1 endpoints
func (a *Application) setupAPIRoutes(r chi.Router, health *handlers.HealthHandler) {
	files := handlers.NewFilesHandler(a.DashboardService, a.validation, a.Logger, a.errorHandler, a.Config.Upload.MaxBytes)
	dashboard := handlers.NewDashboardHandler(a.DashboardService, a.validation, a.Logger, a.errorHandler)
	export := handlers.NewExportHandler(a.DashboardService,
		exporter.NewTableExporter(exporter.NewCSVWriter(a.Config.Upload.ExportDir)),
		a.validation, a.Logger, a.errorHandler)

	r.Route(config.APIBasePath, func(r chi.Router) {
		r.Use(a.validation.ValidateJSON)

		r.Get("/version", health.Version)
		r.Mount("/files", files.Routes())
		r.Post("/manifest", files.LoadManifest)
		r.Get("/overview", dashboard.Overview)
		r.Mount("/dashboard", dashboard.Routes())
		r.Mount("/export", export.Routes())

		r.Get("/ws/stats", func(w http.ResponseWriter, req *http.Request) {
			render.JSON(w, req, map[string]interface{}{
				"status": "success",
				"data":   a.WebSocketHub.Stats(),
			})
		})
	})
}

func (a *Application) allowedOrigins() []string {
	if !a.Config.Security.EnableCORS {
		return nil
	}
	return a.Config.Security.AllowedOrigins
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the hub and the HTTP server. A listen failure cancels ctx
// through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	a.WebSocketHub.Start()

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.WebSocketHub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted or the server fails
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
