package bootstrap

import (
	"log/slog"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mirai-garden/plant-backend/internal/auth"
	"github.com/mirai-garden/plant-backend/internal/plantid"
	"github.com/mirai-garden/plant-backend/internal/proxy"
	"github.com/mirai-garden/plant-backend/internal/scan"
	"github.com/mirai-garden/plant-backend/internal/storage"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/fx"

	_ "github.com/mirai-garden/plant-backend/docs"
)

type HandlerParams struct {
	fx.In

	ProxyHandler  *proxy.Handler
	ScanHandler   *scan.Handler
	JWTMiddleware *auth.Middleware
	Config        *Config
	Logger        *slog.Logger
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	params.ProxyHandler.RegisterRoutes(e.Group(""))
	params.ProxyHandler.RegisterRoutes(e.Group("/api"))
	if params.Config.DebugRoutes {
		params.Logger.Warn("debug routes enabled")
		params.ProxyHandler.RegisterDebugRoutes(e.Group(""))
	}

	scans := e.Group("/api/scans")
	scans.Use(params.JWTMiddleware.Authenticate)
	params.ScanHandler.RegisterRoutes(scans)

	if params.Config.StorageBackend == StorageLocal {
		e.Static(strings.TrimSuffix(storage.URLPrefix, "/"), params.Config.LocalStorageDir)
	}

	e.GET("/swagger/*", echoSwagger.EchoWrapHandler())
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

func ProvideJWTValidator(cfg *Config, logger *slog.Logger) *auth.JWTValidator {
	if cfg.SupabaseJWTSecret == "" {
		logger.Warn("SUPABASE_JWT_SECRET is not set; scan routes will reject every request")
	}
	return auth.NewJWTValidator(cfg.SupabaseJWTSecret)
}

func ProvideJWTMiddleware(validator *auth.JWTValidator) *auth.Middleware {
	return auth.NewMiddleware(validator)
}

func ProvideProxyHandler(client *plantid.Client, logger *slog.Logger) *proxy.Handler {
	return proxy.NewHandler(client, logger.With("handler", "proxy"))
}

func ProvideScanService(client *plantid.Client, store *scan.Store, objects storage.ObjectStore, progress *scan.ProgressTracker, logger *slog.Logger) *scan.Service {
	return scan.NewService(client, store, objects, progress, logger)
}

func ProvideScanHandler(service *scan.Service, store *scan.Store, objects storage.ObjectStore, progress *scan.ProgressTracker, cfg *Config, logger *slog.Logger) *scan.Handler {
	return scan.NewHandler(service, store, objects, progress, cfg.MaxImageBytes, logger)
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvideJWTValidator,
		ProvideJWTMiddleware,
		ProvideProxyHandler,
		ProvideScanService,
		ProvideScanHandler,
	),
	fx.Invoke(RegisterRoutes),
)
