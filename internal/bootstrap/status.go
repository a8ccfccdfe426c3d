package bootstrap

import (
	"github.com/labstack/echo/v4"
	"github.com/mirai-garden/plant-backend/internal/plantid"
	"github.com/mirai-garden/plant-backend/internal/status"
	"github.com/mirai-garden/plant-backend/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const version = "1.0.0"

func ProvideStatusHandler(db *gorm.DB, redis *redis.Client, objects storage.ObjectStore, client *plantid.Client) *status.Handler {
	return status.NewHandler(db, redis, objects, client, version)
}

func RegisterStatusRoutes(e *echo.Echo, h *status.Handler) {
	e.Use(h.Middleware)
	h.RegisterRoutes(e)
}

var StatusModule = fx.Options(
	fx.Provide(ProvideStatusHandler),
	fx.Invoke(RegisterStatusRoutes),
)
