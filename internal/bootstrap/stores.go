package bootstrap

import (
	"github.com/mirai-garden/plant-backend/internal/scan"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideScanStore(db *gorm.DB) *scan.Store {
	return scan.NewStore(db)
}

func ProvideProgressTracker(redisClient *redis.Client) *scan.ProgressTracker {
	return scan.NewProgressTracker(redisClient, scan.DefaultProgressTTL)
}

func RunMigrations(scanStore *scan.Store) error {
	return scanStore.Migrate()
}

var StoresModule = fx.Options(
	fx.Provide(
		ProvideScanStore,
		ProvideProgressTracker,
	),
	fx.Invoke(RunMigrations),
)
