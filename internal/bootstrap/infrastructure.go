package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/mirai-garden/plant-backend/internal/plantid"
	"github.com/mirai-garden/plant-backend/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func ProvideRedisClient(cfg *Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func ProvideDatabase(cfg *Config) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func ProvidePlantIDClient(cfg *Config, logger *slog.Logger) *plantid.Client {
	if cfg.PlantIDAPIKey == "" {
		logger.Warn("PLANT_ID_API_KEY is not set; identification routes will answer 500")
	}
	return plantid.NewClient(plantid.Config{
		BaseURL: cfg.PlantIDBaseURL,
		APIKey:  cfg.PlantIDAPIKey,
		Timeout: cfg.UpstreamTimeout,
	}, logger)
}

func ProvideObjectStore(cfg *Config, logger *slog.Logger) (storage.ObjectStore, error) {
	switch cfg.StorageBackend {
	case StorageLocal:
		return storage.NewLocal(cfg.LocalStorageDir)
	case StorageSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
			return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required for the %s storage backend", StorageSupabase)
		}
		return storage.NewSupabase(storage.SupabaseConfig{
			URL:        cfg.SupabaseURL,
			ServiceKey: cfg.SupabaseServiceKey,
			Bucket:     cfg.StorageBucket,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

var InfrastructureModule = fx.Options(
	fx.Provide(
		ProvideRedisClient,
		ProvideDatabase,
		ProvidePlantIDClient,
		ProvideObjectStore,
	),
)
