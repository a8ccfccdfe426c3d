package bootstrap

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr     string
	LogLevel       string
	AllowedOrigins []string
	BodyLimit      string
	DebugRoutes    bool

	PlantIDAPIKey   string
	PlantIDBaseURL  string
	UpstreamTimeout time.Duration

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StorageBackend     string
	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseJWTSecret  string
	StorageBucket      string
	LocalStorageDir    string
	MaxImageBytes      int64
}

const (
	StorageSupabase = "supabase"
	StorageLocal    = "local"
)

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables win.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerAddr:     getEnv("SERVER_ADDR", ":5000"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: parseList(getEnv("ALLOWED_ORIGINS", "*")),
		BodyLimit:      getEnv("BODY_LIMIT", "15M"),
		DebugRoutes:    getEnv("DEBUG_ROUTES", "false") == "true",

		PlantIDAPIKey:   getEnv("PLANT_ID_API_KEY", ""),
		PlantIDBaseURL:  getEnv("PLANT_ID_BASE_URL", "https://plant.id/api/v3"),
		UpstreamTimeout: time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 60)) * time.Second,

		DatabaseDSN: getEnv("DATABASE_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		StorageBackend:     strings.ToLower(getEnv("STORAGE_BACKEND", StorageSupabase)),
		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseJWTSecret:  getEnv("SUPABASE_JWT_SECRET", ""),
		StorageBucket:      getEnv("STORAGE_BUCKET", "plants"),
		LocalStorageDir:    getEnv("LOCAL_STORAGE_DIR", "./data/objects"),
		MaxImageBytes:      int64(getEnvInt("MAX_IMAGE_BYTES", 10<<20)),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func parseList(envValue string) []string {
	var out []string
	for _, item := range strings.Split(envValue, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
