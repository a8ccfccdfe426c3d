// Package status reports liveness and readiness of the backend and its dependencies.
package status

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

type ComponentStatus struct {
	Status    Status `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type RuntimeStats struct {
	Goroutines    int    `json:"goroutines"`
	MemoryAllocMB uint64 `json:"memory_alloc_mb"`
	MemorySysMB   uint64 `json:"memory_sys_mb"`
	NumGC         uint32 `json:"num_gc"`
}

type RequestStats struct {
	TotalRequests     uint64 `json:"total_requests"`
	ActiveConnections int64  `json:"active_connections"`
}

type ReadinessResponse struct {
	Status        Status                     `json:"status"`
	Timestamp     time.Time                  `json:"timestamp"`
	Version       string                     `json:"version"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Requests      RequestStats               `json:"requests"`
	Runtime       RuntimeStats               `json:"runtime"`
	Components    map[string]ComponentStatus `json:"components"`
}

// Pinger is any dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CredentialChecker reports whether the identification provider key is configured.
type CredentialChecker interface {
	HasCredential() bool
}

type Handler struct {
	db          *gorm.DB
	redis       *redis.Client
	objects     Pinger
	credentials CredentialChecker
	version     string
	startTime   time.Time

	totalRequests     uint64
	activeConnections int64
}

func NewHandler(db *gorm.DB, redis *redis.Client, objects Pinger, credentials CredentialChecker, version string) *Handler {
	return &Handler{
		db:          db,
		redis:       redis,
		objects:     objects,
		credentials: credentials,
		version:     version,
		startTime:   time.Now(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/status", h.Liveness)
	e.GET("/status/ready", h.Readiness)
}

// Middleware counts requests and open connections.
func (h *Handler) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		atomic.AddUint64(&h.totalRequests, 1)
		atomic.AddInt64(&h.activeConnections, 1)
		defer atomic.AddInt64(&h.activeConnections, -1)
		return next(c)
	}
}

// Liveness godoc
// @Summary      Liveness probe
// @Tags         status
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /status [get]
func (h *Handler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Readiness godoc
// @Summary      Readiness probe
// @Description  Checks the database, redis, object storage and the Plant.id credential
// @Tags         status
// @Produce      json
// @Success      200  {object}  ReadinessResponse
// @Failure      503  {object}  ReadinessResponse
// @Router       /status/ready [get]
func (h *Handler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	components := make(map[string]ComponentStatus)
	var mu sync.Mutex
	var wg sync.WaitGroup

	checks := []struct {
		name  string
		check func(context.Context) ComponentStatus
	}{
		{"database", h.checkDatabase},
		{"redis", h.checkRedis},
		{"storage", h.checkStorage},
		{"plant_id", h.checkCredential},
	}

	wg.Add(len(checks))
	for _, check := range checks {
		go func(name string, fn func(context.Context) ComponentStatus) {
			defer wg.Done()
			status := fn(ctx)
			mu.Lock()
			components[name] = status
			mu.Unlock()
		}(check.name, check.check)
	}
	wg.Wait()

	overall := computeOverallStatus(components)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	resp := ReadinessResponse{
		Status:        overall,
		Timestamp:     time.Now().UTC(),
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Requests: RequestStats{
			TotalRequests:     atomic.LoadUint64(&h.totalRequests),
			ActiveConnections: atomic.LoadInt64(&h.activeConnections),
		},
		Runtime: RuntimeStats{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: memStats.Alloc / 1024 / 1024,
			MemorySysMB:   memStats.Sys / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		Components: components,
	}

	statusCode := http.StatusOK
	if overall == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, resp)
}

func timed(start time.Time, status Status, errMsg string) ComponentStatus {
	return ComponentStatus{
		Status:    status,
		LatencyMs: time.Since(start).Milliseconds(),
		Error:     errMsg,
	}
}

func (h *Handler) checkDatabase(ctx context.Context) ComponentStatus {
	start := time.Now()
	if h.db == nil {
		return timed(start, StatusUnhealthy, "database not configured")
	}

	sqlDB, err := h.db.DB()
	if err != nil {
		return timed(start, StatusUnhealthy, "failed to get underlying db")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return timed(start, StatusUnhealthy, "ping failed")
	}

	return timed(start, evaluateDBStats(sqlDB.Stats()), "")
}

func evaluateDBStats(stats sql.DBStats) Status {
	if stats.OpenConnections >= stats.MaxOpenConnections && stats.MaxOpenConnections > 0 {
		return StatusDegraded
	}
	return StatusHealthy
}

func (h *Handler) checkRedis(ctx context.Context) ComponentStatus {
	start := time.Now()
	if h.redis == nil {
		return timed(start, StatusUnhealthy, "redis not configured")
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		return timed(start, StatusUnhealthy, "ping failed")
	}
	return timed(start, StatusHealthy, "")
}

func (h *Handler) checkStorage(ctx context.Context) ComponentStatus {
	start := time.Now()
	if h.objects == nil {
		return timed(start, StatusUnhealthy, "object storage not configured")
	}
	if err := h.objects.Ping(ctx); err != nil {
		return timed(start, StatusUnhealthy, "ping failed")
	}
	return timed(start, StatusHealthy, "")
}

func (h *Handler) checkCredential(_ context.Context) ComponentStatus {
	start := time.Now()
	if h.credentials == nil || !h.credentials.HasCredential() {
		return timed(start, StatusUnhealthy, "PLANT_ID_API_KEY not configured")
	}
	return timed(start, StatusHealthy, "")
}

func computeOverallStatus(components map[string]ComponentStatus) Status {
	if db, ok := components["database"]; ok && db.Status == StatusUnhealthy {
		return StatusUnhealthy
	}

	for _, status := range components {
		if status.Status != StatusHealthy {
			return StatusDegraded
		}
	}
	return StatusHealthy
}
