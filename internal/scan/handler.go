package scan

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/mirai-garden/plant-backend/internal/auth"
	"github.com/mirai-garden/plant-backend/internal/dto"
	"github.com/mirai-garden/plant-backend/internal/shared"
	"github.com/mirai-garden/plant-backend/internal/storage"
)

const DefaultMaxImageBytes = 10 << 20

type Handler struct {
	service       *Service
	store         *Store
	objects       storage.ObjectStore
	progress      ProgressStore
	maxImageBytes int64
	logger        *slog.Logger
}

func NewHandler(service *Service, store *Store, objects storage.ObjectStore, progress ProgressStore, maxImageBytes int64, logger *slog.Logger) *Handler {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &Handler{
		service:       service,
		store:         store,
		objects:       objects,
		progress:      progress,
		maxImageBytes: maxImageBytes,
		logger:        logger.With("handler", "scan"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/progress", h.Progress)
	g.GET("/:id/events", h.Events)
}

func (h *Handler) toResponse(p *Plant) dto.ScanResponse {
	return dto.ScanResponse{
		ID:               p.ID,
		UserID:           p.UserID,
		PlantPath:        p.PlantPath,
		ImageURL:         h.objects.URL(p.PlantPath),
		Avatar:           p.Avatar,
		PlantName:        p.PlantName,
		ScientificName:   p.ScientificName,
		Species:          p.Species,
		OverallHealth:    string(p.OverallHealth),
		LastScanDate:     p.LastScanDate,
		PlantInformation: p.PlantInformation,
		HealthAssessment: p.HealthAssessment,
		CreatedAt:        p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Create godoc
// @Summary      Scan a plant
// @Description  Identifies the uploaded image, looks up knowledge base details, assesses health and stores the result
// @Tags         scans
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        image    formData  file    true   "Plant photo"
// @Param        scan_id  formData  string  false  "Client generated scan id (UUID)"
// @Success      201      {object}  dto.ScanResponse
// @Failure      400      {object}  shared.APIError
// @Failure      401      {object}  shared.APIError
// @Failure      409      {object}  shared.APIError
// @Failure      422      {object}  shared.APIError
// @Failure      500      {object}  shared.APIError
// @Failure      502      {object}  shared.APIError
// @Router       /api/scans [post]
func (h *Handler) Create(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	scanID := uuid.NewString()
	if raw := c.FormValue("scan_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return shared.BadRequest("invalid_scan_id", "scan_id must be a UUID")
		}
		scanID = parsed.String()
	}

	file, err := c.FormFile("image")
	if err != nil {
		return shared.BadRequest("missing_image", "image file is required")
	}
	if file.Size > h.maxImageBytes {
		return h.tooLarge()
	}

	src, err := file.Open()
	if err != nil {
		return shared.BadRequest("invalid_image", "could not read image")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.maxImageBytes+1))
	if err != nil {
		return shared.BadRequest("invalid_image", "could not read image")
	}
	if int64(len(data)) > h.maxImageBytes {
		return h.tooLarge()
	}

	ctx := c.Request().Context()
	if _, err := h.store.GetForUser(ctx, userID, scanID); err == nil {
		return shared.Conflict("scan_exists", "a scan with this id already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		h.logger.Error("failed to check scan id", "error", err, "scan_id", scanID)
		return shared.InternalError("lookup_failed", "failed to check scan id")
	}

	plant, err := h.service.Scan(context.WithoutCancel(ctx), ScanInput{
		UserID: userID,
		ScanID: scanID,
		Image:  data,
	})
	if err != nil {
		return scanError(err)
	}

	return c.JSON(http.StatusCreated, h.toResponse(plant))
}

func (h *Handler) tooLarge() error {
	return shared.NewAPIError("image_too_large", "image exceeds the maximum upload size").
		WithDetails(map[string]int64{"max_bytes": h.maxImageBytes}).
		ToHTTP(http.StatusBadRequest)
}

func scanError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidImage):
		return shared.BadRequest("invalid_image", "uploaded file is not a supported image")
	case errors.Is(err, ErrScanExists):
		return shared.Conflict("scan_exists", "a scan with this id already exists")
	case errors.Is(err, ErrNoSuggestions):
		return shared.Unprocessable("no_suggestions", "no plant could be identified in the image")
	case errors.Is(err, ErrIdentificationFailed):
		return shared.BadGateway("identification_failed", "plant identification failed")
	case errors.Is(err, ErrStorageFailed):
		return shared.BadGateway("storage_failed", "failed to store the image")
	case errors.Is(err, ErrPersistFailed):
		return shared.InternalError("persist_failed", "failed to save the scan")
	default:
		return shared.InternalError("scan_failed", "scan failed")
	}
}

// List godoc
// @Summary      List scans
// @Description  Returns the caller's scans, newest first
// @Tags         scans
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.ScanListResponse
// @Failure      401  {object}  shared.APIError
// @Failure      500  {object}  shared.APIError
// @Router       /api/scans [get]
func (h *Handler) List(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	plants, err := h.store.ListByUser(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("failed to list scans", "error", err, "user_id", userID)
		return shared.InternalError("list_failed", "failed to list scans")
	}

	resp := dto.ScanListResponse{Scans: make([]dto.ScanResponse, len(plants))}
	for i, p := range plants {
		resp.Scans[i] = h.toResponse(p)
	}
	return c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a scan
// @Tags         scans
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Scan ID"
// @Success      200  {object}  dto.ScanResponse
// @Failure      401  {object}  shared.APIError
// @Failure      404  {object}  shared.APIError
// @Router       /api/scans/{id} [get]
func (h *Handler) Get(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	plant, err := h.store.GetForUser(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("scan_not_found", "scan not found")
		}
		return shared.InternalError("get_failed", "failed to get scan")
	}
	return c.JSON(http.StatusOK, h.toResponse(plant))
}

// Delete godoc
// @Summary      Delete a scan
// @Description  Deletes the record and its stored image
// @Tags         scans
// @Security     BearerAuth
// @Param        id  path  string  true  "Scan ID"
// @Success      204
// @Failure      401  {object}  shared.APIError
// @Failure      404  {object}  shared.APIError
// @Router       /api/scans/{id} [delete]
func (h *Handler) Delete(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	id := c.Param("id")

	plant, err := h.store.GetForUser(ctx, userID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("scan_not_found", "scan not found")
		}
		return shared.InternalError("get_failed", "failed to get scan")
	}

	if err := h.store.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("scan_not_found", "scan not found")
		}
		h.logger.Error("failed to delete scan", "error", err, "scan_id", id)
		return shared.InternalError("delete_failed", "failed to delete scan")
	}

	if err := h.objects.Delete(ctx, plant.PlantPath); err != nil {
		h.logger.Warn("failed to delete scan image", "error", err, "path", plant.PlantPath)
	}
	if err := h.progress.Delete(ctx, userID, id); err != nil {
		h.logger.Warn("failed to clear scan progress", "error", err, "scan_id", id)
	}

	return c.NoContent(http.StatusNoContent)
}

// Progress godoc
// @Summary      Get scan progress
// @Tags         scans
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Scan ID"
// @Success      200  {object}  dto.ScanProgressResponse
// @Failure      401  {object}  shared.APIError
// @Failure      404  {object}  shared.APIError
// @Router       /api/scans/{id}/progress [get]
func (h *Handler) Progress(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	p, err := h.currentProgress(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	if p == nil {
		return shared.NotFound("progress_not_found", "no progress recorded for this scan")
	}
	return c.JSON(http.StatusOK, progressResponse(p))
}

// currentProgress returns the progress the user recorded for a scan, or nil
// when there is none.
func (h *Handler) currentProgress(ctx context.Context, userID, scanID string) (*Progress, error) {
	p, err := h.progress.Get(ctx, userID, scanID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		h.logger.Error("failed to get scan progress", "error", err, "scan_id", scanID)
		return nil, shared.InternalError("progress_failed", "failed to get scan progress")
	}
	return p, nil
}

func progressResponse(p *Progress) dto.ScanProgressResponse {
	return dto.ScanProgressResponse{
		ScanID:    p.ScanID,
		State:     string(p.State),
		Error:     p.Error,
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
