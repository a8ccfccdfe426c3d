// Package proxy forwards browser requests to the Plant.id API and reconciles its replies.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mirai-garden/plant-backend/internal/dto"
	"github.com/mirai-garden/plant-backend/internal/imagedata"
	"github.com/mirai-garden/plant-backend/internal/plantid"
	"github.com/tidwall/gjson"
)

var errNotObject = errors.New("body is not a JSON object")

type Handler struct {
	client *plantid.Client
	logger *slog.Logger
}

func NewHandler(client *plantid.Client, logger *slog.Logger) *Handler {
	return &Handler{
		client: client,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/identify", h.Identify)
	g.POST("/health", h.Health)
	g.GET("/plant-search", h.PlantSearch)
	g.GET("/plant-details/:access_token", h.PlantDetails)
	g.GET("/identification-details/:access_token", h.IdentificationDetails)
}

func (h *Handler) RegisterDebugRoutes(g *echo.Group) {
	g.POST("/debug/echo", h.DebugEcho)
}

// Identify godoc
// @Summary      Identify a plant
// @Description  Normalizes the images array and forwards the body to the Plant.id identification endpoint
// @Tags         plantid
// @Accept       json
// @Produce      json
// @Param        request  body      object  true  "Plant.id identification payload"
// @Success      200      {object}  object
// @Failure      400      {object}  dto.ProxyError
// @Failure      500      {object}  dto.ProxyError
// @Failure      502      {object}  dto.ProxyError
// @Router       /identify [post]
func (h *Handler) Identify(c echo.Context) error {
	if !h.client.HasCredential() {
		return h.missingCredential(c)
	}

	body, err := readObject(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ProxyError{Error: "Invalid JSON body"})
	}

	h.logger.Debug("identify request", "images", countImages(body))
	payload := imagedata.Normalize(body, h.logger)

	return h.forward(c, http.MethodPost, "/identification", c.QueryParams(), payload)
}

// Health godoc
// @Summary      Assess plant health
// @Description  Normalizes the images array, forces similar_images and forwards to the Plant.id health assessment endpoint
// @Tags         plantid
// @Accept       json
// @Produce      json
// @Param        request  body      object  true  "Plant.id health assessment payload"
// @Success      200      {object}  object
// @Failure      400      {object}  dto.ProxyError
// @Failure      500      {object}  dto.ProxyError
// @Failure      502      {object}  dto.ProxyError
// @Router       /health [post]
func (h *Handler) Health(c echo.Context) error {
	if !h.client.HasCredential() {
		return h.missingCredential(c)
	}

	body, err := readObject(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ProxyError{Error: "Invalid JSON body"})
	}

	payload := imagedata.Normalize(body, h.logger).(map[string]any)
	payload["similar_images"] = true

	query := url.Values{"details": {plantid.HealthDetails}}
	return h.forward(c, http.MethodPost, "/health_assessment", query, payload)
}

// PlantSearch godoc
// @Summary      Search the plant knowledge base
// @Tags         plantid
// @Produce      json
// @Param        q         query     string  true   "Plant name"
// @Param        limit     query     int     false  "Maximum results"  default(10)
// @Param        language  query     string  false  "Language"         default(en)
// @Success      200       {object}  object
// @Failure      400       {object}  dto.ProxyError
// @Failure      500       {object}  dto.ProxyError
// @Failure      502       {object}  dto.ProxyError
// @Router       /plant-search [get]
func (h *Handler) PlantSearch(c echo.Context) error {
	if !h.client.HasCredential() {
		return h.missingCredential(c)
	}

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, dto.ProxyError{Error: "Missing required query parameter: q"})
	}

	query := url.Values{
		"q":        {q},
		"limit":    {queryOr(c, "limit", plantid.DefaultLimit)},
		"language": {queryOr(c, "language", plantid.DefaultLanguage)},
	}
	return h.forward(c, http.MethodGet, "/kb/plants/name_search", query, nil)
}

// PlantDetails godoc
// @Summary      Fetch knowledge base plant details
// @Tags         plantid
// @Produce      json
// @Param        access_token  path      string  true   "Entity access token"
// @Param        language      query     string  false  "Language"  default(en)
// @Param        details       query     string  false  "Comma separated detail fields"
// @Success      200           {object}  object
// @Failure      400           {object}  dto.ProxyError
// @Failure      500           {object}  dto.ProxyError
// @Failure      502           {object}  dto.ProxyError
// @Router       /plant-details/{access_token} [get]
func (h *Handler) PlantDetails(c echo.Context) error {
	return h.lookupByToken(c, "/kb/plants/", plantid.PlantDetailFields)
}

// IdentificationDetails godoc
// @Summary      Fetch a stored identification
// @Tags         plantid
// @Produce      json
// @Param        access_token  path      string  true   "Identification access token"
// @Param        language      query     string  false  "Language"  default(en)
// @Param        details       query     string  false  "Comma separated detail fields"
// @Success      200           {object}  object
// @Failure      400           {object}  dto.ProxyError
// @Failure      500           {object}  dto.ProxyError
// @Failure      502           {object}  dto.ProxyError
// @Router       /identification-details/{access_token} [get]
func (h *Handler) IdentificationDetails(c echo.Context) error {
	return h.lookupByToken(c, "/identification/", plantid.IdentificationDetailFields)
}

// DebugEcho returns the received body untouched.
func (h *Handler) DebugEcho(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ProxyError{Error: "Could not read body"})
	}

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Blob(http.StatusOK, contentType, body)
}

func (h *Handler) lookupByToken(c echo.Context, prefix, defaultDetails string) error {
	if !h.client.HasCredential() {
		return h.missingCredential(c)
	}

	token := strings.TrimSpace(c.Param("access_token"))
	if token == "" {
		return c.JSON(http.StatusBadRequest, dto.ProxyError{Error: "Missing required path parameter: access_token"})
	}

	query := url.Values{
		"details":  {queryOr(c, "details", defaultDetails)},
		"language": {queryOr(c, "language", plantid.DefaultLanguage)},
	}
	return h.forward(c, http.MethodGet, prefix+url.PathEscape(token), query, nil)
}

// forward makes the single upstream attempt. It is detached from client
// cancellation so an abandoned request still completes and is discarded.
func (h *Handler) forward(c echo.Context, method, path string, query url.Values, body any) error {
	ctx := context.WithoutCancel(c.Request().Context())

	resp, err := h.client.Do(ctx, method, path, query, body)
	if err != nil {
		if errors.Is(err, plantid.ErrMissingAPIKey) {
			return h.missingCredential(c)
		}
		h.logger.Error("plant.id request failed", "path", path, "error", err)
		return c.JSON(http.StatusBadGateway, dto.ProxyError{
			Error:   "Plant.id request failed",
			Details: err.Error(),
		})
	}

	return h.relay(c, path, resp)
}

func (h *Handler) relay(c echo.Context, path string, resp *plantid.Response) error {
	if !resp.IsJSON() {
		h.logger.Warn("non-JSON response from plant.id", "path", path, "status", resp.StatusCode)
		return c.JSON(http.StatusBadGateway, dto.ProxyError{
			Error:  "Plant.id response not JSON",
			Status: resp.StatusCode,
			Body:   plantid.Excerpt(resp.Body, plantid.MaxExcerpt),
		})
	}

	if !resp.OK() {
		h.logger.Warn("plant.id returned an error", "path", path, "status", resp.StatusCode)
		return c.JSONBlob(resp.StatusCode, resp.Body)
	}

	if top := gjson.GetBytes(resp.Body, "result.classification.suggestions.0.name"); top.Exists() {
		h.logger.Info("plant.id identification", "path", path, "top_suggestion", top.String())
	}
	return c.JSONBlob(http.StatusOK, resp.Body)
}

func (h *Handler) missingCredential(c echo.Context) error {
	h.logger.Error("PLANT_ID_API_KEY not configured")
	return c.JSON(http.StatusInternalServerError, dto.ProxyError{Error: "Server missing PLANT_ID_API_KEY"})
}

// readObject decodes the request body as a JSON object. An empty body is an empty object.
func readObject(c echo.Context) (map[string]any, error) {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON body")
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

func queryOr(c echo.Context, name, fallback string) string {
	if v := strings.TrimSpace(c.QueryParam(name)); v != "" {
		return v
	}
	return fallback
}

func countImages(body map[string]any) int {
	images, _ := body["images"].([]any)
	return len(images)
}
