package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/mirai-garden/plant-backend/internal/dto"
)

const defaultTimeout = 90 * time.Second

type clientConfig struct {
	BaseURL  string
	Token    string
	RetryMax int
	Timeout  time.Duration
}

// apiClient is a thin HTTP client for the backend routes. GET and DELETE are
// retried; POSTs are sent once because a scan or an identification is not free.
type apiClient struct {
	retrying *retryablehttp.Client
	once     *retryablehttp.Client
	baseURL  string
	token    string
}

// statusError is a non-2xx reply from the backend.
type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Body)
}

func newAPIClient(cfg clientConfig) *apiClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	build := func(retryMax int) *retryablehttp.Client {
		c := retryablehttp.NewClient()
		c.Logger = log.New(io.Discard, "", 0)
		c.ErrorHandler = retryablehttp.PassthroughErrorHandler
		c.RetryMax = retryMax
		c.RetryWaitMin = 250 * time.Millisecond
		c.RetryWaitMax = 3 * time.Second
		c.HTTPClient.Timeout = cfg.Timeout
		return c
	}

	return &apiClient{
		retrying: build(cfg.RetryMax),
		once:     build(0),
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    cfg.Token,
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, body []byte, contentType string) ([]byte, error) {
	var raw any
	if body != nil {
		raw = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, raw)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	client := c.retrying
	if method == http.MethodPost {
		client = c.once
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

func (c *apiClient) Scan(ctx context.Context, scanID, filename string, image []byte) (*dto.ScanResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if scanID != "" {
		if err := w.WriteField("scan_id", scanID); err != nil {
			return nil, err
		}
	}
	part, err := w.CreateFormFile("image", filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	data, err := c.do(ctx, http.MethodPost, "/api/scans", buf.Bytes(), w.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var out dto.ScanResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode scan: %w", err)
	}
	return &out, nil
}

func (c *apiClient) List(ctx context.Context) (*dto.ScanListResponse, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/scans", nil, "")
	if err != nil {
		return nil, err
	}
	var out dto.ScanListResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode scans: %w", err)
	}
	return &out, nil
}

func (c *apiClient) Get(ctx context.Context, id string) (*dto.ScanResponse, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/scans/"+url.PathEscape(id), nil, "")
	if err != nil {
		return nil, err
	}
	var out dto.ScanResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode scan: %w", err)
	}
	return &out, nil
}

func (c *apiClient) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/scans/"+url.PathEscape(id), nil, "")
	return err
}

// Identify posts one embedded image to the identification proxy and returns the raw reply.
func (c *apiClient) Identify(ctx context.Context, dataURL string) ([]byte, error) {
	body, err := json.Marshal(map[string]any{
		"images":         []string{dataURL},
		"similar_images": true,
	})
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, "/api/identify", body, "application/json")
}

func (c *apiClient) Search(ctx context.Context, name string, limit int) ([]byte, error) {
	query := url.Values{"q": {name}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return c.do(ctx, http.MethodGet, "/api/plant-search?"+query.Encode(), nil, "")
}

// Watch streams progress for scanID until the server closes the stream or ctx ends.
func (c *apiClient) Watch(ctx context.Context, scanID string, fn func(dto.ScanProgressResponse)) error {
	target, err := c.eventsURL(scanID)
	if err != nil {
		return err
	}

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil {
			return &statusError{Status: resp.StatusCode, Body: resp.Status}
		}
		return err
	}
	defer ws.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = ws.Close()
	})
	defer stop()

	for {
		var p dto.ScanProgressResponse
		if err := ws.ReadJSON(&p); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		fn(p)
	}
}

func (c *apiClient) eventsURL(scanID string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/scans/" + url.PathEscape(scanID) + "/events"
	return u.String(), nil
}
