package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

const DefaultRetryMax = 3

type SupabaseConfig struct {
	URL        string
	ServiceKey string
	Bucket     string
	RetryMax   int
	Timeout    time.Duration
}

// Supabase stores objects in a Supabase Storage bucket. Transient failures
// (connection errors, 429 and 5xx) are retried with backoff.
type Supabase struct {
	client     *retryablehttp.Client
	baseURL    string
	serviceKey string
	bucket     string
	logger     *slog.Logger
}

func NewSupabase(cfg SupabaseConfig, logger *slog.Logger) *Supabase {
	logger = logger.With("component", "supabase_storage")

	client := retryablehttp.NewClient()
	client.Logger = logger
	client.RetryMax = cfg.RetryMax
	if client.RetryMax == 0 {
		client.RetryMax = DefaultRetryMax
	}
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}

	return &Supabase{
		client:     client,
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		serviceKey: cfg.ServiceKey,
		bucket:     cfg.Bucket,
		logger:     logger,
	}
}

func (s *Supabase) Put(ctx context.Context, objectPath, contentType string, data []byte) error {
	p, err := CleanPath(objectPath)
	if err != nil {
		return err
	}

	req, err := s.newRequest(ctx, http.MethodPost, s.objectURL(p), data)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	if err := s.do(req); err != nil {
		if isDuplicate(err) {
			return ErrObjectExists
		}
		return fmt.Errorf("upload %s: %w", p, err)
	}
	s.logger.Debug("object uploaded", "path", p, "bytes", len(data))
	return nil
}

func (s *Supabase) Delete(ctx context.Context, objectPath string) error {
	p, err := CleanPath(objectPath)
	if err != nil {
		return err
	}

	req, err := s.newRequest(ctx, http.MethodDelete, s.objectURL(p), nil)
	if err != nil {
		return err
	}
	if err := s.do(req); err != nil {
		return fmt.Errorf("delete %s: %w", p, err)
	}
	return nil
}

func (s *Supabase) URL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, objectPath)
}

// Ping checks that the bucket is reachable with the configured key.
func (s *Supabase) Ping(ctx context.Context) error {
	req, err := s.newRequest(ctx, http.MethodGet, fmt.Sprintf("%s/storage/v1/bucket/%s", s.baseURL, s.bucket), nil)
	if err != nil {
		return err
	}
	return s.do(req)
}

func (s *Supabase) objectURL(p string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, p)
}

func (s *Supabase) newRequest(ctx context.Context, method, target string, body []byte) (*retryablehttp.Request, error) {
	var raw any
	if body != nil {
		raw = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, target, raw)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("apikey", s.serviceKey)
	return req, nil
}

type statusError struct {
	status int
	body   []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("storage returned status %d: %s", e.status, excerpt(e.body))
}

// isDuplicate reports a create-only upload hitting an existing object. The
// storage API answers with 409, or with 400 carrying statusCode "409" in the body.
func isDuplicate(err error) bool {
	var se *statusError
	if !errors.As(err, &se) {
		return false
	}
	if se.status == http.StatusConflict {
		return true
	}
	if se.status != http.StatusBadRequest || !gjson.ValidBytes(se.body) {
		return false
	}
	parsed := gjson.ParseBytes(se.body)
	return parsed.Get("statusCode").String() == "409" || parsed.Get("error").String() == "Duplicate"
}

func (s *Supabase) do(req *retryablehttp.Request) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{status: resp.StatusCode, body: body}
	}
	return nil
}

func excerpt(body []byte) string {
	const limit = 200
	if len(body) > limit {
		body = body[:limit]
	}
	return strings.ToValidUTF8(string(body), "")
}
