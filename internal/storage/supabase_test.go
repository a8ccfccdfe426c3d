package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestSupabase(t *testing.T, handler http.HandlerFunc) *Supabase {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	s := NewSupabase(SupabaseConfig{
		URL:        server.URL + "/",
		ServiceKey: "service-key",
		Bucket:     "plants",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.client.RetryWaitMin = time.Millisecond
	s.client.RetryWaitMax = 5 * time.Millisecond
	return s
}

func TestSupabase_Put(t *testing.T) {
	var got *http.Request
	var body []byte
	s := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		body, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"Key":"plants/user-1/scan-1.jpg"}`))
	})

	if err := s.Put(context.Background(), "user-1/scan-1.jpg", "image/jpeg", []byte("img")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if got.Method != http.MethodPost {
		t.Errorf("expected POST, got %s", got.Method)
	}
	if got.URL.Path != "/storage/v1/object/plants/user-1/scan-1.jpg" {
		t.Errorf("unexpected path %s", got.URL.Path)
	}
	if got.Header.Get("Authorization") != "Bearer service-key" {
		t.Errorf("unexpected auth header %q", got.Header.Get("Authorization"))
	}
	if got.Header.Get("x-upsert") != "false" {
		t.Errorf("expected create-only upload, got x-upsert %q", got.Header.Get("x-upsert"))
	}
	if got.Header.Get("Content-Type") != "image/jpeg" {
		t.Errorf("unexpected content type %s", got.Header.Get("Content-Type"))
	}
	if string(body) != "img" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestSupabase_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	s := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := s.Put(context.Background(), "u/s.png", "image/png", []byte("x")); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestSupabase_GivesUp(t *testing.T) {
	var calls atomic.Int32
	s := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	if err := s.Put(context.Background(), "u/s.png", "image/png", []byte("x")); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != DefaultRetryMax+1 {
		t.Errorf("expected %d attempts, got %d", DefaultRetryMax+1, calls.Load())
	}
}

func TestSupabase_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	s := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"forbidden"}`))
	})

	if err := s.Delete(context.Background(), "u/s.png"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single attempt, got %d", calls.Load())
	}
}

func TestSupabase_PutExisting(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		exists bool
	}{
		{"conflict status", http.StatusConflict, `{"error":"Duplicate"}`, true},
		{"bad request with 409 body", http.StatusBadRequest, `{"statusCode":"409","error":"Duplicate","message":"The resource already exists"}`, true},
		{"plain bad request", http.StatusBadRequest, `{"statusCode":"400","error":"InvalidKey"}`, false},
		{"non json bad request", http.StatusBadRequest, `bad request`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			s := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			err := s.Put(context.Background(), "u/s.png", "image/png", []byte("x"))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, ErrObjectExists); got != tt.exists {
				t.Errorf("ErrObjectExists = %v, want %v (err: %v)", got, tt.exists, err)
			}
			if calls.Load() != 1 {
				t.Errorf("expected a single attempt, got %d", calls.Load())
			}
		})
	}
}

func TestSupabase_DeleteAndURL(t *testing.T) {
	var method, path string
	s := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
	})

	if err := s.Delete(context.Background(), "u/s.png"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if method != http.MethodDelete || path != "/storage/v1/object/plants/u/s.png" {
		t.Errorf("unexpected request %s %s", method, path)
	}

	want := s.baseURL + "/storage/v1/object/public/plants/u/s.png"
	if got := s.URL("u/s.png"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestSupabase_Ping(t *testing.T) {
	s := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/storage/v1/bucket/plants" {
			w.WriteHeader(http.StatusNotFound)
		}
	})
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("expected ping ok, got %v", err)
	}
}
