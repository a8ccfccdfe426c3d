package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/mirai-garden/plant-backend/internal/auth"
	"github.com/mirai-garden/plant-backend/internal/dto"
	"github.com/mirai-garden/plant-backend/internal/plantid"
	"github.com/mirai-garden/plant-backend/internal/shared"
)

type handlerFixture struct {
	*serviceFixture
	store   *Store
	handler *Handler
	e       *echo.Echo
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	sf := newServiceFixture(t)
	store := setupTestStore(t)
	sf.service = NewService(sf.gateway, store, sf.objects, sf.progress, testLogger())
	sf.service.now = func() time.Time { return scannedAt }

	return &handlerFixture{
		serviceFixture: sf,
		store:          store,
		handler:        NewHandler(sf.service, store, sf.objects, sf.progress, 0, testLogger()),
		e:              echo.New(),
	}
}

func claimsFor(userID string) *auth.Claims {
	return &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: userID}}
}

func (f *handlerFixture) context(req *http.Request, userID string) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	if userID != "" {
		auth.SetClaimsForTest(c, claimsFor(userID))
	}
	return c, rec
}

func uploadRequest(t *testing.T, image []byte, scanID string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if image != nil {
		part, err := w.CreateFormFile("image", "plant.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write(image)
	}
	if scanID != "" {
		w.WriteField("scan_id", scanID)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/scans", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError with %d, got %v", status, err)
	}
	if httpErr.Code != status {
		t.Errorf("expected status %d, got %d (%v)", status, httpErr.Code, httpErr.Message)
	}
}

const fixedScanID = "0b6f4c9e-5d0e-4c1b-9a77-1f2d3c4b5a69"

func TestHandler_RegisterRoutes(t *testing.T) {
	f := newHandlerFixture(t)
	f.handler.RegisterRoutes(f.e.Group("/api/scans"))

	expected := map[string]bool{
		"POST /api/scans":             false,
		"GET /api/scans":              false,
		"GET /api/scans/:id":          false,
		"DELETE /api/scans/:id":       false,
		"GET /api/scans/:id/progress": false,
		"GET /api/scans/:id/events":   false,
	}
	for _, r := range f.e.Routes() {
		key := r.Method + " " + r.Path
		if _, ok := expected[key]; ok {
			expected[key] = true
		}
	}
	for route, found := range expected {
		if !found {
			t.Errorf("expected route %s", route)
		}
	}
}

func TestHandler_Create(t *testing.T) {
	f := newHandlerFixture(t)

	c, rec := f.context(uploadRequest(t, pngImage(t), fixedScanID), "user-1")
	if err := f.handler.Create(c); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp dto.ScanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != fixedScanID || resp.UserID != "user-1" {
		t.Errorf("unexpected ids %s / %s", resp.ID, resp.UserID)
	}
	if resp.PlantPath != "user-1/"+fixedScanID+".png" {
		t.Errorf("unexpected plant path %s", resp.PlantPath)
	}
	if resp.ImageURL != "https://cdn.test/"+resp.PlantPath {
		t.Errorf("unexpected image url %s", resp.ImageURL)
	}
	if resp.PlantName != "Chinese rose" || resp.OverallHealth != "Healthy" || resp.LastScanDate != "2025-11-12" {
		t.Errorf("unexpected response %+v", resp)
	}
	if !strings.Contains(rec.Body.String(), `"health_assesment"`) {
		t.Error("expected health_assesment key in response")
	}

	if _, err := f.store.GetForUser(context.Background(), "user-1", fixedScanID); err != nil {
		t.Errorf("expected record stored: %v", err)
	}
}

func TestHandler_CreateErrors(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*handlerFixture)
		image  func(*testing.T) []byte
		scanID string
		user   string
		status int
	}{
		{name: "unauthenticated", image: pngImage, status: http.StatusUnauthorized},
		{name: "missing image", user: "u", image: func(*testing.T) []byte { return nil }, status: http.StatusBadRequest},
		{name: "bad scan id", user: "u", image: pngImage, scanID: "not-a-uuid", status: http.StatusBadRequest},
		{name: "not an image", user: "u", image: func(*testing.T) []byte { return []byte("hello") }, status: http.StatusBadRequest},
		{
			name:   "svg image",
			user:   "u",
			image:  func(*testing.T) []byte { return []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`) },
			status: http.StatusBadRequest,
		},
		{
			name:   "too large",
			user:   "u",
			image:  pngImage,
			setup:  func(f *handlerFixture) { f.handler.maxImageBytes = 8 },
			status: http.StatusBadRequest,
		},
		{
			name:   "no suggestions",
			user:   "u",
			image:  pngImage,
			setup:  func(f *handlerFixture) { f.gateway.identifyResult = &plantid.IdentificationResult{} },
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "identification failed",
			user:   "u",
			image:  pngImage,
			setup:  func(f *handlerFixture) { f.gateway.identifyErr = &plantid.UpstreamError{Status: 500} },
			status: http.StatusBadGateway,
		},
		{
			name:   "storage failed",
			user:   "u",
			image:  pngImage,
			setup:  func(f *handlerFixture) { f.objects.putErr = errBoom },
			status: http.StatusBadGateway,
		},
		{
			name:   "image already stored",
			user:   "u",
			image:  pngImage,
			scanID: fixedScanID,
			setup:  func(f *handlerFixture) { f.objects.objects["u/"+fixedScanID+".png"] = []byte("saved") },
			status: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			c, _ := f.context(uploadRequest(t, tt.image(t), tt.scanID), tt.user)
			assertStatus(t, f.handler.Create(c), tt.status)

			plants, _ := f.store.ListByUser(context.Background(), "u")
			if len(plants) != 0 {
				t.Error("no record may be stored on failure")
			}
		})
	}
}

func TestHandler_CreateTooLargeReportsLimit(t *testing.T) {
	f := newHandlerFixture(t)
	f.handler.maxImageBytes = 8

	c, _ := f.context(uploadRequest(t, pngImage(t), ""), "user-1")
	err := f.handler.Create(c)
	assertStatus(t, err, http.StatusBadRequest)

	apiErr, ok := err.(*echo.HTTPError).Message.(*shared.APIError)
	if !ok {
		t.Fatalf("expected *shared.APIError, got %T", err.(*echo.HTTPError).Message)
	}
	if apiErr.Code != "image_too_large" {
		t.Errorf("code = %q", apiErr.Code)
	}
	details, _ := apiErr.Details.(map[string]int64)
	if details["max_bytes"] != 8 {
		t.Errorf("details = %v", apiErr.Details)
	}
}

func TestHandler_CreateDuplicateScanID(t *testing.T) {
	f := newHandlerFixture(t)

	c, _ := f.context(uploadRequest(t, pngImage(t), fixedScanID), "user-1")
	if err := f.handler.Create(c); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	c, _ = f.context(uploadRequest(t, pngImage(t), fixedScanID), "user-1")
	assertStatus(t, f.handler.Create(c), http.StatusConflict)
	if !f.objects.has("user-1/" + fixedScanID + ".png") {
		t.Error("saved image removed by the rejected scan")
	}

	c, rec := f.context(uploadRequest(t, pngImage(t), fixedScanID), "user-2")
	if err := f.handler.Create(c); err != nil {
		t.Fatalf("another user may reuse the scan id: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if _, err := f.store.GetForUser(context.Background(), "user-1", fixedScanID); err != nil {
		t.Errorf("first user's record lost: %v", err)
	}
}

func TestHandler_ListGetDelete(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b"} {
		p := testPlant(t, id, "user-1")
		p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		f.store.Create(ctx, p)
		f.objects.Put(ctx, p.PlantPath, "image/jpeg", []byte("x"))
	}
	f.store.Create(ctx, testPlant(t, "c", "user-2"))

	c, rec := f.context(httptest.NewRequest(http.MethodGet, "/api/scans", nil), "user-1")
	if err := f.handler.List(c); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	var list dto.ScanListResponse
	json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list.Scans) != 2 || list.Scans[0].ID != "b" || list.Scans[1].ID != "a" {
		t.Fatalf("expected [b a], got %+v", list.Scans)
	}

	c, rec = f.context(httptest.NewRequest(http.MethodGet, "/api/scans/a", nil), "user-1")
	c.SetParamNames("id")
	c.SetParamValues("a")
	if err := f.handler.Get(c); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	c, _ = f.context(httptest.NewRequest(http.MethodGet, "/api/scans/c", nil), "user-1")
	c.SetParamNames("id")
	c.SetParamValues("c")
	assertStatus(t, f.handler.Get(c), http.StatusNotFound)

	c, _ = f.context(httptest.NewRequest(http.MethodDelete, "/api/scans/c", nil), "user-1")
	c.SetParamNames("id")
	c.SetParamValues("c")
	assertStatus(t, f.handler.Delete(c), http.StatusNotFound)

	c, rec = f.context(httptest.NewRequest(http.MethodDelete, "/api/scans/a", nil), "user-1")
	c.SetParamNames("id")
	c.SetParamValues("a")
	if err := f.handler.Delete(c); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if f.objects.has("user-1/a.jpg") {
		t.Error("expected image deleted")
	}
	if _, err := f.store.GetForUser(ctx, "user-1", "a"); err == nil {
		t.Error("expected record deleted")
	}
}

func TestHandler_DeleteToleratesStorageFailure(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := context.Background()
	f.store.Create(ctx, testPlant(t, "a", "user-1"))
	f.objects.deleteErr = errBoom

	c, rec := f.context(httptest.NewRequest(http.MethodDelete, "/api/scans/a", nil), "user-1")
	c.SetParamNames("id")
	c.SetParamValues("a")
	if err := f.handler.Delete(c); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestHandler_Progress(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := context.Background()
	f.progress.Record(ctx, &Progress{ScanID: "s1", UserID: "user-1", State: StateHealthAssessing, UpdatedAt: scannedAt})

	c, rec := f.context(httptest.NewRequest(http.MethodGet, "/api/scans/s1/progress", nil), "user-1")
	c.SetParamNames("id")
	c.SetParamValues("s1")
	if err := f.handler.Progress(c); err != nil {
		t.Fatalf("Progress failed: %v", err)
	}
	var resp dto.ScanProgressResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.State != "health_assessing" || resp.UpdatedAt != "2025-11-12T07:30:00Z" {
		t.Errorf("unexpected progress %+v", resp)
	}

	for _, tc := range []struct{ user, id string }{{"user-2", "s1"}, {"user-1", "unknown"}} {
		c, _ := f.context(httptest.NewRequest(http.MethodGet, "/", nil), tc.user)
		c.SetParamNames("id")
		c.SetParamValues(tc.id)
		assertStatus(t, f.handler.Progress(c), http.StatusNotFound)
	}
}

func newEventsServer(t *testing.T, f *handlerFixture, userID string) string {
	t.Helper()
	g := f.e.Group("/api/scans", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth.SetClaimsForTest(c, claimsFor(userID))
			return next(c)
		}
	})
	f.handler.RegisterRoutes(g)

	server := httptest.NewServer(f.e)
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func readProgress(t *testing.T, ws *websocket.Conn) dto.ScanProgressResponse {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var p dto.ScanProgressResponse
	if err := ws.ReadJSON(&p); err != nil {
		t.Fatalf("read progress: %v", err)
	}
	return p
}

func TestHandler_EventsStreamsUntilTerminal(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := context.Background()
	f.progress.Record(ctx, &Progress{ScanID: "s1", UserID: "user-1", State: StateIdentifying})

	url := newEventsServer(t, f, "user-1")
	ws, _, err := websocket.DefaultDialer.Dial(url+"/api/scans/s1/events", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	if p := readProgress(t, ws); p.State != "identifying" {
		t.Fatalf("expected current state first, got %s", p.State)
	}
	if f.progress.subscribers("user-1", "s1") != 1 {
		t.Fatalf("expected one subscriber, got %d", f.progress.subscribers("user-1", "s1"))
	}

	f.progress.Record(ctx, &Progress{ScanID: "s1", UserID: "someone-else", State: StateMerging})
	f.progress.Record(ctx, &Progress{ScanID: "s1", UserID: "user-1", State: StatePersisting})
	f.progress.Record(ctx, &Progress{ScanID: "s1", UserID: "user-1", State: StateDone})

	if p := readProgress(t, ws); p.State != "persisting" {
		t.Errorf("expected persisting, got %s", p.State)
	}
	if p := readProgress(t, ws); p.State != "done" {
		t.Errorf("expected done, got %s", p.State)
	}

	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = ws.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("expected normal close after terminal state, got %v", err)
	}
}

func TestHandler_EventsBeforeScanStarts(t *testing.T) {
	f := newHandlerFixture(t)

	url := newEventsServer(t, f, "user-1")
	ws, _, err := websocket.DefaultDialer.Dial(url+"/api/scans/fresh/events", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	if p := readProgress(t, ws); p.State != "idle" || p.ScanID != "fresh" {
		t.Errorf("expected idle for an unknown scan, got %+v", p)
	}
}

func TestHandler_EventsIgnoreOtherUsersWithSameScanID(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := context.Background()
	f.progress.Record(ctx, &Progress{ScanID: "s1", UserID: "user-2", State: StateEncoding})

	url := newEventsServer(t, f, "user-1")
	ws, _, err := websocket.DefaultDialer.Dial(url+"/api/scans/s1/events", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	if p := readProgress(t, ws); p.State != "idle" {
		t.Fatalf("another user's progress must not be visible, got %s", p.State)
	}

	f.progress.Record(ctx, &Progress{ScanID: "s1", UserID: "user-2", State: StateDone})
	f.progress.Record(ctx, &Progress{ScanID: "s1", UserID: "user-1", State: StateFailed, Error: "boom"})

	if p := readProgress(t, ws); p.State != "failed" || p.Error != "boom" {
		t.Errorf("expected own failed state, got %+v", p)
	}
}
