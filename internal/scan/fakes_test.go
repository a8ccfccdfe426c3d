package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/mirai-garden/plant-backend/internal/plantid"
	"github.com/mirai-garden/plant-backend/internal/shared"
	"github.com/mirai-garden/plant-backend/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pngImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{G: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func jpegImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func identification(t *testing.T, names ...string) *plantid.IdentificationResult {
	t.Helper()
	suggestions := make([]map[string]any, len(names))
	for i, n := range names {
		suggestions[i] = map[string]any{"id": "s" + n, "name": n, "probability": 0.9 - float64(i)*0.1}
	}
	raw, _ := json.Marshal(map[string]any{
		"access_token": "ident-token",
		"result": map[string]any{
			"is_plant":       map[string]any{"binary": true, "probability": 0.99},
			"classification": map[string]any{"suggestions": suggestions},
		},
	})

	var out plantid.IdentificationResult
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("build identification: %v", err)
	}
	return &out
}

func healthResult(t *testing.T, healthy bool, diseases ...string) *plantid.HealthResult {
	t.Helper()
	suggestions := make([]map[string]any, len(diseases))
	for i, d := range diseases {
		suggestions[i] = map[string]any{"id": "d" + d, "name": d, "probability": 0.4}
	}
	raw, _ := json.Marshal(map[string]any{
		"result": map[string]any{
			"is_healthy": map[string]any{"binary": healthy, "probability": 0.8},
			"disease":    map[string]any{"suggestions": suggestions},
		},
	})

	var out plantid.HealthResult
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("build health result: %v", err)
	}
	return &out
}

func roseDetails() *plantid.PlantDetails {
	return &plantid.PlantDetails{
		Name:        "Rosa chinensis",
		EntityID:    "ent-1",
		CommonNames: []string{"Chinese rose", "China rose"},
		Taxonomy: &plantid.Taxonomy{
			Kingdom: "Plantae",
			Phylum:  "Tracheophyta",
			Class:   "Magnoliopsida",
			Order:   "Rosales",
			Family:  "Rosaceae",
			Genus:   "Rosa",
		},
		URL:                "https://en.wikipedia.org/wiki/Rosa_chinensis",
		Rank:               "species",
		Description:        &plantid.Described{Value: "A shrub native to Southwest China."},
		Image:              &plantid.Described{Value: "https://plant.id/media/rose.jpg"},
		Watering:           &plantid.Watering{Min: 2, Max: 2},
		PropagationMethods: []string{"cuttings"},
	}
}

type fakeGateway struct {
	mu sync.Mutex

	identifyResult *plantid.IdentificationResult
	identifyErr    error
	searchResult   *plantid.NameSearchResult
	searchErr      error
	details        *plantid.PlantDetails
	detailsErr     error
	health         *plantid.HealthResult
	healthErr      error

	calls       []string
	identifyReq plantid.IdentificationRequest
	searchName  string
	searchLimit int
	detailToken string
}

func (g *fakeGateway) record(call string) {
	g.mu.Lock()
	g.calls = append(g.calls, call)
	g.mu.Unlock()
}

func (g *fakeGateway) Identify(_ context.Context, req plantid.IdentificationRequest) (*plantid.IdentificationResult, error) {
	g.record("identify")
	g.mu.Lock()
	g.identifyReq = req
	g.mu.Unlock()
	return g.identifyResult, g.identifyErr
}

func (g *fakeGateway) AssessHealth(_ context.Context, _ []string) (*plantid.HealthResult, error) {
	g.record("health")
	return g.health, g.healthErr
}

func (g *fakeGateway) SearchByName(_ context.Context, name string, limit int, _ string) (*plantid.NameSearchResult, error) {
	g.record("search")
	g.mu.Lock()
	g.searchName = name
	g.searchLimit = limit
	g.mu.Unlock()
	if g.searchErr != nil {
		return nil, g.searchErr
	}
	if g.searchResult == nil {
		return &plantid.NameSearchResult{}, nil
	}
	return g.searchResult, nil
}

func (g *fakeGateway) PlantDetails(_ context.Context, token, _ string) (*plantid.PlantDetails, error) {
	g.record("details")
	g.mu.Lock()
	g.detailToken = token
	g.mu.Unlock()
	return g.details, g.detailsErr
}

type fakeObjects struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErr    error
	deleteErr error
	deleted   []string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: make(map[string][]byte)}
}

func (o *fakeObjects) Put(_ context.Context, p, _ string, data []byte) error {
	if o.putErr != nil {
		return o.putErr
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.objects[p]; ok {
		return storage.ErrObjectExists
	}
	o.objects[p] = data
	return nil
}

func (o *fakeObjects) Delete(_ context.Context, p string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.deleted = append(o.deleted, p)
	if o.deleteErr != nil {
		return o.deleteErr
	}
	delete(o.objects, p)
	return nil
}

func (o *fakeObjects) URL(p string) string {
	return "https://cdn.test/" + p
}

func (o *fakeObjects) Ping(context.Context) error {
	return nil
}

func (o *fakeObjects) has(p string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.objects[p]
	return ok
}

type fakeRecords struct {
	created []*Plant
	err     error
}

func (r *fakeRecords) Create(_ context.Context, p *Plant) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, p)
	return nil
}

// memoryProgress is an in-process ProgressStore.
type memoryProgress struct {
	mu        sync.Mutex
	latest    map[string]*Progress
	history   []State
	subs      map[string][]chan *Progress
	recordErr error
}

func newMemoryProgress() *memoryProgress {
	return &memoryProgress{
		latest: make(map[string]*Progress),
		subs:   make(map[string][]chan *Progress),
	}
}

func (m *memoryProgress) Record(_ context.Context, p *Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, p.State)
	if m.recordErr != nil {
		return m.recordErr
	}
	cp := *p
	key := progressKey(p.UserID, p.ScanID)
	m.latest[key] = &cp
	for _, ch := range m.subs[key] {
		select {
		case ch <- &cp:
		default:
		}
	}
	return nil
}

func (m *memoryProgress) Get(_ context.Context, userID, scanID string) (*Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.latest[progressKey(userID, scanID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryProgress) Watch(ctx context.Context, userID, scanID string) (<-chan *Progress, error) {
	ch := make(chan *Progress, 16)
	m.mu.Lock()
	key := progressKey(userID, scanID)
	m.subs[key] = append(m.subs[key], ch)
	m.mu.Unlock()
	return ch, nil
}

func (m *memoryProgress) Delete(_ context.Context, userID, scanID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.latest, progressKey(userID, scanID))
	return nil
}

func (m *memoryProgress) subscribers(userID, scanID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[progressKey(userID, scanID)])
}

func (m *memoryProgress) states() []State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]State(nil), m.history...)
}

var errBoom = errors.New("boom")
