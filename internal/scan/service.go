package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mirai-garden/plant-backend/internal/imagedata"
	"github.com/mirai-garden/plant-backend/internal/plantid"
	"github.com/mirai-garden/plant-backend/internal/storage"
)

// Gateway is the part of the Plant.id client a scan needs.
type Gateway interface {
	Identify(ctx context.Context, req plantid.IdentificationRequest) (*plantid.IdentificationResult, error)
	AssessHealth(ctx context.Context, images []string) (*plantid.HealthResult, error)
	SearchByName(ctx context.Context, name string, limit int, language string) (*plantid.NameSearchResult, error)
	PlantDetails(ctx context.Context, accessToken, language string) (*plantid.PlantDetails, error)
}

type Records interface {
	Create(ctx context.Context, p *Plant) error
}

type ScanInput struct {
	UserID string
	ScanID string
	Image  []byte
}

// Service runs the scan pipeline: encode, identify, look up details, assess
// health, merge and persist. Steps run in order and are never retried. Detail
// lookup and health assessment are best effort.
type Service struct {
	gateway  Gateway
	records  Records
	objects  storage.ObjectStore
	progress ProgressRecorder
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(gateway Gateway, records Records, objects storage.ObjectStore, progress ProgressRecorder, logger *slog.Logger) *Service {
	return &Service{
		gateway:  gateway,
		records:  records,
		objects:  objects,
		progress: progress,
		logger:   logger.With("component", "scan"),
		now:      time.Now,
	}
}

// ObjectPath is where a scan's image is stored.
func ObjectPath(userID, scanID, ext string) string {
	return userID + "/" + scanID + ext
}

func (s *Service) Scan(ctx context.Context, in ScanInput) (*Plant, error) {
	if in.ScanID == "" {
		in.ScanID = uuid.NewString()
	}
	logger := s.logger.With("scan_id", in.ScanID, "user_id", in.UserID)

	run := &run{service: s, input: in, logger: logger}
	plant, err := run.execute(ctx)
	if err != nil {
		run.track(ctx, StateFailed, err)
		logger.Warn("scan failed", "error", err)
		return nil, err
	}

	run.track(ctx, StateDone, nil)
	logger.Info("scan complete", "plant", plant.ScientificName, "health", plant.OverallHealth)
	return plant, nil
}

type run struct {
	service *Service
	input   ScanInput
	logger  *slog.Logger
}

func (r *run) execute(ctx context.Context) (*Plant, error) {
	s := r.service

	r.track(ctx, StateEncoding, nil)
	img, err := imagedata.Encode(r.input.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	images := []string{img.DataURL}

	r.track(ctx, StateIdentifying, nil)
	ident, err := s.gateway.Identify(ctx, plantid.IdentificationRequest{
		Images:        images,
		SimilarImages: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIdentificationFailed, err)
	}
	top, ok := ident.Top()
	if !ok {
		return nil, ErrNoSuggestions
	}
	r.logger.Info("plant identified", "name", top.Name, "probability", top.Probability)

	r.track(ctx, StateDetailLookup, nil)
	details, accessToken := r.lookupDetails(ctx, top.Name)

	r.track(ctx, StateHealthAssessing, nil)
	health, err := s.gateway.AssessHealth(ctx, images)
	if err != nil {
		r.logger.Warn("health assessment failed, continuing without it", "error", err)
		health = nil
	}

	r.track(ctx, StateMerging, nil)
	plant, err := Merge(MergeInput{
		Identification: ident,
		Details:        details,
		AccessToken:    accessToken,
		Health:         health,
		ScannedAt:      s.now(),
	})
	if err != nil {
		return nil, err
	}
	plant.ID = r.input.ScanID
	plant.UserID = r.input.UserID
	plant.PlantPath = ObjectPath(r.input.UserID, r.input.ScanID, img.Extension)
	if image := plant.PlantInformation.Data.ImageURL; image != "" {
		plant.Avatar = &image
	}

	r.track(ctx, StatePersisting, nil)
	// Put is create-only: an existing object belongs to an earlier scan and is
	// never touched. Once Put succeeds the object is ours to remove.
	if err := s.objects.Put(ctx, plant.PlantPath, img.ContentType, r.input.Image); err != nil {
		if errors.Is(err, storage.ErrObjectExists) {
			return nil, ErrScanExists
		}
		return nil, fmt.Errorf("%w: %w", ErrStorageFailed, err)
	}
	if err := s.records.Create(ctx, plant); err != nil {
		if delErr := s.objects.Delete(ctx, plant.PlantPath); delErr != nil {
			r.logger.Error("failed to remove orphaned image", "path", plant.PlantPath, "error", delErr)
		}
		if errors.Is(err, ErrScanExists) {
			return nil, ErrScanExists
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	return plant, nil
}

// lookupDetails resolves the knowledge base entry for name. Any failure is
// logged and reported as no details.
func (r *run) lookupDetails(ctx context.Context, name string) (*plantid.PlantDetails, string) {
	found, err := r.service.gateway.SearchByName(ctx, name, 1, plantid.DefaultLanguage)
	if err != nil {
		r.logger.Warn("name search failed", "name", name, "error", err)
		return nil, ""
	}
	if len(found.Entities) == 0 || found.Entities[0].AccessToken == "" {
		r.logger.Info("no knowledge base entry", "name", name)
		return nil, ""
	}

	token := found.Entities[0].AccessToken
	details, err := r.service.gateway.PlantDetails(ctx, token, plantid.DefaultLanguage)
	if err != nil {
		r.logger.Warn("plant details lookup failed", "name", name, "error", err)
		return nil, ""
	}
	return details, token
}

func (r *run) track(ctx context.Context, state State, cause error) {
	if r.service.progress == nil {
		return
	}

	p := &Progress{
		ScanID:    r.input.ScanID,
		UserID:    r.input.UserID,
		State:     state,
		UpdatedAt: r.service.now().UTC(),
	}
	if cause != nil {
		p.Error = cause.Error()
	}
	if err := r.service.progress.Record(ctx, p); err != nil {
		r.logger.Warn("failed to record scan progress", "state", state, "error", err)
	}
}
