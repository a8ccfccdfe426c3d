package scan

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/mirai-garden/plant-backend/internal/plantid"
	"github.com/mirai-garden/plant-backend/internal/shared"
)

const scanDateLayout = "2006-01-02"

// MergeInput carries the results of one scan. Details and Health are nil when
// their best-effort steps produced nothing.
type MergeInput struct {
	Identification *plantid.IdentificationResult
	Details        *plantid.PlantDetails
	AccessToken    string
	Health         *plantid.HealthResult
	ScannedAt      time.Time
}

// Merge builds a record from a scan's results with every default filled in.
// The identification must carry at least one suggestion. When details are
// present they are also attached to the top suggestion.
func Merge(in MergeInput) (*Plant, error) {
	top, ok := in.Identification.Top()
	if !ok {
		return nil, ErrNoSuggestions
	}

	if in.Details != nil {
		raw, err := json.Marshal(in.Details)
		if err != nil {
			return nil, err
		}
		top.Details = raw
	}

	info := plantInformation(top, in.Details, in.AccessToken)
	health := healthAssessment(in.Health)

	return &Plant{
		PlantName:        displayName(top.Name, info.CommonNames),
		ScientificName:   top.Name,
		Species:          species(top.Name),
		OverallHealth:    overallHealth(health),
		LastScanDate:     in.ScannedAt.UTC().Format(scanDateLayout),
		PlantInformation: shared.NewJSON(info),
		HealthAssessment: shared.NewJSON(health),
	}, nil
}

func plantInformation(top *plantid.Suggestion, details *plantid.PlantDetails, accessToken string) PlantInformation {
	info := PlantInformation{
		Name:          top.Name,
		Probability:   top.Probability,
		Rank:          UnknownRank,
		Description:   DefaultDescription,
		SimilarImages: top.SimilarImages,
		Taxonomy:      taxonomy(nil),
	}
	if details == nil {
		return info
	}

	info.AccessToken = accessToken
	info.EntityID = details.EntityID
	info.URL = details.URL
	info.CommonNames = CommonNames(details.CommonNames)
	info.Synonyms = details.Synonyms
	info.EdibleParts = details.EdibleParts
	info.Watering = details.Watering
	info.PropagationMethods = details.PropagationMethods
	info.Taxonomy = taxonomy(details.Taxonomy)

	if details.Rank != "" {
		info.Rank = details.Rank
	}
	if details.Description != nil && strings.TrimSpace(details.Description.Value) != "" {
		info.Description = details.Description.Value
	}
	if details.Image != nil {
		info.ImageURL = details.Image.Value
	}
	return info
}

func taxonomy(t *plantid.Taxonomy) Taxonomy {
	if t == nil {
		t = &plantid.Taxonomy{}
	}
	return Taxonomy{
		Kingdom: orUnknown(t.Kingdom),
		Phylum:  orUnknown(t.Phylum),
		Class:   orUnknown(t.Class),
		Order:   orUnknown(t.Order),
		Family:  orUnknown(t.Family),
		Genus:   orUnknown(t.Genus),
	}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return UnknownRank
	}
	return s
}

func healthAssessment(h *plantid.HealthResult) HealthAssessment {
	if h == nil {
		return HealthAssessment{DiseaseSuggestions: []Disease{}}
	}

	out := HealthAssessment{
		Available:          true,
		DiseaseSuggestions: make([]Disease, 0, len(h.Result.Disease.Suggestions)),
	}
	out.IsPlant = healthStatus(h.Result.IsPlant)
	out.IsHealthy = healthStatus(h.Result.IsHealthy)
	for _, d := range h.Result.Disease.Suggestions {
		out.DiseaseSuggestions = append(out.DiseaseSuggestions, Disease{
			ID:            d.ID,
			Name:          d.Name,
			Probability:   d.Probability,
			Redundant:     d.Redundant,
			SimilarImages: d.SimilarImages,
			Details:       d.Details,
		})
	}
	return out
}

func healthStatus(b *plantid.Binary) *HealthStatus {
	if b == nil {
		return nil
	}
	return &HealthStatus{Binary: b.Binary, Probability: b.Probability, Threshold: b.Threshold}
}

func overallHealth(h HealthAssessment) Health {
	switch {
	case h.IsHealthy == nil:
		return HealthUnknown
	case h.IsHealthy.Binary:
		return HealthHealthy
	default:
		return HealthUnhealthy
	}
}

func displayName(name string, common CommonNames) string {
	for _, n := range common {
		if strings.TrimSpace(n) != "" {
			return n
		}
	}
	return name
}

// species returns the specific epithet of a binomial name, or the name itself.
func species(name string) string {
	parts := strings.Fields(name)
	if len(parts) >= 2 {
		return parts[1]
	}
	return name
}
