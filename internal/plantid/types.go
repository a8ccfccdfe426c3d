package plantid

import (
	"encoding/json"
	"time"
)

const (
	DefaultBaseURL  = "https://plant.id/api/v3"
	DefaultTimeout  = 60 * time.Second
	DefaultLanguage = "en"
	DefaultLimit    = "10"

	// HealthDetails is always requested from the health assessment endpoint.
	HealthDetails = "local_name,description,url,treatment,classification,common_names,cause"
	// PlantDetailFields is the default detail set for knowledge base plant lookups.
	PlantDetailFields = "common_names,url,description,taxonomy,rank,gbif_id,inaturalist_id,image,synonyms,edible_parts,watering,propagation_methods"
	// IdentificationDetailFields is the default detail set for identification lookups.
	IdentificationDetailFields = "common_names,url,description,taxonomy,rank"
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type IdentificationRequest struct {
	Images              []string `json:"images"`
	ClassificationLevel string   `json:"classification_level,omitempty"`
	SimilarImages       bool     `json:"similar_images"`
}

type Binary struct {
	Binary      bool    `json:"binary"`
	Probability float64 `json:"probability"`
	Threshold   float64 `json:"threshold,omitempty"`
}

type SimilarImage struct {
	ID         string  `json:"id,omitempty"`
	URL        string  `json:"url,omitempty"`
	URLSmall   string  `json:"url_small,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
	Citation   string  `json:"citation,omitempty"`
}

type Suggestion struct {
	ID            string          `json:"id,omitempty"`
	Name          string          `json:"name"`
	Probability   float64         `json:"probability"`
	SimilarImages []SimilarImage  `json:"similar_images,omitempty"`
	Details       json.RawMessage `json:"details,omitempty"`
}

type IdentificationResult struct {
	AccessToken string `json:"access_token,omitempty"`
	Status      string `json:"status,omitempty"`
	Result      struct {
		IsPlant        *Binary `json:"is_plant,omitempty"`
		Classification struct {
			Suggestions []Suggestion `json:"suggestions"`
		} `json:"classification"`
	} `json:"result"`
}

// Top returns the provider's highest-confidence suggestion.
func (r *IdentificationResult) Top() (*Suggestion, bool) {
	if r == nil || len(r.Result.Classification.Suggestions) == 0 {
		return nil, false
	}
	return &r.Result.Classification.Suggestions[0], true
}

type DiseaseSuggestion struct {
	ID            string          `json:"id,omitempty"`
	Name          string          `json:"name"`
	Probability   float64         `json:"probability"`
	Redundant     bool            `json:"redundant,omitempty"`
	SimilarImages []SimilarImage  `json:"similar_images,omitempty"`
	Details       json.RawMessage `json:"details,omitempty"`
}

type HealthResult struct {
	AccessToken string `json:"access_token,omitempty"`
	Result      struct {
		IsPlant   *Binary `json:"is_plant,omitempty"`
		IsHealthy *Binary `json:"is_healthy,omitempty"`
		Disease   struct {
			Suggestions []DiseaseSuggestion `json:"suggestions"`
		} `json:"disease"`
	} `json:"result"`
}

type Entity struct {
	AccessToken   string `json:"access_token"`
	EntityName    string `json:"entity_name"`
	MatchedIn     string `json:"matched_in,omitempty"`
	MatchedInType string `json:"matched_in_type,omitempty"`
	MatchPosition int    `json:"match_position,omitempty"`
	MatchLength   int    `json:"match_length,omitempty"`
}

type NameSearchResult struct {
	Entities        []Entity `json:"entities"`
	EntitiesTrimmed bool     `json:"entities_trimmed"`
	Limit           int      `json:"limit"`
}

type Taxonomy struct {
	Kingdom string `json:"kingdom,omitempty"`
	Phylum  string `json:"phylum,omitempty"`
	Class   string `json:"class,omitempty"`
	Order   string `json:"order,omitempty"`
	Family  string `json:"family,omitempty"`
	Genus   string `json:"genus,omitempty"`
}

type Described struct {
	Value    string `json:"value"`
	Citation string `json:"citation,omitempty"`
}

type Watering struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type PlantDetails struct {
	Name               string     `json:"name,omitempty"`
	EntityID           string     `json:"entity_id,omitempty"`
	Language           string     `json:"language,omitempty"`
	CommonNames        []string   `json:"common_names,omitempty"`
	Taxonomy           *Taxonomy  `json:"taxonomy,omitempty"`
	URL                string     `json:"url,omitempty"`
	Rank               string     `json:"rank,omitempty"`
	Description        *Described `json:"description,omitempty"`
	Synonyms           []string   `json:"synonyms,omitempty"`
	Image              *Described `json:"image,omitempty"`
	EdibleParts        []string   `json:"edible_parts,omitempty"`
	Watering           *Watering  `json:"watering,omitempty"`
	PropagationMethods []string   `json:"propagation_methods,omitempty"`
}
