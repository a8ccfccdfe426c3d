package scan

import (
	"encoding/json"
	"time"

	"github.com/mirai-garden/plant-backend/internal/plantid"
	"github.com/mirai-garden/plant-backend/internal/shared"
)

const (
	DefaultDescription = "No description available"
	DefaultCommonNames = "No common names available"
	UnknownRank        = "Unknown"
)

type Health string

const (
	HealthHealthy   Health = "Healthy"
	HealthUnhealthy Health = "Unhealthy"
	HealthUnknown   Health = "Unknown"
)

// Plant is one persisted scan of a user's plant. Scan ids are unique per owner.
type Plant struct {
	ID        string  `gorm:"primaryKey" json:"id"`
	UserID    string  `gorm:"primaryKey;index" json:"user_id"`
	PlantPath string  `gorm:"not null" json:"plant_path"`
	Avatar    *string `json:"avatar"`

	PlantName      string `gorm:"not null" json:"plant_name"`
	ScientificName string `gorm:"not null" json:"scientific_name"`
	Species        string `json:"species"`
	OverallHealth  Health `gorm:"default:'Unknown'" json:"overall_health"`
	LastScanDate   string `json:"last_scan_date"`

	PlantInformation shared.JSON[PlantInformation] `gorm:"column:plant_information" json:"plant_information"`
	HealthAssessment shared.JSON[HealthAssessment] `gorm:"column:health_assesment" json:"health_assesment"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Plant) TableName() string {
	return "plants"
}

type Taxonomy struct {
	Kingdom string `json:"kingdom"`
	Phylum  string `json:"phylum"`
	Class   string `json:"class"`
	Order   string `json:"order"`
	Family  string `json:"family"`
	Genus   string `json:"genus"`
}

// CommonNames serializes as the default sentence when empty, so a record
// never carries an absent or empty list.
type CommonNames []string

func (n CommonNames) MarshalJSON() ([]byte, error) {
	if len(n) == 0 {
		return json.Marshal(DefaultCommonNames)
	}
	return json.Marshal([]string(n))
}

func (n *CommonNames) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*n = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*n = nil
	return nil
}

// PlantInformation is the identification merged with the knowledge base entry.
type PlantInformation struct {
	Name               string                 `json:"name"`
	Probability        float64                `json:"probability"`
	Rank               string                 `json:"rank"`
	Description        string                 `json:"description"`
	CommonNames        CommonNames            `json:"common_names"`
	URL                string                 `json:"url"`
	ImageURL           string                 `json:"image_url"`
	Synonyms           []string               `json:"synonyms"`
	EdibleParts        []string               `json:"edible_parts"`
	Watering           *plantid.Watering      `json:"watering"`
	PropagationMethods []string               `json:"propagation_methods"`
	Taxonomy           Taxonomy               `json:"taxonomy"`
	AccessToken        string                 `json:"access_token,omitempty"`
	EntityID           string                 `json:"entity_id,omitempty"`
	SimilarImages      []plantid.SimilarImage `json:"similar_images,omitempty"`
}

type HealthStatus struct {
	Binary      bool    `json:"binary"`
	Probability float64 `json:"probability"`
	Threshold   float64 `json:"threshold,omitempty"`
}

type Disease struct {
	ID            string                 `json:"id,omitempty"`
	Name          string                 `json:"name"`
	Probability   float64                `json:"probability"`
	Redundant     bool                   `json:"redundant,omitempty"`
	SimilarImages []plantid.SimilarImage `json:"similar_images,omitempty"`
	Details       json.RawMessage        `json:"details,omitempty"`
}

// HealthAssessment is present on every record; Available is false when the
// assessment step produced nothing.
type HealthAssessment struct {
	Available          bool          `json:"available"`
	IsPlant            *HealthStatus `json:"is_plant,omitempty"`
	IsHealthy          *HealthStatus `json:"is_healthy"`
	DiseaseSuggestions []Disease     `json:"disease_suggestions"`
}

func (h HealthAssessment) MarshalJSON() ([]byte, error) {
	type alias HealthAssessment
	if h.DiseaseSuggestions == nil {
		h.DiseaseSuggestions = []Disease{}
	}
	return json.Marshal(alias(h))
}
