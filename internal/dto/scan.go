package dto

type TaxonomyResponse struct {
	Kingdom string `json:"kingdom" example:"Plantae"`
	Phylum  string `json:"phylum" example:"Tracheophyta"`
	Class   string `json:"class" example:"Magnoliopsida"`
	Order   string `json:"order" example:"Rosales"`
	Family  string `json:"family" example:"Rosaceae"`
	Genus   string `json:"genus" example:"Rosa"`
}

type ScanResponse struct {
	ID               string  `json:"id" example:"0b6f4c9e-5d0e-4c1b-9a77-1f2d3c4b5a69"`
	UserID           string  `json:"user_id" example:"8d0c1f9e-1b7a-4c55-9a61-3f7f4f0c2b11"`
	PlantPath        string  `json:"plant_path" example:"8d0c1f9e/2b4a.jpg"`
	ImageURL         string  `json:"image_url" example:"https://xyz.supabase.co/storage/v1/object/public/plants/8d0c1f9e/2b4a.jpg"`
	Avatar           *string `json:"avatar"`
	PlantName        string  `json:"plant_name" example:"Chinese rose"`
	ScientificName   string  `json:"scientific_name" example:"Rosa chinensis"`
	Species          string  `json:"species" example:"chinensis"`
	OverallHealth    string  `json:"overall_health" example:"Healthy"`
	LastScanDate     string  `json:"last_scan_date" example:"2025-11-11"`
	PlantInformation any     `json:"plant_information" swaggertype:"object"`
	HealthAssessment any     `json:"health_assesment" swaggertype:"object"`
	CreatedAt        string  `json:"created_at" example:"2025-11-11T10:30:00Z"`
}

type ScanListResponse struct {
	Scans []ScanResponse `json:"scans"`
}

type ScanProgressResponse struct {
	ScanID    string `json:"scan_id" example:"0b6f4c9e-5d0e-4c1b-9a77-1f2d3c4b5a69"`
	State     string `json:"state" example:"identifying" enums:"idle,encoding,identifying,detail_lookup,health_assessing,merging,persisting,done,failed"`
	Error     string `json:"error,omitempty"`
	UpdatedAt string `json:"updated_at" example:"2025-11-11T10:30:00Z"`
}
