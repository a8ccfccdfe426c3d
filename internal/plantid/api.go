package plantid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mirai-garden/plant-backend/internal/imagedata"
)

// Identify runs a plant identification for the given images.
func (c *Client) Identify(ctx context.Context, req IdentificationRequest) (*IdentificationResult, error) {
	req.Images = normalizeAll(req.Images)

	resp, err := c.Do(ctx, http.MethodPost, "/identification", nil, req)
	if err != nil {
		return nil, err
	}
	return decode[IdentificationResult](resp)
}

// AssessHealth runs a health assessment. Similar images are always requested.
func (c *Client) AssessHealth(ctx context.Context, images []string) (*HealthResult, error) {
	body := map[string]any{
		"images":         normalizeAll(images),
		"similar_images": true,
	}

	resp, err := c.Do(ctx, http.MethodPost, "/health_assessment", url.Values{"details": {HealthDetails}}, body)
	if err != nil {
		return nil, err
	}
	return decode[HealthResult](resp)
}

// SearchByName looks up knowledge base entities matching name.
func (c *Client) SearchByName(ctx context.Context, name string, limit int, language string) (*NameSearchResult, error) {
	if language == "" {
		language = DefaultLanguage
	}
	query := url.Values{
		"q":        {name},
		"limit":    {strconv.Itoa(limit)},
		"language": {language},
	}

	resp, err := c.Do(ctx, http.MethodGet, "/kb/plants/name_search", query, nil)
	if err != nil {
		return nil, err
	}
	return decode[NameSearchResult](resp)
}

// PlantDetails fetches the knowledge base entry behind an access token.
func (c *Client) PlantDetails(ctx context.Context, accessToken, language string) (*PlantDetails, error) {
	if language == "" {
		language = DefaultLanguage
	}
	query := url.Values{
		"details":  {PlantDetailFields},
		"language": {language},
	}

	resp, err := c.Do(ctx, http.MethodGet, "/kb/plants/"+url.PathEscape(accessToken), query, nil)
	if err != nil {
		return nil, err
	}
	return decode[PlantDetails](resp)
}

func decode[T any](resp *Response) (*T, error) {
	if !resp.IsJSON() {
		return nil, fmt.Errorf("%w (status %d): %s", ErrNotJSON, resp.StatusCode, Excerpt(resp.Body, MaxExcerpt))
	}
	if !resp.OK() {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: resp.Body}
	}

	var out T
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func normalizeAll(images []string) []string {
	out := make([]string, len(images))
	for i, img := range images {
		out[i] = imagedata.NormalizeImage(img)
	}
	return out
}
