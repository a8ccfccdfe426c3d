package plantid

import (
	"errors"
	"fmt"
	"strings"
)

// MaxExcerpt bounds the raw upstream text echoed back in diagnostics.
const MaxExcerpt = 1000

var (
	ErrMissingAPIKey = errors.New("missing PLANT_ID_API_KEY")
	ErrNotJSON       = errors.New("plant.id response not JSON")
)

// UpstreamError is a structured failure returned by the provider.
type UpstreamError struct {
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("plant.id returned status %d: %s", e.Status, Excerpt(e.Body, 200))
}

// Excerpt returns at most limit bytes of body without splitting a UTF-8 sequence.
func Excerpt(body []byte, limit int) string {
	if len(body) > limit {
		body = body[:limit]
	}
	return strings.ToValidUTF8(string(body), "")
}
