// Package imagedata prepares image payloads for the identification provider.
package imagedata

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
)

// DefaultPrefix is prepended to bare base64 strings.
const DefaultPrefix = "data:image/jpeg;base64,"

var (
	absoluteURLPattern = regexp.MustCompile(`^https?://`)
	dataURLPattern     = regexp.MustCompile(`^data:image/[A-Za-z0-9.+-]+;base64,`)
	base64Pattern      = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)
)

// Normalize rewrites the "images" array of a decoded JSON object so every string entry
// is either an absolute URL or a data URL. Other shapes are returned untouched. It
// never fails; entries it cannot make sense of are forwarded as they are.
func Normalize(body any, logger *slog.Logger) any {
	obj, ok := body.(map[string]any)
	if !ok {
		return body
	}

	images, ok := obj["images"].([]any)
	if !ok {
		return body
	}

	out := make([]any, len(images))
	for i, img := range images {
		s, ok := img.(string)
		if !ok {
			if logger != nil {
				logger.Warn("non-string image entry forwarded unvalidated", "index", i, "type", typeName(img))
			}
			out[i] = img
			continue
		}
		out[i] = NormalizeImage(s)
	}
	obj["images"] = out
	return obj
}

// NormalizeImage applies the per-entry rule of Normalize to a single string.
func NormalizeImage(s string) string {
	if absoluteURLPattern.MatchString(s) || dataURLPattern.MatchString(s) {
		return s
	}

	trimmed := strings.TrimSpace(s)
	if base64Pattern.MatchString(trimmed) {
		return DefaultPrefix + trimmed
	}
	return s
}

// IsDataURL reports whether s carries an embedded-image header.
func IsDataURL(s string) bool {
	return dataURLPattern.MatchString(s)
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, int, int64, json.Number:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return "unknown"
	}
}
