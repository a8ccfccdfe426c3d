package imagedata

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

var (
	ErrEmptyImage      = errors.New("empty image")
	ErrNotImage        = errors.New("not an image")
	ErrUnsupportedType = errors.New("unsupported image type")
)

// decodable lists the formats Encode accepts. Each is verified with
// image.DecodeConfig before it is stored or sent upstream.
var decodable = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type EncodedImage struct {
	DataURL     string
	ContentType string
	Extension   string
	Width       int
	Height      int
}

// Encode sniffs the media type of data and returns it as a data URL.
func Encode(data []byte) (*EncodedImage, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	mt := mimetype.Detect(data)
	contentType := mt.String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: detected %s", ErrNotImage, contentType)
	}
	if !decodable[contentType] {
		return nil, fmt.Errorf("%w: %w: %s", ErrNotImage, ErrUnsupportedType, contentType)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	enc := &EncodedImage{
		ContentType: contentType,
		Extension:   mt.Extension(),
		Width:       cfg.Width,
		Height:      cfg.Height,
	}
	enc.DataURL = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	return enc, nil
}
