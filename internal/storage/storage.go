// Package storage holds scan images in an object store.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

var (
	ErrInvalidPath  = errors.New("invalid object path")
	ErrObjectExists = errors.New("object already exists")
)

// ObjectStore is where scan images live. Paths are slash separated and relative
// to the store root, e.g. "<user_id>/<scan_id>.jpg". Put never replaces an
// existing object; it returns ErrObjectExists instead.
type ObjectStore interface {
	Put(ctx context.Context, objectPath, contentType string, data []byte) error
	Delete(ctx context.Context, objectPath string) error
	URL(objectPath string) string
	Ping(ctx context.Context) error
}

// CleanPath validates an object path and returns its canonical form.
func CleanPath(p string) (string, error) {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return "", ErrInvalidPath
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", ErrInvalidPath
		}
	}

	cleaned := path.Clean(p)
	if cleaned == "." {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}
