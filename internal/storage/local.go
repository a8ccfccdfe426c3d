package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local keeps objects on disk under a root directory. Objects are served by
// the HTTP server under URLPrefix.
type Local struct {
	root string
}

const URLPrefix = "/files/"

func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Local{root: abs}, nil
}

func (l *Local) Root() string {
	return l.root
}

func (l *Local) Put(_ context.Context, objectPath, _ string, data []byte) error {
	full, err := l.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp object: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write object: %w", err)
	}

	// Link fails when the target exists, so a complete object appears at once
	// or not at all.
	if err := os.Link(tmp.Name(), full); err != nil {
		if os.IsExist(err) {
			return ErrObjectExists
		}
		return fmt.Errorf("publish object: %w", err)
	}
	return nil
}

func (l *Local) Delete(_ context.Context, objectPath string) error {
	full, err := l.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (l *Local) URL(objectPath string) string {
	return URLPrefix + objectPath
}

func (l *Local) Ping(_ context.Context) error {
	info, err := os.Stat(l.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", l.root)
	}
	return nil
}

func (l *Local) resolve(objectPath string) (string, error) {
	p, err := CleanPath(objectPath)
	if err != nil {
		return "", err
	}
	full := filepath.Join(l.root, filepath.FromSlash(p))

	rel, err := filepath.Rel(l.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return full, nil
}
