// Package storage defines the object storage contract used for place assets.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// Layout roots. Staged uploads live under StagingRoot/<stagingID>/, permanent
// place assets under PlacesRoot/<slug>/.
const (
	StagingRoot = "staging"
	PlacesRoot  = "places"
)

var (
	ErrNotFound    = errors.New("storage: object not found")
	ErrInvalidPath = errors.New("storage: invalid relative path")
)

// Object is the result of a save.
type Object struct {
	Path     string `json:"path"`
	URL      string `json:"url"`
	CloudURL string `json:"cloudUrl,omitempty"`
}

// Store is implemented by every storage backend.
type Store interface {
	Save(ctx context.Context, r io.Reader, relPath, mimeType string) (Object, error)
	Delete(ctx context.Context, relPath string) error
	Move(ctx context.Context, from, to string) error
	// List returns the names of the entries directly under dir, files and
	// sub-directories alike, sorted. A missing dir lists as empty.
	List(ctx context.Context, dir string) ([]string, error)
	// RemoveDir removes dir and everything below it. A missing dir is not an error.
	RemoveDir(ctx context.Context, dir string) error
	URL(relPath string) string
	Ping(ctx context.Context) error
}

// CleanRel validates and normalizes a slash-separated relative path.
func CleanRel(p string) (string, error) {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" || strings.HasPrefix(trimmed, "/") || strings.Contains(trimmed, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return cleaned, nil
}

// StagingDir returns the staged area of a temporary upload identity.
func StagingDir(stagingID string) string {
	return path.Join(StagingRoot, stagingID)
}

// PlaceDir returns the permanent asset area of a place.
func PlaceDir(slug string) string {
	return path.Join(PlacesRoot, slug)
}

// JoinURL appends relPath to a public base URL.
func JoinURL(base, relPath string) string {
	base = strings.TrimRight(base, "/")
	if base == "" {
		return "/" + relPath
	}
	return base + "/" + relPath
}
