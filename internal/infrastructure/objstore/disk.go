// Package objstore stores meal photos and maps them to public CDN URLs.
package objstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore implements domain.ImageStore on the local filesystem. The
// directory is expected to be served through a CDN (or reverse proxy) at
// cdnBaseURL; swapping in a bucket-backed store only requires another
// implementation of the same interface.
type DiskStore struct {
	dir        string
	cdnBaseURL string
}

// NewDiskStore creates the root directory if needed
func NewDiskStore(dir, cdnBaseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image dir: %w", err)
	}
	return &DiskStore{
		dir:        dir,
		cdnBaseURL: strings.TrimSuffix(cdnBaseURL, "/"),
	}, nil
}

// Save writes the image to {dir}/{userID}/{mealID}.jpg and returns its
// public URL
func (s *DiskStore) Save(ctx context.Context, userID, mealID string, data []byte) (string, error) {
	userDir := filepath.Join(s.dir, userID)
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create user dir: %w", err)
	}

	path := filepath.Join(userDir, mealID+".jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s.jpg", s.cdnBaseURL, userID, mealID), nil
}
