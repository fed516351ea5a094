// Package storage uploads processed profile images to an object store and
// returns their public URLs. Two backends are supported: Google Cloud
// Storage and Cloudflare R2 via its S3-compatible API.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/thoughtslabs/thoughts-backend/config"
	"github.com/thoughtslabs/thoughts-backend/utils"
)

// Uploader stores a profile image and returns its public URL.
type Uploader interface {
	UploadProfileImage(ctx context.Context, username string, data []byte) (string, error)
}

// New builds the uploader selected by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config) (Uploader, error) {
	switch cfg.StorageBackend {
	case "r2":
		return NewR2Uploader(ctx, cfg)
	default:
		return NewGCSUploader(ctx, cfg)
	}
}

// profileObjectName builds a unique object name under the user's slug.
func profileObjectName(username string) string {
	return fmt.Sprintf(
		"profiles/%s/%d-%s.jpeg",
		utils.GenerateSlug(username),
		time.Now().UTC().Unix(),
		uuid.New().String(),
	)
}

func credentialsPath(relative string) (string, error) {
	if relative == "" {
		return "", fmt.Errorf("missing CREDENTIALS_FILE_LOCATION env var")
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, relative), nil
}
