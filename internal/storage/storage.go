// Package storage publishes finished artifacts to object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/nikhilbhutani/podcastgen/internal/config"
)

var ErrObjectNotFound = errors.New("storage: object not found")

type Storage interface {
	Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// URL returns a link listeners can fetch key from.
	URL(ctx context.Context, key string) (string, error)
}

// New builds the configured backend. It returns nil when storage is
// disabled.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "supabase":
		return NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.Bucket, cfg.PresignExpiry), nil
	case "minio":
		return NewMinioStorage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// ArtifactKey places a job's file under podcasts/<job>/.
func ArtifactKey(jobID, localPath string) string {
	return path.Join("podcasts", jobID, filepath.Base(localPath))
}

// UploadFile uploads a local file and returns its URL.
func UploadFile(ctx context.Context, s Storage, key, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat artifact: %w", err)
	}
	if err := s.Upload(ctx, key, f, info.Size(), ContentType(localPath)); err != nil {
		return "", err
	}
	return s.URL(ctx, key)
}

func ContentType(name string) string {
	switch filepath.Ext(name) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
