package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultUploadDir is used when UPLOAD_DIR is not set.
const DefaultUploadDir = "./uploads/sales"

// Store is the blob-store contract consumed by the ingestion pipeline.
// The pipeline is agnostic to whether files live on local disk or in an
// object store; the implementation is selected by configuration.
type Store interface {
	Put(ctx context.Context, sessionID, filename string, content []byte) (string, error)
	Get(ctx context.Context, sessionID, filename string) ([]byte, error)
	Delete(ctx context.Context, sessionID, filename string) error
}

// Presigner is implemented by stores that support browser-direct uploads.
type Presigner interface {
	PresignPut(ctx context.Context, sessionID, filename string) (string, error)
}

// ObjectKey returns the canonical storage key for a session file.
func ObjectKey(sessionID, filename string) string {
	return fmt.Sprintf("raw-data/sales/%s/%s", sessionID, filename)
}

// LocalStore keeps uploaded files on local disk under a single directory,
// one file per session named "<sessionID>_<filename>".
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	if dir == "" {
		dir = DefaultUploadDir
	}
	return &LocalStore{dir: dir}
}

// Path returns the local filesystem path a session file is written to.
func (s *LocalStore) Path(sessionID, filename string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s", sessionID, filename))
}

func (s *LocalStore) Put(_ context.Context, sessionID, filename string, content []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}
	if err := os.WriteFile(s.Path(sessionID, filename), content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return ObjectKey(sessionID, filename), nil
}

func (s *LocalStore) Get(_ context.Context, sessionID, filename string) ([]byte, error) {
	content, err := os.ReadFile(s.Path(sessionID, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}

func (s *LocalStore) Delete(_ context.Context, sessionID, filename string) error {
	err := os.Remove(s.Path(sessionID, filename))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
