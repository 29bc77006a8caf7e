package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Record is the on-disk token document.
type Record struct {
	RefreshToken string `json:"refresh_token"`
}

// FileStore provides atomic file-based refresh token storage with secure permissions.
type FileStore struct {
	filePath string
}

var _ TokenStore = (*FileStore)(nil)

// NewFileStore creates a FileStore for the given path. Parent directories are
// created lazily on the first [FileStore.Save].
func NewFileStore(filePath string) (*FileStore, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, fmt.Errorf("token file path cannot be empty")
	}
	return &FileStore{filePath: filePath}, nil
}

// Path returns the token file location.
func (f *FileStore) Path() string {
	return f.filePath
}

// Load reads the refresh token. A missing file yields "" and no error.
func (f *FileStore) Load(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(f.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file %s: %w", f.filePath, err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return "", fmt.Errorf("failed to decode token file %s: %w", f.filePath, err)
	}
	return strings.TrimSpace(record.RefreshToken), nil
}

// Save atomically writes the token using temp file + rename, leaving the file at 0600.
func (f *FileStore) Save(ctx context.Context, refreshToken string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if refreshToken == "" {
		return fmt.Errorf("refusing to store an empty refresh token")
	}

	data, err := json.Marshal(Record{RefreshToken: refreshToken})
	if err != nil {
		return fmt.Errorf("failed to encode token record: %w", err)
	}

	dir := filepath.Dir(f.filePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".refresh-token-*.tmp")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()
	defer func() { _ = os.Remove(tempName) }()
	defer func() { _ = tempFile.Close() }()

	if _, err := tempFile.Write(append(data, '\n')); err != nil {
		return err
	}
	if err := tempFile.Chmod(0600); err != nil {
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}

	if err := os.Rename(tempName, f.filePath); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}

// Delete removes the token file if present.
func (f *FileStore) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(f.filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
