package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage abstracts where uploaded property images live. The local-disk
// implementation below serves development and single-node deployments;
// an object-store client can replace it without touching the handlers.
type Storage interface {
	// Save stores the file and returns its public URL path.
	Save(file multipart.File, originalName string) (string, error)
	// Remove deletes a previously saved file by its URL path.
	Remove(urlPath string) error
}

// Local stores uploads on the local filesystem under dir, serving them
// from the /uploads URL prefix.
type Local struct {
	dir string
}

// NewLocal creates the upload directory if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Local{dir: dir}, nil
}

// Save implements Storage. Filenames are random to avoid collisions and
// path traversal via the client-supplied name.
func (l *Local) Save(file multipart.File, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(l.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return "/uploads/" + name, nil
}

// Remove implements Storage
func (l *Local) Remove(urlPath string) error {
	name := filepath.Base(urlPath)
	if name == "." || name == "/" || name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(l.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
