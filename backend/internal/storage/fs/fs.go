// Package fs keeps uploaded featured images on the local filesystem.
package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/postboard-dev/postboard/backend/internal/service"
	internal_errors "github.com/postboard-dev/postboard/shared/errors"
)

type Storage struct {
	rootPath string
}

var (
	_ service.AttachmentStore = (*Storage)(nil)
	_ service.UploadLister    = (*Storage)(nil)
)

func New(rootPath string) (*Storage, error) {
	// Clean so "media/../media" and "media" name the same root
	p := filepath.Clean(rootPath)

	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage directory %s: %w", p, err)
	}

	return &Storage{rootPath: p}, nil
}

// Root is the directory files are served from.
func (s *Storage) Root() string {
	return s.rootPath
}

// Save writes the data under a fresh name and returns that name.
// ext must look like ".png".
func (s *Storage) Save(fileData io.Reader, ext string) (string, error) {
	if !validExt(ext) {
		return "", internal_errors.BadRequest("Invalid file extension")
	}
	name := uuid.NewString() + strings.ToLower(ext)
	fullPath := filepath.Join(s.rootPath, name)

	dst, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, fileData); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to copy file data: %w", err)
	}

	return name, nil
}

// Read opens a stored file by the name Save returned.
func (s *Storage) Read(name string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, internal_errors.NotFound("Attachment not found")
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes a stored file. A missing file is not an error.
func (s *Storage) Delete(name string) error {
	fullPath, err := s.resolve(name)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Files lists the regular files in the root. Names starting with a dot are
// never produced by Save and are left alone.
func (s *Storage) Files() ([]service.UploadFile, error) {
	entries, err := os.ReadDir(s.rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}
	files := make([]service.UploadFile, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", e.Name(), err)
		}
		files = append(files, service.UploadFile{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return files, nil
}

// resolve only accepts bare names so callers can never leave the root.
func (s *Storage) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", internal_errors.BadRequest("Invalid file name")
	}
	return filepath.Join(s.rootPath, name), nil
}

func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 6 || ext[0] != '.' {
		return false
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
