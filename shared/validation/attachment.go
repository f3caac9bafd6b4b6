package validation

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

// PendingImage is an uploaded image that passed validation and has not been stored yet.
type PendingImage struct {
	Filename  string
	SizeBytes int64
	MimeType  string
	Width     int
	Height    int
	Data      multipart.File
}

// Ext returns the canonical file extension for the image's mime type.
func (p *PendingImage) Ext() string {
	if exts, err := mime.ExtensionsByType(p.MimeType); err == nil && len(exts) > 0 {
		return exts[len(exts)-1]
	}
	return filepath.Ext(p.Filename)
}

// ValidateImage checks an uploaded file against the allowed mime types and size,
// and makes sure it actually decodes as an image. The caller closes Data.
func ValidateImage(fileHeader *multipart.FileHeader, allowedMimes []string, maxSize int64) (*PendingImage, error) {
	if fileHeader.Size > maxSize {
		return nil, fmt.Errorf("%w: %s is %.1f MB", ErrPayloadTooLarge, fileHeader.Filename, SizeMB(fileHeader.Size))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}

	mimeType, err := DetectMimeType(fileHeader, file)
	if err != nil {
		file.Close()
		return nil, err
	}

	if !contains(allowedMimes, mimeType) {
		file.Close()
		return nil, fmt.Errorf("%w: %s (file: %s)", ErrInvalidMimeType, mimeType, fileHeader.Filename)
	}

	width, height, err := ExtractImageDimensions(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: %s is not a decodable image", ErrInvalidMimeType, fileHeader.Filename)
	}

	return &PendingImage{
		Filename:  fileHeader.Filename,
		SizeBytes: fileHeader.Size,
		MimeType:  mimeType,
		Width:     width,
		Height:    height,
		Data:      file,
	}, nil
}

// DetectMimeType sniffs the first bytes of the file and falls back to the
// declared Content-Type and then the extension when sniffing is inconclusive.
func DetectMimeType(fileHeader *multipart.FileHeader, file multipart.File) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	mimeType := http.DetectContentType(head[:n])
	if mimeType == "application/octet-stream" {
		mimeType = fileHeader.Header.Get("Content-Type")
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mime.TypeByExtension(filepath.Ext(fileHeader.Filename))
	}
	// drop parameters like "; charset=utf-8"
	mimeType, _, _ = strings.Cut(mimeType, ";")
	mimeType = strings.TrimSpace(mimeType)

	if mimeType == "" {
		return "", fmt.Errorf("%w: could not detect MIME type for file %s", ErrInvalidMimeType, fileHeader.Filename)
	}
	return mimeType, nil
}

// ExtractImageDimensions decodes the image header and rewinds the file.
func ExtractImageDimensions(file multipart.File) (int, int, error) {
	cfg, _, err := image.DecodeConfig(file)
	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil && err == nil {
		err = seekErr
	}
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
