package nimbus

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage persists generated image bytes. Implementations can wrap existing
// storage clients (filesystem, GCS, S3) with this interface.
type Storage interface {
	// SaveFile saves image data and returns a URL or path where the
	// image can be accessed. The path should include the full object
	// path (e.g. "images/2026/01/output.png").
	SaveFile(ctx context.Context, data []byte, path string, contentType string) (string, error)
}

// StorageResult contains information about a saved image.
type StorageResult struct {
	URL  string
	Path string
	Size int
}

// Storage errors.
var (
	ErrStorageNotConfigured = errors.New("storage not configured")
	ErrNotDataURI           = errors.New("image reference is not a data URI")
)

// SaveImage decodes a data-URI image reference and saves its bytes to
// storage under basePath with an extension derived from the MIME type.
func SaveImage(ctx context.Context, storage Storage, ref ImageRef, basePath string) (StorageResult, error) {
	if storage == nil {
		return StorageResult{}, ErrStorageNotConfigured
	}

	data, mimeType, err := ref.Decode()
	if err != nil {
		return StorageResult{}, err
	}

	path := basePath + "." + extensionFromMIME(mimeType)
	url, err := storage.SaveFile(ctx, data, path, mimeType)
	if err != nil {
		return StorageResult{}, err
	}

	return StorageResult{
		URL:  url,
		Path: path,
		Size: len(data),
	}, nil
}

// Decode extracts the raw bytes and MIME type from a data-URI reference.
func (r ImageRef) Decode() ([]byte, string, error) {
	s := string(r)
	if !strings.HasPrefix(s, "data:") {
		return nil, "", ErrNotDataURI
	}
	header, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return nil, "", ErrNotDataURI
	}
	mimeType, _, _ := strings.Cut(header, ";")
	if !strings.HasSuffix(header, ";base64") {
		return nil, "", fmt.Errorf("%w: unsupported encoding", ErrNotDataURI)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decoding data URI: %w", err)
	}
	return data, mimeType, nil
}

// DirStorage saves images under a root directory on the local filesystem.
type DirStorage struct {
	Root string
}

var _ Storage = DirStorage{}

// SaveFile writes data under the root directory, creating intermediate
// directories as needed, and returns the full file path.
func (d DirStorage) SaveFile(_ context.Context, data []byte, path string, _ string) (string, error) {
	full := filepath.Join(d.Root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("creating storage directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("writing image file: %w", err)
	}
	return full, nil
}

// extensionFromMIME returns a file extension for common image MIME types.
func extensionFromMIME(mime string) string {
	switch mime {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}
