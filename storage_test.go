package nimbus

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
)

func TestImageRef_DataURIRoundTrip(t *testing.T) {
	data := []byte("fake image bytes")
	ref := DataURI(data, "image/png")

	got, mimeType, err := ref.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("decoded bytes differ")
	}
	if mimeType != "image/png" {
		t.Errorf("mime type = %q", mimeType)
	}
}

func TestImageRef_DecodeRejectsNonDataURI(t *testing.T) {
	if _, _, err := ImageRef("https://example.com/a.png").Decode(); !errors.Is(err, ErrNotDataURI) {
		t.Errorf("expected ErrNotDataURI, got %v", err)
	}
	if _, _, err := ImageRef("data:image/png,rawdata").Decode(); !errors.Is(err, ErrNotDataURI) {
		t.Errorf("expected ErrNotDataURI for non-base64, got %v", err)
	}
}

func TestSaveImage_WritesFile(t *testing.T) {
	root := t.TempDir()
	ref := DataURI([]byte("jpeg payload"), "image/jpeg")

	result, err := SaveImage(context.Background(), DirStorage{Root: root}, ref, "composer/output")
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if result.Path != "composer/output.jpg" {
		t.Errorf("path = %q", result.Path)
	}
	if result.Size != len("jpeg payload") {
		t.Errorf("size = %d", result.Size)
	}

	saved, err := os.ReadFile(result.URL)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if string(saved) != "jpeg payload" {
		t.Error("saved bytes differ")
	}
}

func TestSaveImage_NoStorage(t *testing.T) {
	ref := DataURI([]byte("x"), "image/png")
	if _, err := SaveImage(context.Background(), nil, ref, "out"); !errors.Is(err, ErrStorageNotConfigured) {
		t.Errorf("expected ErrStorageNotConfigured, got %v", err)
	}
}
