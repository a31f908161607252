// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/involv/sitekit/internal/util"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func writeJPEG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer func() { _ = f.Close() }()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer func() { _ = f.Close() }()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func imageSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestProcessor_ResizeJPEG(t *testing.T) {
	dir := t.TempDir()
	writeJPEG(t, filepath.Join(dir, "case-studies", "venue.jpg"), createTestImage(1000, 800))

	p := NewProcessor(dir)
	r, err := p.Resize("case-studies/venue.jpg", 400, 225, 75)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}

	if r.MimeType != "image/jpeg" {
		t.Errorf("MimeType = %q, want image/jpeg", r.MimeType)
	}
	if w, h := imageSize(t, r.Path); w != 400 || h != 225 {
		t.Errorf("size = %dx%d, want 400x225", w, h)
	}
	want := filepath.Join(dir, ".cache", "400x225", "q75", "case-studies", "venue.jpg")
	if r.Path != want {
		t.Errorf("Path = %q, want %q", r.Path, want)
	}
}

func TestProcessor_ResizeUsesCache(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.jpg")
	writeJPEG(t, src, createTestImage(300, 300))

	p := NewProcessor(dir)
	first, err := p.Resize("a.jpg", 100, 100, 80)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}

	// Removing the source proves the second call is served from the cache.
	if err := os.Remove(src); err != nil {
		t.Fatalf("remove: %v", err)
	}
	second, err := p.Resize("a.jpg", 100, 100, 80)
	if err != nil {
		t.Fatalf("cached Resize: %v", err)
	}
	if first.Path != second.Path {
		t.Errorf("paths differ: %q vs %q", first.Path, second.Path)
	}
}

func TestProcessor_ResizePNGKeepsFormat(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "logo.png"), createTestImage(200, 100))

	r, err := NewProcessor(dir).Resize("logo.png", 50, 50, 80)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if r.MimeType != "image/png" {
		t.Errorf("MimeType = %q, want image/png", r.MimeType)
	}
	if filepath.Ext(r.Path) != ".png" {
		t.Errorf("Path = %q, want .png", r.Path)
	}
}

func TestProcessor_ResizeConcurrent(t *testing.T) {
	dir := t.TempDir()
	writeJPEG(t, filepath.Join(dir, "busy.jpg"), createTestImage(500, 500))
	p := NewProcessor(dir)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Resize("busy.jpg", 120, 80, 70); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Resize: %v", err)
	}
}

func TestProcessor_ResizeErrors(t *testing.T) {
	dir := t.TempDir()
	writeJPEG(t, filepath.Join(dir, "ok.jpg"), createTestImage(50, 50))
	if err := os.WriteFile(filepath.Join(dir, "fake.jpg"), []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "doc.pdf"), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	p := NewProcessor(dir)
	tests := []struct {
		name    string
		rel     string
		w, h    int
		wantErr error
	}{
		{"missing", "nope.jpg", 10, 10, ErrNotFound},
		{"traversal", "../../etc/passwd.jpg", 10, 10, util.ErrPathTraversal},
		{"unsupported extension", "doc.pdf", 10, 10, ErrUnsupported},
		{"not an image", "fake.jpg", 10, 10, ErrUnsupported},
		{"cache dir", ".cache/10x10/q80/ok.jpg", 10, 10, ErrNotFound},
		{"zero size", "ok.jpg", 0, 10, nil},
		{"too large", "ok.jpg", MaxDimension + 1, 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Resize(tt.rel, tt.w, tt.h, 80)
			if err == nil {
				t.Fatal("Resize should fail")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyOrientation(t *testing.T) {
	img := createTestImage(40, 20)

	tests := []struct {
		orientation int
		wantW       int
		wantH       int
	}{
		{1, 40, 20},
		{2, 40, 20},
		{3, 40, 20},
		{4, 40, 20},
		{5, 20, 40},
		{6, 20, 40},
		{7, 20, 40},
		{8, 20, 40},
		{99, 40, 20},
	}

	for _, tt := range tests {
		b := applyOrientation(img, tt.orientation).Bounds()
		if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
			t.Errorf("orientation %d: %dx%d, want %dx%d", tt.orientation, b.Dx(), b.Dy(), tt.wantW, tt.wantH)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpeg"},
		{"png", []byte("\x89PNG\r\n\x1a\n"), "png"},
		{"gif", []byte("GIF89a"), "gif"},
		{"tiff rejected", []byte("II*\x00"), ""},
		{"text", []byte("hello"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFormat(tt.data); got != tt.want {
				t.Errorf("detectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}
