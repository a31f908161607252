// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging builds resized image URLs and produces the renditions
// served for locally hosted assets.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
	"golang.org/x/sync/singleflight"

	"github.com/involv/sitekit/internal/util"
)

const (
	// MaxDimension bounds requested widths and heights.
	MaxDimension = 2400
	// DefaultQuality applies when a URL omits quality.
	DefaultQuality = 80
	// MaxSourceBytes bounds the size of a source image read into memory.
	MaxSourceBytes = 25 << 20

	cacheDirName = ".cache"
)

// Errors returned by Resize.
var (
	ErrUnsupported = errors.New("unsupported image format")
	ErrNotFound    = errors.New("image not found")
)

// Rendition is a resized image on disk.
type Rendition struct {
	Path     string
	MimeType string
}

// Processor resizes images below uploadDir and caches the results under
// uploadDir/.cache.
type Processor struct {
	uploadDir string
	cacheDir  string
	group     singleflight.Group
}

// NewProcessor creates a processor rooted at uploadDir.
func NewProcessor(uploadDir string) *Processor {
	return &Processor{
		uploadDir: uploadDir,
		cacheDir:  filepath.Join(uploadDir, cacheDirName),
	}
}

// Resize returns a w×h center-cropped rendition of the upload at rel,
// producing and caching it on first use. Concurrent requests for the same
// rendition share one encode.
func (p *Processor) Resize(rel string, w, h, q int) (*Rendition, error) {
	if w < 1 || h < 1 || w > MaxDimension || h > MaxDimension {
		return nil, fmt.Errorf("size %dx%d out of range", w, h)
	}
	if q < 1 || q > 100 {
		q = DefaultQuality
	}
	if strings.HasPrefix(strings.TrimPrefix(filepath.ToSlash(rel), "/"), cacheDirName+"/") {
		return nil, ErrNotFound
	}

	src, err := util.SafeJoinPath(p.uploadDir, rel)
	if err != nil {
		return nil, err
	}

	format := detectFormatFromFilename(src)
	if format == "" {
		return nil, ErrUnsupported
	}
	outFormat := outputFormat(format)

	cached, err := util.SafeJoinPath(p.cacheDir, filepath.Join(fmt.Sprintf("%dx%d", w, h), fmt.Sprintf("q%d", q), replaceExt(rel, outFormat)))
	if err != nil {
		return nil, err
	}

	rendition := &Rendition{Path: cached, MimeType: formatToMimeType(outFormat)}
	if _, err := os.Stat(cached); err == nil {
		return rendition, nil
	}

	_, err, _ = p.group.Do(cached, func() (any, error) {
		return nil, p.render(src, cached, w, h, q, outFormat)
	})
	if err != nil {
		return nil, err
	}
	return rendition, nil
}

func (p *Processor) render(src, dst string, w, h, q int, outFormat string) error {
	data, err := readSource(src)
	if err != nil {
		return err
	}

	if detectFormat(data) == "" {
		return ErrUnsupported
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}
	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	resized := imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)

	encoded, err := encodeImage(resized, outFormat, q)
	if err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}

	return writeFileAtomic(dst, encoded)
}

func readSource(path string) ([]byte, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, MaxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > MaxSourceBytes {
		return nil, fmt.Errorf("image larger than %d bytes", MaxSourceBytes)
	}
	return data, nil
}

// writeFileAtomic writes data to a temp file beside path and renames it, so
// readers never see a partial rendition.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".rendition-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write rendition: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write rendition: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save rendition: %w", err)
	}
	return nil
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation undoes the camera rotation recorded in EXIF orientation
// values 2 through 8.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// outputFormat picks the encoding for a source format. There is no pure Go
// WebP encoder, so WebP sources become JPEG; GIF renditions are single-frame
// and PNG keeps transparency.
func outputFormat(format string) string {
	switch format {
	case "png", "gif":
		return "png"
	default:
		return "jpeg"
	}
}

func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// TIFF is rejected outright (CVE-2023-36308 in disintegration/imaging).
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

// detectFormatFromFilename maps a file extension to a format, or "".
func detectFormatFromFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".gif":
		return "gif"
	case ".webp":
		return "webp"
	default:
		return ""
	}
}

func formatToMimeType(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

func replaceExt(path, format string) string {
	ext := ".jpg"
	if format == "png" {
		ext = ".png"
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
