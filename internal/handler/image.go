// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/involv/sitekit/internal/imaging"
	"github.com/involv/sitekit/internal/util"
)

// Resizer produces resized renditions of uploaded images.
type Resizer interface {
	Resize(rel string, w, h, q int) (*imaging.Rendition, error)
}

// ImageHandler serves /img/{size}/{quality}/* renditions of local uploads.
type ImageHandler struct {
	resizer Resizer
	logger  *slog.Logger
}

// NewImageHandler creates a new image handler.
func NewImageHandler(resizer Resizer, logger *slog.Logger) *ImageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageHandler{resizer: resizer, logger: logger.With("category", "http")}
}

// Serve handles GET /img/{size}/{quality}/*.
func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	width, height, err := imaging.ParseSize(chi.URLParam(r, "size"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	quality, err := imaging.ParseQuality(chi.URLParam(r, "quality"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	rel := chi.URLParam(r, "*")
	if rel == "" {
		http.NotFound(w, r)
		return
	}

	rendition, err := h.resizer.Resize(rel, width, height, quality)
	switch {
	case err == nil:
	case errors.Is(err, imaging.ErrNotFound),
		errors.Is(err, imaging.ErrUnsupported),
		errors.Is(err, util.ErrPathTraversal),
		errors.Is(err, fs.ErrNotExist):
		http.NotFound(w, r)
		return
	default:
		h.logger.Error("image resize failed", "path", rel, "size", chi.URLParam(r, "size"), "error", err)
		http.Error(w, "Image processing error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", rendition.MimeType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeFile(w, r, rendition.Path)
}
