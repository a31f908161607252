// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// UploadsPrefix is the URL prefix of locally hosted assets.
const UploadsPrefix = "/uploads/"

// ResizePrefix is the URL prefix served by the local resize handler.
const ResizePrefix = "/img/"

// Standard renditions used by the page templates.
var (
	CardSize   = Size{Width: 400, Height: 225, Quality: 75}
	DetailSize = Size{Width: 800, Height: 450, Quality: 80}
	OGSize     = Size{Width: 1200, Height: 630, Quality: 80}
)

// Size is a target rendition.
type Size struct {
	Width   int
	Height  int
	Quality int
}

// URL is BuildURL for s.
func (s Size) URL(raw string) string {
	return BuildURL(raw, s.Width, s.Height, s.Quality)
}

// BuildURL returns a URL for raw resized to w×h at quality q.
//
// Absolute http(s) URLs are assumed to point at the content store's image
// CDN and get w, h, q, fit=crop and auto=format query parameters. Local
// /uploads/ paths are rewritten to the /img/{w}x{h}/q{q}/ resize route.
// Anything else is returned unchanged, and an empty input yields "".
func BuildURL(raw string, w, h, q int) string {
	if raw == "" {
		return ""
	}

	if strings.HasPrefix(raw, UploadsPrefix) {
		if w <= 0 || h <= 0 {
			return raw
		}
		if q <= 0 {
			q = DefaultQuality
		}
		return fmt.Sprintf("%s%dx%d/q%d/%s", ResizePrefix, w, h, q, strings.TrimPrefix(raw, UploadsPrefix))
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return raw
	}

	query := u.Query()
	if w > 0 {
		query.Set("w", strconv.Itoa(w))
	}
	if h > 0 {
		query.Set("h", strconv.Itoa(h))
	}
	if q > 0 {
		query.Set("q", strconv.Itoa(q))
	}
	query.Set("fit", "crop")
	query.Set("auto", "format")
	u.RawQuery = query.Encode()
	return u.String()
}

// ParseSize parses a "{w}x{h}" route segment.
func ParseSize(s string) (w, h int, err error) {
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q", s)
	}
	w, err = strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width in %q", s)
	}
	h, err = strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height in %q", s)
	}
	if w < 1 || h < 1 || w > MaxDimension || h > MaxDimension {
		return 0, 0, fmt.Errorf("size %q out of range", s)
	}
	return w, h, nil
}

// ParseQuality parses a "q{n}" route segment.
func ParseQuality(s string) (int, error) {
	if !strings.HasPrefix(s, "q") {
		return 0, fmt.Errorf("invalid quality %q", s)
	}
	q, err := strconv.Atoi(s[1:])
	if err != nil || q < 1 || q > 100 {
		return 0, fmt.Errorf("invalid quality %q", s)
	}
	return q, nil
}
