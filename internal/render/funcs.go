// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/involv/sitekit/internal/content"
	"github.com/involv/sitekit/internal/imaging"
	"github.com/involv/sitekit/internal/richtext"
	"github.com/involv/sitekit/internal/site"
)

// DateLayout is the long Australian date format, e.g. "2 January 2006".
const DateLayout = "2 January 2006"

// siteLocation renders dates in Australian eastern time.
var siteLocation = loadLocation("Australia/Sydney")

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Funcs returns the template function map.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"formatDate": FormatDate,
		"isoDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format(time.RFC3339)
		},
		"cardImage":   imageFunc(imaging.CardSize),
		"detailImage": imageFunc(imaging.DetailSize),
		"ogImage":     imageFunc(imaging.OGSize),
		"richText":    RichText,
		"readingTime": func(r content.Record) int { return content.ReadingTime(&r) },
		"authorName":  func(r content.Record, fallback string) string { return AuthorName(&r, fallback) },
		"price":       site.FormatPrice,
		"planPrice": func(p site.Plan, cycle string) string {
			return site.FormatPrice(p.Price(cycle))
		},
		"period": site.Period,
		"truncate": func(s string, length int) string {
			r := []rune(s)
			if len(r) <= length {
				return s
			}
			return strings.TrimSpace(string(r[:length])) + "…"
		},
		"add": func(a, b int) int { return a + b },
		"dict": func(pairs ...any) (map[string]any, error) {
			if len(pairs)%2 != 0 {
				return nil, fmt.Errorf("dict: odd number of arguments")
			}
			m := make(map[string]any, len(pairs)/2)
			for i := 0; i < len(pairs); i += 2 {
				key, ok := pairs[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
				}
				m[key] = pairs[i+1]
			}
			return m, nil
		},
		"get": func(m map[string]string, key string) string { return m[key] },
	}
}

// FormatDate renders t in the site's long date format; zero times render empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(siteLocation).Format(DateLayout)
}

// OGImage returns the social card rendition of img, or "".
func OGImage(img *content.Image) string {
	return imageFunc(imaging.OGSize)(img)
}

func imageFunc(size imaging.Size) func(img *content.Image) string {
	return func(img *content.Image) string {
		if img == nil {
			return ""
		}
		return size.URL(img.URL)
	}
}

// RichText renders body blocks with inline images at detail size.
func RichText(blocks []content.Block) template.HTML {
	return richtext.Render(blocks, richtext.Options{ImageURL: imaging.DetailSize.URL})
}

// AuthorName returns the post author or fallback.
func AuthorName(r *content.Record, fallback string) string {
	if r != nil && r.Author != nil && r.Author.Name != "" {
		return r.Author.Name
	}
	return fallback
}
