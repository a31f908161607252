// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content holds the read-only content model (insights posts and
// case studies), the Source boundary to the headless store, and the
// caching Resolver the handlers read through.
package content

import (
	"math"
	"slices"
	"strings"
	"time"
)

// Kind distinguishes the two record variants.
type Kind string

const (
	KindPost      Kind = "post"
	KindCaseStudy Kind = "caseStudy"
)

// Block types understood by the renderer. Any other value is carried
// through unchanged and renders nothing.
const (
	BlockNormal     = "normal"
	BlockH1         = "h1"
	BlockH2         = "h2"
	BlockH3         = "h3"
	BlockQuote      = "blockquote"
	BlockBulletItem = "bulleted-list-item"
	BlockNumberItem = "numbered-list-item"
	BlockImage      = "image"
)

// Mark types understood by the renderer.
const (
	MarkStrong = "strong"
	MarkEm     = "em"
	MarkLink   = "link"
)

// Category is a reference to a taxonomy entry.
type Category struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Image is a resolved image asset.
type Image struct {
	URL     string `json:"url"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// Author of an insights post.
type Author struct {
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Image *Image `json:"image,omitempty"`
}

// Mark is an inline annotation on a span.
type Mark struct {
	Type string `json:"type"`
	Href string `json:"href,omitempty"`
}

// Span is a run of text sharing the same marks.
type Span struct {
	Text  string `json:"text"`
	Marks []Mark `json:"marks,omitempty"`
}

// Block is one rich-text body element.
type Block struct {
	Type  string `json:"type"`
	Spans []Span `json:"spans,omitempty"`
	Image *Image `json:"image,omitempty"`
}

// PlainText concatenates the text of every span.
func (b Block) PlainText() string {
	var sb strings.Builder
	for _, s := range b.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Record is a post or case study as served to a site.
type Record struct {
	ID          string     `json:"id"`
	Kind        Kind       `json:"kind"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Body        []Block    `json:"body,omitempty"`
	MainImage   *Image     `json:"main_image,omitempty"`
	Categories  []Category `json:"categories,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Sites       []string   `json:"sites"`
	PublishedAt time.Time  `json:"published_at"`

	// Case studies
	Industry      string   `json:"industry,omitempty"`
	Client        string   `json:"client,omitempty"`
	Challenge     string   `json:"challenge,omitempty"`
	Solution      string   `json:"solution,omitempty"`
	Results       string   `json:"results,omitempty"`
	Jurisdictions []string `json:"jurisdictions,omitempty"`

	// Posts
	Author               *Author `json:"author,omitempty"`
	EstimatedReadingTime int     `json:"estimated_reading_time,omitempty"`
}

// VisibleOn reports whether the record is published for the given site.
func (r *Record) VisibleOn(site string) bool {
	return r != nil && slices.Contains(r.Sites, site)
}

// HasCategory reports whether any category has the given title.
func (r *Record) HasCategory(title string) bool {
	return slices.ContainsFunc(r.Categories, func(c Category) bool { return c.Title == title })
}

// WordsPerMinute is the reading speed used for estimated reading times.
const WordsPerMinute = 200

// WordCount counts whitespace-separated words across all text blocks.
func WordCount(blocks []Block) int {
	n := 0
	for _, b := range blocks {
		n += len(strings.Fields(b.PlainText()))
	}
	return n
}

// ReadingTime returns the record's reading time in minutes: the authored
// estimate when set, otherwise the word count at WordsPerMinute, never below 1.
func ReadingTime(r *Record) int {
	if r.EstimatedReadingTime > 0 {
		return r.EstimatedReadingTime
	}
	minutes := int(math.Ceil(float64(WordCount(r.Body)) / WordsPerMinute))
	return max(minutes, 1)
}

// VisibleOnly filters records down to those published for site, keeping order.
func VisibleOnly(records []Record, site string) []Record {
	out := make([]Record, 0, len(records))
	for i := range records {
		if records[i].VisibleOn(site) {
			out = append(out, records[i])
		}
	}
	return out
}
