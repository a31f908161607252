// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/xml"
	"strings"
	"time"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

// Change frequencies used by the site.
const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
	ChangeFreqYearly  ChangeFreq = "yearly"
)

// SitemapURL represents a single URL entry in the sitemap.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

// Sitemap represents the complete sitemap document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapEntry is a content page: a case study or an insight.
type SitemapEntry struct {
	Slug      string
	UpdatedAt time.Time
}

// StaticPaths are the fixed marketing pages after the homepage.
var StaticPaths = []string{"/features", "/pricing", "/case-studies", "/insights", "/about", "/contact"}

// SitemapBuilder builds sitemap XML.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
}

// NewSitemapBuilder creates a new sitemap builder.
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{
		siteURL: strings.TrimSuffix(siteURL, "/"),
		urls:    make([]SitemapURL, 0),
	}
}

// AddHomepage adds the homepage.
func (b *SitemapBuilder) AddHomepage() {
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.siteURL + "/",
		ChangeFreq: ChangeFreqWeekly,
		Priority:   "1.0",
	})
}

// AddStatic adds the fixed marketing pages.
func (b *SitemapBuilder) AddStatic(paths ...string) {
	for _, p := range paths {
		b.urls = append(b.urls, SitemapURL{
			Loc:        b.siteURL + p,
			ChangeFreq: ChangeFreqMonthly,
			Priority:   "0.8",
		})
	}
}

// AddEntries adds content pages under prefix, e.g. "/case-studies".
func (b *SitemapBuilder) AddEntries(prefix string, entries []SitemapEntry) {
	for _, e := range entries {
		url := SitemapURL{
			Loc:        b.siteURL + prefix + "/" + e.Slug,
			ChangeFreq: ChangeFreqMonthly,
			Priority:   "0.7",
		}
		if !e.UpdatedAt.IsZero() {
			url.LastMod = e.UpdatedAt.UTC().Format(time.RFC3339)
		}
		b.urls = append(b.urls, url)
	}
}

// AddLegal adds legal pages by slug.
func (b *SitemapBuilder) AddLegal(slugs ...string) {
	for _, slug := range slugs {
		b.urls = append(b.urls, SitemapURL{
			Loc:        b.siteURL + "/" + slug,
			ChangeFreq: ChangeFreqYearly,
			Priority:   "0.3",
		})
	}
}

// Build generates the sitemap XML.
func (b *SitemapBuilder) Build() ([]byte, error) {
	sitemap := Sitemap{
		XMLNS: XMLNamespace,
		URLs:  b.urls,
	}

	output := []byte(xml.Header)
	xmlBytes, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(output, xmlBytes...), nil
}

// SitemapContent is everything the site publishes.
type SitemapContent struct {
	CaseStudies []SitemapEntry
	Insights    []SitemapEntry
	LegalSlugs  []string
}

// GenerateSitemap builds the full sitemap for a site.
func GenerateSitemap(siteURL string, c SitemapContent) ([]byte, error) {
	builder := NewSitemapBuilder(siteURL)
	builder.AddHomepage()
	builder.AddStatic(StaticPaths...)
	builder.AddEntries("/case-studies", c.CaseStudies)
	builder.AddEntries("/insights", c.Insights)
	builder.AddLegal(c.LegalSlugs...)
	return builder.Build()
}
