// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds meta tags, JSON-LD structured data, sitemap.xml and
// robots.txt for the public site.
package seo

import (
	"encoding/json"
	"html/template"
	"strings"
	"time"
)

// Meta holds all SEO meta tag data for a page.
type Meta struct {
	Title         string // <title>
	Description   string
	Keywords      string
	Canonical     string
	OGTitle       string
	OGDescription string
	OGImage       string // absolute
	OGType        string // website or article
	OGSiteName    string
	OGURL         string
	Robots        string // index,follow / noindex,nofollow
	TwitterCard   string
}

// PageData describes one rendered page.
type PageData struct {
	Title       string
	Description string
	// Path is the request path, e.g. "/case-studies/riverside-club".
	Path        string
	Keywords    []string
	Image       string
	Article     bool
	NoIndex     bool
	PublishedAt time.Time
	AuthorName  string
}

// SiteConfig contains site-wide settings.
type SiteConfig struct {
	SiteName        string
	SiteURL         string
	SiteDescription string
	DefaultOGImage  string
	Logo            string
	// NoIndex marks every page noindex, used while the access gate is on.
	NoIndex bool
}

// MaxDescriptionLength bounds generated descriptions.
const MaxDescriptionLength = 160

// BuildMeta creates the meta tags for page with fallbacks to site defaults.
// A nil page or the root path yields the homepage meta.
func BuildMeta(page *PageData, site *SiteConfig) *Meta {
	meta := &Meta{
		OGType:      "website",
		TwitterCard: "summary_large_image",
		OGSiteName:  site.SiteName,
	}

	if page == nil || page.Path == "" || page.Path == "/" {
		meta.Title = site.SiteName
		meta.Description = site.SiteDescription
		meta.Canonical = strings.TrimSuffix(site.SiteURL, "/")
		if page != nil && page.Title != "" {
			meta.Title = page.Title + " | " + site.SiteName
		}
	} else {
		meta.Title = site.SiteName
		if page.Title != "" {
			meta.Title = page.Title + " | " + site.SiteName
		}
		meta.Description = site.SiteDescription
		if page.Description != "" {
			meta.Description = truncateText(page.Description, MaxDescriptionLength)
		}
		meta.Keywords = strings.Join(page.Keywords, ", ")
		meta.Canonical = makeAbsoluteURL(page.Path, site.SiteURL)
		if page.Article {
			meta.OGType = "article"
		}
	}

	meta.OGTitle = meta.Title
	meta.OGDescription = meta.Description
	meta.OGURL = meta.Canonical

	switch {
	case page != nil && page.Image != "":
		meta.OGImage = makeAbsoluteURL(page.Image, site.SiteURL)
	case site.DefaultOGImage != "":
		meta.OGImage = makeAbsoluteURL(site.DefaultOGImage, site.SiteURL)
	}

	noIndex := site.NoIndex || (page != nil && page.NoIndex)
	meta.Robots = buildRobotsDirective(noIndex, noIndex)

	return meta
}

func buildRobotsDirective(noIndex, noFollow bool) string {
	var parts []string

	if noIndex {
		parts = append(parts, "noindex")
	} else {
		parts = append(parts, "index")
	}

	if noFollow {
		parts = append(parts, "nofollow")
	} else {
		parts = append(parts, "follow")
	}

	return strings.Join(parts, ",")
}

// ArticleSchema represents JSON-LD Article structured data.
type ArticleSchema struct {
	Context          string        `json:"@context"`
	Type             string        `json:"@type"`
	Headline         string        `json:"headline"`
	Description      string        `json:"description,omitempty"`
	Image            string        `json:"image,omitempty"`
	DatePublished    string        `json:"datePublished,omitempty"`
	Author           *PersonSchema `json:"author,omitempty"`
	Publisher        *OrgSchema    `json:"publisher,omitempty"`
	MainEntityOfPage string        `json:"mainEntityOfPage,omitempty"`
}

// PersonSchema represents JSON-LD Person structured data.
type PersonSchema struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// OrgSchema represents JSON-LD Organization structured data.
type OrgSchema struct {
	Context string       `json:"@context,omitempty"`
	Type    string       `json:"@type"`
	Name    string       `json:"name"`
	URL     string       `json:"url,omitempty"`
	Logo    *ImageSchema `json:"logo,omitempty"`
}

// ImageSchema represents JSON-LD ImageObject structured data.
type ImageSchema struct {
	Type string `json:"@type"`
	URL  string `json:"url"`
}

// WebSiteSchema represents JSON-LD WebSite structured data for the homepage.
type WebSiteSchema struct {
	Context     string     `json:"@context"`
	Type        string     `json:"@type"`
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	Description string     `json:"description,omitempty"`
	Publisher   *OrgSchema `json:"publisher,omitempty"`
}

// BuildArticleSchema creates JSON-LD Article data for a post or case study.
func BuildArticleSchema(page *PageData, site *SiteConfig) template.JS {
	if page == nil {
		return ""
	}

	article := ArticleSchema{
		Context:          "https://schema.org",
		Type:             "Article",
		Headline:         page.Title,
		Description:      truncateText(page.Description, MaxDescriptionLength),
		MainEntityOfPage: makeAbsoluteURL(page.Path, site.SiteURL),
		Publisher:        organization(site),
	}
	if page.Image != "" {
		article.Image = makeAbsoluteURL(page.Image, site.SiteURL)
	}
	if !page.PublishedAt.IsZero() {
		article.DatePublished = page.PublishedAt.UTC().Format(time.RFC3339)
	}
	if page.AuthorName != "" {
		article.Author = &PersonSchema{Type: "Person", Name: page.AuthorName}
	}

	return marshalJSONLD(article)
}

// BuildWebSiteSchema creates JSON-LD WebSite data for the homepage.
func BuildWebSiteSchema(site *SiteConfig) template.JS {
	return marshalJSONLD(WebSiteSchema{
		Context:     "https://schema.org",
		Type:        "WebSite",
		Name:        site.SiteName,
		URL:         strings.TrimSuffix(site.SiteURL, "/"),
		Description: site.SiteDescription,
		Publisher:   organization(site),
	})
}

func organization(site *SiteConfig) *OrgSchema {
	org := &OrgSchema{
		Type: "Organization",
		Name: site.SiteName,
		URL:  strings.TrimSuffix(site.SiteURL, "/"),
	}
	if site.Logo != "" {
		org.Logo = &ImageSchema{Type: "ImageObject", URL: makeAbsoluteURL(site.Logo, site.SiteURL)}
	}
	return org
}

// marshalJSONLD marshals structured data for a <script type="application/ld+json"> tag.
// encoding/json escapes <, > and & so the output cannot close the script element.
func marshalJSONLD(v any) template.JS {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return template.JS(data) //nolint:gosec // json.Marshal escapes HTML-significant characters
}

// truncateText truncates text to maxLen bytes at a word boundary.
func truncateText(text string, maxLen int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= maxLen {
		return text
	}

	truncated := text[:maxLen]
	lastSpace := strings.LastIndex(truncated, " ")
	if lastSpace > maxLen/2 {
		truncated = truncated[:lastSpace]
	}

	return strings.TrimSpace(truncated) + "..."
}

// makeAbsoluteURL ensures a URL is absolute by prepending the site URL.
func makeAbsoluteURL(url, siteURL string) string {
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	siteURL = strings.TrimSuffix(siteURL, "/")
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return siteURL + url
}
