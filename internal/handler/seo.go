// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/involv/sitekit/internal/content"
	"github.com/involv/sitekit/internal/seo"
	"github.com/involv/sitekit/internal/site"
)

// SEOHandler serves sitemap.xml and robots.txt.
type SEOHandler struct {
	content     ContentReader
	profile     *site.Profile
	siteURL     string
	disallowAll bool
	logger      *slog.Logger
}

// SEOConfig wires an SEOHandler.
type SEOConfig struct {
	Content ContentReader
	Profile *site.Profile
	SiteURL string
	// DisallowAll blocks every crawler, used while the site sits behind the
	// access gate.
	DisallowAll bool
	Logger      *slog.Logger
}

// NewSEOHandler creates a new SEO handler.
func NewSEOHandler(cfg SEOConfig) *SEOHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	siteURL := cfg.SiteURL
	if siteURL == "" {
		siteURL = cfg.Profile.BaseURL()
	}
	return &SEOHandler{
		content:     cfg.Content,
		profile:     cfg.Profile,
		siteURL:     siteURL,
		disallowAll: cfg.DisallowAll,
		logger:      logger.With("category", "http"),
	}
}

// Sitemap handles GET /sitemap.xml.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	legal := make([]string, 0, len(h.profile.Legal))
	for _, p := range h.profile.Legal {
		legal = append(legal, p.Slug)
	}

	data, err := seo.GenerateSitemap(h.siteURL, seo.SitemapContent{
		CaseStudies: sitemapEntries(h.content.CaseStudies(ctx)),
		Insights:    sitemapEntries(h.content.Posts(ctx, 0)),
		LegalSlugs:  legal,
	})
	if err != nil {
		h.logger.Error("failed to generate sitemap", "error", err)
		http.Error(w, "Error generating sitemap", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(data)
}

// Robots handles GET /robots.txt.
func (h *SEOHandler) Robots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(seo.GenerateRobots(h.siteURL, h.disallowAll)))
}

func sitemapEntries(records []content.Record) []seo.SitemapEntry {
	entries := make([]seo.SitemapEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, seo.SitemapEntry{Slug: rec.Slug, UpdatedAt: rec.PublishedAt})
	}
	return entries
}
