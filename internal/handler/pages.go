// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides HTTP handlers for the site.
package handler

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/involv/sitekit/internal/render"
	"github.com/involv/sitekit/internal/seo"
	"github.com/involv/sitekit/internal/site"
)

// Page template names.
const (
	tmplHome        = "home"
	tmplFeatures    = "features"
	tmplPricing     = "pricing"
	tmplAbout       = "about"
	tmplContact     = "contact"
	tmplCaseStudies = "case_studies"
	tmplCaseStudy   = "case_study"
	tmplInsights    = "insights"
	tmplInsight     = "insight"
	tmplLegal       = "legal"
	tmplNotFound    = "not_found"
)

// Pages renders full HTML pages with site meta. It is shared by every
// handler that produces a page.
type Pages struct {
	renderer *render.Renderer
	profile  *site.Profile
	seo      *seo.SiteConfig
	logger   *slog.Logger
}

// PagesConfig wires a Pages.
type PagesConfig struct {
	Renderer *render.Renderer
	Profile  *site.Profile
	// SEO carries the canonical origin and indexing policy.
	SEO    *seo.SiteConfig
	Logger *slog.Logger
}

// NewPages creates a page renderer.
func NewPages(cfg PagesConfig) *Pages {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pages{
		renderer: cfg.Renderer,
		profile:  cfg.Profile,
		seo:      cfg.SEO,
		logger:   logger.With("category", "http"),
	}
}

// pageView is one render: the template, its meta source and page data.
type pageView struct {
	status     int
	template   string
	page       *seo.PageData
	schema     template.JS
	refresh    int
	refreshURL string
	data       any
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, v pageView) {
	if v.status == 0 {
		v.status = http.StatusOK
	}
	if v.page != nil && v.page.Path == "" {
		v.page.Path = r.URL.Path
	}

	err := p.renderer.Render(w, r, v.status, v.template, render.TemplateData{
		Meta:       seo.BuildMeta(v.page, p.seo),
		Schema:     v.schema,
		Refresh:    v.refresh,
		RefreshURL: v.refreshURL,
		Data:       v.data,
	})
	if err != nil {
		p.logger.Error("failed to render template", "template", v.template, "path", r.URL.Path, "error", err)
		http.Error(w, "Template rendering error", http.StatusInternalServerError)
	}
}

// NotFound renders the 404 page.
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, pageView{
		status:   http.StatusNotFound,
		template: tmplNotFound,
		page: &seo.PageData{
			Title:   "Page Not Found",
			Path:    r.URL.Path,
			NoIndex: true,
		},
	})
}
