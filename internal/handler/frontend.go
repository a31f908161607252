// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/involv/sitekit/internal/content"
	"github.com/involv/sitekit/internal/listing"
	"github.com/involv/sitekit/internal/render"
	"github.com/involv/sitekit/internal/seo"
	"github.com/involv/sitekit/internal/site"
	"github.com/involv/sitekit/internal/util"
)

// homeLatest is how many case studies and posts the homepage teases.
const homeLatest = 3

// ContentReader is the read side of the content layer used by pages.
type ContentReader interface {
	CaseStudies(ctx context.Context) []content.Record
	Posts(ctx context.Context, limit int) []content.Record
	CaseStudy(ctx context.Context, slug string) (*content.Record, error)
	Post(ctx context.Context, slug string) (*content.Record, error)
}

// FrontendHandler handles the public marketing and content pages.
type FrontendHandler struct {
	*Pages
	content ContentReader
}

// NewFrontendHandler creates a new frontend handler.
func NewFrontendHandler(pages *Pages, reader ContentReader) *FrontendHandler {
	return &FrontendHandler{Pages: pages, content: reader}
}

// HomeData is the homepage template data.
type HomeData struct {
	CaseStudies []content.Record
	Posts       []content.Record
}

// PricingData is the pricing page template data.
type PricingData struct {
	Billing string
	Yearly  bool
}

// CaseStudiesData is the case study listing template data.
type CaseStudiesData struct {
	View listing.View
}

// InsightsData is the insights listing template data.
type InsightsData struct {
	Posts []content.Record
}

// DetailData is the template data for a case study or post.
type DetailData struct {
	Record *content.Record
	Body   template.HTML
	Author string
}

// LegalData is the legal page template data.
type LegalData struct {
	Page site.LegalPage
	Body template.HTML
}

// Home handles GET /.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.render(w, r, pageView{
		template: tmplHome,
		page:     &seo.PageData{Title: h.profile.Tagline, Path: "/"},
		schema:   seo.BuildWebSiteSchema(h.seo),
		data: HomeData{
			CaseStudies: latest(h.content.CaseStudies(ctx), homeLatest),
			Posts:       latest(h.content.Posts(ctx, 0), homeLatest),
		},
	})
}

// Features handles GET /features.
func (h *FrontendHandler) Features(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pageView{
		template: tmplFeatures,
		page:     &seo.PageData{Title: "Features", Description: h.profile.Features.Hero.Lead},
	})
}

// Pricing handles GET /pricing. The billing cycle toggle is ?billing=yearly.
func (h *FrontendHandler) Pricing(w http.ResponseWriter, r *http.Request) {
	billing := site.NormalizeBilling(r.URL.Query().Get("billing"))
	h.render(w, r, pageView{
		template: tmplPricing,
		page:     &seo.PageData{Title: "Pricing", Description: h.profile.Pricing.Hero.Lead, Path: "/pricing"},
		data:     PricingData{Billing: billing, Yearly: billing == site.BillingYearly},
	})
}

// About handles GET /about.
func (h *FrontendHandler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pageView{
		template: tmplAbout,
		page:     &seo.PageData{Title: "About", Description: h.profile.About.Hero.Lead},
	})
}

// CaseStudies handles GET /case-studies with the industry, category, search
// and show query parameters.
func (h *FrontendHandler) CaseStudies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view := listing.Build(
		h.content.CaseStudies(r.Context()),
		listing.FacetsFromQuery(q),
		listing.ParseCursor(q.Get(listing.ParamShow)),
	)

	h.render(w, r, pageView{
		template: tmplCaseStudies,
		page: &seo.PageData{
			Title:       "Case Studies",
			Description: "How venues use " + h.profile.Name + " to act sooner with better evidence.",
			Path:        "/case-studies",
			// Filtered and expanded views duplicate the canonical listing.
			NoIndex: len(q) > 0,
		},
		data: CaseStudiesData{View: view},
	})
}

// CaseStudy handles GET /case-studies/{slug}.
func (h *FrontendHandler) CaseStudy(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.resolve(w, r, h.content.CaseStudy)
	if !ok {
		return
	}

	description := rec.Excerpt
	if description == "" {
		description = rec.Challenge
	}
	page := &seo.PageData{
		Title:       rec.Title,
		Description: description,
		Keywords:    rec.Tags,
		Image:       render.OGImage(rec.MainImage),
		Article:     true,
		PublishedAt: rec.PublishedAt,
	}
	h.render(w, r, pageView{
		template: tmplCaseStudy,
		page:     page,
		schema:   h.articleSchema(r, page),
		data:     DetailData{Record: rec, Body: render.RichText(rec.Body)},
	})
}

// Insights handles GET /insights.
func (h *FrontendHandler) Insights(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pageView{
		template: tmplInsights,
		page: &seo.PageData{
			Title:       "Insights",
			Description: "Research, perspectives and practical guidance from the " + h.profile.DefaultAuthor + ".",
		},
		data: InsightsData{Posts: h.content.Posts(r.Context(), 0)},
	})
}

// Insight handles GET /insights/{slug}.
func (h *FrontendHandler) Insight(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.resolve(w, r, h.content.Post)
	if !ok {
		return
	}

	author := render.AuthorName(rec, h.profile.DefaultAuthor)
	page := &seo.PageData{
		Title:       rec.Title,
		Description: rec.Excerpt,
		Keywords:    rec.Tags,
		Image:       render.OGImage(rec.MainImage),
		Article:     true,
		PublishedAt: rec.PublishedAt,
		AuthorName:  author,
	}
	h.render(w, r, pageView{
		template: tmplInsight,
		page:     page,
		schema:   h.articleSchema(r, page),
		data:     DetailData{Record: rec, Body: render.RichText(rec.Body), Author: author},
	})
}

// Legal returns the handler for the legal page with slug.
func (h *FrontendHandler) Legal(slug string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := h.profile.LegalPage(slug)
		if !ok {
			h.NotFound(w, r)
			return
		}
		body, ok := h.profile.LegalHTML(slug)
		if !ok {
			h.logger.Error("legal page has no rendered body", "slug", slug)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		h.render(w, r, pageView{
			template: tmplLegal,
			page:     &seo.PageData{Title: page.Title},
			data:     LegalData{Page: page, Body: body},
		})
	}
}

type resolveFunc func(ctx context.Context, slug string) (*content.Record, error)

// resolve loads the record named by the slug URL param. Any failure renders
// the 404 page; an unreachable store is logged but looks the same to visitors.
func (h *FrontendHandler) resolve(w http.ResponseWriter, r *http.Request, fn resolveFunc) (*content.Record, bool) {
	slug := chi.URLParam(r, "slug")
	if !util.IsValidSlug(slug) {
		h.NotFound(w, r)
		return nil, false
	}

	rec, err := fn(r.Context(), slug)
	if err != nil {
		if !errors.Is(err, content.ErrNotFound) {
			h.logger.Warn("content lookup failed", "slug", slug, "path", r.URL.Path, "error", err)
		}
		h.NotFound(w, r)
		return nil, false
	}
	return rec, true
}

func (h *FrontendHandler) articleSchema(r *http.Request, page *seo.PageData) template.JS {
	page.Path = r.URL.Path
	return seo.BuildArticleSchema(page, h.seo)
}

func latest(records []content.Record, n int) []content.Record {
	if len(records) > n {
		return records[:n]
	}
	return records
}
